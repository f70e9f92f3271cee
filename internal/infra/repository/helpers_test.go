package repository

import (
	"context"
	"testing"

	"restaurant/internal/infra/db"
	"restaurant/internal/infra/migrations"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// sqliteのメモリDBにマイグレーションを当てる（接続1本で共有）
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dialector, err := db.Dialector("sqlite", ":memory:")
	require.NoError(t, err)

	conn, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrations.Quiet()
	require.NoError(t, migrations.Up(context.Background(), sqlDB, "sqlite"))
	return conn
}
