// Package migrations はgooseのSQLマイグレーション（ドライバごとにディレクトリを分ける）
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// gooseの方言名とディレクトリ
func dialectFor(driver string) (string, string, error) {
	switch driver {
	case "postgres":
		return "postgres", "postgres", nil
	case "sqlite":
		return "sqlite3", "sqlite", nil
	default:
		return "", "", fmt.Errorf("unsupported db driver %q", driver)
	}
}

// Run はgooseのコマンド（up/down/status/version/redo/reset）を実行する
func Run(ctx context.Context, db *sql.DB, driver string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dialect, dir, err := dialectFor(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(files)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Up は最新まで当てる
func Up(ctx context.Context, db *sql.DB, driver string) error {
	return Run(ctx, db, driver, "up")
}

// Quiet はgooseの標準出力を止める（テスト用）
func Quiet() {
	goose.SetLogger(goose.NopLogger())
}
