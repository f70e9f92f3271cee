package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant/internal/config"
	"restaurant/internal/infra/cache"
	"restaurant/internal/infra/cartstore"
	"restaurant/internal/infra/db"
	"restaurant/internal/infra/migrations"
	infraRepo "restaurant/internal/infra/repository"
	"restaurant/internal/metrics"
	"restaurant/internal/repository"
	"restaurant/internal/server"
	"restaurant/internal/usecase"
	auth "restaurant/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	adminEmail  = "admin@example.com"
	workerEmail = "worker@example.com"
	testPass    = "password1"
)

type testApp struct {
	e     *echo.Echo
	db    *gorm.DB
	users repository.UserRepository
	carts *cartstore.MemoryProvider
}

// sqliteのメモリDB + メモリのカート/キャッシュで全ルートを組む
func newTestApp(t *testing.T) *testApp {
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

	cfg := config.Config{
		JWTSecret:   "test-secret-test-secret-test-secret",
		AccessTTL:   15 * time.Minute,
		AdminEmail:  adminEmail,
		WorkerEmail: workerEmail,
		CacheTTL:    time.Minute,
	}

	reg := prometheus.NewRegistry()
	users := infraRepo.NewUserGormRepository(conn)
	menuRepo := infraRepo.NewMenuGormRepository(conn)
	carts := cartstore.NewMemoryProvider()
	clock := auth.SystemClock{}
	idGen := usecase.UUIDv7Generator{}

	e := server.New(server.Deps{
		Config:   cfg,
		Registry: reg,
		DB:       sqlDB,
		Users:    users,
		Menu: usecase.NewMenuUsecase(menuRepo, infraRepo.NewCategoryGormRepository(conn),
			infraRepo.NewTxManagerGorm(conn), cache.NewMemory(), cfg.CacheTTL, idGen, nil),
		Cart:     usecase.NewCartUsecase(carts, menuRepo, metrics.NewCartMetrics(reg), nil),
		Admin:    usecase.NewAdminUsecase(users, infraRepo.NewAuditLogGormRepository(conn), nil),
		Register: auth.NewRegisterUserUsecase(users, auth.NewBcryptPasswordHasher(bcrypt.MinCost), idGen, clock, auth.RolePolicy{AdminEmail: adminEmail, WorkerEmail: workerEmail}),
		Login:    auth.NewLoginUsecase(users, auth.NewBcryptPasswordVerifier(), auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTTL), clock),
	})

	return &testApp{e: e, db: conn, users: users, carts: carts}
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	cookies []*http.Cookie
}

func (a *testApp) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if r.body != nil {
		switch b := r.body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(r.method, r.path, &buf)
	if r.body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.token)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// 登録してログインし、アクセストークンを返す
func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()

	rec := a.do(t, request{method: http.MethodPost, path: "/auth/register", body: map[string]string{"email": email, "password": testPass}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, request{method: http.MethodPost, path: "/auth/login", body: map[string]string{"email": email, "password": testPass}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out auth.LoginOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Token.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
