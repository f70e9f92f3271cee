package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"restaurant/internal/config"
	"restaurant/internal/infra/cache"
	"restaurant/internal/infra/cartstore"
	"restaurant/internal/infra/db"
	infraRepo "restaurant/internal/infra/repository"
	"restaurant/internal/logger"
	"restaurant/internal/metrics"
	"restaurant/internal/server"
	"restaurant/internal/usecase"
	auth "restaurant/internal/usecase/auth_usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const redisNamespace = "restaurant"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logg := logger.New(logger.Options{Service: "api", Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("sql db handle: %w", err)
	}
	defer sqlDB.Close()

	//Redis（設定があれば）
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	var readCache cache.Cache = cache.NewMemory()
	if redisClient != nil {
		readCache = cache.NewRedis(redisClient, redisNamespace)
	}

	var carts usecase.CartStorageProvider = cartstore.NewMemoryProvider()
	if cfg.CartStore == config.CartStoreRedis {
		carts = cartstore.NewRedis(redisClient, redisNamespace, cartstore.DefaultTTL)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	menuRepo := infraRepo.NewMenuGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase
	idGen := usecase.UUIDv7Generator{}
	clock := auth.SystemClock{}
	roles := auth.RolePolicy{AdminEmail: cfg.AdminEmail, WorkerEmail: cfg.WorkerEmail}

	menuUC := usecase.NewMenuUsecase(menuRepo, categoryRepo, txm, readCache, cfg.CacheTTL, idGen, logg)
	cartUC := usecase.NewCartUsecase(carts, menuRepo, metrics.NewCartMetrics(reg), logg)
	adminUC := usecase.NewAdminUsecase(userRepo, auditRepo, logg)
	registerUC := auth.NewRegisterUserUsecase(userRepo, auth.NewBcryptPasswordHasher(bcrypt.DefaultCost), idGen, clock, roles)
	loginUC := auth.NewLoginUsecase(userRepo, auth.NewBcryptPasswordVerifier(), auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTTL), clock)

	e := server.New(server.Deps{
		Config:   cfg,
		Log:      logg,
		Registry: reg,
		DB:       sqlDB,
		Users:    userRepo,
		Menu:     menuUC,
		Cart:     cartUC,
		Admin:    adminUC,
		Register: registerUC,
		Login:    loginUC,
	})

	return server.Start(ctx, e, ":"+cfg.Port, logg)
}
