package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"restaurant/internal/config"
	"restaurant/internal/handler"
	"restaurant/internal/logger"
	"restaurant/internal/metrics"
	"restaurant/internal/middleware"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
	auth "restaurant/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// Deps はルーティングに必要なもの一式
type Deps struct {
	Config   config.Config
	Log      *logger.Logger
	Registry *prometheus.Registry
	DB       handler.Pinger

	Users repository.UserRepository

	Menu     *usecase.MenuUsecase
	Cart     *usecase.CartUsecase
	Admin    *usecase.AdminUsecase
	Register *auth.RegisterUserUsecase
	Login    *auth.LoginUsecase
}

// New はミドルウェアとルートを載せたechoを返す
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Metrics(metrics.NewHTTPMetrics(d.Registry)))
	e.Use(echomw.Recover())

	RegisterRoutes(e, d)
	return e
}

// Start はctxが終わるまで待ち受けて、終わったら graceful shutdown する
func Start(ctx context.Context, e *echo.Echo, addr string, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Event(ctx, zerolog.InfoLevel).Str("addr", addr).Msg("server started")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
}
