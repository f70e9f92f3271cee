package middleware

import (
	"time"

	"restaurant/internal/logger"
	"restaurant/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger は1リクエスト1行で出す。request_idはechoのRequestIDミドルウェアの値。
// 後ろのハンドラはctx経由で同じrequest_idを使う。
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			if reqID == "" {
				reqID = req.Header.Get(echo.HeaderXRequestID)
			}
			ctx := log.WithRequestID(req.Context(), reqID)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				// echoのエラーハンドラでステータスを確定させる
				c.Error(err)
			}

			status := c.Response().Status
			level := zerolog.InfoLevel
			if status >= 500 {
				level = zerolog.ErrorLevel
			}

			ev := log.Event(ctx, level).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("route", c.Path()).
				Int("status", status).
				Dur("latency", time.Since(start))
			if uid := UserID(c); uid != "" {
				ev = ev.Str("user_id", uid)
			}
			if err != nil {
				ev = ev.Err(err)
			}
			ev.Msg("request")

			return nil
		}
	}
}

// Metrics はルート単位でリクエスト数とレイテンシを数える
func Metrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			m.Observe(c.Request().Method, c.Path(), c.Response().Status, time.Since(start))
			return nil
		}
	}
}
