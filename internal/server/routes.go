package server

import (
	"restaurant/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, d Deps) {
	handler.NewHealthHandler(d.DB).RegisterRoutes(e)
	e.GET("/metrics", metricsHandler(d.Registry))

	handler.NewAuthHandler(d.Register, d.Login).RegisterRoutes(e, d.Config, d.Users)
	handler.NewMenuHandler(d.Menu).RegisterRoutes(e, d.Config, d.Users)
	handler.NewCartHandler(d.Cart, d.Config.CookieSecure).RegisterRoutes(e)
	handler.NewAdminMenuHandler(d.Menu).RegisterRoutes(e, d.Config, d.Users)
	handler.NewAdminUserHandler(d.Config, d.Users, d.Admin).RegisterRoutes(e)
}
