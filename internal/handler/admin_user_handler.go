package handler

import (
	"net/http"
	"strconv"

	"restaurant/internal/config"
	"restaurant/internal/middleware"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	cfg      config.Config
	userRepo repository.UserRepository
	uc       *usecase.AdminUsecase
}

func NewAdminUserHandler(cfg config.Config, userRepo repository.UserRepository, uc *usecase.AdminUsecase) *AdminUserHandler {
	return &AdminUserHandler{cfg: cfg, userRepo: userRepo, uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo) {
	// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := e.Group(
		"/admin",
		middleware.AuthJWT(h.cfg),
		middleware.TokenVersionGuard(h.userRepo),
		middleware.AdminRoleGuard(),
	)

	admin.POST("/users/:id/force-logout", h.forceLogout)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	res, err := h.uc.ForceLogout(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ?action=&resource_type=&resource_id=&actor=&limit=&offset=
func (h *AdminUserHandler) auditLogs(c echo.Context) error {
	q := usecase.AuditLogQuery{
		ActorUserID:  c.QueryParam("actor"),
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
	}

	var err error
	if v := c.QueryParam("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil {
			return c.JSON(http.StatusBadRequest, errorJSON("invalid limit"))
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if q.Offset, err = strconv.Atoi(v); err != nil {
			return c.JSON(http.StatusBadRequest, errorJSON("invalid offset"))
		}
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
