package handler

import (
	"net/http"

	"restaurant/internal/config"
	"restaurant/internal/middleware"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"
	"restaurant/internal/validator"

	"github.com/labstack/echo/v4"
)

// /admin/menu と /admin/categories をまとめる
type AdminMenuHandler struct {
	uc *usecase.MenuUsecase
}

// DI
func NewAdminMenuHandler(uc *usecase.MenuUsecase) *AdminMenuHandler {
	return &AdminMenuHandler{uc: uc}
}

func (h *AdminMenuHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/menu", h.createMenu)
	admin.PATCH("/menu/:id", h.updateMenu)
	admin.DELETE("/menu/:id", h.deleteMenu)
	admin.POST("/categories", h.createCategory)
}

func (h *AdminMenuHandler) createMenu(c echo.Context) error {
	var req validator.MenuCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	item, err := h.uc.Create(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// 無ければ200でnull
func (h *AdminMenuHandler) updateMenu(c echo.Context) error {
	var req validator.MenuUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	item, err := h.uc.Update(c.Request().Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *AdminMenuHandler) deleteMenu(c echo.Context) error {
	item, err := h.uc.Delete(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *AdminMenuHandler) createCategory(c echo.Context) error {
	var req validator.CategoryCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	cat, err := h.uc.CreateCategory(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}
