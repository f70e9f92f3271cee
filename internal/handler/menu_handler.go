package handler

import (
	"net/http"

	"restaurant/internal/config"
	"restaurant/internal/middleware"
	"restaurant/internal/repository"
	"restaurant/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /menu と /categories の読み取りAPI（ログイン済みなら誰でも）
type MenuHandler struct {
	uc *usecase.MenuUsecase
}

// DI
func NewMenuHandler(uc *usecase.MenuUsecase) *MenuHandler {
	return &MenuHandler{uc: uc}
}

func (h *MenuHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	auth := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}

	e.GET("/menu", h.list, auth...)
	e.GET("/menu/search", h.search, auth...)
	e.GET("/menu/grouped", h.grouped, auth...)
	e.GET("/menu/:id", h.detail, auth...)
	e.GET("/categories", h.listCategories, auth...)
	e.GET("/categories/:id", h.categoryDetail, auth...)
}

// ?q= があれば名前で絞る（空なら全件）
func (h *MenuHandler) list(c echo.Context) error {
	items, err := h.uc.FilterByName(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MenuHandler) search(c echo.Context) error {
	items, err := h.uc.FindByName(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MenuHandler) grouped(c echo.Context) error {
	groups, err := h.uc.GroupedMenu(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, groups)
}

// 無ければ200でnull
func (h *MenuHandler) detail(c echo.Context) error {
	item, err := h.uc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) listCategories(c echo.Context) error {
	cats, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *MenuHandler) categoryDetail(c echo.Context) error {
	cat, err := h.uc.GetCategoryByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}
