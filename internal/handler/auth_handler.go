package handler

import (
	"net/http"

	"restaurant/internal/config"
	"restaurant/internal/middleware"
	"restaurant/internal/repository"
	auth "restaurant/internal/usecase/auth_usecase"
	"restaurant/internal/validator"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
}

// DIコンストラクタ
func NewAuthHandler(registerUC *auth.RegisterUserUsecase, loginUC *auth.LoginUsecase) *AuthHandler {
	return &AuthHandler{registerUC: registerUC, loginUC: loginUC}
}

type LandingResponse struct {
	Role    string `json:"role"`
	Landing string `json:"landing"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.GET("/landing", h.landing,
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	)
}

// POST /auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req validator.AuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.registerUC.Execute(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req validator.AuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.loginUC.Execute(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ロールに応じた遷移先
func (h *AuthHandler) landing(c echo.Context) error {
	role := middleware.Role(c)
	return c.JSON(http.StatusOK, LandingResponse{
		Role:    string(role),
		Landing: role.LandingPath(),
	})
}
