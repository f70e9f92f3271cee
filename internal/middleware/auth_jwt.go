package middleware

import (
	"net/http"
	"strings"

	"restaurant/internal/config"
	"restaurant/internal/domain/model"
	auth "restaurant/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

const ctxStaffKey = "staff"

// Staff はトークンから読んだログイン中の利用者（客・店員・管理者）
type Staff struct {
	UserID       string
	Role         model.Role
	TokenVersion int
}

// AuthJWT は Authorization: Bearer のアクセストークンを検証して Staff をcontextに載せる。
// どの理由で弾いても返すのは401だけ。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c)
			}

			claims, err := auth.ParseAccessToken(cfg.JWTSecret, raw)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(ctxStaffKey, Staff{
				UserID:       claims.Subject,
				Role:         claims.Role,
				TokenVersion: claims.TokenVersion,
			})
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentStaff はAuthJWTを通っていなければ ok=false
func CurrentStaff(c echo.Context) (Staff, bool) {
	s, ok := c.Get(ctxStaffKey).(Staff)
	return s, ok
}

// UserID は監査ログのactorなどに使う（未認証なら空）
func UserID(c echo.Context) string {
	s, _ := CurrentStaff(c)
	return s.UserID
}

func Role(c echo.Context) model.Role {
	s, _ := CurrentStaff(c)
	return s.Role
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
}
