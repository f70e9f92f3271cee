package middleware

import (
	"restaurant/internal/repository"

	"github.com/labstack/echo/v4"
)

// TokenVersionGuard は強制ログアウト済みのトークンを弾く。
// トークンのtvとDBのtoken_versionがずれていたら401、無効化されたアカウントも401。
func TokenVersionGuard(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			staff, ok := CurrentStaff(c)
			if !ok || staff.UserID == "" {
				return unauthorized(c)
			}

			account, err := users.FindByID(c.Request().Context(), staff.UserID)
			if err != nil || account == nil {
				return unauthorized(c)
			}
			if !account.IsActive || account.TokenVersion != staff.TokenVersion {
				return unauthorized(c)
			}
			return next(c)
		}
	}
}
