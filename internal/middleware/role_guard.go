package middleware

import (
	"net/http"

	"restaurant/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextに入っているroleが許可リストにあるか確認します。
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			staff, ok := CurrentStaff(c)
			if !ok {
				return unauthorized(c)
			}
			if _, ok := allowed[staff.Role]; !ok {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}
			return next(c)
		}
	}
}

// ADMINだけ許可
func AdminRoleGuard() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin)
}
