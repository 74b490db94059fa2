package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")

// roleMiddleware lets the request through if the principal has any of roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := getContextPrincipal(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context principal")
			}
			for _, role := range roles {
				if p.HasRole(role) {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}
