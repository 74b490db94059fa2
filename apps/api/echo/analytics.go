package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/analytics"
)

type analyticsApi struct {
	svc *analytics.Service
}

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *analytics.Service) {
	api := analyticsApi{svc: svc}
	g.GET("/analytics", api.report, jwt, roleMiddleware(core.RoleManager, core.RoleAdmin))
}

func (api *analyticsApi) report(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	rep, err := api.svc.Report(ctx.Request().Context(), p)
	if err != nil {
		return errors.Wrap(err, "computing analytics")
	}
	return ctx.JSON(http.StatusOK, rep)
}
