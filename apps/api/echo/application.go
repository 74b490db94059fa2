package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/application"
)

type applicationApi struct {
	svc *application.Service
}

func registerApplicationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *application.Service) {
	api := applicationApi{svc: svc}

	g.POST("/events/:id/application", api.apply, jwt)
	g.DELETE("/events/:id/application", api.withdraw, jwt)

	ag := g.Group("/applications", jwt)
	ag.GET("", api.queryMine)
	ag.GET("/managed", api.queryManaged)
	ag.PUT("/:id/status", api.setStatus)
}

// Handlers

func (api *applicationApi) apply(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	app, err := api.svc.Apply(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "applying to event")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *applicationApi) withdraw(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	if err = api.svc.Withdraw(ctx.Request().Context(), p, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "withdrawing application")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *applicationApi) queryMine(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	apps, err := api.svc.ListMine(ctx.Request().Context(), p)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []application.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *applicationApi) queryManaged(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	status := application.Status(core.CleanString(ctx.QueryParam("status")))
	apps, err := api.svc.ListManaged(ctx.Request().Context(), p, status)
	if err != nil {
		return errors.Wrap(err, "querying managed applications")
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *applicationApi) setStatus(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	var data application.StatusUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}
	app, err := api.svc.SetStatus(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "setting application status")
	}
	return ctx.JSON(http.StatusOK, app)
}
