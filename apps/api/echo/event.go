package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
)

type eventApi struct {
	svc           *event.Service
	maxUploadSize int64
}

func registerEventAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *event.Service,
	maxUploadSize int64,
) {
	api := eventApi{
		svc:           svc,
		maxUploadSize: maxUploadSize,
	}

	eg := g.Group("/events")

	// un-authed endpoints
	eg.GET("", api.query)
	eg.GET("/search", api.search)
	eg.GET("/:id", api.retrieve)

	// authed endpoints
	ag := eg.Group("", jwt)
	ag.POST("", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.PUT("/:id/summary", api.submitSummary)
	ag.PUT("/:id/approval", api.setApproval, roleMiddleware(core.RoleManager, core.RoleAdmin))
}

// Handlers

func (api *eventApi) query(ctx echo.Context) error {
	filter := new(event.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []event.Event{})
	}
	filter.Clean()

	events, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventApi) search(ctx echo.Context) error {
	events, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam("q"))
	if err != nil {
		return errors.Wrap(err, "searching events")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	e, err := api.svc.View(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "viewing event")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *eventApi) create(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	var data event.NewEvent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	img, f, err := bindImage(ctx, api.maxUploadSize)
	if err != nil {
		return err
	}
	if f != nil {
		defer func() { _ = f.Close() }()
	}

	e, err := api.svc.Create(ctx.Request().Context(), p, data, img)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *eventApi) update(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	var data event.UpdateEvent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	img, f, err := bindImage(ctx, api.maxUploadSize)
	if err != nil {
		return err
	}
	if f != nil {
		defer func() { _ = f.Close() }()
	}

	e, err := api.svc.Update(ctx.Request().Context(), p, ctx.Param("id"), data, img)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	if err = api.svc.Delete(ctx.Request().Context(), p, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *eventApi) submitSummary(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	var data event.SummaryForm
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SummaryForm")
	}

	e, err := api.svc.SubmitSummary(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting event summary")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *eventApi) setApproval(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	var data event.ApprovalForm
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ApprovalForm")
	}

	e, err := api.svc.SetApproval(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "setting event approval")
	}
	return ctx.JSON(http.StatusOK, e)
}
