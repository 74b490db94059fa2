package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/core/favorite"
)

type favoriteApi struct {
	svc *favorite.Service
}

func registerFavoriteAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *favorite.Service) {
	api := favoriteApi{svc: svc}

	fg := g.Group("/favorites", jwt)
	fg.GET("", api.retrieve)
	fg.PUT("", api.replace)
	fg.GET("/events", api.resolve)
	fg.POST("/:id", api.add)
	fg.DELETE("/:id", api.remove)
}

type FavoritesPayload struct {
	Favorites []string `json:"favorites"`
}

// Handlers

func (api *favoriteApi) retrieve(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	favs, err := api.svc.Get(ctx.Request().Context(), p)
	if err != nil {
		return errors.Wrap(err, "getting favorites")
	}
	return ctx.JSON(http.StatusOK, FavoritesPayload{Favorites: favs})
}

func (api *favoriteApi) replace(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	var data FavoritesPayload
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FavoritesPayload")
	}
	favs, err := api.svc.Set(ctx.Request().Context(), p, data.Favorites)
	if err != nil {
		return errors.Wrap(err, "setting favorites")
	}
	return ctx.JSON(http.StatusOK, FavoritesPayload{Favorites: favs})
}

func (api *favoriteApi) add(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	favs, err := api.svc.Add(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "adding favorite")
	}
	return ctx.JSON(http.StatusOK, FavoritesPayload{Favorites: favs})
}

func (api *favoriteApi) remove(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	favs, err := api.svc.Remove(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "removing favorite")
	}
	return ctx.JSON(http.StatusOK, FavoritesPayload{Favorites: favs})
}

func (api *favoriteApi) resolve(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	events, err := api.svc.ResolveFor(ctx.Request().Context(), p)
	if err != nil {
		return errors.Wrap(err, "resolving favorites")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}
