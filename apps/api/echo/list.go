package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/yash-1818/planemate/core/list"
)

const (
	flashListCreated = "List berhasil ditambahkan."
	flashListUpdated = "List berhasil diupdate."
	flashListDeleted = "List berhasil dihapus."
)

type listApi struct {
	svc list.Service
}

func registerListAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc list.Service) {
	api := listApi{svc: svc}

	lg := g.Group("/lists", jwt)
	lg.GET("", api.query)
	lg.POST("", api.create)
	lg.PUT("/:id", api.update)
	lg.DELETE("/:id", api.destroy)
}

func (api *listApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	lists, err := api.svc.QueryOwned(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying lists")
	}
	if lists == nil {
		lists = []list.List{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"lists": lists})
}

func (api *listApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data list.NewList
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewList")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	l, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating list")
	}
	return ctx.JSON(http.StatusCreated, MutationResponse{Data: l, Flash: successFlash(flashListCreated)})
}

func (api *listApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data list.UpdateList
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateList")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	l, err := api.svc.Update(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == list.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating list")
	}
	return ctx.JSON(http.StatusOK, MutationResponse{Data: l, Flash: successFlash(flashListUpdated)})
}

func (api *listApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		if errors.Cause(err) == list.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting list")
	}
	return ctx.JSON(http.StatusOK, MutationResponse{Flash: successFlash(flashListDeleted)})
}
