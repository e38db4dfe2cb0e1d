package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/list"
	"github.com/yash-1818/planemate/core/task"
	exportsvc "github.com/yash-1818/planemate/services/export"
)

const (
	flashTaskCreated = "Tugas berhasil ditambahkan."
	flashTaskUpdated = "Tugas berhasil diupdate."
	flashTaskDeleted = "Tugas Berhasil dihapus."
)

type taskApi struct {
	svc      task.Service
	listSvc  list.Service
	exporter *exportsvc.Exporter
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc task.Service, listSvc list.Service, exporter *exportsvc.Exporter) {
	api := taskApi{svc: svc, listSvc: listSvc, exporter: exporter}

	tg := g.Group("/tasks", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/export", api.export)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
}

func (api *taskApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(task.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := bindPagination(ctx)

	tasks, total, err := api.svc.Query(ctx.Request().Context(), claims.Subject, filter, page)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}

	// lists picker for the create/edit forms
	lists, err := api.listSvc.QueryOwned(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying lists")
	}
	if lists == nil {
		lists = []list.List{}
	}

	return ctx.JSON(http.StatusOK, taskPageResponse{
		Tasks:   core.NewPage(tasks, len(tasks), total, page),
		Lists:   lists,
		Filters: *filter,
	})
}

func (api *taskApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, MutationResponse{Data: t, Flash: successFlash(flashTaskCreated)})
}

func (api *taskApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, MutationResponse{Data: t, Flash: successFlash(flashTaskUpdated)})
}

func (api *taskApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting task")
	}
	return ctx.JSON(http.StatusOK, MutationResponse{Flash: successFlash(flashTaskDeleted)})
}

func (api *taskApi) export(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	format := ctx.QueryParam("format")
	if format == "" {
		format = exportsvc.FormatPDF
	}

	data, contentType, err := api.exporter.Export(ctx.Request().Context(), claims.Subject, format)
	if err != nil {
		if errors.Cause(err) == exportsvc.ErrUnknownFormat {
			return core.NewValidationError(nil, core.FieldError{Field: "format", Error: exportsvc.ErrUnknownFormat.Error()})
		}
		return errors.Wrap(err, "exporting tasks")
	}

	fname := fmt.Sprintf("tasks-%s.%s", time.Now().UTC().Format("2006-01-02"), format)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fname+`"`)
	return ctx.Blob(http.StatusOK, contentType, data)
}

type taskPageResponse struct {
	Tasks   core.Page        `json:"tasks"`
	Lists   []list.List      `json:"lists"`
	Filters task.QueryFilter `json:"filters"`
	Flash   *Flash           `json:"flash,omitempty"`
}
