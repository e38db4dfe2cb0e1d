package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/yash-1818/planemate/core/task"
)

type dashboardApi struct {
	taskSvc task.Service
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, taskSvc task.Service) {
	api := dashboardApi{taskSvc: taskSvc}
	g.GET("/dashboard", api.retrieve, jwt)
}

// retrieve recomputes the owner's aggregates on every call; counts are
// never cached so the page is always fresh.
func (api *dashboardApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	stats, err := api.taskSvc.Stats(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"stats": stats})
}
