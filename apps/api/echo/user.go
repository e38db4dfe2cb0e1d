package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/user"
)

const (
	flashUserCreated = "User berhasil ditambahkan!"
	flashUserUpdated = "User berhasil diupdate!"
	flashUserDeleted = "User berhasil dihapus!"
	flashSelfDelete  = "Anda tidak dapat menghapus akun Anda sendiri!"
)

type userApi struct {
	svc user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.Service) {
	api := userApi{svc: svc}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)

	// admin endpoints
	adm := ag.Group("", adminMiddleware())
	adm.GET("", api.query)
	adm.POST("", api.create)
	adm.PUT("/:id", api.update)
	adm.DELETE("/:id", api.destroy)
	adm.GET("/roles", api.queryRoles)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if data.Next == "" {
		data.Next = ctx.QueryParam("next")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Email, data.Password, api.svc)
	if err != nil {
		if errors.Cause(err) == errAuthenticationFailed {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		Redirect: loginRedirect(claims, data.Next),
	})
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	page := bindPagination(ctx)

	users, total, err := api.svc.Query(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}

	roles, err := api.svc.Roles(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying roles")
	}

	return ctx.JSON(http.StatusOK, userPageResponse{
		Users:   core.NewPage(users, len(users), total, page),
		Roles:   roles,
		Filters: filter.Echo(),
	})
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	return ctx.JSON(http.StatusCreated, MutationResponse{Data: usr, Flash: successFlash(flashUserCreated)})
}

func (api *userApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(ctx.Request().Context(), orig, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}

	return ctx.JSON(http.StatusOK, MutationResponse{Data: usr, Flash: successFlash(flashUserUpdated)})
}

func (api *userApi) destroy(ctx echo.Context) error {
	// ctxUser cannot delete themselves
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if ctx.Param("id") == claims.Subject {
		return ctx.JSON(http.StatusForbidden, MutationResponse{Flash: &Flash{Error: flashSelfDelete}})
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting user")
	}
	return ctx.JSON(http.StatusOK, MutationResponse{Flash: successFlash(flashUserDeleted)})
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	roles, err := api.svc.Roles(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying roles")
	}
	return ctx.JSON(http.StatusOK, roles)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"token": token})
}

type userPageResponse struct {
	Users   core.Page        `json:"users"`
	Roles   []user.Role      `json:"roles"`
	Filters user.QueryFilter `json:"filters"`
	Flash   *Flash           `json:"flash,omitempty"`
}
