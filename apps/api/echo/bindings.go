package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/yash-1818/planemate/core"
)

type (
	// Flash carries the one-shot notification a mutation produces. The API
	// is sessionless so it rides in the response body instead of a cookie.
	Flash struct {
		Success string `json:"success,omitempty"`
		Error   string `json:"error,omitempty"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		Next     string `json:"next,omitempty" query:"next"`
	}

	LoginResponse struct {
		Token    string `json:"token"`
		Redirect string `json:"redirect"`
	}

	// MutationResponse wraps a mutated object with its flash.
	MutationResponse struct {
		Data  interface{} `json:"data,omitempty"`
		Flash *Flash      `json:"flash,omitempty"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

func successFlash(msg string) *Flash { return &Flash{Success: msg} }

func bindPagination(ctx echo.Context) core.Pagination {
	page := core.Pagination{}
	_ = ctx.Bind(&page)
	page.Clean()
	return page
}
