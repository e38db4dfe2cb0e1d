package list

import (
	"time"

	"github.com/yash-1818/planemate/core"
)

// List is a named grouping of tasks owned by exactly one user.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewList contains information needed to create a new List.
type NewList struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (nl *NewList) Validate() error {
	nl.Name = core.CleanString(nl.Name)
	return core.Validate.Struct(nl)
}

// UpdateList defines what information may be provided to modify an existing List.
type UpdateList struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (ul *UpdateList) Validate() error {
	ul.Name = core.CleanString(ul.Name)
	return core.Validate.Struct(ul)
}
