package user

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yash-1818/planemate/core"
)

// Canonical role names, as seeded in the role table.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "guru"
	RoleStudent = "siswa"

	// RoleUnknown is what RoleRef resolves to when a user carries no
	// resolvable role. It never grants access anywhere.
	RoleUnknown = "unknown"
)

var AllRoleNames = []string{RoleAdmin, RoleTeacher, RoleStudent}

// Role is a row of the static role reference table.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoleRef is the polymorphic role attached to a User: either a link to a
// Role row (Linked) or a bare role name (Named). Linked wins when both are
// set. All role checks go through Name() so no call site branches on the
// representation.
type RoleRef struct {
	Linked *Role
	Named  string
}

func (r RoleRef) Name() string {
	if r.Linked != nil && r.Linked.Name != "" {
		return r.Linked.Name
	}
	if r.Named != "" {
		return r.Named
	}
	return RoleUnknown
}

// MarshalJSON renders the canonical role name; pages only ever display it.
func (r RoleRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Name())
}

func (r *RoleRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if name != RoleUnknown {
		r.Named = name
	}
	return nil
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         RoleRef   `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) RoleName() string { return u.Role.Name() }

func (u User) IsAdmin() bool { return u.RoleName() == RoleAdmin }

func (u User) IsTeacher() bool { return u.RoleName() == RoleTeacher }

func (u User) IsStudent() bool { return u.RoleName() == RoleStudent }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required"`
}

func (nu *NewUser) Validate(ctx context.Context, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing
// User. An empty Password means "no change".
type UpdateUser struct {
	Name            string `json:"name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
	Role            string `json:"role" validate:"required"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, svc Service) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Role = core.CleanString(uu.Role, true /* lower */)

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Email, origUsr)
}

// QueryFilter narrows the admin user listing.
// Search does a case-insensitive match on User.Name or User.Email;
// Role matches the canonical role name exactly, "all" (or empty) matching
// every user.
type QueryFilter struct {
	Search string `json:"search" query:"search"`
	Role   string `json:"role" query:"role"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	if qf.Role == "all" {
		qf.Role = ""
	}
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == ""
}

// Echo returns the filter as list payloads echo it back, with the "all"
// value restored for the role select widget.
func (qf QueryFilter) Echo() QueryFilter {
	if qf.Role == "" {
		qf.Role = "all"
	}
	return qf
}
