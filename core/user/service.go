package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/yash-1818/planemate/core"
)

var (
	// errors
	ErrNotFound     = errors.New("user not found")
	ErrEmailExists  = errors.New("a user with this email already exists")
	ErrRoleNotFound = errors.New("invalid role")
)

type (
	// GetFilter selects a single user; ID wins when both fields are set.
	GetFilter struct {
		ID    string
		Email string
	}

	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields and
		// returns one page of users ordered by creation time descending, plus
		// the total match count.
		QueryUsers(ctx context.Context, filter *QueryFilter, page core.Pagination) ([]User, int, error)
		CountUsers(ctx context.Context) (int, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) (int, error)
		GetRoleByName(ctx context.Context, name string) (Role, error)
		QueryRoles(ctx context.Context) ([]Role, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, email string, exclUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, filter *QueryFilter, page core.Pagination) ([]User, int, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Roles(ctx context.Context) ([]Role, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		Delete(ctx context.Context, ids ...string) error
		SetLastLogin(ctx context.Context, usr User) (User, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// resolveRole maps a role name to its reference row. An unknown name is a
// field error on "role"; nothing is written in that case.
func (svc *service) resolveRole(ctx context.Context, name string) (Role, error) {
	role, err := svc.repo.GetRoleByName(ctx, name)
	if err != nil {
		if errors.Cause(err) == ErrRoleNotFound {
			return Role{}, core.NewValidationError(err, core.FieldError{Field: "role", Error: ErrRoleNotFound.Error()})
		}
		return Role{}, err
	}
	return role, nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	role, err := svc.resolveRole(ctx, nu.Role)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      RoleRef{Linked: &role},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, page core.Pagination) ([]User, int, error) {
	if filter != nil {
		filter.Clean()
	}
	page.Clean()
	return svc.repo.QueryUsers(ctx, filter, page)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Roles(ctx context.Context) ([]Role, error) {
	return svc.repo.QueryRoles(ctx)
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	orig, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}
	role, err := svc.resolveRole(ctx, uu.Role)
	if err != nil {
		return User{}, err
	}

	usr := orig
	usr.Name = uu.Name
	usr.Email = uu.Email
	usr.Role = RoleRef{Linked: &role}
	usr.UpdatedAt = time.Now().UTC()
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	cnt, err := svc.repo.DeleteUsersByID(ctx, ids...)
	if err != nil {
		return err
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}
