package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yash-1818/planemate/core"
)

// stubRepo implements the handful of Repository methods the service tests
// exercise; anything else panics via the embedded nil interface.
type stubRepo struct {
	Repository
	roles   map[string]Role
	users   map[string]User
	created []User
	updated []User
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		roles: map[string]Role{
			RoleAdmin:   {ID: "r1", Name: RoleAdmin},
			RoleTeacher: {ID: "r2", Name: RoleTeacher},
			RoleStudent: {ID: "r3", Name: RoleStudent},
		},
		users: make(map[string]User),
	}
}

func (r *stubRepo) GetRoleByName(ctx context.Context, name string) (Role, error) {
	if role, ok := r.roles[name]; ok {
		return role, nil
	}
	return Role{}, ErrRoleNotFound
}

func (r *stubRepo) CheckEmailUniqueness(ctx context.Context, email string, excl ...User) error {
	for _, usr := range r.users {
		claimed := true
		for _, ex := range excl {
			if ex.ID == usr.ID {
				claimed = false
			}
		}
		if claimed && usr.Email == email {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *stubRepo) CreateUser(ctx context.Context, usr User) (User, error) {
	usr.ID = "u1"
	r.created = append(r.created, usr)
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *stubRepo) GetUser(ctx context.Context, filter GetFilter) (User, error) {
	if usr, ok := r.users[filter.ID]; ok {
		return usr, nil
	}
	for _, usr := range r.users {
		if filter.Email != "" && usr.Email == filter.Email {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *stubRepo) UpdateUser(ctx context.Context, usr User) (User, error) {
	r.updated = append(r.updated, usr)
	r.users[usr.ID] = usr
	return usr, nil
}

func fieldMap(t *testing.T, err error) map[string]string {
	t.Helper()
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("expected *core.ValidationError, got %T: %v", err, err)
	}
	flds := make(map[string]string, len(vErr.Fields))
	for _, fld := range vErr.Fields {
		flds[fld.Field] = fld.Error
	}
	return flds
}

func Test_service_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown role writes nothing", func(t *testing.T) {
		repo := newStubRepo()
		svc := NewService(repo)

		_, err := svc.Create(ctx, NewUser{
			Name:            "Santi",
			Email:           "santi@test.id",
			Password:        "Str0ng#Pass!",
			PasswordConfirm: "Str0ng#Pass!",
			Role:            "overlord",
		})
		assert.Contains(t, fieldMap(t, err), "role")
		assert.Empty(t, repo.created)
	})

	t.Run("ok", func(t *testing.T) {
		repo := newStubRepo()
		svc := NewService(repo)

		usr, err := svc.Create(ctx, NewUser{
			Name:            "Santi",
			Email:           "santi@test.id",
			Password:        "Str0ng#Pass!",
			PasswordConfirm: "Str0ng#Pass!",
			Role:            RoleStudent,
		})
		assert.NoError(t, err)
		assert.Equal(t, RoleStudent, usr.RoleName())
		assert.NotNil(t, usr.Role.Linked)
		assert.NoError(t, usr.CheckPassword("Str0ng#Pass!"))
		assert.False(t, usr.CreatedAt.IsZero())
	})
}

func Test_service_Update(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	svc := NewService(repo)

	orig, err := svc.Create(ctx, NewUser{
		Name:            "Santi",
		Email:           "santi@test.id",
		Password:        "0ld#Passw0rd",
		PasswordConfirm: "0ld#Passw0rd",
		Role:            RoleStudent,
	})
	assert.NoError(t, err)

	t.Run("empty password keeps the hash", func(t *testing.T) {
		usr, err := svc.Update(ctx, orig.ID, UpdateUser{
			Name:  "Santi Dewi",
			Email: "santi@test.id",
			Role:  RoleStudent,
		})
		assert.NoError(t, err)
		assert.Equal(t, "Santi Dewi", usr.Name)
		assert.NoError(t, usr.CheckPassword("0ld#Passw0rd"))
	})

	t.Run("new password replaces the hash", func(t *testing.T) {
		usr, err := svc.Update(ctx, orig.ID, UpdateUser{
			Name:            "Santi Dewi",
			Email:           "santi@test.id",
			Password:        "N3w#Passw0rd",
			PasswordConfirm: "N3w#Passw0rd",
			Role:            RoleStudent,
		})
		assert.NoError(t, err)
		assert.NoError(t, usr.CheckPassword("N3w#Passw0rd"))
		assert.Error(t, usr.CheckPassword("0ld#Passw0rd"))
	})

	t.Run("role change resolves the new role", func(t *testing.T) {
		usr, err := svc.Update(ctx, orig.ID, UpdateUser{
			Name:  "Santi Dewi",
			Email: "santi@test.id",
			Role:  RoleTeacher,
		})
		assert.NoError(t, err)
		assert.Equal(t, RoleTeacher, usr.RoleName())
	})
}

func TestNewUser_Validate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStubRepo())

	valid := func() NewUser {
		return NewUser{
			Name:            "Santi",
			Email:           "santi@test.id",
			Password:        "Str0ng#Pass!",
			PasswordConfirm: "Str0ng#Pass!",
			Role:            RoleStudent,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*NewUser)
		wantFld string
	}{
		{name: "too short", mutate: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "ab1!", "ab1!" }, wantFld: "password"},
		{name: "whitespace", mutate: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "with space1!", "with space1!" }, wantFld: "password"},
		{name: "all numeric", mutate: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "1234567890", "1234567890" }, wantFld: "password"},
		{name: "similar to email", mutate: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "santi@test.id", "santi@test.id" }, wantFld: "password"},
		{name: "confirm mismatch", mutate: func(nu *NewUser) { nu.PasswordConfirm = "Different#1" }, wantFld: "password_confirm"},
		{name: "bad email", mutate: func(nu *NewUser) { nu.Email = "nope" }, wantFld: "email"},
		{name: "missing role", mutate: func(nu *NewUser) { nu.Role = "" }, wantFld: "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid()
			tt.mutate(&nu)
			err := nu.Validate(ctx, svc)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantFld)
			}
		})
	}

	t.Run("ok", func(t *testing.T) {
		nu := valid()
		assert.NoError(t, nu.Validate(ctx, svc))
	})
}
