package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/user"
)

// creation-time ordering is the fixed ordering of every listing
var orderByCreatedDesc = core.DBOrdering{Field: "created_at"}

const userSelect = `
SELECT u.id, u.name, u.email, u.password_hash, u.role_id, u.role_tag, r.name AS role_name,
       u.created_at, u.updated_at, u.last_login
FROM app_user u
LEFT JOIN role r ON r.id = u.role_id`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Email        string      `db:"email"`
	PasswordHash []byte      `db:"password_hash"`
	RoleID       null.String `db:"role_id"`
	RoleTag      null.String `db:"role_tag"`
	RoleName     null.String `db:"role_name"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (r userRow) unpack() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		LastLogin:    r.LastLogin.Time.UTC(),
	}
	if !r.LastLogin.Valid {
		usr.LastLogin = time.Time{}
	}
	if r.RoleID.Valid {
		usr.Role.Linked = &user.Role{ID: r.RoleID.String, Name: r.RoleName.String}
	}
	usr.Role.Named = r.RoleTag.String
	return usr
}

func unpackUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.unpack())
	}
	return users
}

// roleCols flattens the polymorphic role for storage.
func roleCols(usr user.User) (roleID, roleTag null.String) {
	if usr.Role.Linked != nil {
		roleID = null.StringFrom(usr.Role.Linked.ID)
	}
	if usr.Role.Named != "" {
		roleTag = null.StringFrom(usr.Role.Named)
	}
	return
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	q := "SELECT EXISTS (SELECT 1 FROM app_user WHERE email = ?"
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		var err error
		if q, args, err = sqlx.In(q+" AND id NOT IN (?)", email, ids); err != nil {
			return errors.Wrap(err, "expanding excluded ids")
		}
	}
	q += ")"

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	roleID, roleTag := roleCols(usr)

	q := repo.db.Rebind(`
		INSERT INTO app_user (id, name, email, password_hash, role_id, role_tag, created_at, updated_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.Name, usr.Email, usr.PasswordHash, roleID, roleTag,
		usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(), null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var row userRow

	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		q := repo.db.Rebind(userSelect + " WHERE u.id = ?")
		if err := repo.db.GetContext(ctx, &row, q, filter.ID); err != nil {
			return user.User{}, trapNoRowsErr(err, "finding user by ID")
		}
	} else if filter.Email != "" {
		q := repo.db.Rebind(userSelect + " WHERE u.email = ?")
		if err := repo.db.GetContext(ctx, &row, q, filter.Email); err != nil {
			return user.User{}, trapNoRowsErr(err, "finding user by email")
		}
	} else {
		return user.User{}, user.ErrNotFound
	}

	return row.unpack(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, page core.Pagination) ([]user.User, int, error) {
	where := ""
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			where += " AND (u.name ILIKE ? OR u.email ILIKE ?)"
			args = append(args, val, val)
		}
		if filter.Role != "" {
			where += " AND (r.name = ? OR u.role_tag = ?)"
			args = append(args, filter.Role, filter.Role)
		}
	}
	if where != "" {
		where = " WHERE" + where[len(" AND"):]
	}

	var total int
	countQ := repo.db.Rebind("SELECT COUNT(*) FROM app_user u LEFT JOIN role r ON r.id = u.role_id" + where)
	if err := repo.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting users")
	}

	var rows []userRow
	q := repo.db.Rebind(userSelect + where + " ORDER BY u." + orderByCreatedDesc.String() + " LIMIT ? OFFSET ?")
	args = append(args, page.Limit(), page.Offset())
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying users")
	}
	return unpackUsers(rows), total, nil
}

func (repo userRepository) CountUsers(ctx context.Context) (int, error) {
	var total int
	if err := repo.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM app_user"); err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return total, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	roleID, roleTag := roleCols(usr)

	q := repo.db.Rebind(`
		UPDATE app_user
		SET name = ?, email = ?, password_hash = ?, role_id = ?, role_tag = ?, updated_at = ?, last_login = ?
		WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q,
		usr.Name, usr.Email, usr.PasswordHash, roleID, roleTag,
		usr.UpdatedAt.UTC(), null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()), usr.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	q, args, err := sqlx.In("DELETE FROM app_user WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "expanding ids")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}

func (repo userRepository) GetRoleByName(ctx context.Context, name string) (user.Role, error) {
	var role user.Role
	q := repo.db.Rebind("SELECT id, name FROM role WHERE name = ?")
	if err := repo.db.GetContext(ctx, &role, q, name); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return user.Role{}, user.ErrRoleNotFound
		}
		return user.Role{}, errors.Wrap(err, "finding role by name")
	}
	return role, nil
}

func (repo userRepository) QueryRoles(ctx context.Context) ([]user.Role, error) {
	roles := make([]user.Role, 0, len(user.AllRoleNames))
	if err := repo.db.SelectContext(ctx, &roles, "SELECT id, name FROM role ORDER BY name"); err != nil {
		return nil, errors.Wrap(err, "querying roles")
	}
	return roles, nil
}
