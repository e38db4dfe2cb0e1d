package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := func(usr user.User) bool {
		for _, ex := range excludedUsers {
			if ex.ID == usr.ID {
				return true
			}
		}
		return false
	}
	for _, usr := range repo.db.users {
		if usr.Email == email && !excluded(*usr) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.db.users {
		if usr.Email == filter.Email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func matchUser(usr user.User, filter *user.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(usr.Name), term) &&
			!strings.Contains(strings.ToLower(usr.Email), term) {
			return false
		}
	}
	if filter.Role != "" && usr.RoleName() != filter.Role {
		return false
	}
	return true
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, page core.Pagination) ([]user.User, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]user.User, 0)
	for _, usr := range repo.query() {
		if matchUser(usr, filter) {
			matches = append(matches, usr)
		}
	}
	return paginateUsers(matches, page), len(matches), nil
}

func paginateUsers(users []user.User, page core.Pagination) []user.User {
	from := page.Offset()
	if from >= len(users) {
		return []user.User{}
	}
	to := from + page.Limit()
	if to > len(users) {
		to = len(users)
	}
	return users[from:to]
}

func (repo *userRepository) CountUsers(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.users), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.users[id]; ok {
			delete(repo.db.users, id)
			cnt++

			// cascade, as the schema does
			for lid, l := range repo.db.lists {
				if l.UserID != id {
					continue
				}
				for tid, t := range repo.db.tasks {
					if t.ListID == lid {
						delete(repo.db.tasks, tid)
					}
				}
				delete(repo.db.lists, lid)
			}
		}
	}
	return cnt, nil
}

func (repo *userRepository) GetRoleByName(ctx context.Context, name string) (user.Role, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, role := range repo.db.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return user.Role{}, user.ErrRoleNotFound
}

func (repo *userRepository) QueryRoles(ctx context.Context) ([]user.Role, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	roles := make([]user.Role, len(repo.db.roles))
	copy(roles, repo.db.roles)
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}
