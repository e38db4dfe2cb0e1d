package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yash-1818/planemate/core/list"
	"github.com/yash-1818/planemate/core/task"
	"github.com/yash-1818/planemate/core/user"
)

// DB is a mutex-guarded in-memory store, used by tests and local hacking.
// It mirrors the relational schema closely enough for the repositories to
// behave like their sqlx counterparts.
type DB struct {
	mutex sync.RWMutex
	roles []user.Role
	users map[string]*user.User
	lists map[string]*list.List
	tasks map[string]*task.Task
}

func NewDB() *DB {
	db := &DB{}
	db.reset()
	return db
}

func (db *DB) reset() {
	db.roles = make([]user.Role, 0, len(user.AllRoleNames))
	for _, name := range user.AllRoleNames {
		db.roles = append(db.roles, user.Role{ID: uuid.New().String(), Name: name})
	}
	db.users = make(map[string]*user.User)
	db.lists = make(map[string]*list.List)
	db.tasks = make(map[string]*task.Task)
}

// Reset empties all tables and re-seeds the role reference data.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.reset()
}
