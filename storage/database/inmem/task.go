package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/task"
)

type taskRepository struct {
	db *DB
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{db: db}
}

// withList returns a copy of t with the List relation loaded, mirroring the
// join every sqlx task read performs.
func (repo *taskRepository) withList(t task.Task) task.Task {
	if l, ok := repo.db.lists[t.ListID]; ok {
		rel := *l
		t.List = &rel
	}
	return t
}

func (repo *taskRepository) ownedBy(t task.Task, ownerID string) bool {
	l, ok := repo.db.lists[t.ListID]
	return ok && l.UserID == ownerID
}

func (repo *taskRepository) query() []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.tasks))
	for _, t := range repo.db.tasks {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = uuid.New().String()
	stored := t
	stored.List = nil
	repo.db.tasks[t.ID] = &stored
	return t, nil
}

func (repo *taskRepository) GetOwnedTask(ctx context.Context, ownerID, id string) (task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.tasks[id]; ok && repo.ownedBy(*t, ownerID) {
		return repo.withList(*t), nil
	}
	return task.Task{}, task.ErrNotFound
}

func matchTask(t task.Task, filter *task.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	switch filter.Filter {
	case task.FilterCompleted:
		return t.Done
	case task.FilterPending:
		return !t.Done
	}
	return true
}

func (repo *taskRepository) QueryOwnedTasks(ctx context.Context, ownerID string, filter *task.QueryFilter, page core.Pagination) ([]task.Task, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]task.Task, 0)
	for _, t := range repo.query() {
		if repo.ownedBy(t, ownerID) && matchTask(t, filter) {
			matches = append(matches, repo.withList(t))
		}
	}

	total := len(matches)
	from := page.Offset()
	if from >= total {
		return []task.Task{}, total, nil
	}
	to := from + page.Limit()
	if to > total {
		to = total
	}
	return matches[from:to], total, nil
}

func (repo *taskRepository) CountOwnedTasks(ctx context.Context, ownerID string) (total, done int, err error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.db.tasks {
		if repo.ownedBy(*t, ownerID) {
			total++
			if t.Done {
				done++
			}
		}
	}
	return total, done, nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tasks[t.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	stored := t
	stored.List = nil
	repo.db.tasks[t.ID] = &stored
	return repo.withList(t), nil
}

func (repo *taskRepository) DeleteTasksByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.tasks[id]; ok {
			delete(repo.db.tasks, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *taskRepository) QueryDueTasks(ctx context.Context, from, to time.Time) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	due := make([]task.Task, 0)
	for _, t := range repo.query() {
		if t.Done || t.DueDate == nil {
			continue
		}
		if d := *t.DueDate; !d.Before(from) && d.Before(to) {
			due = append(due, repo.withList(t))
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].DueDate.Before(*due[j].DueDate) })
	return due, nil
}
