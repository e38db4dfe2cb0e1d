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
	"github.com/yash-1818/planemate/core/list"
	"github.com/yash-1818/planemate/core/task"
)

// Every task read goes through the join on the parent list: it loads the
// relation for display and makes the ownership scoping an explicit,
// non-bypassable part of the query.
const taskSelect = `
SELECT t.id, t.title, t.description, t.due_date, t.done, t.list_id, t.created_at, t.updated_at,
       l.name AS list_name, l.user_id AS list_user_id, l.created_at AS list_created_at, l.updated_at AS list_updated_at
FROM task t
JOIN list l ON l.id = t.list_id`

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) *taskRepository {
	return &taskRepository{db: db}
}

type taskRow struct {
	ID            string      `db:"id"`
	Title         string      `db:"title"`
	Description   null.String `db:"description"`
	DueDate       null.Time   `db:"due_date"`
	Done          bool        `db:"done"`
	ListID        string      `db:"list_id"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
	ListName      string      `db:"list_name"`
	ListUserID    string      `db:"list_user_id"`
	ListCreatedAt time.Time   `db:"list_created_at"`
	ListUpdatedAt time.Time   `db:"list_updated_at"`
}

func (r taskRow) unpack() task.Task {
	t := task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		Done:        r.Done,
		ListID:      r.ListID,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		List: &list.List{
			ID:        r.ListID,
			Name:      r.ListName,
			UserID:    r.ListUserID,
			CreatedAt: r.ListCreatedAt.UTC(),
			UpdatedAt: r.ListUpdatedAt.UTC(),
		},
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time.UTC()
		t.DueDate = &due
	}
	return t
}

func unpackTasks(rows []taskRow) []task.Task {
	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.unpack())
	}
	return tasks
}

func dueCol(t task.Task) null.Time {
	if t.DueDate == nil {
		return null.Time{}
	}
	return null.TimeFrom(t.DueDate.UTC())
}

func (repo taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	t.ID = uuid.New().String()
	q := repo.db.Rebind(`
		INSERT INTO task (id, title, description, due_date, done, list_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, q,
		t.ID, t.Title, null.NewString(t.Description, t.Description != ""), dueCol(t),
		t.Done, t.ListID, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return t, nil
}

func (repo taskRepository) GetOwnedTask(ctx context.Context, ownerID, id string) (task.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return task.Task{}, task.ErrNotFound
	}
	var row taskRow
	q := repo.db.Rebind(taskSelect + " WHERE t.id = ? AND l.user_id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id, ownerID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "finding task by ID")
	}
	return row.unpack(), nil
}

func (repo taskRepository) QueryOwnedTasks(ctx context.Context, ownerID string, filter *task.QueryFilter, page core.Pagination) ([]task.Task, int, error) {
	where := " WHERE l.user_id = ?"
	args := []interface{}{ownerID}

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			where += " AND (t.title ILIKE ? OR t.description ILIKE ?)"
			args = append(args, val, val)
		}
		switch filter.Filter {
		case task.FilterCompleted:
			where += " AND t.done"
		case task.FilterPending:
			where += " AND NOT t.done"
		}
	}

	var total int
	countQ := repo.db.Rebind("SELECT COUNT(*) FROM task t JOIN list l ON l.id = t.list_id" + where)
	if err := repo.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting tasks")
	}

	var rows []taskRow
	q := repo.db.Rebind(taskSelect + where + " ORDER BY t." + orderByCreatedDesc.String() + " LIMIT ? OFFSET ?")
	args = append(args, page.Limit(), page.Offset())
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying tasks")
	}
	return unpackTasks(rows), total, nil
}

func (repo taskRepository) CountOwnedTasks(ctx context.Context, ownerID string) (total, done int, err error) {
	q := repo.db.Rebind(`
		SELECT COUNT(*), COUNT(*) FILTER (WHERE t.done)
		FROM task t
		JOIN list l ON l.id = t.list_id
		WHERE l.user_id = ?`)
	if err = repo.db.QueryRowContext(ctx, q, ownerID).Scan(&total, &done); err != nil {
		return 0, 0, errors.Wrap(err, "counting tasks")
	}
	return total, done, nil
}

func (repo taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	q := repo.db.Rebind(`
		UPDATE task
		SET title = ?, description = ?, due_date = ?, done = ?, list_id = ?, updated_at = ?
		WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, q,
		t.Title, null.NewString(t.Description, t.Description != ""), dueCol(t),
		t.Done, t.ListID, t.UpdatedAt.UTC(), t.ID,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (repo taskRepository) DeleteTasksByID(ctx context.Context, ids ...string) (int, error) {
	q, args, err := sqlx.In("DELETE FROM task WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "expanding ids")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting tasks")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting tasks")
	}
	return int(cnt), nil
}

func (repo taskRepository) QueryDueTasks(ctx context.Context, from, to time.Time) ([]task.Task, error) {
	var rows []taskRow
	q := repo.db.Rebind(taskSelect + " WHERE NOT t.done AND t.due_date >= ? AND t.due_date < ? ORDER BY t.due_date")
	if err := repo.db.SelectContext(ctx, &rows, q, from.UTC(), to.UTC()); err != nil {
		return nil, errors.Wrap(err, "querying due tasks")
	}
	return unpackTasks(rows), nil
}
