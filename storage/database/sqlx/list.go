package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/yash-1818/planemate/core/list"
)

const listSelect = `SELECT id, name, user_id, created_at, updated_at FROM list`

type listRepository struct {
	db *sqlx.DB
}

var _ list.Repository = (*listRepository)(nil) // interface compliance check

func NewListRepository(db *sqlx.DB) *listRepository {
	return &listRepository{db: db}
}

type listRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r listRow) unpack() list.List {
	return list.List{
		ID:        r.ID,
		Name:      r.Name,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func (repo listRepository) CreateList(ctx context.Context, l list.List) (list.List, error) {
	l.ID = uuid.New().String()
	q := repo.db.Rebind(`
		INSERT INTO list (id, name, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, q, l.ID, l.Name, l.UserID, l.CreatedAt.UTC(), l.UpdatedAt.UTC())
	if err != nil {
		return list.List{}, errors.Wrap(err, "inserting list")
	}
	return l, nil
}

func (repo listRepository) GetList(ctx context.Context, id string) (list.List, error) {
	if _, err := uuid.Parse(id); err != nil {
		return list.List{}, list.ErrNotFound
	}
	var row listRow
	q := repo.db.Rebind(listSelect + " WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return list.List{}, list.ErrNotFound
		}
		return list.List{}, errors.Wrap(err, "finding list by ID")
	}
	return row.unpack(), nil
}

func (repo listRepository) QueryListsByOwner(ctx context.Context, ownerID string) ([]list.List, error) {
	var rows []listRow
	q := repo.db.Rebind(listSelect + " WHERE user_id = ? ORDER BY " + orderByCreatedDesc.String())
	if err := repo.db.SelectContext(ctx, &rows, q, ownerID); err != nil {
		return nil, errors.Wrap(err, "querying lists")
	}
	lists := make([]list.List, 0, len(rows))
	for _, r := range rows {
		lists = append(lists, r.unpack())
	}
	return lists, nil
}

func (repo listRepository) CountListsByOwner(ctx context.Context, ownerID string) (int, error) {
	var total int
	q := repo.db.Rebind("SELECT COUNT(*) FROM list WHERE user_id = ?")
	if err := repo.db.GetContext(ctx, &total, q, ownerID); err != nil {
		return 0, errors.Wrap(err, "counting lists")
	}
	return total, nil
}

func (repo listRepository) UpdateList(ctx context.Context, l list.List) (list.List, error) {
	q := repo.db.Rebind("UPDATE list SET name = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, l.Name, l.UpdatedAt.UTC(), l.ID)
	if err != nil {
		return list.List{}, errors.Wrap(err, "updating list")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return list.List{}, list.ErrNotFound
	}
	return l, nil
}

func (repo listRepository) DeleteListsByID(ctx context.Context, ids ...string) (int, error) {
	q, args, err := sqlx.In("DELETE FROM list WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "expanding ids")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting lists")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting lists")
	}
	return int(cnt), nil
}
