package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/yash-1818/planemate/core/list"
)

type listRepository struct {
	db *DB
}

var _ list.Repository = (*listRepository)(nil)

func NewListRepository(db *DB) *listRepository {
	return &listRepository{db: db}
}

func (repo *listRepository) CreateList(ctx context.Context, l list.List) (list.List, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	l.ID = uuid.New().String()
	repo.db.lists[l.ID] = &l
	return l, nil
}

func (repo *listRepository) GetList(ctx context.Context, id string) (list.List, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if l, ok := repo.db.lists[id]; ok {
		return *l, nil
	}
	return list.List{}, list.ErrNotFound
}

func (repo *listRepository) QueryListsByOwner(ctx context.Context, ownerID string) ([]list.List, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lists := make([]list.List, 0)
	for _, l := range repo.db.lists {
		if l.UserID == ownerID {
			lists = append(lists, *l)
		}
	}
	sort.Slice(lists, func(i, j int) bool {
		if lists[i].CreatedAt.Equal(lists[j].CreatedAt) {
			return lists[i].ID > lists[j].ID
		}
		return lists[i].CreatedAt.After(lists[j].CreatedAt)
	})
	return lists, nil
}

func (repo *listRepository) CountListsByOwner(ctx context.Context, ownerID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var cnt int
	for _, l := range repo.db.lists {
		if l.UserID == ownerID {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *listRepository) UpdateList(ctx context.Context, l list.List) (list.List, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lists[l.ID]; !ok {
		return list.List{}, list.ErrNotFound
	}
	repo.db.lists[l.ID] = &l
	return l, nil
}

func (repo *listRepository) DeleteListsByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.lists[id]; ok {
			delete(repo.db.lists, id)
			cnt++

			// cascade, as the schema does
			for tid, t := range repo.db.tasks {
				if t.ListID == id {
					delete(repo.db.tasks, tid)
				}
			}
		}
	}
	return cnt, nil
}
