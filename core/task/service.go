package task

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/list"
)

var (
	ErrNotFound    = errors.New("task not found")
	errListInvalid = errors.New("list not found")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		// GetOwnedTask resolves a task through its parent list and only
		// succeeds when the list belongs to ownerID.
		GetOwnedTask(ctx context.Context, ownerID, id string) (Task, error)
		// QueryOwnedTasks applies AND operation on available QueryFilter
		// fields over the owner's tasks and returns one page ordered by
		// creation time descending, plus the total match count.
		QueryOwnedTasks(ctx context.Context, ownerID string, filter *QueryFilter, page core.Pagination) ([]Task, int, error)
		// CountOwnedTasks returns the owner's total and completed task counts.
		CountOwnedTasks(ctx context.Context, ownerID string) (total, done int, err error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTasksByID(ctx context.Context, ids ...string) (int, error)
		// QueryDueTasks returns pending tasks with a due date in [from, to),
		// across all owners, with the List relation loaded.
		QueryDueTasks(ctx context.Context, from, to time.Time) ([]Task, error)
	}

	Service interface {
		Create(ctx context.Context, ownerID string, nt NewTask) (Task, error)
		Query(ctx context.Context, ownerID string, filter *QueryFilter, page core.Pagination) ([]Task, int, error)
		GetOwned(ctx context.Context, ownerID, id string) (Task, error)
		Update(ctx context.Context, ownerID, id string, ut UpdateTask) (Task, error)
		Delete(ctx context.Context, ownerID, id string) error
		Stats(ctx context.Context, ownerID string) (Stats, error)
		// DueOn returns every user's pending tasks due on the given day.
		DueOn(ctx context.Context, day time.Time) ([]Task, error)
	}

	service struct {
		repo     Repository
		listRepo list.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, listRepo list.Repository) Service {
	return &service{repo: repo, listRepo: listRepo}
}

// checkList verifies that listID references a list owned by ownerID. A
// missing or foreign list is the same field error; list ids of other users
// must not be probeable through task mutations.
func (svc *service) checkList(ctx context.Context, ownerID, listID string) error {
	l, err := svc.listRepo.GetList(ctx, listID)
	if err != nil && errors.Cause(err) != list.ErrNotFound {
		return err
	}
	if err != nil || l.UserID != ownerID {
		return core.NewValidationError(errListInvalid, core.FieldError{Field: "list_id", Error: errListInvalid.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ownerID string, nt NewTask) (Task, error) {
	if err := svc.checkList(ctx, ownerID, nt.ListID); err != nil {
		return Task{}, err
	}

	now := time.Now().UTC()
	t := Task{
		Title:       nt.Title,
		Description: nt.Description,
		DueDate:     nt.DueDate,
		Done:        nt.Done,
		ListID:      nt.ListID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateTask(ctx, t)
}

func (svc *service) Query(ctx context.Context, ownerID string, filter *QueryFilter, page core.Pagination) ([]Task, int, error) {
	if filter != nil {
		filter.Clean()
	}
	page.Clean()
	return svc.repo.QueryOwnedTasks(ctx, ownerID, filter, page)
}

func (svc *service) GetOwned(ctx context.Context, ownerID, id string) (Task, error) {
	return svc.repo.GetOwnedTask(ctx, ownerID, id)
}

func (svc *service) Update(ctx context.Context, ownerID, id string, ut UpdateTask) (Task, error) {
	t, err := svc.repo.GetOwnedTask(ctx, ownerID, id)
	if err != nil {
		return Task{}, err
	}
	if err := svc.checkList(ctx, ownerID, ut.ListID); err != nil {
		return Task{}, err
	}

	t.Title = ut.Title
	t.Description = ut.Description
	t.DueDate = ut.DueDate
	t.Done = ut.Done
	t.ListID = ut.ListID
	t.List = nil // relation may be stale after a move
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := svc.repo.GetOwnedTask(ctx, ownerID, id); err != nil {
		return err
	}
	_, err := svc.repo.DeleteTasksByID(ctx, id)
	return err
}

func (svc *service) Stats(ctx context.Context, ownerID string) (Stats, error) {
	lists, err := svc.listRepo.CountListsByOwner(ctx, ownerID)
	if err != nil {
		return Stats{}, err
	}
	total, done, err := svc.repo.CountOwnedTasks(ctx, ownerID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalLists:     lists,
		TotalTasks:     total,
		CompletedTasks: done,
		PendingTasks:   total - done,
	}, nil
}

func (svc *service) DueOn(ctx context.Context, day time.Time) ([]Task, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return svc.repo.QueryDueTasks(ctx, from, from.AddDate(0, 0, 1))
}
