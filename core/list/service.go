package list

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("list not found")

type (
	Repository interface {
		CreateList(ctx context.Context, l List) (List, error)
		GetList(ctx context.Context, id string) (List, error)
		// QueryListsByOwner returns the owner's lists ordered by creation time descending.
		QueryListsByOwner(ctx context.Context, ownerID string) ([]List, error)
		CountListsByOwner(ctx context.Context, ownerID string) (int, error)
		UpdateList(ctx context.Context, l List) (List, error)
		DeleteListsByID(ctx context.Context, ids ...string) (int, error)
	}

	// Service exposes owner-scoped list CRUD: lists belonging to another
	// user are indistinguishable from missing ones.
	Service interface {
		Create(ctx context.Context, ownerID string, nl NewList) (List, error)
		QueryOwned(ctx context.Context, ownerID string) ([]List, error)
		GetOwned(ctx context.Context, ownerID, id string) (List, error)
		Update(ctx context.Context, ownerID, id string, ul UpdateList) (List, error)
		Delete(ctx context.Context, ownerID, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ownerID string, nl NewList) (List, error) {
	now := time.Now().UTC()
	l := List{
		Name:      nl.Name,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateList(ctx, l)
}

func (svc *service) QueryOwned(ctx context.Context, ownerID string) ([]List, error) {
	return svc.repo.QueryListsByOwner(ctx, ownerID)
}

func (svc *service) GetOwned(ctx context.Context, ownerID, id string) (List, error) {
	l, err := svc.repo.GetList(ctx, id)
	if err != nil {
		return List{}, err
	}
	if l.UserID != ownerID {
		return List{}, ErrNotFound
	}
	return l, nil
}

func (svc *service) Update(ctx context.Context, ownerID, id string, ul UpdateList) (List, error) {
	l, err := svc.GetOwned(ctx, ownerID, id)
	if err != nil {
		return List{}, err
	}
	l.Name = ul.Name
	l.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateList(ctx, l)
}

func (svc *service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := svc.GetOwned(ctx, ownerID, id); err != nil {
		return err
	}
	_, err := svc.repo.DeleteListsByID(ctx, id)
	return err
}
