package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/yash-1818/planemate/core/list"
	"github.com/yash-1818/planemate/core/task"
	"github.com/yash-1818/planemate/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	ctx := context.Background()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if role != "" {
		if r, err := repo.GetRoleByName(ctx, role); err == nil {
			usr.Role = user.RoleRef{Linked: &r}
		} else {
			usr.Role = user.RoleRef{Named: role}
		}
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(ctx, usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateList(
	t *testing.T,
	repo list.Repository,
	name, ownerID string,
	createdAt ...time.Time,
) list.List {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	l, err := repo.CreateList(context.Background(), list.List{
		Name:      name,
		UserID:    ownerID,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateList() failed: %v", err)
	}
	return l
}

func CreateTask(
	t *testing.T,
	repo task.Repository,
	title, listID string,
	done bool,
	dueDate *time.Time,
	createdAt ...time.Time,
) task.Task {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	tsk, err := repo.CreateTask(context.Background(), task.Task{
		Title:     title,
		ListID:    listID,
		Done:      done,
		DueDate:   dueDate,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tsk
}
