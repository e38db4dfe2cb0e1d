package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/list"
	"github.com/yash-1818/planemate/core/task"
	"github.com/yash-1818/planemate/core/user"
	inmemdb "github.com/yash-1818/planemate/storage/database/inmem"
	testutil "github.com/yash-1818/planemate/tests"
)

type fixture struct {
	svc      task.Service
	usrRepo  user.Repository
	listRepo list.Repository
	taskRepo task.Repository
	owner    user.User
	other    user.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	listRepo := inmemdb.NewListRepository(db)
	taskRepo := inmemdb.NewTaskRepository(db)

	return &fixture{
		svc:      task.NewService(taskRepo, listRepo),
		usrRepo:  usrRepo,
		listRepo: listRepo,
		taskRepo: taskRepo,
		owner:    testutil.CreateUser(t, usrRepo, "Santi", "santi@test.id", "", user.RoleStudent),
		other:    testutil.CreateUser(t, usrRepo, "Pak Budi", "budi@test.id", "", user.RoleTeacher),
	}
}

func fieldMap(t *testing.T, err error) map[string]string {
	t.Helper()
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("expected *core.ValidationError, got %T: %v", err, err)
	}
	flds := make(map[string]string, len(vErr.Fields))
	for _, fld := range vErr.Fields {
		flds[fld.Field] = fld.Error
	}
	return flds
}

func Test_service_Create(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	mine := testutil.CreateList(t, f.listRepo, "Chores", f.owner.ID)
	foreign := testutil.CreateList(t, f.listRepo, "Foreign", f.other.ID)

	t.Run("foreign list id is a field error", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.owner.ID, task.NewTask{Title: "Sneaky", ListID: foreign.ID})
		assert.Contains(t, fieldMap(t, err), "list_id")
	})

	t.Run("missing list id is the same field error", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.owner.ID, task.NewTask{Title: "Nowhere", ListID: "deadbeef"})
		assert.Contains(t, fieldMap(t, err), "list_id")
	})

	t.Run("ok", func(t *testing.T) {
		tsk, err := f.svc.Create(ctx, f.owner.ID, task.NewTask{Title: "Buy milk", ListID: mine.ID})
		assert.NoError(t, err)
		assert.False(t, tsk.Done)
		assert.Equal(t, mine.ID, tsk.ListID)
		assert.False(t, tsk.CreatedAt.IsZero())
	})
}

func Test_service_Query(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	mine := testutil.CreateList(t, f.listRepo, "Chores", f.owner.ID)
	foreign := testutil.CreateList(t, f.listRepo, "Foreign", f.other.ID)

	testutil.CreateTask(t, f.taskRepo, "Buy milk", mine.ID, false, nil)
	testutil.CreateTask(t, f.taskRepo, "Submit report", mine.ID, true, nil)
	testutil.CreateTask(t, f.taskRepo, "Secret errand", foreign.ID, false, nil)

	titles := func(tasks []task.Task) []string {
		out := make([]string, 0, len(tasks))
		for _, tsk := range tasks {
			out = append(out, tsk.Title)
		}
		return out
	}
	query := func(t *testing.T, filter *task.QueryFilter) []task.Task {
		t.Helper()
		tasks, _, err := f.svc.Query(ctx, f.owner.ID, filter, core.Pagination{})
		if err != nil {
			t.Fatalf("Query(): %v", err)
		}
		return tasks
	}

	t.Run("scoped to the owner", func(t *testing.T) {
		tasks := query(t, nil)
		assert.ElementsMatch(t, []string{"Buy milk", "Submit report"}, titles(tasks))
		for _, tsk := range tasks {
			if assert.NotNil(t, tsk.List) {
				assert.Equal(t, f.owner.ID, tsk.List.UserID)
			}
		}
	})

	t.Run("search=report, filter=all", func(t *testing.T) {
		tasks := query(t, &task.QueryFilter{Search: "report", Filter: task.FilterAll})
		assert.Equal(t, []string{"Submit report"}, titles(tasks))
	})

	t.Run("search matches description too", func(t *testing.T) {
		due := time.Now().UTC()
		tsk := testutil.CreateTask(t, f.taskRepo, "Misc", mine.ID, false, &due)
		tsk.Description = "remember the yogurt"
		if _, err := f.taskRepo.UpdateTask(ctx, tsk); err != nil {
			t.Fatalf("UpdateTask(): %v", err)
		}

		tasks := query(t, &task.QueryFilter{Search: "YOGURT"})
		assert.Equal(t, []string{"Misc"}, titles(tasks))

		if _, err := f.taskRepo.DeleteTasksByID(ctx, tsk.ID); err != nil {
			t.Fatalf("DeleteTasksByID(): %v", err)
		}
	})

	t.Run("pending and completed partition all", func(t *testing.T) {
		all := query(t, nil)
		pending := query(t, &task.QueryFilter{Filter: task.FilterPending})
		completed := query(t, &task.QueryFilter{Filter: task.FilterCompleted})

		assert.Equal(t, []string{"Buy milk"}, titles(pending))
		assert.Equal(t, []string{"Submit report"}, titles(completed))
		assert.Len(t, all, len(pending)+len(completed))
	})
}

func Test_service_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	mine := testutil.CreateList(t, f.listRepo, "Chores", f.owner.ID)
	foreign := testutil.CreateList(t, f.listRepo, "Foreign", f.other.ID)
	tsk := testutil.CreateTask(t, f.taskRepo, "Buy milk", mine.ID, false, nil)
	theirs := testutil.CreateTask(t, f.taskRepo, "Secret errand", foreign.ID, false, nil)

	t.Run("another user's task is not found", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.owner.ID, theirs.ID, task.UpdateTask{Title: "Hijacked", ListID: mine.ID})
		assert.Equal(t, task.ErrNotFound, err)

		err = f.svc.Delete(ctx, f.owner.ID, theirs.ID)
		assert.Equal(t, task.ErrNotFound, err)
	})

	t.Run("moving to a foreign list is a field error", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.owner.ID, tsk.ID, task.UpdateTask{Title: "Buy milk", ListID: foreign.ID})
		assert.Contains(t, fieldMap(t, err), "list_id")
	})

	t.Run("ok", func(t *testing.T) {
		got, err := f.svc.Update(ctx, f.owner.ID, tsk.ID, task.UpdateTask{Title: "Buy oat milk", ListID: mine.ID, Done: true})
		assert.NoError(t, err)
		assert.Equal(t, "Buy oat milk", got.Title)
		assert.True(t, got.Done)

		assert.NoError(t, f.svc.Delete(ctx, f.owner.ID, tsk.ID))
		_, err = f.svc.GetOwned(ctx, f.owner.ID, tsk.ID)
		assert.Equal(t, task.ErrNotFound, err)
	})
}

func Test_service_Stats(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	chores := testutil.CreateList(t, f.listRepo, "Chores", f.owner.ID)
	work := testutil.CreateList(t, f.listRepo, "Work", f.owner.ID)
	foreign := testutil.CreateList(t, f.listRepo, "Foreign", f.other.ID)

	testutil.CreateTask(t, f.taskRepo, "Buy milk", chores.ID, false, nil)
	testutil.CreateTask(t, f.taskRepo, "Submit report", work.ID, true, nil)
	testutil.CreateTask(t, f.taskRepo, "Secret errand", foreign.ID, true, nil)

	stats, err := f.svc.Stats(ctx, f.owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, task.Stats{TotalLists: 2, TotalTasks: 2, CompletedTasks: 1, PendingTasks: 1}, stats)

	// recomputed on every call
	testutil.CreateTask(t, f.taskRepo, "Walk dog", chores.ID, false, nil)
	stats, err = f.svc.Stats(ctx, f.owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, 2, stats.PendingTasks)
}

func Test_service_DueOn(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	mine := testutil.CreateList(t, f.listRepo, "Chores", f.owner.ID)
	foreign := testutil.CreateList(t, f.listRepo, "Foreign", f.other.ID)

	today := time.Now().UTC()
	tomorrow := today.AddDate(0, 0, 1)

	testutil.CreateTask(t, f.taskRepo, "Due today", mine.ID, false, &today)
	testutil.CreateTask(t, f.taskRepo, "Done today", mine.ID, true, &today)
	testutil.CreateTask(t, f.taskRepo, "Due tomorrow", mine.ID, false, &tomorrow)
	testutil.CreateTask(t, f.taskRepo, "No due date", mine.ID, false, nil)
	testutil.CreateTask(t, f.taskRepo, "Other's due today", foreign.ID, false, &today)

	tasks, err := f.svc.DueOn(ctx, today)
	assert.NoError(t, err)

	got := make([]string, 0, len(tasks))
	for _, tsk := range tasks {
		got = append(got, tsk.Title)
		// relation loaded so the reminder can group by owner
		assert.NotNil(t, tsk.List)
	}
	assert.ElementsMatch(t, []string{"Due today", "Other's due today"}, got)
}
