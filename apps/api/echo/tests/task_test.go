package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/list"
	"github.com/yash-1818/planemate/core/task"
	"github.com/yash-1818/planemate/core/user"
	testutil "github.com/yash-1818/planemate/tests"
)

func taskPath(search, filter string, page int) string {
	v := make(url.Values)
	if search != "" {
		v.Add("search", search)
	}
	if filter != "" {
		v.Add("filter", filter)
	}
	if page > 0 {
		v.Add("page", strconv.Itoa(page))
	}
	if q := v.Encode(); q != "" {
		return "/v1/tasks?" + q
	}
	return "/v1/tasks"
}

type taskPage struct {
	Tasks struct {
		Data        []task.Task `json:"data"`
		CurrentPage int         `json:"current_page"`
		LastPage    int         `json:"last_page"`
		PerPage     int         `json:"per_page"`
		Total       int         `json:"total"`
		From        int         `json:"from"`
		To          int         `json:"to"`
	} `json:"tasks"`
	Lists   []list.List       `json:"lists"`
	Filters map[string]string `json:"filters"`
}

func queryTasks(t *testing.T, token, path string) taskPage {
	t.Helper()
	req, rec := newAuthRequest(http.MethodGet, path, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s = %d: %s", path, rec.Code, rec.Body.String())
	}
	var page taskPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	return page
}

func titles(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, tsk := range tasks {
		out = append(out, tsk.Title)
	}
	return out
}

func Test_taskApi_query(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Santi", "santi@test.id", "", user.RoleStudent)
	other := testutil.CreateUser(t, usrRepo, "Pak Budi", "budi@test.id", "", user.RoleTeacher)

	chores := testutil.CreateList(t, listRepo, "Chores", owner.ID)
	work := testutil.CreateList(t, listRepo, "Work", owner.ID)
	foreign := testutil.CreateList(t, listRepo, "Foreign", other.ID)

	testutil.CreateTask(t, taskRepo, "Buy milk", chores.ID, false, nil)
	testutil.CreateTask(t, taskRepo, "Submit report", work.ID, true, nil)
	testutil.CreateTask(t, taskRepo, "Secret errand", foreign.ID, false, nil)

	ownerToken := getToken(t, owner)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/tasks")
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("only the owner's tasks are visible", func(t *testing.T) {
		page := queryTasks(t, ownerToken, taskPath("", "", 0))
		assert.Equal(t, 2, page.Tasks.Total)
		assert.ElementsMatch(t, []string{"Buy milk", "Submit report"}, titles(page.Tasks.Data))
		// lists picker only offers the owner's lists
		assert.Len(t, page.Lists, 2)
		for _, l := range page.Lists {
			assert.Equal(t, owner.ID, l.UserID)
		}
	})

	t.Run("search=report with filter=all", func(t *testing.T) {
		page := queryTasks(t, ownerToken, taskPath("report", "all", 0))
		assert.Equal(t, []string{"Submit report"}, titles(page.Tasks.Data))
	})

	t.Run("filter=pending", func(t *testing.T) {
		page := queryTasks(t, ownerToken, taskPath("", "pending", 0))
		assert.Equal(t, []string{"Buy milk"}, titles(page.Tasks.Data))
		assert.Equal(t, "pending", page.Filters["filter"])
	})

	t.Run("filter=completed", func(t *testing.T) {
		page := queryTasks(t, ownerToken, taskPath("", "completed", 0))
		assert.Equal(t, []string{"Submit report"}, titles(page.Tasks.Data))
	})

	t.Run("completed and pending partition all", func(t *testing.T) {
		all := queryTasks(t, ownerToken, taskPath("", "", 0))
		completed := queryTasks(t, ownerToken, taskPath("", "completed", 0))
		pending := queryTasks(t, ownerToken, taskPath("", "pending", 0))
		assert.Equal(t, all.Tasks.Total, completed.Tasks.Total+pending.Tasks.Total)
	})

	t.Run("unknown filter value means all", func(t *testing.T) {
		page := queryTasks(t, ownerToken, taskPath("", "bogus", 0))
		assert.Equal(t, 2, page.Tasks.Total)
		assert.Equal(t, "all", page.Filters["filter"])
	})

	t.Run("other user sees only their own", func(t *testing.T) {
		page := queryTasks(t, getToken(t, other), taskPath("", "", 0))
		assert.Equal(t, []string{"Secret errand"}, titles(page.Tasks.Data))
	})
}

func Test_taskApi_pagination(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Santi", "santi@test.id", "", user.RoleStudent)
	l := testutil.CreateList(t, listRepo, "Chores", owner.ID)

	now := time.Now().UTC()
	for i := 0; i < 25; i++ {
		testutil.CreateTask(t, taskRepo, "Task "+strconv.Itoa(i), l.ID, false, nil, now.Add(time.Duration(i)*time.Second))
	}
	token := getToken(t, owner)

	page1 := queryTasks(t, token, taskPath("", "", 0))
	assert.Equal(t, 1, page1.Tasks.CurrentPage)
	assert.Equal(t, 3, page1.Tasks.LastPage)
	assert.Equal(t, core.DefaultPageSize, page1.Tasks.PerPage)
	assert.Equal(t, 25, page1.Tasks.Total)
	assert.Equal(t, 1, page1.Tasks.From)
	assert.Equal(t, 10, page1.Tasks.To)
	assert.Len(t, page1.Tasks.Data, 10)
	// newest first
	assert.Equal(t, "Task 24", page1.Tasks.Data[0].Title)

	page3 := queryTasks(t, token, taskPath("", "", 3))
	assert.Equal(t, 3, page3.Tasks.CurrentPage)
	assert.Equal(t, 21, page3.Tasks.From)
	assert.Equal(t, 25, page3.Tasks.To)
	assert.Len(t, page3.Tasks.Data, 5)

	empty := queryTasks(t, token, taskPath("", "", 9))
	assert.Equal(t, 0, empty.Tasks.From)
	assert.Equal(t, 0, empty.Tasks.To)
	assert.Len(t, empty.Tasks.Data, 0)
}

func Test_taskApi_create(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Santi", "santi@test.id", "", user.RoleStudent)
	other := testutil.CreateUser(t, usrRepo, "Pak Budi", "budi@test.id", "", user.RoleTeacher)
	mine := testutil.CreateList(t, listRepo, "Chores", owner.ID)
	foreign := testutil.CreateList(t, listRepo, "Foreign", other.ID)
	token := getToken(t, owner)

	t.Run("foreign list is rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/tasks", token, marchallObj(t, echo.Map{
			"title":   "Sneaky",
			"list_id": foreign.ID,
		}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"list_id":"list not found"}`, rec.Body.String())
	})

	t.Run("missing list is the same error", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/tasks", token, marchallObj(t, echo.Map{
			"title":   "Nowhere",
			"list_id": "deadbeef",
		}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"list_id":"list not found"}`, rec.Body.String())
	})

	t.Run("ok", func(t *testing.T) {
		due := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
		req, rec := newAuthRequest(http.MethodPost, "/v1/tasks", token, marchallObj(t, echo.Map{
			"title":    "Buy milk",
			"due_date": due,
			"list_id":  mine.ID,
		}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Data  task.Task         `json:"data"`
			Flash map[string]string `json:"flash"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		assert.Equal(t, "Tugas berhasil ditambahkan.", resp.Flash["success"])
		assert.False(t, resp.Data.Done)
		if assert.NotNil(t, resp.Data.DueDate) {
			assert.True(t, resp.Data.DueDate.Equal(due))
		}
	})
}

func Test_taskApi_update(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Santi", "santi@test.id", "", user.RoleStudent)
	other := testutil.CreateUser(t, usrRepo, "Pak Budi", "budi@test.id", "", user.RoleTeacher)
	mine := testutil.CreateList(t, listRepo, "Chores", owner.ID)
	foreign := testutil.CreateList(t, listRepo, "Foreign", other.ID)
	tsk := testutil.CreateTask(t, taskRepo, "Buy milk", mine.ID, false, nil)
	theirs := testutil.CreateTask(t, taskRepo, "Secret errand", foreign.ID, false, nil)
	token := getToken(t, owner)

	t.Run("toggling done", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/tasks/"+tsk.ID, token, marchallObj(t, echo.Map{
			"title":   "Buy milk",
			"list_id": mine.ID,
			"done":    true,
		}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		got, err := taskRepo.GetOwnedTask(context.Background(), owner.ID, tsk.ID)
		if err != nil {
			t.Fatalf("GetOwnedTask(): %v", err)
		}
		assert.True(t, got.Done)
	})

	t.Run("cannot move a task to a foreign list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/tasks/"+tsk.ID, token, marchallObj(t, echo.Map{
			"title":   "Buy milk",
			"list_id": foreign.ID,
		}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"list_id":"list not found"}`, rec.Body.String())
	})

	t.Run("cannot touch another user's task", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/tasks/"+theirs.ID, token, marchallObj(t, echo.Map{
			"title":   "Hijacked",
			"list_id": mine.ID,
		}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		got, err := taskRepo.GetOwnedTask(context.Background(), other.ID, theirs.ID)
		if err != nil {
			t.Fatalf("GetOwnedTask(): %v", err)
		}
		assert.Equal(t, "Secret errand", got.Title)
	})
}

func Test_taskApi_destroy(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Santi", "santi@test.id", "", user.RoleStudent)
	other := testutil.CreateUser(t, usrRepo, "Pak Budi", "budi@test.id", "", user.RoleTeacher)
	mine := testutil.CreateList(t, listRepo, "Chores", owner.ID)
	foreign := testutil.CreateList(t, listRepo, "Foreign", other.ID)
	tsk := testutil.CreateTask(t, taskRepo, "Buy milk", mine.ID, false, nil)
	theirs := testutil.CreateTask(t, taskRepo, "Secret errand", foreign.ID, false, nil)
	token := getToken(t, owner)

	t.Run("cannot delete another user's task", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/tasks/"+theirs.ID, token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/tasks/"+tsk.ID, token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"flash":{"success":"Tugas Berhasil dihapus."}}`, rec.Body.String())

		_, err := taskRepo.GetOwnedTask(context.Background(), owner.ID, tsk.ID)
		assert.Equal(t, task.ErrNotFound, err)
	})
}

func Test_taskApi_export(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Santi", "santi@test.id", "", user.RoleStudent)
	l := testutil.CreateList(t, listRepo, "Chores", owner.ID)
	testutil.CreateTask(t, taskRepo, "Buy milk", l.ID, false, nil)
	token := getToken(t, owner)

	t.Run("csv", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tasks/export?format=csv", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
		assert.Contains(t, rec.Body.String(), "Buy milk")
	})

	t.Run("pdf is the default", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tasks/export", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/pdf")
	})

	t.Run("unknown format", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tasks/export?format=doc", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"format":"unknown export format"}`, rec.Body.String())
	})
}

func Test_dashboardApi(t *testing.T) {
	db.Reset()

	owner := testutil.CreateUser(t, usrRepo, "Santi", "santi@test.id", "", user.RoleStudent)
	other := testutil.CreateUser(t, usrRepo, "Pak Budi", "budi@test.id", "", user.RoleTeacher)
	chores := testutil.CreateList(t, listRepo, "Chores", owner.ID)
	work := testutil.CreateList(t, listRepo, "Work", owner.ID)
	foreign := testutil.CreateList(t, listRepo, "Foreign", other.ID)

	testutil.CreateTask(t, taskRepo, "Buy milk", chores.ID, false, nil)
	testutil.CreateTask(t, taskRepo, "Submit report", work.ID, true, nil)
	testutil.CreateTask(t, taskRepo, "Walk dog", chores.ID, false, nil)
	testutil.CreateTask(t, taskRepo, "Secret errand", foreign.ID, true, nil)

	tests := []httpTest{
		{name: "auth required", path: "/v1/dashboard", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "owner stats", path: "/v1/dashboard", token: getToken(t, owner), wantCode: http.StatusOK,
			wantData: marchallObj(t, echo.Map{"stats": task.Stats{TotalLists: 2, TotalTasks: 3, CompletedTasks: 1, PendingTasks: 2}}),
		},
		{
			name: "other user's stats are theirs alone", path: "/v1/dashboard", token: getToken(t, other), wantCode: http.StatusOK,
			wantData: marchallObj(t, echo.Map{"stats": task.Stats{TotalLists: 1, TotalTasks: 1, CompletedTasks: 1, PendingTasks: 0}}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
