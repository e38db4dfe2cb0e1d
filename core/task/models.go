package task

import (
	"time"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/list"
)

// Completion filter values accepted by the task listing.
const (
	FilterAll       = "all"
	FilterCompleted = "completed"
	FilterPending   = "pending"
)

// Task is a unit of work belonging to one List and, transitively, to that
// List's owner. There is no owner column of its own: ownership always
// follows the parent list.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date"`
	Done        bool       `json:"done"`
	ListID      string     `json:"list_id"`
	List        *list.List `json:"list,omitempty"` // loaded relation, for display
	CreatedAt   time.Time  `json:"created_at"`     // UTC
	UpdatedAt   time.Time  `json:"updated_at"`     // UTC
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"omitempty,max=255"`
	DueDate     *time.Time `json:"due_date"`
	ListID      string     `json:"list_id" validate:"required"`
	Done        bool       `json:"done"`
}

func (nt *NewTask) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return core.Validate.Struct(nt)
}

// UpdateTask defines what information may be provided to modify an existing Task.
type UpdateTask struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"omitempty,max=255"`
	DueDate     *time.Time `json:"due_date"`
	ListID      string     `json:"list_id" validate:"required"`
	Done        bool       `json:"done"`
}

func (ut *UpdateTask) Validate() error {
	ut.Title = core.CleanString(ut.Title)
	ut.Description = core.CleanString(ut.Description)
	return core.Validate.Struct(ut)
}

// QueryFilter narrows the task listing.
// Search does a case-insensitive match on Task.Title or Task.Description;
// Filter is one of all|completed|pending, anything else meaning all.
type QueryFilter struct {
	Search string `json:"search" query:"search"`
	Filter string `json:"filter" query:"filter"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Filter = core.CleanString(qf.Filter, true /* lower */)
	switch qf.Filter {
	case FilterCompleted, FilterPending:
	default:
		qf.Filter = FilterAll
	}
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && (qf.Filter == "" || qf.Filter == FilterAll)
}

// Stats is the per-user dashboard aggregate. Recomputed on every view.
type Stats struct {
	TotalLists     int `json:"total_lists"`
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
}
