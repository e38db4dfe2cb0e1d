package exportsvc

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/yash-1818/planemate/core"
	"github.com/yash-1818/planemate/core/task"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Exporter renders a user's full task collection in a portable format.
type Exporter struct {
	taskSvc task.Service
}

func NewExporter(taskSvc task.Service) *Exporter {
	return &Exporter{taskSvc: taskSvc}
}

// Export returns the rendered document and its media type.
func (e *Exporter) Export(ctx context.Context, ownerID, format string) ([]byte, string, error) {
	tasks, err := e.allTasks(ctx, ownerID)
	if err != nil {
		return nil, "", err
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, "", errors.Wrap(err, "marshalling tasks")
		}
		return data, "application/json", nil
	case FormatCSV:
		return e.renderCSV(tasks)
	case FormatPDF:
		return e.renderPDF(tasks)
	default:
		return nil, "", ErrUnknownFormat
	}
}

func (e *Exporter) allTasks(ctx context.Context, ownerID string) ([]task.Task, error) {
	var all []task.Task
	page := core.Pagination{Page: 1}
	for {
		tasks, total, err := e.taskSvc.Query(ctx, ownerID, nil, page)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
		if len(all) >= total || len(tasks) == 0 {
			return all, nil
		}
		page.Page++
	}
}

func (e *Exporter) renderCSV(tasks []task.Task) ([]byte, string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"title", "description", "list", "due_date", "done", "created_at"})
	for _, t := range tasks {
		_ = w.Write([]string{t.Title, t.Description, listName(t), dueDate(t), fmt.Sprint(t.Done), t.CreatedAt.Format("2006-01-02 15:04")})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", errors.Wrap(err, "writing csv")
	}
	return buf.Bytes(), "text/csv", nil
}

func (e *Exporter) renderPDF(tasks []task.Task) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, core.Conf.AppName+" Tasks")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)
	for _, t := range tasks {
		status := "pending"
		if t.Done {
			status = "done"
		}
		line := fmt.Sprintf("[%s] %s (%s)", status, t.Title, listName(t))
		if due := dueDate(t); due != "" {
			line += " due " + due
		}
		pdf.MultiCell(0, 6, line, "0", "L", false)
		if t.Description != "" {
			pdf.MultiCell(0, 5, "    "+t.Description, "0", "L", false)
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", errors.Wrap(err, "rendering pdf")
	}
	return buf.Bytes(), "application/pdf", nil
}

func listName(t task.Task) string {
	if t.List != nil {
		return t.List.Name
	}
	return ""
}

func dueDate(t task.Task) string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format("2006-01-02")
}
