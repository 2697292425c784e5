package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/amonks/tasktracker/internal/markdown"
	"github.com/amonks/tasktracker/internal/ui"
	"github.com/amonks/tasktracker/task"
)

var now = time.Now

const detailWidth = 80

// formatTaskTable renders tasks as an aligned table. Soft-deleted tasks are
// listed with a "(deleted)" marker.
func formatTaskTable(tasks []task.Task, now time.Time) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	builder := ui.NewTableBuilder([]string{"ID", "STATUS", "AGE", "DESCRIPTION"}, len(tasks))
	for _, t := range tasks {
		description := ui.TruncateTableCell(t.Description)
		if t.IsDeleted() {
			description = ui.Deleted(description) + " (deleted)"
		}
		builder.AddRow([]string{
			strconv.Itoa(t.ID),
			ui.StatusLabel(t.Status),
			ui.FormatTimeAgo(t.CreatedAt, now),
			description,
		})
	}
	return builder.String()
}

// formatTaskDetail renders a single task with its description as markdown.
func formatTaskDetail(t task.Task, now time.Time) string {
	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(ui.Label(label))
		b.WriteString(strings.Repeat(" ", 10-len(label)))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	field("ID:", strconv.Itoa(t.ID))
	field("Status:", ui.StatusLabel(t.Status))
	field("Created:", ui.FormatTimestamp(&t.CreatedAt)+" ("+ui.FormatTimeAgo(t.CreatedAt, now)+")")
	field("Updated:", ui.FormatTimestamp(&t.UpdatedAt))
	field("Deleted:", ui.FormatTimestamp(t.DeletedAt))

	if rendered := markdown.Render(detailWidth, 2, t.Description); rendered != "" {
		b.WriteByte('\n')
		b.WriteString(rendered)
		b.WriteByte('\n')
	}
	return b.String()
}
