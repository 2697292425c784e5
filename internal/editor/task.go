package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	internalstrings "github.com/amonks/tasktracker/internal/strings"
	"github.com/amonks/tasktracker/task"
)

// TaskData represents the data used to render the edit template.
type TaskData struct {
	// IsUpdate is true when editing an existing task.
	IsUpdate bool
	// ID is the task id (only for updates).
	ID int
	// Status is the task status (only for updates).
	Status task.Status
	// Description is the current description.
	Description string
}

// DataFromTask creates TaskData from an existing task for editing.
func DataFromTask(t task.Task) TaskData {
	return TaskData{
		IsUpdate:    true,
		ID:          t.ID,
		Status:      t.Status,
		Description: t.Description,
	}
}

var taskTemplate = template.Must(template.New("task").Parse(`{{- if .IsUpdate -}}
# task {{ .ID }} ({{ .Status }})
{{ else -}}
# new task
{{ end -}}
# Write the description below the line. An empty description aborts.
---
{{ .Description }}
`))

// RenderTemplate renders the task data for editing.
func RenderTemplate(data TaskData) (string, error) {
	var buf bytes.Buffer
	if err := taskTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParseDescription extracts the description from edited template content.
// Everything after the first "---" line is the description; without a
// separator the whole content is used.
func ParseDescription(content string) (string, error) {
	_, body := splitHeader(internalstrings.NormalizeNewlines(content))
	description := strings.TrimSpace(body)
	if description == "" {
		return "", task.ErrEmptyDescription
	}
	return description, nil
}

func splitHeader(content string) (string, string) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return "", content
}

// EditDescription opens the editor with the rendered template and returns
// the description written by the user.
func EditDescription(data TaskData) (string, error) {
	content, err := RenderTemplate(data)
	if err != nil {
		return "", err
	}

	tmpfile, err := os.CreateTemp("", "task-*.md")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return "", err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("read edited file: %w", err)
	}
	return ParseDescription(string(edited))
}
