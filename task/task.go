package task

import (
	"encoding/json"
	"time"
)

// Task represents a single tracked unit of work.
type Task struct {
	// ID identifies the task within its collection.
	ID int

	// Description is the free-form text of the task.
	Description string

	// Status is the current lifecycle stage.
	Status Status

	// CreatedAt is when the task was added.
	CreatedAt time.Time

	// UpdatedAt is when the description was last changed.
	UpdatedAt time.Time

	// DeletedAt is when the task was soft-deleted (nil if not deleted).
	DeletedAt *time.Time
}

// IsDeleted reports whether the task has been soft-deleted.
func (t Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// record is the persisted shape of a Task. Timestamps are epoch
// milliseconds, and deletedAt is always present (null when unset).
type record struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
	DeletedAt   *int64 `json:"deletedAt"`
}

// MarshalJSON encodes the task in its persisted form.
func (t Task) MarshalJSON() ([]byte, error) {
	r := record{
		ID:          t.ID,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt.UnixMilli(),
		UpdatedAt:   t.UpdatedAt.UnixMilli(),
	}
	if t.DeletedAt != nil {
		deletedAt := t.DeletedAt.UnixMilli()
		r.DeletedAt = &deletedAt
	}
	return json.Marshal(r)
}

// UnmarshalJSON decodes the task from its persisted form.
func (t *Task) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*t = Task{
		ID:          r.ID,
		Description: r.Description,
		Status:      r.Status,
		CreatedAt:   time.UnixMilli(r.CreatedAt),
		UpdatedAt:   time.UnixMilli(r.UpdatedAt),
	}
	if r.DeletedAt != nil {
		deletedAt := time.UnixMilli(*r.DeletedAt)
		t.DeletedAt = &deletedAt
	}
	return nil
}
