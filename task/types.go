// Package task implements a personal task tracker persisted as a single blob.
//
// The whole collection is read, modified, and written back on every
// operation; nothing is cached between calls. The public API mirrors the
// CLI commands:
//   - Add, Update, Remove, Delete for the task lifecycle
//   - MarkInProgress, MarkDone for status transitions
//   - List, ListByStatus, Show for querying
package task

import (
	"fmt"
	"math"

	"github.com/amonks/tasktracker/internal/validation"
)

// Status represents the lifecycle stage of a task.
type Status string

const (
	// StatusTodo indicates the task has not been started.
	StatusTodo Status = "TODO"

	// StatusInProgress indicates the task is being worked on.
	StatusInProgress Status = "IN_PROGRESS"

	// StatusDone indicates the task is finished.
	StatusDone Status = "DONE"
)

// ValidStatuses returns all valid status values.
func ValidStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Keyword returns the filter keyword that selects s.
func (s Status) Keyword() string {
	switch s {
	case StatusTodo:
		return "todo"
	case StatusInProgress:
		return "in-progress"
	case StatusDone:
		return "done"
	default:
		return ""
	}
}

// StatusKeywords returns the accepted filter keywords in display order.
func StatusKeywords() []string {
	statuses := ValidStatuses()
	keywords := make([]string, 0, len(statuses))
	for _, status := range statuses {
		keywords = append(keywords, status.Keyword())
	}
	return keywords
}

// ParseStatusKeyword maps a filter keyword ("todo", "in-progress", "done")
// to its Status. Only the exact lowercase keywords match.
func ParseStatusKeyword(keyword string) (Status, error) {
	switch keyword {
	case "todo":
		return StatusTodo, nil
	case "in-progress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	default:
		return "", validation.InvalidValueError(ErrInvalidArgument, "unrecognized status", keyword, StatusKeywords())
	}
}

// IDStrategy selects how Add assigns ids.
type IDStrategy string

const (
	// IDStrategyLength assigns the collection length before the append.
	// After a hard delete this can repeat an id that is still in use.
	IDStrategyLength IDStrategy = "length"

	// IDStrategyNext assigns one more than the highest id in the collection.
	IDStrategyNext IDStrategy = "next"
)

// IDStrategies returns all known id strategies.
func IDStrategies() []IDStrategy {
	return []IDStrategy{IDStrategyLength, IDStrategyNext}
}

// IsValid returns true if the strategy is a known value.
func (s IDStrategy) IsValid() bool {
	return s == IDStrategyLength || s == IDStrategyNext
}

func (s IDStrategy) nextID(tasks []Task) (int, error) {
	switch s {
	case IDStrategyNext:
		next := 0
		for _, t := range tasks {
			if t.ID == math.MaxInt {
				return 0, fmt.Errorf("%w: highest id is %d", ErrIDsExhausted, t.ID)
			}
			if t.ID >= next {
				next = t.ID + 1
			}
		}
		return next, nil
	default:
		return len(tasks), nil
	}
}

// CorruptPolicy selects what Load does with a blob that cannot be decoded.
type CorruptPolicy string

const (
	// CorruptFail returns ErrCorrupt and leaves the blob untouched.
	CorruptFail CorruptPolicy = "fail"

	// CorruptReset overwrites the blob with an empty collection.
	CorruptReset CorruptPolicy = "reset"
)

// CorruptPolicies returns all known corrupt-blob policies.
func CorruptPolicies() []CorruptPolicy {
	return []CorruptPolicy{CorruptFail, CorruptReset}
}

// IsValid returns true if the policy is a known value.
func (p CorruptPolicy) IsValid() bool {
	return p == CorruptFail || p == CorruptReset
}
