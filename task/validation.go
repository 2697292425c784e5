package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned for malformed caller input, such as an
	// unknown status keyword.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyDescription is returned when a description is blank.
	ErrEmptyDescription = fmt.Errorf("%w: description cannot be empty", ErrInvalidArgument)

	// ErrRead is returned when the task blob exists but cannot be read.
	ErrRead = errors.New("read tasks")

	// ErrCorrupt is returned when the task blob cannot be decoded.
	ErrCorrupt = fmt.Errorf("%w: corrupt task data", ErrRead)

	// ErrWrite is returned when the task blob cannot be written.
	ErrWrite = errors.New("write tasks")

	// ErrIDsExhausted is returned by Add when no larger id can be assigned.
	ErrIDsExhausted = errors.New("task ids exhausted")

	// ErrTaskNotFound is returned by Show when no task has the given id.
	// Mutations never return it.
	ErrTaskNotFound = errors.New("task not found")
)

// ValidateDescription checks that a description is not blank.
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// ValidateTask checks a decoded task record.
func ValidateTask(t *Task) error {
	if t.ID < 0 {
		return fmt.Errorf("negative id %d", t.ID)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("task %d: unknown status %q", t.ID, t.Status)
	}
	return nil
}
