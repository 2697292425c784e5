package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Service implements task operations on top of a Store.
// Each call is an independent load, mutate, save round trip.
type Service struct {
	store      *Store
	idStrategy IDStrategy
	now        func() time.Time
	logger     log.FieldLogger
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// IDStrategy selects how Add assigns ids. Defaults to IDStrategyLength.
	IDStrategy IDStrategy

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Logger receives operation logs. If nil, logs are discarded.
	Logger log.FieldLogger
}

// NewService returns a Service backed by store.
func NewService(store *Store, opts ServiceOptions) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is nil", ErrInvalidArgument)
	}
	if opts.IDStrategy == "" {
		opts.IDStrategy = IDStrategyLength
	}
	if !opts.IDStrategy.IsValid() {
		return nil, fmt.Errorf("%w: unknown id strategy %q", ErrInvalidArgument, opts.IDStrategy)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:      store,
		idStrategy: opts.IDStrategy,
		now:        opts.Now,
		logger:     loggerOrDiscard(opts.Logger),
	}, nil
}

// timestamp returns the current time at the millisecond precision the
// store persists, so that a saved task loads back equal.
func (s *Service) timestamp() time.Time {
	return s.now().Truncate(time.Millisecond)
}

// Add appends a new TODO task with the given description.
func (s *Service) Add(ctx context.Context, description string) (Task, error) {
	description = strings.TrimSpace(description)
	if err := ValidateDescription(description); err != nil {
		return Task{}, err
	}

	tasks, err := s.store.Load(ctx)
	if err != nil {
		return Task{}, err
	}

	id, err := s.idStrategy.nextID(tasks)
	if err != nil {
		return Task{}, err
	}

	now := s.timestamp()
	created := Task{
		ID:          id,
		Description: description,
		Status:      StatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	tasks = append(tasks, created)

	if err := s.store.Save(ctx, tasks); err != nil {
		return Task{}, err
	}

	s.logger.WithFields(log.Fields{"op": "add", "id": created.ID}).Debug("added task")
	return created, nil
}

// Update replaces the description of the first task with the given id and
// refreshes its UpdatedAt. An unknown id is a no-op: the collection is
// written back unchanged.
func (s *Service) Update(ctx context.Context, id int, description string) error {
	description = strings.TrimSpace(description)
	if err := ValidateDescription(description); err != nil {
		return err
	}

	return s.mutate(ctx, "update", id, func(t *Task) {
		t.Description = description
		t.UpdatedAt = s.timestamp()
	})
}

// Delete soft-deletes the first task with the given id by setting
// DeletedAt. The status is left as is, and an existing DeletedAt is kept.
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.mutate(ctx, "delete", id, func(t *Task) {
		if t.DeletedAt == nil {
			now := s.timestamp()
			t.DeletedAt = &now
		}
	})
}

// MarkInProgress sets the status of the first task with the given id to
// IN_PROGRESS, whatever its current status.
func (s *Service) MarkInProgress(ctx context.Context, id int) error {
	return s.mutate(ctx, "mark-in-progress", id, func(t *Task) {
		t.Status = StatusInProgress
	})
}

// MarkDone sets the status of the first task with the given id to DONE,
// whatever its current status.
func (s *Service) MarkDone(ctx context.Context, id int) error {
	return s.mutate(ctx, "mark-done", id, func(t *Task) {
		t.Status = StatusDone
	})
}

// Remove hard-deletes the first task with the given id. An unknown id is a
// no-op: the collection is written back unchanged.
func (s *Service) Remove(ctx context.Context, id int) error {
	tasks, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	logger := s.logger.WithFields(log.Fields{"op": "remove", "id": id})
	if index := indexOf(tasks, id); index >= 0 {
		tasks = append(tasks[:index], tasks[index+1:]...)
		logger.Debug("removed task")
	} else {
		logger.Warn("task not found")
	}

	return s.store.Save(ctx, tasks)
}

// List returns every task, including soft-deleted ones.
func (s *Service) List(ctx context.Context) ([]Task, error) {
	return s.store.Load(ctx)
}

// ListByStatus returns the tasks whose status matches keyword, which must be
// one of "todo", "in-progress", or "done". Soft-deleted tasks are included.
func (s *Service) ListByStatus(ctx context.Context, keyword string) ([]Task, error) {
	status, err := ParseStatusKeyword(keyword)
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	return filterByStatus(tasks, status), nil
}

// Show returns the first task with the given id.
func (s *Service) Show(ctx context.Context, id int) (Task, error) {
	tasks, err := s.store.Load(ctx)
	if err != nil {
		return Task{}, err
	}

	index := indexOf(tasks, id)
	if index < 0 {
		return Task{}, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return tasks[index], nil
}

// mutate applies fn to the first task with the given id and saves the
// collection, whether or not a task matched.
func (s *Service) mutate(ctx context.Context, op string, id int, fn func(*Task)) error {
	tasks, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	logger := s.logger.WithFields(log.Fields{"op": op, "id": id})
	if index := indexOf(tasks, id); index >= 0 {
		fn(&tasks[index])
		logger.Debug("updated task")
	} else {
		logger.Warn("task not found")
	}

	return s.store.Save(ctx, tasks)
}

func indexOf(tasks []Task, id int) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func filterByStatus(tasks []Task, status Status) []Task {
	filtered := []Task{}
	for _, t := range tasks {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
