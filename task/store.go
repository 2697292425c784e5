package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/amonks/tasktracker/internal/blob"
	log "github.com/sirupsen/logrus"
)

// DefaultKey is the blob key used when StoreOptions.Key is empty.
const DefaultKey = "tasks.json"

// Store loads and saves the whole task collection as one blob.
//
// Store holds no state between calls and takes no locks: two callers that
// interleave Load and Save race, and the later Save wins.
type Store struct {
	blobs     blob.Store
	key       string
	onCorrupt CorruptPolicy
	logger    log.FieldLogger
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// Key is the blob key holding the collection. Defaults to DefaultKey.
	Key string

	// OnCorrupt decides what Load does with undecodable data.
	// Defaults to CorruptFail.
	OnCorrupt CorruptPolicy

	// Logger receives debug and warning entries. If nil, logs are discarded.
	Logger log.FieldLogger
}

// NewStore returns a Store reading and writing blobs through blobs.
func NewStore(blobs blob.Store, opts StoreOptions) (*Store, error) {
	if blobs == nil {
		return nil, fmt.Errorf("%w: blob store is nil", ErrInvalidArgument)
	}
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.OnCorrupt == "" {
		opts.OnCorrupt = CorruptFail
	}
	if !opts.OnCorrupt.IsValid() {
		return nil, fmt.Errorf("%w: unknown corrupt policy %q", ErrInvalidArgument, opts.OnCorrupt)
	}
	return &Store{
		blobs:     blobs,
		key:       opts.Key,
		onCorrupt: opts.OnCorrupt,
		logger:    loggerOrDiscard(opts.Logger),
	}, nil
}

// Key returns the blob key the store reads and writes.
func (s *Store) Key() string {
	return s.key
}

// Load reads the full collection.
//
// A missing blob is initialized to an empty collection, which is persisted
// before Load returns. Undecodable data returns ErrCorrupt unless the store
// was opened with CorruptReset.
func (s *Store) Load(ctx context.Context) ([]Task, error) {
	logger := s.logger.WithField("key", s.key)

	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		logger.Info("task store not found, initializing empty collection")
		return s.reset(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		if s.onCorrupt == CorruptReset {
			logger.WithError(err).Warn("task store is corrupt, resetting to empty collection")
			return s.reset(ctx)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.key, err)
	}

	logger.WithField("count", len(tasks)).Debug("loaded tasks")
	return tasks, nil
}

// Save overwrites the stored collection with tasks.
func (s *Store) Save(ctx context.Context, tasks []Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrWrite, err)
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	s.logger.WithFields(log.Fields{"key": s.key, "count": len(tasks)}).Debug("saved tasks")
	return nil
}

func (s *Store) reset(ctx context.Context) ([]Task, error) {
	tasks := []Task{}
	if err := s.Save(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func encodeTasks(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	return json.Marshal(tasks)
}

func decodeTasks(data []byte) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}
	// A bare "null" decodes without error but is not a collection.
	if tasks == nil {
		return nil, fmt.Errorf("expected a JSON array")
	}
	for i := range tasks {
		if err := ValidateTask(&tasks[i]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return tasks, nil
}

func loggerOrDiscard(logger log.FieldLogger) log.FieldLogger {
	if logger != nil {
		return logger
	}
	discard := log.New()
	discard.SetOutput(io.Discard)
	return discard
}
