package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amonks/tasktracker/internal/blob"
	"github.com/sirupsen/logrus/hooks/test"
)

var errUnavailable = errors.New("medium unavailable")

// stubBlobs wraps a MemoryStore and can be told to fail reads or writes.
type stubBlobs struct {
	*blob.MemoryStore
	getErr error
	putErr error
	puts   int
}

func newStubBlobs() *stubBlobs {
	return &stubBlobs{MemoryStore: blob.NewMemoryStore()}
}

func (s *stubBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *stubBlobs) Put(ctx context.Context, key string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	return s.MemoryStore.Put(ctx, key, data)
}

// fakeClock returns a fixed time that advances by step on every call.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1700000000000), step: time.Second}
}

func (c *fakeClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func newTestStore(t testing.TB, blobs blob.Store, opts StoreOptions) *Store {
	t.Helper()

	store, err := NewStore(blobs, opts)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

type testService struct {
	*Service
	blobs *stubBlobs
	store *Store
	hook  *test.Hook
}

func newTestService(t testing.TB, strategy IDStrategy) testService {
	t.Helper()

	logger, hook := test.NewNullLogger()
	blobs := newStubBlobs()
	store := newTestStore(t, blobs, StoreOptions{Logger: logger})
	svc, err := NewService(store, ServiceOptions{
		IDStrategy: strategy,
		Now:        newFakeClock().Now,
		Logger:     logger,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return testService{Service: svc, blobs: blobs, store: store, hook: hook}
}

func (ts testService) raw(t testing.TB) string {
	t.Helper()

	data, err := ts.blobs.MemoryStore.Get(context.Background(), ts.store.Key())
	if err != nil {
		t.Fatalf("raw read: %v", err)
	}
	return string(data)
}

func addTasks(t testing.TB, svc *Service, descriptions ...string) []Task {
	t.Helper()

	created := make([]Task, 0, len(descriptions))
	for _, description := range descriptions {
		task, err := svc.Add(context.Background(), description)
		if err != nil {
			t.Fatalf("add %q: %v", description, err)
		}
		created = append(created, task)
	}
	return created
}

func mustList(t testing.TB, svc *Service) []Task {
	t.Helper()

	tasks, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return tasks
}

func findTask(tasks []Task, id int) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

func taskIDs(tasks []Task) []int {
	ids := make([]int, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
