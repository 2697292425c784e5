package task

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestAddAssignsLengthAsID(t *testing.T) {
	ts := newTestService(t, IDStrategyLength)
	ctx := context.Background()

	for i, description := range []string{"one", "two", "three"} {
		before := len(mustList(t, ts.Service))

		created, err := ts.Add(ctx, description)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if created.ID != before {
			t.Fatalf("add %d: expected id %d, got %d", i, before, created.ID)
		}

		after := mustList(t, ts.Service)
		if len(after) != before+1 {
			t.Fatalf("expected length %d, got %d", before+1, len(after))
		}
	}
}

func TestAddInitialFields(t *testing.T) {
	ts := newTestService(t, "")

	created, err := ts.Add(context.Background(), "  buy milk \n")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if created.Description != "buy milk" {
		t.Fatalf("expected trimmed description, got %q", created.Description)
	}
	if created.Status != StatusTodo {
		t.Fatalf("expected status TODO, got %q", created.Status)
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt, got %v / %v", created.CreatedAt, created.UpdatedAt)
	}
	if created.DeletedAt != nil {
		t.Fatalf("expected no deletedAt, got %v", created.DeletedAt)
	}

	stored, ok := findTask(mustList(t, ts.Service), created.ID)
	if !ok || !reflect.DeepEqual(stored, created) {
		t.Fatalf("stored task differs from returned task\nreturned: %#v\n  stored: %#v", created, stored)
	}
}

func TestAddRejectsEmptyDescription(t *testing.T) {
	ts := newTestService(t, "")

	for _, description := range []string{"", "   ", "\n\t"} {
		_, err := ts.Add(context.Background(), description)
		if !errors.Is(err, ErrEmptyDescription) || !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("add %q: expected ErrEmptyDescription, got %v", description, err)
		}
	}
	if ts.blobs.puts != 0 {
		t.Fatalf("expected no writes for invalid input, got %d", ts.blobs.puts)
	}
}

func TestAddWriteError(t *testing.T) {
	ts := newTestService(t, "")
	addTasks(t, ts.Service, "seed")
	ts.blobs.putErr = errUnavailable

	if _, err := ts.Add(context.Background(), "new"); !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
}

func TestAddLengthStrategyRepeatsIDAfterRemove(t *testing.T) {
	ts := newTestService(t, IDStrategyLength)
	ctx := context.Background()
	addTasks(t, ts.Service, "a", "b", "c")

	if err := ts.Remove(ctx, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	created, err := ts.Add(ctx, "d")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if created.ID != 2 {
		t.Fatalf("expected length strategy to assign 2, got %d", created.ID)
	}
	if got := taskIDs(mustList(t, ts.Service)); !reflect.DeepEqual(got, []int{1, 2, 2}) {
		t.Fatalf("expected duplicated id after remove, got %v", got)
	}
}

func TestAddNextStrategyRejectsMaxID(t *testing.T) {
	ts := newTestService(t, IDStrategyNext)
	ctx := context.Background()

	seed := fmt.Sprintf(`[{"id":%d,"description":"last","status":"TODO","createdAt":1700000000000,"updatedAt":1700000000000,"deletedAt":null}]`, math.MaxInt)
	if err := ts.blobs.MemoryStore.Put(ctx, ts.store.Key(), []byte(seed)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := ts.Add(ctx, "one more"); !errors.Is(err, ErrIDsExhausted) {
		t.Fatalf("expected ErrIDsExhausted, got %v", err)
	}
	if ts.blobs.puts != 0 {
		t.Fatalf("expected no write, got %d", ts.blobs.puts)
	}
	if got := ts.raw(t); got != seed {
		t.Fatalf("expected stored data unchanged, got %s", got)
	}
}

func TestAddNextStrategyAvoidsDuplicates(t *testing.T) {
	ts := newTestService(t, IDStrategyNext)
	ctx := context.Background()
	addTasks(t, ts.Service, "a", "b", "c")

	if err := ts.Remove(ctx, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	created, err := ts.Add(ctx, "d")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if created.ID != 3 {
		t.Fatalf("expected next strategy to assign 3, got %d", created.ID)
	}
	if got := taskIDs(mustList(t, ts.Service)); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestUpdateChangesDescription(t *testing.T) {
	ts := newTestService(t, "")
	created := addTasks(t, ts.Service, "draft", "other")

	if err := ts.Update(context.Background(), created[0].ID, "final"); err != nil {
		t.Fatalf("update: %v", err)
	}

	tasks := mustList(t, ts.Service)
	got, ok := findTask(tasks, created[0].ID)
	if !ok {
		t.Fatalf("task %d missing", created[0].ID)
	}
	if got.Description != "final" {
		t.Fatalf("expected description %q, got %q", "final", got.Description)
	}
	if got.UpdatedAt.Before(got.CreatedAt) || !got.UpdatedAt.After(created[0].UpdatedAt) {
		t.Fatalf("expected refreshed updatedAt, created %v updated %v", got.CreatedAt, got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(created[0].CreatedAt) {
		t.Fatalf("createdAt must not change: %v -> %v", created[0].CreatedAt, got.CreatedAt)
	}
	if other, _ := findTask(tasks, created[1].ID); other.Description != "other" {
		t.Fatalf("expected other task untouched, got %q", other.Description)
	}
}

func TestUpdateOnlyFirstMatch(t *testing.T) {
	ts := newTestService(t, IDStrategyLength)
	ctx := context.Background()
	addTasks(t, ts.Service, "a", "b", "c")
	if err := ts.Remove(ctx, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	addTasks(t, ts.Service, "d") // duplicates id 2

	if err := ts.Update(ctx, 2, "changed"); err != nil {
		t.Fatalf("update: %v", err)
	}

	tasks := mustList(t, ts.Service)
	if tasks[1].Description != "changed" || tasks[2].Description != "d" {
		t.Fatalf("expected only the first id 2 to change, got %q and %q", tasks[1].Description, tasks[2].Description)
	}
}

func TestUpdateMissingIDLeavesBlobUnchanged(t *testing.T) {
	ts := newTestService(t, "")
	addTasks(t, ts.Service, "a", "b")
	before := ts.raw(t)
	putsBefore := ts.blobs.puts

	if err := ts.Update(context.Background(), 42, "nope"); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}

	if after := ts.raw(t); after != before {
		t.Fatalf("expected blob unchanged\nbefore: %s\n after: %s", before, after)
	}
	if ts.blobs.puts != putsBefore+1 {
		t.Fatalf("expected the unchanged collection to be written back once, got %d writes", ts.blobs.puts-putsBefore)
	}
	assertWarned(t, ts, "update")
}

func TestUpdateRejectsEmptyDescription(t *testing.T) {
	ts := newTestService(t, "")
	created := addTasks(t, ts.Service, "a")

	if err := ts.Update(context.Background(), created[0].ID, " "); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
}

func TestRemoveExisting(t *testing.T) {
	ts := newTestService(t, "")
	addTasks(t, ts.Service, "a", "b", "c")

	if err := ts.Remove(context.Background(), 1); err != nil {
		t.Fatalf("remove: %v", err)
	}

	tasks := mustList(t, ts.Service)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if _, ok := findTask(tasks, 1); ok {
		t.Fatal("expected id 1 to be gone")
	}
	if got := taskIDs(tasks); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Fatalf("expected gap after hard delete, got %v", got)
	}
}

func TestRemoveMissingIDIsNoOp(t *testing.T) {
	ts := newTestService(t, "")
	addTasks(t, ts.Service, "a", "b", "c")
	before := ts.raw(t)

	for _, id := range []int{99, -1} {
		if err := ts.Remove(context.Background(), id); err != nil {
			t.Fatalf("remove %d: expected silent no-op, got %v", id, err)
		}
	}

	if after := ts.raw(t); after != before {
		t.Fatalf("collection must not be corrupted\nbefore: %s\n after: %s", before, after)
	}
	if got := taskIDs(mustList(t, ts.Service)); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Fatalf("unexpected ids after no-op remove: %v", got)
	}
	assertWarned(t, ts, "remove")
}

func TestDeleteIsSoft(t *testing.T) {
	ts := newTestService(t, "")
	ctx := context.Background()
	addTasks(t, ts.Service, "a", "b")
	if err := ts.MarkInProgress(ctx, 0); err != nil {
		t.Fatalf("mark in progress: %v", err)
	}

	if err := ts.Delete(ctx, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tasks := mustList(t, ts.Service)
	if len(tasks) != 2 {
		t.Fatalf("expected soft-deleted task to stay listed, got %d tasks", len(tasks))
	}
	got, _ := findTask(tasks, 0)
	if !got.IsDeleted() {
		t.Fatal("expected deletedAt to be set")
	}
	if got.Status != StatusInProgress {
		t.Fatalf("expected status untouched, got %q", got.Status)
	}
}

func TestDeleteKeepsFirstDeletedAt(t *testing.T) {
	ts := newTestService(t, "")
	ctx := context.Background()
	addTasks(t, ts.Service, "a")

	if err := ts.Delete(ctx, 0); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	first, _ := findTask(mustList(t, ts.Service), 0)

	if err := ts.Delete(ctx, 0); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	second, _ := findTask(mustList(t, ts.Service), 0)

	if !first.DeletedAt.Equal(*second.DeletedAt) {
		t.Fatalf("deletedAt changed from %v to %v", first.DeletedAt, second.DeletedAt)
	}
}

func TestDeletedTaskCanStillBeMutated(t *testing.T) {
	ts := newTestService(t, "")
	ctx := context.Background()
	addTasks(t, ts.Service, "a")

	if err := ts.Delete(ctx, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ts.MarkDone(ctx, 0); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	if err := ts.Update(ctx, 0, "edited after delete"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := findTask(mustList(t, ts.Service), 0)
	if got.Status != StatusDone || got.Description != "edited after delete" || !got.IsDeleted() {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestStatusTransitions(t *testing.T) {
	ts := newTestService(t, "")
	ctx := context.Background()
	addTasks(t, ts.Service, "a")

	steps := []struct {
		name string
		fn   func(context.Context, int) error
		want Status
	}{
		{name: "in progress", fn: ts.MarkInProgress, want: StatusInProgress},
		{name: "done", fn: ts.MarkDone, want: StatusDone},
		{name: "back to in progress", fn: ts.MarkInProgress, want: StatusInProgress},
		{name: "done again", fn: ts.MarkDone, want: StatusDone},
	}

	for _, step := range steps {
		if err := step.fn(ctx, 0); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		got, _ := findTask(mustList(t, ts.Service), 0)
		if got.Status != step.want {
			t.Fatalf("%s: expected %q, got %q", step.name, step.want, got.Status)
		}
	}
}

func TestStatusTransitionDoesNotTouchUpdatedAt(t *testing.T) {
	ts := newTestService(t, "")
	created := addTasks(t, ts.Service, "a")

	if err := ts.MarkDone(context.Background(), 0); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	got, _ := findTask(mustList(t, ts.Service), 0)
	if !got.UpdatedAt.Equal(created[0].UpdatedAt) {
		t.Fatalf("expected updatedAt unchanged, got %v -> %v", created[0].UpdatedAt, got.UpdatedAt)
	}
}

func TestMarkMissingIDIsNoOp(t *testing.T) {
	ts := newTestService(t, "")
	addTasks(t, ts.Service, "a")
	before := ts.raw(t)

	if err := ts.MarkDone(context.Background(), 7); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	if err := ts.MarkInProgress(context.Background(), 7); err != nil {
		t.Fatalf("mark in progress: %v", err)
	}
	if err := ts.Delete(context.Background(), 7); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if after := ts.raw(t); after != before {
		t.Fatalf("expected blob unchanged\nbefore: %s\n after: %s", before, after)
	}
}

func TestListIncludesDeleted(t *testing.T) {
	ts := newTestService(t, "")
	addTasks(t, ts.Service, "a", "b")
	if err := ts.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tasks := mustList(t, ts.Service)
	if got := taskIDs(tasks); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("expected all tasks, got %v", got)
	}
}

func TestListByStatus(t *testing.T) {
	ts := newTestService(t, "")
	ctx := context.Background()
	addTasks(t, ts.Service, "todo", "doing", "finished", "deleted todo")
	if err := ts.MarkInProgress(ctx, 1); err != nil {
		t.Fatalf("mark in progress: %v", err)
	}
	if err := ts.MarkDone(ctx, 2); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	if err := ts.Delete(ctx, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tests := []struct {
		keyword string
		want    []int
	}{
		{keyword: "todo", want: []int{0, 3}},
		{keyword: "in-progress", want: []int{1}},
		{keyword: "done", want: []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tasks, err := ts.ListByStatus(ctx, tt.keyword)
			if err != nil {
				t.Fatalf("list by status: %v", err)
			}
			if got := taskIDs(tasks); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestListByStatusDoneExcludedFromTodo(t *testing.T) {
	ts := newTestService(t, "")
	ctx := context.Background()
	created := addTasks(t, ts.Service, "a")

	if err := ts.MarkDone(ctx, created[0].ID); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	done, err := ts.ListByStatus(ctx, "done")
	if err != nil {
		t.Fatalf("list done: %v", err)
	}
	if _, ok := findTask(done, created[0].ID); !ok {
		t.Fatal("expected done listing to include the task")
	}

	todo, err := ts.ListByStatus(ctx, "todo")
	if err != nil {
		t.Fatalf("list todo: %v", err)
	}
	if _, ok := findTask(todo, created[0].ID); ok {
		t.Fatal("expected todo listing to exclude the task")
	}
}

func TestListByStatusEmptyResultIsNotNil(t *testing.T) {
	ts := newTestService(t, "")

	tasks, err := ts.ListByStatus(context.Background(), "done")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks == nil {
		t.Fatal("expected empty, non-nil result")
	}
}

func TestListByStatusInvalidKeyword(t *testing.T) {
	for _, keyword := range []string{"bogus", "DONE", " done ", "Todo", " in-progress ", "IN_PROGRESS", ""} {
		t.Run(keyword, func(t *testing.T) {
			ts := newTestService(t, "")

			tasks, err := ts.ListByStatus(context.Background(), keyword)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if tasks != nil {
				t.Fatalf("expected no tasks, got %v", tasks)
			}
			if ts.blobs.puts != 0 {
				t.Fatalf("expected validation before any I/O, got %d writes", ts.blobs.puts)
			}
		})
	}
}

func TestShow(t *testing.T) {
	ts := newTestService(t, "")
	created := addTasks(t, ts.Service, "a", "b")

	got, err := ts.Show(context.Background(), 1)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !reflect.DeepEqual(got, created[1]) {
		t.Fatalf("expected %#v, got %#v", created[1], got)
	}

	if _, err := ts.Show(context.Background(), 9); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestOperationsPropagateReadError(t *testing.T) {
	ts := newTestService(t, "")
	addTasks(t, ts.Service, "a")
	ts.blobs.getErr = errUnavailable
	ctx := context.Background()

	calls := map[string]func() error{
		"add":              func() error { _, err := ts.Add(ctx, "x"); return err },
		"update":           func() error { return ts.Update(ctx, 0, "x") },
		"remove":           func() error { return ts.Remove(ctx, 0) },
		"delete":           func() error { return ts.Delete(ctx, 0) },
		"mark-in-progress": func() error { return ts.MarkInProgress(ctx, 0) },
		"mark-done":        func() error { return ts.MarkDone(ctx, 0) },
		"list":             func() error { _, err := ts.List(ctx); return err },
		"list-by-status":   func() error { _, err := ts.ListByStatus(ctx, "todo"); return err },
		"show":             func() error { _, err := ts.Show(ctx, 0); return err },
	}

	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrRead) {
			t.Fatalf("%s: expected ErrRead, got %v", name, err)
		}
	}
}

func TestOperationsPropagateWriteError(t *testing.T) {
	ts := newTestService(t, "")
	addTasks(t, ts.Service, "a")
	ts.blobs.putErr = errUnavailable
	ctx := context.Background()

	calls := map[string]func() error{
		"update":           func() error { return ts.Update(ctx, 0, "x") },
		"remove":           func() error { return ts.Remove(ctx, 0) },
		"delete":           func() error { return ts.Delete(ctx, 0) },
		"mark-in-progress": func() error { return ts.MarkInProgress(ctx, 0) },
		"mark-done":        func() error { return ts.MarkDone(ctx, 0) },
	}

	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrWrite) {
			t.Fatalf("%s: expected ErrWrite, got %v", name, err)
		}
	}
}

func TestNewServiceRejectsUnknownStrategy(t *testing.T) {
	store := newTestStore(t, newStubBlobs(), StoreOptions{})
	if _, err := NewService(store, ServiceOptions{IDStrategy: "random"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := NewService(nil, ServiceOptions{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for nil store, got %v", err)
	}
}

func assertWarned(t *testing.T, ts testService, op string) {
	t.Helper()

	for _, entry := range ts.hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["op"] == op {
			return
		}
	}
	t.Fatalf("expected a warning for op %q", op)
}
