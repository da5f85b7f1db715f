package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/guido-cesarano/farmtasks/pkg/tasks"
	"github.com/redis/go-redis/v9"
)

func setupTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	return s, NewStore(s.Addr())
}

func testTask(id string, status tasks.Status) tasks.Task {
	return tasks.Task{
		ID:       id,
		Title:    "task " + id,
		Category: tasks.CategoryFeeding,
		Priority: tasks.PriorityMedium,
		Status:   status,
		DueDate:  tasks.NewTimestamp(time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)),
	}
}

func TestPutAndLoadRoundTrip(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	in := []tasks.Task{
		testTask("a", tasks.StatusPending),
		testTask("b", tasks.StatusCompleted),
		testTask("c", tasks.StatusInProgress),
	}
	if err := store.Put(ctx, in); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(out))
	}
	// Order must survive the round trip: the projections preserve input
	// order, so the store has to as well.
	for i, want := range []string{"a", "b", "c"} {
		if out[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, out[i].ID)
		}
	}
	if !out[0].DueDate.Valid {
		t.Error("Due date lost validity in round trip")
	}
}

func TestPutReplacesPreviousSnapshot(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, []tasks.Task{testTask("old1", tasks.StatusPending), testTask("old2", tasks.StatusPending)}); err != nil {
		t.Fatalf("First Put failed: %v", err)
	}
	if err := store.Put(ctx, []tasks.Task{testTask("new", tasks.StatusPending)}); err != nil {
		t.Fatalf("Second Put failed: %v", err)
	}

	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(out) != 1 || out[0].ID != "new" {
		t.Errorf("Expected snapshot replaced with [new], got %v", out)
	}
}

func TestPutEmptySnapshot(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, []tasks.Task{testTask("a", tasks.StatusPending)}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, nil); err != nil {
		t.Fatalf("Empty Put failed: %v", err)
	}

	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty snapshot, got %d tasks", len(out))
	}
}

func TestLoadMissingKey(t *testing.T) {
	_, store := setupTestStore(t)

	out, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load of missing snapshot must not error, got %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty list, got %d tasks", len(out))
	}
}

func TestLoadSkipsMalformedEntries(t *testing.T) {
	s, store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, []tasks.Task{testTask("good", tasks.StatusPending)}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	// Inject a corrupt document directly.
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	if err := rdb.RPush(ctx, "tasks:snapshot", "{not json").Err(); err != nil {
		t.Fatalf("RPush failed: %v", err)
	}

	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(out) != 1 || out[0].ID != "good" {
		t.Errorf("Expected corrupt entry skipped, got %v", out)
	}
}

func TestUpdatedAt(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	ts, err := store.UpdatedAt(ctx)
	if err != nil {
		t.Fatalf("UpdatedAt failed: %v", err)
	}
	if !ts.IsZero() {
		t.Errorf("Expected zero time before first Put, got %v", ts)
	}

	before := time.Now().Add(-time.Second)
	if err := store.Put(ctx, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	ts, err = store.UpdatedAt(ctx)
	if err != nil {
		t.Fatalf("UpdatedAt failed: %v", err)
	}
	if ts.Before(before) {
		t.Errorf("UpdatedAt %v not refreshed", ts)
	}

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected Len 0, got %d", n)
	}
}
