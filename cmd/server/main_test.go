package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/guido-cesarano/farmtasks/pkg/snapshot"
	"github.com/guido-cesarano/farmtasks/pkg/tasks"
)

// pinnedNow keeps every endpoint test deterministic.
const pinnedNow = "2026-03-15T12:00:00Z"

func setupTestServer(t *testing.T, apiKey string) (*snapshot.Store, *http.ServeMux) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	store := snapshot.NewStore(s.Addr())
	return store, setupRouter(store, apiKey)
}

func seedTasks(t *testing.T, store *snapshot.Store) {
	t.Helper()
	now, _ := time.Parse(time.RFC3339, pinnedNow)
	seed := []tasks.Task{
		{
			ID: "t1", Title: "Morning feed run", Category: tasks.CategoryFeeding,
			Priority: tasks.PriorityHigh, Status: tasks.StatusPending,
			DueDate: tasks.NewTimestamp(now.Add(2 * time.Hour)),
		},
		{
			ID: "t2", Title: "Vaccinate layer batch", Category: tasks.CategoryHealth,
			Priority: tasks.PriorityUrgent, Status: tasks.StatusInProgress,
			DueDate: tasks.NewTimestamp(now.Add(48 * time.Hour)),
		},
		{
			ID: "t3", Title: "Clean coop bedding", Category: tasks.CategoryCleaning,
			Priority: tasks.PriorityLow, Status: tasks.StatusPending,
			DueDate: tasks.NewTimestamp(now.Add(-3 * time.Hour)),
		},
	}
	if err := store.Put(context.Background(), seed); err != nil {
		t.Fatalf("Seeding snapshot failed: %v", err)
	}
}

func TestAuthMiddleware(t *testing.T) {
	store, mux := setupTestServer(t, "secret-key")
	seedTasks(t, store)

	tests := []struct {
		name           string
		headerKey      string
		headerValue    string
		expectedStatus int
	}{
		{
			name:           "No API Key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong API Key",
			headerKey:      "X-API-Key",
			headerValue:    "wrong-key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Correct API Key",
			headerKey:      "X-API-Key",
			headerValue:    "secret-key",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/tasks", nil)
			if tt.headerKey != "" {
				req.Header.Set(tt.headerKey, tt.headerValue)
			}

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	_, mux := setupTestServer(t, "")

	req := httptest.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code == http.StatusUnauthorized {
		t.Errorf("Expected auth to be disabled, got 401")
	}
}

func TestTasksEndpointFiltering(t *testing.T) {
	store, mux := setupTestServer(t, "")
	seedTasks(t, store)

	get := func(url string) map[string]json.RawMessage {
		req := httptest.NewRequest("GET", url, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d (%s)", url, w.Code, w.Body)
		}
		var body map[string]json.RawMessage
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("GET %s: bad JSON: %v", url, err)
		}
		return body
	}

	count := func(body map[string]json.RawMessage) int {
		var n int
		if err := json.Unmarshal(body["count"], &n); err != nil {
			t.Fatalf("Bad count field: %v", err)
		}
		return n
	}

	if n := count(get("/tasks?now=" + pinnedNow)); n != 3 {
		t.Errorf("Unfiltered: expected 3 tasks, got %d", n)
	}
	if n := count(get("/tasks?category=feeding&now=" + pinnedNow)); n != 1 {
		t.Errorf("Category filter: expected 1 task, got %d", n)
	}
	if n := count(get("/tasks?search=COOP&now=" + pinnedNow)); n != 1 {
		t.Errorf("Search filter: expected 1 task, got %d", n)
	}
	// t3 is pending and past due: matches the derived overdue criterion.
	if n := count(get("/tasks?status=overdue&now=" + pinnedNow)); n != 1 {
		t.Errorf("Overdue filter: expected 1 task, got %d", n)
	}
}

func TestStatsEndpointIgnoresFilters(t *testing.T) {
	store, mux := setupTestServer(t, "")
	seedTasks(t, store)

	get := func(url string) map[string]int {
		req := httptest.NewRequest("GET", url, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", url, w.Code)
		}
		var body map[string]int
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Bad JSON: %v", err)
		}
		return body
	}

	plain := get("/stats?now=" + pinnedNow)
	if plain["total"] != 3 || plain["pending"] != 2 || plain["overdue"] != 1 {
		t.Errorf("Unexpected stats: %v", plain)
	}

	withFilter := get("/stats?category=health&now=" + pinnedNow)
	if withFilter["total"] != plain["total"] {
		t.Errorf("Stats moved under a filter parameter: %v vs %v", withFilter, plain)
	}
}

func TestCalendarEndpoint(t *testing.T) {
	store, mux := setupTestServer(t, "")
	seedTasks(t, store)

	req := httptest.NewRequest("GET", "/calendar?month=2026-03&now="+pinnedNow, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", w.Code, w.Body)
	}

	var body struct {
		Month string            `json:"month"`
		Weeks int               `json:"weeks"`
		Cells []json.RawMessage `json:"cells"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if body.Month != "2026-03" || body.Weeks != 5 {
		t.Errorf("Expected month 2026-03 over 5 weeks, got %+v", body)
	}
	if len(body.Cells) != 35 {
		t.Errorf("Expected 35 cells, got %d", len(body.Cells))
	}

	// Bad month and bad weeks are caller errors.
	for _, url := range []string{"/calendar?month=march", "/calendar?weeks=zero", "/calendar?weeks=99"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", url, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s: expected 400, got %d", url, w.Code)
		}
	}
}

func TestBadNowParameter(t *testing.T) {
	store, mux := setupTestServer(t, "")
	seedTasks(t, store)

	req := httptest.NewRequest("GET", "/tasks?now=yesterday", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad now, got %d", w.Code)
	}
}

func TestEmptySnapshotServesZeroedViews(t *testing.T) {
	_, mux := setupTestServer(t, "")

	for _, url := range []string{"/tasks", "/buckets", "/stats", "/calendar"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", url+"?now="+pinnedNow, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s on empty snapshot: expected 200, got %d", url, w.Code)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	store, mux := setupTestServer(t, "")
	seedTasks(t, store)

	req := httptest.NewRequest("POST", "/tasks", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}
