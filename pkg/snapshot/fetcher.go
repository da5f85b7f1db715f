package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/guido-cesarano/farmtasks/pkg/tasks"
)

// Fetcher pulls the full task list from the upstream farm backend.
// Pagination is the backend's concern; this client expects the materialized
// array the projections need.
type Fetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewFetcher creates a fetcher for the backend at baseURL (no trailing
// slash). apiKey may be empty when the backend runs unauthenticated.
func NewFetcher(baseURL, apiKey string) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch GETs {base}/api/v1/tasks and decodes the JSON task array. Tasks
// arriving without an ID get a UUID assigned so downstream keying never sees
// an empty ID. Decoding tolerates malformed timestamps per the Timestamp
// contract; a non-array body is an error.
func (f *Fetcher) Fetch(ctx context.Context) ([]tasks.Task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/v1/tasks", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if f.apiKey != "" {
		req.Header.Set("X-API-Key", f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %s", resp.Status)
	}

	var ts []tasks.Task
	if err := json.NewDecoder(resp.Body).Decode(&ts); err != nil {
		return nil, fmt.Errorf("decoding task list: %w", err)
	}

	for i := range ts {
		if ts[i].ID == "" {
			ts[i].ID = uuid.New().String()
			log.Warn().Str("title", ts[i].Title).Str("assigned_id", ts[i].ID).
				Msg("Upstream task had no ID, assigned one")
		}
	}
	return ts, nil
}
