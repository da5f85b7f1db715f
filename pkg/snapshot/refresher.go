package snapshot

import (
	"context"
	"time"

	"github.com/guido-cesarano/farmtasks/pkg/tasks"
	"github.com/robfig/cron/v3"
)

// FetchFunc supplies a fresh task list. Fetcher.Fetch satisfies it; tests
// substitute their own.
type FetchFunc func(ctx context.Context) ([]tasks.Task, error)

// Refresher keeps the Redis snapshot in sync with the upstream backend on a
// cron schedule. Refresh failures are logged and swallowed: a stale snapshot
// is better than none, and the next tick retries.
type Refresher struct {
	store *Store
	fetch FetchFunc
	cron  *cron.Cron

	// OnResult, if set, observes every refresh cycle (scheduled or manual)
	// with the number of tasks stored, the cycle duration, and the error if
	// any. Hosts hang their metrics here.
	OnResult func(n int, took time.Duration, err error)
}

// NewRefresher wires a fetch source to a snapshot store.
func NewRefresher(store *Store, fetch FetchFunc) *Refresher {
	return &Refresher{
		store: store,
		fetch: fetch,
		cron:  cron.New(),
	}
}

// RefreshOnce runs a single fetch-and-store cycle. Returns the number of
// tasks stored.
func (r *Refresher) RefreshOnce(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.refresh(ctx)
	if r.OnResult != nil {
		r.OnResult(n, time.Since(start), err)
	}
	return n, err
}

func (r *Refresher) refresh(ctx context.Context) (int, error) {
	ts, err := r.fetch(ctx)
	if err != nil {
		return 0, err
	}
	if err := r.store.Put(ctx, ts); err != nil {
		return 0, err
	}
	log.Info().Int("tasks", len(ts)).Msg("Snapshot refreshed")
	return len(ts), nil
}

// Schedule registers the refresh cycle under a cron spec (standard
// expressions or "@every 1m" forms). Start must be called for the schedule
// to run.
func (r *Refresher) Schedule(spec string) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		if _, err := r.RefreshOnce(context.Background()); err != nil {
			log.Error().Err(err).Msg("Scheduled snapshot refresh failed")
		}
	})
}

// Start begins running scheduled refreshes in the background.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts scheduled refreshes. Running jobs finish.
func (r *Refresher) Stop() {
	r.cron.Stop()
}
