// Package snapshot moves the farm task list from the upstream backend into
// Redis and back out. The projections in pkg/taskview operate on a fully
// materialized snapshot per evaluation; this package owns fetching that
// snapshot over HTTP, caching it in Redis, and refreshing it on a cron
// schedule.
//
// Redis layout:
//   - tasks:snapshot   - list, one JSON document per task, in backend order
//   - tasks:updated_at - RFC 3339 time of the last successful refresh
package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/guido-cesarano/farmtasks/pkg/logger"
	"github.com/guido-cesarano/farmtasks/pkg/tasks"
	"github.com/redis/go-redis/v9"
)

const (
	snapshotKey  = "tasks:snapshot"
	updatedAtKey = "tasks:updated_at"
)

var log = logger.With("snapshot")

// Store reads and writes the task snapshot in Redis. All operations are
// context-aware. A Store is safe for concurrent use.
type Store struct {
	rdb *redis.Client
}

// NewStore creates a snapshot store connected to the given Redis address
// ("host:port").
func NewStore(addr string) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Put replaces the snapshot with ts atomically: the old list is deleted and
// the new documents pushed in one transaction, so readers never observe a
// half-written snapshot. Tasks that fail validation are kept (the
// projections bucket them as unknown) but logged so the anomaly is visible.
func (s *Store) Put(ctx context.Context, ts []tasks.Task) error {
	docs := make([]interface{}, 0, len(ts))
	for _, t := range ts {
		if err := tasks.Validate(t); err != nil {
			log.Warn().Err(err).Str("task_id", t.ID).Msg("Task failed validation, keeping it")
		}
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		docs = append(docs, data)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, snapshotKey)
	if len(docs) > 0 {
		pipe.RPush(ctx, snapshotKey, docs...)
	}
	pipe.Set(ctx, updatedAtKey, time.Now().UTC().Format(time.RFC3339Nano), 0)
	_, err := pipe.Exec(ctx)
	return err
}

// Load returns the current snapshot in stored order. Entries that no longer
// unmarshal are skipped with a warning; a missing snapshot key reads as an
// empty list, not an error.
func (s *Store) Load(ctx context.Context) ([]tasks.Task, error) {
	raw, err := s.rdb.LRange(ctx, snapshotKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]tasks.Task, 0, len(raw))
	for _, doc := range raw {
		var t tasks.Task
		if err := json.Unmarshal([]byte(doc), &t); err != nil {
			log.Warn().Err(err).Msg("Skipping malformed snapshot entry")
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Len returns the number of tasks in the stored snapshot.
func (s *Store) Len(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, snapshotKey).Result()
}

// UpdatedAt returns the time of the last successful Put. The zero time (and
// no error) means no snapshot has been written yet.
func (s *Store) UpdatedAt(ctx context.Context) (time.Time, error) {
	val, err := s.rdb.Get(ctx, updatedAtKey).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
