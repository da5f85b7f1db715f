// Package main implements the farmtasks HTTP API server. It serves the
// derived views of the task snapshot (filtered list, buckets, statistics,
// calendar grid) as JSON for the farm dashboard.
//
// API Endpoints:
//
//	GET /tasks    - filtered task list (search, category, status, priority)
//	GET /buckets  - temporal/status buckets over the filtered set
//	GET /stats    - summary counts over the full snapshot (never filtered)
//	GET /calendar - calendar grid (month=YYYY-MM, weeks=N)
//	GET /healthz  - snapshot presence and age
//	GET /metrics  - Prometheus metrics
//
// Every endpoint accepts an optional now=RFC3339 parameter pinning the
// evaluation time, which keeps responses reproducible; it defaults to the
// wall clock.
//
// Usage:
//
//	go run cmd/server/main.go
//
// The server listens on LISTEN_ADDR (default :8081) and reads the snapshot
// from Redis at REDIS_ADDR (default 127.0.0.1:6379).
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/guido-cesarano/farmtasks/pkg/logger"
	"github.com/guido-cesarano/farmtasks/pkg/snapshot"
	"github.com/guido-cesarano/farmtasks/pkg/tasks"
	"github.com/guido-cesarano/farmtasks/pkg/taskview"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = logger.With("server")

// Prometheus metrics for the projection endpoints.
var (
	// projections counts served views by endpoint.
	projections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmtasks_projections_total",
		Help: "The total number of projection responses served",
	}, []string{"view"})

	// projectionDuration tracks per-view computation latency, snapshot load
	// included.
	projectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farmtasks_projection_duration_seconds",
		Help:    "Duration of projection computation",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})
)

// authMiddleware wraps an http.HandlerFunc and enforces API Key authentication.
func authMiddleware(next http.HandlerFunc, requiredKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// If no key is configured, allow all (dev mode)
		if requiredKey == "" {
			next(w, r)
			return
		}

		if r.Header.Get("X-API-Key") != requiredKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// enableCORS wraps an http.HandlerFunc and adds CORS headers so the farm
// dashboard can call the API cross-origin. Preflight OPTIONS requests are
// answered before auth runs.
func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, X-API-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// parseNow reads the optional now query parameter. Empty means wall clock;
// anything unparseable is a caller error.
func parseNow(r *http.Request) (time.Time, error) {
	val := r.URL.Query().Get("now")
	if val == "" {
		return time.Now(), nil
	}
	now, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid now parameter: %v", err)
	}
	return now, nil
}

func criteriaFromQuery(r *http.Request) taskview.Criteria {
	q := r.URL.Query()
	return taskview.Criteria{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// dueLabelOut pairs the localization key/vars with the English rendering so
// hosts without an i18n layer can display text directly.
type dueLabelOut struct {
	taskview.Label
	Text string `json:"text"`
}

func dueLabels(ts []tasks.Task, now time.Time) map[string]dueLabelOut {
	out := make(map[string]dueLabelOut, len(ts))
	for _, t := range ts {
		l := taskview.DueDateLabel(t.DueDate, now)
		out[t.ID] = dueLabelOut{Label: l, Text: l.Render(nil)}
	}
	return out
}

// setupRouter configures the HTTP handlers and returns the mux.
func setupRouter(store *snapshot.Store, apiKey string) *http.ServeMux {
	mux := http.NewServeMux()

	// GET handlers share the load-snapshot / parse-now boilerplate.
	view := func(name string, handler func(w http.ResponseWriter, r *http.Request, ts []tasks.Task, now time.Time)) http.HandlerFunc {
		return enableCORS(authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			now, err := parseNow(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			ts, err := store.Load(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			start := time.Now()
			handler(w, r, ts, now)
			projectionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
			projections.WithLabelValues(name).Inc()
		}, apiKey))
	}

	mux.HandleFunc("/tasks", view("tasks", func(w http.ResponseWriter, r *http.Request, ts []tasks.Task, now time.Time) {
		filtered := taskview.Filter(ts, criteriaFromQuery(r), now)
		writeJSON(w, map[string]interface{}{
			"tasks": filtered,
			"count": len(filtered),
		})
	}))

	mux.HandleFunc("/buckets", view("buckets", func(w http.ResponseWriter, r *http.Request, ts []tasks.Task, now time.Time) {
		filtered := taskview.Filter(ts, criteriaFromQuery(r), now)
		writeJSON(w, map[string]interface{}{
			"buckets":    taskview.Bucketize(filtered, now),
			"due_labels": dueLabels(filtered, now),
		})
	}))

	// Stats always cover the full snapshot: filter parameters are ignored
	// here on purpose so the summary numbers never move with the visible
	// list.
	mux.HandleFunc("/stats", view("stats", func(w http.ResponseWriter, r *http.Request, ts []tasks.Task, now time.Time) {
		writeJSON(w, taskview.Aggregate(ts, now))
	}))

	mux.HandleFunc("/calendar", view("calendar", func(w http.ResponseWriter, r *http.Request, ts []tasks.Task, now time.Time) {
		q := r.URL.Query()

		anchor := now
		if m := q.Get("month"); m != "" {
			parsed, err := time.Parse("2006-01", m)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid month parameter: %v", err), http.StatusBadRequest)
				return
			}
			anchor = parsed
		}

		weeks := 0 // BuildCalendar applies the default
		if ws := q.Get("weeks"); ws != "" {
			parsed, err := strconv.Atoi(ws)
			if err != nil || parsed < 1 || parsed > 8 {
				http.Error(w, "invalid weeks parameter", http.StatusBadRequest)
				return
			}
			weeks = parsed
		}

		cells := taskview.BuildCalendar(ts, anchor, now, weeks)
		writeJSON(w, map[string]interface{}{
			"month": anchor.Format("2006-01"),
			"weeks": len(cells) / 7,
			"cells": cells,
		})
	}))

	mux.HandleFunc("/healthz", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		updated, err := store.UpdatedAt(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		n, err := store.Len(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{
			"status":     "ok",
			"tasks":      n,
			"updated_at": updated,
		})
	}))

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func main() {
	redisAddr := envOr("REDIS_ADDR", "127.0.0.1:6379")
	listenAddr := envOr("LISTEN_ADDR", ":8081")
	apiKey := os.Getenv("API_KEY")

	store := snapshot.NewStore(redisAddr)
	mux := setupRouter(store, apiKey)

	if apiKey == "" {
		log.Warn().Msg("API_KEY not set, authentication disabled")
	}
	log.Info().Str("addr", listenAddr).Str("redis", redisAddr).Msg("farmtasks API server listening")
	if err := http.ListenAndServe(listenAddr, mux); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
