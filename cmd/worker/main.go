// Package main implements the farmtasks snapshot worker. It pulls the full
// task list from the upstream farm backend on a cron schedule and writes it
// into the Redis snapshot that the API server projects from.
//
// Features:
//   - Initial fetch at boot, then cron-scheduled refreshes
//   - Prometheus metrics exposed on METRICS_ADDR/metrics
//   - Graceful shutdown on SIGINT/SIGTERM
//   - Failed refreshes keep the previous snapshot (stale beats empty)
//
// Usage:
//
//	UPSTREAM_URL=http://backend:3000 go run cmd/worker/main.go
//
// The worker connects to Redis at REDIS_ADDR (default 127.0.0.1:6379) and
// refreshes per REFRESH_SPEC (default "@every 1m").
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guido-cesarano/farmtasks/pkg/logger"
	"github.com/guido-cesarano/farmtasks/pkg/snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = logger.With("worker")

// Prometheus metrics for snapshot refreshing.
var (
	// refreshes tracks refresh cycles by outcome ("success" or "error").
	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmtasks_refreshes_total",
		Help: "The total number of snapshot refresh cycles",
	}, []string{"outcome"})

	// refreshDuration tracks the latency of a full fetch-and-store cycle.
	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "farmtasks_refresh_duration_seconds",
		Help:    "Duration of snapshot refresh cycles",
		Buckets: prometheus.DefBuckets,
	})

	// snapshotSize tracks how many tasks the last successful refresh stored.
	snapshotSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "farmtasks_snapshot_tasks",
		Help: "Number of tasks in the current snapshot",
	})
)

func main() {
	redisAddr := envOr("REDIS_ADDR", "127.0.0.1:6379")
	metricsAddr := envOr("METRICS_ADDR", ":8080")
	refreshSpec := envOr("REFRESH_SPEC", "@every 1m")
	upstreamURL := os.Getenv("UPSTREAM_URL")
	if upstreamURL == "" {
		log.Fatal().Msg("UPSTREAM_URL is required")
	}

	store := snapshot.NewStore(redisAddr)
	fetcher := snapshot.NewFetcher(upstreamURL, os.Getenv("UPSTREAM_API_KEY"))
	refresher := snapshot.NewRefresher(store, fetcher.Fetch)
	refresher.OnResult = func(n int, took time.Duration, err error) {
		refreshDuration.Observe(took.Seconds())
		if err != nil {
			refreshes.WithLabelValues("error").Inc()
			return
		}
		refreshes.WithLabelValues("success").Inc()
		snapshotSize.Set(float64(n))
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Metrics server
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Info().Str("addr", metricsAddr).Msg("Metrics server listening")
		http.ListenAndServe(metricsAddr, nil)
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Shutting down worker...")
		cancel()
	}()

	// Boot refresh so the API has data before the first cron tick.
	if _, err := refresher.RefreshOnce(ctx); err != nil {
		log.Error().Err(err).Msg("Initial snapshot refresh failed")
	}

	if _, err := refresher.Schedule(refreshSpec); err != nil {
		log.Fatal().Err(err).Str("spec", refreshSpec).Msg("Invalid refresh spec")
	}
	refresher.Start()
	defer refresher.Stop()

	log.Info().Str("spec", refreshSpec).Str("upstream", upstreamURL).Msg("Worker started")
	<-ctx.Done()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
