// Package main provides a benchmark tool for the farmtasks projection
// pipeline. It generates a synthetic task snapshot and measures how fast the
// filter, bucket, statistics and calendar projections recompute, which is
// what every dashboard interaction pays for.
//
// Usage:
//
//	go run benchmark/main.go -tasks 100000 -rounds 50
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/guido-cesarano/farmtasks/pkg/tasks"
	"github.com/guido-cesarano/farmtasks/pkg/taskview"
)

var (
	categories = []tasks.Category{
		tasks.CategoryFeeding, tasks.CategoryHealth, tasks.CategoryCleaning,
		tasks.CategoryMaintenance, tasks.CategoryBreeding, tasks.CategoryRecordKeeping,
	}
	priorities = []tasks.Priority{
		tasks.PriorityLow, tasks.PriorityMedium, tasks.PriorityHigh, tasks.PriorityUrgent,
	}
	statuses = []tasks.Status{
		tasks.StatusPending, tasks.StatusInProgress, tasks.StatusCompleted,
	}
)

func generate(n int, now time.Time, rng *rand.Rand) []tasks.Task {
	out := make([]tasks.Task, n)
	for i := range out {
		// Due dates spread over +-30 days around now.
		offset := time.Duration(rng.Intn(60*24)-30*24) * time.Hour
		out[i] = tasks.Task{
			ID:                uuid.New().String(),
			Title:             fmt.Sprintf("Synthetic task %d", i),
			Description:       "generated for benchmarking",
			Category:          categories[rng.Intn(len(categories))],
			Priority:          priorities[rng.Intn(len(priorities))],
			Status:            statuses[rng.Intn(len(statuses))],
			DueDate:           tasks.NewTimestamp(now.Add(offset)),
			EstimatedDuration: rng.Intn(240),
		}
	}
	return out
}

func main() {
	numTasks := flag.Int("tasks", 100000, "Number of synthetic tasks in the snapshot")
	rounds := flag.Int("rounds", 50, "Number of full projection rounds")
	flag.Parse()

	rng := rand.New(rand.NewSource(1))
	now := time.Now()

	fmt.Printf("farmtasks projection benchmark\n")
	fmt.Printf("==============================\n")
	fmt.Printf("Snapshot size: %d tasks\n", *numTasks)
	fmt.Printf("Rounds: %d\n\n", *rounds)

	snapshot := generate(*numTasks, now, rng)
	criteria := taskview.Criteria{Search: "task 1", Status: "pending"}

	start := time.Now()
	var sink int
	for i := 0; i < *rounds; i++ {
		filtered := taskview.Filter(snapshot, criteria, now)
		buckets := taskview.Bucketize(filtered, now)
		stats := taskview.Aggregate(snapshot, now)
		cells := taskview.BuildCalendar(snapshot, now, now, 0)
		sink += len(buckets.Overdue) + stats.Total + len(cells)
	}
	elapsed := time.Since(start)

	perRound := elapsed / time.Duration(*rounds)
	fmt.Printf("Total: %v\n", elapsed)
	fmt.Printf("Per round: %v\n", perRound)
	fmt.Printf("Tasks/sec through full pipeline: %.0f\n",
		float64(*numTasks)*float64(*rounds)/elapsed.Seconds())
	_ = sink
}
