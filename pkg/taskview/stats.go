package taskview

import (
	"time"

	"github.com/guido-cesarano/farmtasks/pkg/tasks"
)

// Stats are the summary counts shown above the task list. They are computed
// over the unfiltered snapshot: narrowing the visible list with Filter must
// never change these numbers, so the host always passes the full store here.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
	Unknown    int `json:"unknown,omitempty"`
}

// Aggregate tallies ts using the same classification rules as Bucketize.
// Overdue overlaps with Pending/InProgress, so the per-status counts plus
// Overdue can exceed Total.
func Aggregate(ts []tasks.Task, now time.Time) Stats {
	s := Stats{Total: len(ts)}
	for _, t := range ts {
		switch t.Status {
		case tasks.StatusPending:
			s.Pending++
		case tasks.StatusInProgress:
			s.InProgress++
		case tasks.StatusCompleted:
			s.Completed++
		default:
			s.Unknown++
		}
		if IsOverdue(t, now) {
			s.Overdue++
		}
	}
	return s
}
