package taskview

import (
	"time"

	"github.com/guido-cesarano/farmtasks/pkg/tasks"
)

// Buckets groups tasks by the temporal and status predicates the daily view
// renders as tabs. The buckets are NOT mutually exclusive: a pending task
// past its due date appears in both Pending and Overdue, and possibly in
// Today as well. The host UI relies on the overlapping counts, so nothing
// here deduplicates.
//
// Tasks whose stored status is outside the known set land in Unknown instead
// of being dropped; the snapshot layer has already flagged them.
type Buckets struct {
	// Today holds tasks due on now's calendar day (in now's location),
	// whatever their status.
	Today []tasks.Task `json:"today"`

	// Pending, InProgress and Completed match the stored status directly.
	Pending    []tasks.Task `json:"pending"`
	InProgress []tasks.Task `json:"in_progress"`
	Completed  []tasks.Task `json:"completed"`

	// Overdue holds tasks matching the derived IsOverdue predicate.
	Overdue []tasks.Task `json:"overdue"`

	// Unknown holds tasks with an unrecognized stored status.
	Unknown []tasks.Task `json:"unknown,omitempty"`
}

// Bucketize partitions ts into display buckets. It is normally applied to
// an already-filtered slice; relative order within each bucket follows the
// input. Tasks with an invalid due date still appear in their status bucket
// but never in Today or Overdue.
func Bucketize(ts []tasks.Task, now time.Time) Buckets {
	b := Buckets{
		Today:      []tasks.Task{},
		Pending:    []tasks.Task{},
		InProgress: []tasks.Task{},
		Completed:  []tasks.Task{},
		Overdue:    []tasks.Task{},
	}

	for _, t := range ts {
		if t.DueDate.SameDay(now) {
			b.Today = append(b.Today, t)
		}
		switch t.Status {
		case tasks.StatusPending:
			b.Pending = append(b.Pending, t)
		case tasks.StatusInProgress:
			b.InProgress = append(b.InProgress, t)
		case tasks.StatusCompleted:
			b.Completed = append(b.Completed, t)
		default:
			b.Unknown = append(b.Unknown, t)
		}
		if IsOverdue(t, now) {
			b.Overdue = append(b.Overdue, t)
		}
	}
	return b
}
