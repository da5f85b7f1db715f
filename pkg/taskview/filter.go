// Package taskview computes the derived views of a task snapshot: the
// filtered list, the temporal/status buckets, the global statistics, the
// relative due-date labels and the calendar grid.
//
// Every function here is a pure projection. The current time is always an
// explicit parameter, never read from an ambient clock, so every view is
// deterministic for a given snapshot and reproducible in tests. Nothing
// mutates its input; re-running any projection with the same inputs yields
// the same output.
package taskview

import (
	"strings"
	"time"

	"github.com/guido-cesarano/farmtasks/pkg/tasks"
)

// MatchAll disables an individual criterion. An empty criterion string is
// treated the same way, so the zero Criteria matches everything.
const MatchAll = "all"

// StatusOverdue is the extra value accepted by Criteria.Status. It matches
// the derived overdue condition (IsOverdue) rather than any stored status,
// so a pending task past its due date matches both "pending" and "overdue".
const StatusOverdue = "overdue"

// Criteria is the conjunction of predicates applied by Filter. All fields
// are plain strings because they arrive verbatim from the host UI's form
// state (or query parameters); unknown values simply match nothing.
type Criteria struct {
	// Search is matched case-insensitively against title and description.
	Search string `json:"search"`

	// Category, Status and Priority each match a single enum value, or
	// everything when set to "all" (or left empty). Status additionally
	// accepts "overdue" for the derived condition.
	Category string `json:"category"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

func matchAll(criterion string) bool {
	return criterion == "" || criterion == MatchAll
}

// IsOverdue reports the derived overdue condition: the task's due date is
// valid, strictly before now, and the task is not completed. This predicate
// is the only notion of "overdue" in the module; it is never stored on the
// task.
func IsOverdue(t tasks.Task, now time.Time) bool {
	return t.DueDate.Valid && t.DueDate.Time.Before(now) && t.Status != tasks.StatusCompleted
}

// Filter returns the tasks matching every criterion in c, preserving input
// order. The input slice is never modified; the result is always a fresh
// slice (empty, not nil, when nothing matches, so callers can range and
// marshal it uniformly).
//
// now is needed only for the "overdue" status criterion; any other criteria
// combination ignores it.
//
// Search matching lowercases via strings.ToLower, which applies Unicode
// simple case mapping. Full case folding (e.g. Kelvin sign, dotless i) is
// not performed.
func Filter(ts []tasks.Task, c Criteria, now time.Time) []tasks.Task {
	out := make([]tasks.Task, 0, len(ts))
	search := strings.ToLower(strings.TrimSpace(c.Search))

	for _, t := range ts {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if !matchAll(c.Category) && string(t.Category) != c.Category {
			continue
		}
		if !matchStatus(t, c.Status, now) {
			continue
		}
		if !matchAll(c.Priority) && string(t.Priority) != c.Priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchStatus(t tasks.Task, criterion string, now time.Time) bool {
	if matchAll(criterion) {
		return true
	}
	if criterion == StatusOverdue {
		return IsOverdue(t, now)
	}
	return string(t.Status) == criterion
}
