// Package tasks defines the core data structures for farm task representation.
// Tasks are units of farm work (feeding, health checks, cleaning, ...) with a
// due date, a priority and a stored lifecycle status. The package owns the
// closed enumerations and the validation rules for data arriving from the
// upstream farm backend.
//
// Overdue is deliberately NOT a stored status: it is derived from the due
// date and the current time by the taskview package. Keeping it out of the
// stored enum avoids contradictory records such as a completed task still
// marked overdue.
package tasks

import (
	"fmt"
	"strings"
)

// Category classifies a task by the kind of farm work it represents.
type Category string

const (
	CategoryFeeding       Category = "feeding"
	CategoryHealth        Category = "health"
	CategoryCleaning      Category = "cleaning"
	CategoryMaintenance   Category = "maintenance"
	CategoryBreeding      Category = "breeding"
	CategoryRecordKeeping Category = "record-keeping"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFeeding, CategoryHealth, CategoryCleaning,
		CategoryMaintenance, CategoryBreeding, CategoryRecordKeeping:
		return true
	}
	return false
}

// Priority orders tasks by urgency. The string values are what the upstream
// backend sends; Rank gives the total order.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank maps a priority to its position in the ascending severity order
// (low=0 .. urgent=3). Unknown priorities rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	}
	return -1
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool { return p.Rank() >= 0 }

// Status is the stored lifecycle state of a task. There are exactly three
// stored states; "overdue" is a derived condition, not a member of this set.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the stored statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// RecurringPattern tags a recurring task with its repeat cadence. It is
// descriptive only: nothing in this module materializes future instances.
type RecurringPattern string

const (
	RecurDaily   RecurringPattern = "daily"
	RecurWeekly  RecurringPattern = "weekly"
	RecurMonthly RecurringPattern = "monthly"
)

// Valid reports whether r is one of the known patterns.
func (r RecurringPattern) Valid() bool {
	switch r {
	case RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

// Kind distinguishes one-off tasks from recurring templates.
type Kind string

const (
	KindSingle    Kind = "single"
	KindRecurring Kind = "recurring"
)

// Task represents a schedulable unit of farm work.
//
// DueDate and CompletedAt use the tolerant Timestamp type: a malformed
// timestamp from the backend decodes with Valid=false rather than failing
// the whole snapshot, and downstream projections treat such tasks as having
// an unknown due date.
type Task struct {
	// ID is a unique identifier for the task (typically UUID).
	ID string `json:"id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Category routes the task to a farm work area (e.g. "feeding").
	Category Category `json:"category"`

	// Priority orders tasks for display; see Priority.Rank.
	Priority Priority `json:"priority"`

	// Status is the stored lifecycle state. Overdue-ness is derived, never
	// stored here.
	Status Status `json:"status"`

	// DueDate is when the task should be done. Required by contract, but a
	// malformed value degrades to Valid=false instead of rejecting the task.
	DueDate Timestamp `json:"due_date"`

	// EstimatedDuration is the expected effort in minutes.
	EstimatedDuration int `json:"estimated_duration"`

	// AssignedTo names the responsible person, free text.
	AssignedTo string `json:"assigned_to,omitempty"`

	// BatchID and FarmID reference external entities. They are opaque here;
	// resolution is the backend's job.
	BatchID string `json:"batch_id,omitempty"`
	FarmID  string `json:"farm_id,omitempty"`

	IsRecurring      bool             `json:"is_recurring"`
	RecurringPattern RecurringPattern `json:"recurring_pattern,omitempty"`

	// CompletedAt is set by the backend when Status becomes completed.
	CompletedAt Timestamp `json:"completed_at,omitempty"`

	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Kind reports whether the task is a one-off or a recurring template.
func (t Task) Kind() Kind {
	if t.IsRecurring {
		return KindRecurring
	}
	return KindSingle
}

// Validate checks the closed-enumeration and recurrence contracts for a task
// arriving from the upstream backend. It returns a single error naming every
// violation, or nil. Callers are expected to log the error and keep the task:
// the projection layer classifies invalid enum values as "unknown" rather
// than dropping the task.
func Validate(t Task) error {
	var problems []string

	if !t.Category.Valid() {
		problems = append(problems, fmt.Sprintf("unknown category %q", t.Category))
	}
	if !t.Priority.Valid() {
		problems = append(problems, fmt.Sprintf("unknown priority %q", t.Priority))
	}
	if !t.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", t.Status))
	}
	if !t.DueDate.Valid {
		problems = append(problems, "missing or unparseable due_date")
	}
	if t.IsRecurring && !t.RecurringPattern.Valid() {
		problems = append(problems, fmt.Sprintf("recurring task without valid pattern (got %q)", t.RecurringPattern))
	}
	if !t.IsRecurring && t.RecurringPattern != "" {
		problems = append(problems, fmt.Sprintf("recurring_pattern %q on non-recurring task", t.RecurringPattern))
	}
	if t.EstimatedDuration < 0 {
		problems = append(problems, fmt.Sprintf("negative estimated_duration %d", t.EstimatedDuration))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("task %s: %s", t.ID, strings.Join(problems, "; "))
}
