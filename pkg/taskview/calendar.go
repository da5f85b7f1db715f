package taskview

import (
	"time"

	"github.com/guido-cesarano/farmtasks/pkg/tasks"
)

const (
	// DefaultWeeks is the number of week rows in the calendar grid. Five
	// rows cover most months; months whose layout spills into a sixth week
	// render their trailing days outside the grid unless the caller asks
	// for six weeks explicitly.
	DefaultWeeks = 5

	// maxCellTasks caps how many tasks a cell lists before collapsing the
	// rest into an overflow count.
	maxCellTasks = 2
)

// Cell is one day slot of the calendar grid.
type Cell struct {
	// Date is midnight of the cell's day in the anchor's location.
	Date time.Time `json:"date"`

	// InMonth is true for days belonging to the anchor month (as opposed to
	// the leading/trailing days that pad the grid to full weeks).
	InMonth bool `json:"in_month"`

	// IsToday marks the cell matching now's calendar day.
	IsToday bool `json:"is_today"`

	// Tasks holds at most two tasks due on this day, in input order.
	Tasks []tasks.Task `json:"tasks"`

	// Extra is how many further tasks are due this day beyond Tasks.
	Extra int `json:"extra"`
}

// BuildCalendar projects ts onto a weeks*7 cell grid anchored to the month
// of anchor. The grid starts on the Sunday on or before the 1st of that
// month and runs a fixed number of weeks regardless of month length.
// weeks <= 0 selects DefaultWeeks.
//
// A task lands in the cell matching its due date's calendar day, evaluated
// in anchor's location; time of day is ignored. Tasks with an invalid due
// date are never placed. now only drives the IsToday flag, keeping the
// whole projection deterministic for fixed inputs.
func BuildCalendar(ts []tasks.Task, anchor, now time.Time, weeks int) []Cell {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	loc := anchor.Location()

	startOfMonth := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
	// Weekday numbering has Sunday = 0, so this lands on the Sunday on or
	// before the 1st.
	gridStart := startOfMonth.AddDate(0, 0, -int(startOfMonth.Weekday()))

	// Group once by calendar day so cell assignment stays linear in the
	// task count.
	byDay := make(map[time.Time][]tasks.Task, len(ts))
	for _, t := range ts {
		if !t.DueDate.Valid {
			continue
		}
		d := t.DueDate.Time.In(loc)
		key := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		byDay[key] = append(byDay[key], t)
	}

	cells := make([]Cell, weeks*7)
	for i := range cells {
		day := gridStart.AddDate(0, 0, i)
		due := byDay[day]
		visible := due
		if len(visible) > maxCellTasks {
			visible = visible[:maxCellTasks]
		}
		cells[i] = Cell{
			Date:    day,
			InMonth: day.Month() == anchor.Month() && day.Year() == anchor.Year(),
			IsToday: sameDay(day, now.In(loc)),
			Tasks:   append([]tasks.Task{}, visible...),
			Extra:   len(due) - len(visible),
		}
	}
	return cells
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
