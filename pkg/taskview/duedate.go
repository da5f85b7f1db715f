package taskview

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guido-cesarano/farmtasks/pkg/tasks"
)

// Template keys emitted by DueDateLabel. The host's translation layer owns
// the display language; this package only ever produces a key plus
// substitution values.
const (
	KeyDueUnknown      = "due.unknown"
	KeyDueOverdueHours = "due.overdue_hours"
	KeyDueInHours      = "due.in_hours"
	KeyDueOnDate       = "due.on_date"
)

// Label is a localizable message: a template key and its substitution
// values. Render resolves it through a Translator.
type Label struct {
	Key  string            `json:"key"`
	Vars map[string]string `json:"vars,omitempty"`
}

// Translator resolves a template key and substitution values into display
// text. The host wires its i18n lookup here.
type Translator func(key string, vars map[string]string) string

// englishTemplates backs tests and hosts that don't localize.
var englishTemplates = map[string]string{
	KeyDueUnknown:      "due date unknown",
	KeyDueOverdueHours: "overdue by {hours} hours",
	KeyDueInHours:      "due in {hours} hours",
	KeyDueOnDate:       "due {date}",
}

// EnglishTranslator renders labels from the built-in English templates.
func EnglishTranslator(key string, vars map[string]string) string {
	tmpl, ok := englishTemplates[key]
	if !ok {
		return key
	}
	for k, v := range vars {
		tmpl = strings.ReplaceAll(tmpl, "{"+k+"}", v)
	}
	return tmpl
}

// Render resolves the label through tr, falling back to the English
// templates when tr is nil.
func (l Label) Render(tr Translator) string {
	if tr == nil {
		tr = EnglishTranslator
	}
	return tr(l.Key, l.Vars)
}

// DueDateLabel classifies a due date relative to now into one of three
// regimes and returns the matching template key with its values:
//
//   - past due: "overdue by N hours", N counted in started hours, so one
//     millisecond past due already reads "overdue by 1 hours"
//   - within 24 hours: "due in N hours", N rounded up, so exactly-now is
//     "due in 0 hours" and 30 minutes out is "due in 1 hours"
//   - 24 hours or more: the absolute calendar date, no time component
//
// An invalid due date yields the "unknown" sentinel key. Never panics.
func DueDateLabel(due tasks.Timestamp, now time.Time) Label {
	if !due.Valid {
		return Label{Key: KeyDueUnknown}
	}

	diff := due.Time.Sub(now)
	if diff < 0 {
		hours := int(math.Ceil((-diff).Hours()))
		return Label{
			Key:  KeyDueOverdueHours,
			Vars: map[string]string{"hours": strconv.Itoa(hours)},
		}
	}

	hours := int(math.Ceil(diff.Hours()))
	if hours < 24 {
		return Label{
			Key:  KeyDueInHours,
			Vars: map[string]string{"hours": strconv.Itoa(hours)},
		}
	}

	return Label{
		Key:  KeyDueOnDate,
		Vars: map[string]string{"date": due.Time.In(now.Location()).Format("Jan 2, 2006")},
	}
}

// FormatDueDate is the one-call form of DueDateLabel + Render.
func FormatDueDate(due tasks.Timestamp, now time.Time, tr Translator) string {
	return DueDateLabel(due, now).Render(tr)
}
