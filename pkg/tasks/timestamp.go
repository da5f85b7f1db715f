package tasks

import (
	"encoding/json"
	"time"
)

// Timestamp is a time.Time that tolerates malformed input. The farm backend
// occasionally ships due dates that don't parse; a Timestamp decodes those to
// Valid=false so one bad record never fails a whole snapshot.
type Timestamp struct {
	time.Time
	Valid bool
}

// NewTimestamp wraps a concrete time as a valid Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// ParseTimestamp parses s as RFC 3339, falling back to a date-time without
// zone and a bare date. Anything else yields Valid=false.
func ParseTimestamp(s string) Timestamp {
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Valid: true}
		}
	}
	return Timestamp{}
}

// UnmarshalJSON accepts a JSON string timestamp, null, or garbage. Garbage
// and null both decode to an invalid Timestamp; only a non-string JSON value
// other than null is treated as a type error.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*ts = ParseTimestamp(s)
	return nil
}

// MarshalJSON emits RFC 3339 for valid timestamps and null otherwise.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

// SameDay reports whether ts falls on the same calendar day as other, both
// evaluated in other's location. Invalid timestamps are on no day at all.
func (ts Timestamp) SameDay(other time.Time) bool {
	if !ts.Valid {
		return false
	}
	a := ts.Time.In(other.Location())
	return a.Year() == other.Year() && a.Month() == other.Month() && a.Day() == other.Day()
}
