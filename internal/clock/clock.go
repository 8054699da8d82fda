// Package clock pins "now" to the fixed reminder timezone.
package clock

import "time"

const (
	// DateLayout is the calendar date format used in prompts and records.
	DateLayout = "2006-01-02"
	// TimeLayout is the 24-hour clock format used in prompts and records.
	TimeLayout = "15:04"
	// DateTimeLayout is the reminder datetime format, always in Zone.
	DateTimeLayout = DateLayout + " " + TimeLayout
)

// Zone is the reminder timezone (UTC+5). Every persisted or displayed
// reminder datetime is expressed in it, whatever the host's local zone.
var Zone = time.FixedZone("PKT", 5*60*60)

// Now is the per-request reference instant. It is computed once and passed
// along so prompt building and policy resolution agree on the same minute.
type Now struct {
	Date    string
	Time    string
	Instant time.Time
}

// Normalize converts an instant into the reminder zone, truncated to the minute.
func Normalize(t time.Time) Now {
	local := t.In(Zone).Truncate(time.Minute)
	return Now{
		Date:    local.Format(DateLayout),
		Time:    local.Format(TimeLayout),
		Instant: local,
	}
}

// Current normalizes the wall clock.
func Current() Now {
	return Normalize(time.Now())
}

// DateTime returns the "YYYY-MM-DD HH:MM" form of n.
func (n Now) DateTime() string {
	return n.Date + " " + n.Time
}

// StartOfDay returns midnight of n's date in Zone.
func (n Now) StartOfDay() time.Time {
	y, m, d := n.Instant.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Zone)
}

// Parse reads a "YYYY-MM-DD HH:MM" value as a reminder-zone instant.
func Parse(value string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, value, Zone)
}

// Format renders t in Zone using DateTimeLayout.
func Format(t time.Time) string {
	return t.In(Zone).Format(DateTimeLayout)
}
