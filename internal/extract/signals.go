package extract

import (
	"regexp"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/pathakanu/chatmemo/internal/clock"
)

var (
	clockTimeRe = regexp.MustCompile(`(?i)\b(?:[01]?\d|2[0-3]):[0-5]\d\b|\b(?:1[0-2]|0?[1-9])\s*(?:am|pm)\b|\b(?:[01]?\d|2[0-3])h(?:[0-5]\d)?\b|\bat\s+(?:[01]?\d|2[0-3]|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\b|\b(?:half|quarter)\s+(?:past|to)\b|\b(?:noon|midday|midnight|tonight|o'clock|morning|afternoon|evening|night)\b`)
	urgentRe    = regexp.MustCompile(`(?i)\b(?:urgent(?:ly)?|asap|immediately|right now|right away|emergency)\b`)
	pastRe      = regexp.MustCompile(`(?i)\b(?:yesterday|last night|ago)\b`)
	todayRe     = regexp.MustCompile(`(?i)\b(?:today|tonight|now|this (?:morning|afternoon|evening))\b`)
	dayRe       = regexp.MustCompile(`(?i)\b(?:tomorrow|tmr|monday|tuesday|wednesday|thursday|friday|saturday|sunday|next week|weekend)\b|\b\d{4}-\d{2}-\d{2}\b|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?\b|\b\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
)

// Signals are the temporal hints found in a message relative to a fixed now.
type Signals struct {
	// Reference is the first date/time expression resolved against now.
	Reference *time.Time
	// ExplicitTime is set when the message names a time of day, in digits,
	// in words or as a part of the day.
	ExplicitTime bool
	Urgent       bool
	// Past is set for "yesterday"-style wording or a reference before today.
	// Wording alone does not count when the reference is still ahead.
	Past bool
	// Today is set when the message talks about the current day.
	Today bool
	// LaterDay is set when Reference falls after today.
	LaterDay bool
	// NamesDay is set when the message names a day, relative or absolute.
	NamesDay bool
}

// Upcoming reports whether the message points at a concrete future moment:
// a later day, or an explicit clock time still ahead today.
func (s Signals) Upcoming(now clock.Now) bool {
	if s.Reference == nil || s.Past {
		return false
	}
	if s.LaterDay {
		return true
	}
	return s.ExplicitTime && s.Reference.After(now.Instant)
}

// Analyzer extracts Signals from message text. It holds no per-call state
// and is safe for concurrent use.
type Analyzer struct {
	parser *when.Parser
}

func NewAnalyzer() *Analyzer {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Analyzer{parser: w}
}

// Analyze inspects message relative to now.
func (a *Analyzer) Analyze(message string, now clock.Now) Signals {
	s := Signals{
		ExplicitTime: clockTimeRe.MatchString(message),
		Urgent:       urgentRe.MatchString(message),
		Past:         pastRe.MatchString(message),
		Today:        todayRe.MatchString(message),
		NamesDay:     dayRe.MatchString(message),
	}

	r, err := a.parser.Parse(message, now.Instant)
	if err != nil || r == nil {
		return s
	}

	ref := r.Time.In(clock.Zone)
	s.Reference = &ref
	s.NamesDay = true
	if ref.After(now.Instant) {
		s.Past = false
	}

	today := now.StartOfDay()
	switch day := startOfDay(ref); {
	case day.Before(today):
		s.Past = true
	case day.Equal(today):
		s.Today = true
	default:
		s.LaterDay = true
	}
	return s
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
