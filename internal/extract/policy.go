package extract

import (
	"time"

	"github.com/pathakanu/chatmemo/internal/clock"
)

// DefaultHour is used when a reminder names a day but no clock time.
const DefaultHour = 9

// UrgentLead is how far ahead an urgent same-day reminder is scheduled.
const UrgentLead = time.Hour

// Policy finalizes a classifier candidate. Resolve is deterministic: the
// same candidate and now always produce the same result.
type Policy struct {
	analyzer *Analyzer
}

func NewPolicy() *Policy {
	return &Policy{analyzer: NewAnalyzer()}
}

// Resolve applies the reminder rules in order, each later rule overriding
// the earlier ones:
//
//  1. relevance: a classifier yes, or a concrete upcoming reference in the text
//  2. a later day without a clock time is pinned to 09:00
//  3. urgent messages about today fire one hour from now
//  4. anything before now, or worded as the past, is not a reminder
//
// The returned datetime, if any, is formatted in clock.Zone.
func (p *Policy) Resolve(c Candidate, now clock.Now) Candidate {
	sig := p.analyzer.Analyze(c.Message, now)
	out := Candidate{Message: c.Message}

	var at *time.Time
	if c.Important == 1 && c.Datetime != nil {
		if t, err := clock.Parse(*c.Datetime); err == nil {
			at = &t
		}
	}

	important := c.Important == 1 || sig.Upcoming(now)
	if important && at == nil && sig.Reference != nil {
		ref := *sig.Reference
		at = &ref
	}

	if important && at != nil && sig.NamesDay && !sig.ExplicitTime && startOfDay(at.In(clock.Zone)).After(now.StartOfDay()) {
		y, m, d := at.In(clock.Zone).Date()
		pinned := time.Date(y, m, d, DefaultHour, 0, 0, 0, clock.Zone)
		at = &pinned
	}

	if sig.Urgent && aboutToday(sig, at, now) {
		soon := now.Instant.Add(UrgentLead)
		at = &soon
		important = true
	}

	if sig.Past || at == nil || at.Before(now.Instant) {
		important = false
	}

	if important {
		out.Important = 1
		out.Datetime = stringPtr(clock.Format(*at))
	}
	return out
}

// aboutToday reports whether an urgent message concerns the current day:
// it says so, or it names no other day.
func aboutToday(sig Signals, at *time.Time, now clock.Now) bool {
	if sig.Today {
		return true
	}
	if sig.LaterDay {
		return false
	}
	return at == nil || startOfDay(at.In(clock.Zone)).Equal(now.StartOfDay())
}
