package extract

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"

	"github.com/pathakanu/chatmemo/internal/clock"
)

// MalformedClassificationError reports classifier output that does not match
// the candidate schema. Raw holds the response as received.
type MalformedClassificationError struct {
	Reason string
	Raw    string
}

func (e *MalformedClassificationError) Error() string {
	return "malformed classification: " + e.Reason
}

var candidateFields = map[string]bool{
	"important": true,
	"datetime":  true,
	"message":   true,
}

// ParseCandidate validates the structure of a classifier response. Values
// are checked for type and format only; whether they make sense is left to
// Policy.Resolve.
func ParseCandidate(raw string) (Candidate, error) {
	malformed := func(format string, args ...any) (Candidate, error) {
		return Candidate{}, &MalformedClassificationError{Reason: fmt.Sprintf(format, args...), Raw: raw}
	}

	payload := stripCodeFence(strings.TrimSpace(raw))
	if payload == "" {
		return malformed("empty response")
	}
	if !gjson.Valid(payload) {
		return malformed("response is not valid JSON")
	}

	doc := gjson.Parse(payload)
	if !doc.IsObject() {
		return malformed("response is not a JSON object")
	}

	var unknown []string
	doc.ForEach(func(key, _ gjson.Result) bool {
		if !candidateFields[key.String()] {
			unknown = append(unknown, key.String())
		}
		return true
	})
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return malformed("unexpected fields: %s", strings.Join(unknown, ", "))
	}

	var c Candidate

	important := doc.Get("important")
	switch {
	case !important.Exists():
		return malformed("missing field %q", "important")
	case important.Type != gjson.Number || (important.Num != 0 && important.Num != 1):
		return malformed("field %q must be 0 or 1, got %s", "important", important.Raw)
	}
	c.Important = int(important.Num)

	datetime := doc.Get("datetime")
	switch {
	case !datetime.Exists():
		return malformed("missing field %q", "datetime")
	case datetime.Type == gjson.Null:
	case datetime.Type == gjson.String:
		if _, err := clock.Parse(datetime.Str); err != nil {
			return malformed("field %q must use %q, got %q", "datetime", clock.DateTimeLayout, datetime.Str)
		}
		c.Datetime = stringPtr(datetime.Str)
	default:
		return malformed("field %q must be a string or null, got %s", "datetime", datetime.Raw)
	}

	message := doc.Get("message")
	switch {
	case !message.Exists():
		return malformed("missing field %q", "message")
	case message.Type != gjson.String:
		return malformed("field %q must be a string, got %s", "message", message.Raw)
	}
	c.Message = message.Str

	return c, nil
}

// stripCodeFence unwraps a ```json ... ``` block, which chat models emit
// even when told not to.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(s, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = strings.TrimLeftFunc(strings.TrimPrefix(body, "```"), unicode.IsLetter)
	}
	return strings.TrimSpace(body)
}
