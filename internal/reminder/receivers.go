package reminder

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errReceiversType = errors.New("receiver_ids must be a string or an array of strings")

// Receivers is the canonical ordered receiver list. It decodes from either a
// single JSON string or an array of strings.
type Receivers []string

func (r *Receivers) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*r = nil
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*r = Receivers{id}
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var ids []string
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return errReceiversType
		}
		*r = Receivers(ids)
		return nil
	default:
		return errReceiversType
	}
}

// Valid reports whether there is at least one receiver and none is blank.
func (r Receivers) Valid() bool {
	if len(r) == 0 {
		return false
	}
	for _, id := range r {
		if id == "" {
			return false
		}
	}
	return true
}

// Participants returns the sender followed by the receivers in order.
// Duplicates are kept.
func Participants(senderID string, receivers Receivers) []string {
	ids := make([]string, 0, len(receivers)+1)
	ids = append(ids, senderID)
	return append(ids, receivers...)
}
