// Package extract turns a classifier verdict about a chat message into a
// deterministic reminder candidate.
package extract

// Candidate is the classifier's structured verdict about one chat message.
// After Policy.Resolve, Datetime is non-nil exactly when Important is 1.
type Candidate struct {
	Important int     `json:"important"`
	Datetime  *string `json:"datetime"`
	Message   string  `json:"message"`
}

// IsImportant reports whether the candidate should be persisted.
func (c Candidate) IsImportant() bool {
	return c.Important == 1 && c.Datetime != nil
}

func stringPtr(s string) *string { return &s }
