package reminder

import "fmt"

// MissingFieldsMessage is returned to callers that omit a required field.
const MissingFieldsMessage = "Missing required fields"

// ValidationError reports a request the caller must fix and resubmit.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StoreWriteError reports a failed reminder write. Nothing was persisted.
type StoreWriteError struct {
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store reminder: %v", e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// ClassifierError reports that no response could be obtained from the
// classifier.
type ClassifierError struct {
	Err error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("classify message: %v", e.Err)
}

func (e *ClassifierError) Unwrap() error { return e.Err }
