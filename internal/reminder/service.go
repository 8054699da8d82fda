// Package reminder runs the extraction pipeline for a single chat message:
// classify, validate, resolve and, when important, persist.
package reminder

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pathakanu/chatmemo/internal/clock"
	"github.com/pathakanu/chatmemo/internal/extract"
)

// Classifier sends extraction instructions to a language model and returns
// its raw text answer.
type Classifier interface {
	Classify(ctx context.Context, req extract.Request) (string, error)
}

// Input is the body of an extraction request.
type Input struct {
	Message   string    `json:"message"`
	SenderID  string    `json:"sender_id"`
	Receivers Receivers `json:"receiver_ids"`
}

// Validate checks that all fields are present.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Message) == "" || in.SenderID == "" || !in.Receivers.Valid() {
		return &ValidationError{Message: MissingFieldsMessage}
	}
	return nil
}

// Extractor wires the pipeline stages together. It keeps no per-request
// state, so one Extractor serves concurrent requests.
type Extractor struct {
	classifier Classifier
	policy     *extract.Policy
	gate       *Gate
	now        func() time.Time
	logger     *logrus.Entry
}

func NewExtractor(classifier Classifier, store Writer, logger *logrus.Entry) *Extractor {
	return &Extractor{
		classifier: classifier,
		policy:     extract.NewPolicy(),
		gate:       NewGate(store, logger),
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the wall clock, for tests and replays.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// Extract runs the pipeline for in. Every stage failure aborts the request.
func (e *Extractor) Extract(ctx context.Context, in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	now := clock.Normalize(e.now())
	raw, err := e.classifier.Classify(ctx, extract.BuildRequest(now, in.Message))
	if err != nil {
		return Result{}, &ClassifierError{Err: err}
	}

	c, err := extract.ParseCandidate(raw)
	if err != nil {
		e.logger.WithField("raw", raw).Warn("classifier returned malformed output")
		return Result{}, err
	}
	// The record carries what the user wrote, not the model's echo of it.
	c.Message = in.Message

	resolved := e.policy.Resolve(c, now)
	if resolved.Important != c.Important {
		e.logger.WithFields(logrus.Fields{
			"classifier": c.Important,
			"resolved":   resolved.Important,
		}).Debug("policy overrode classifier verdict")
	}

	return e.gate.Commit(ctx, resolved, in.SenderID, in.Receivers)
}
