package reminder

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pathakanu/chatmemo/internal/clock"
	"github.com/pathakanu/chatmemo/internal/extract"
	"github.com/pathakanu/chatmemo/internal/model"
)

const (
	StatusSuccess = "success"
	StatusIgnored = "ignored"
)

// Writer appends a reminder record. Implementations must write atomically
// and set CreatedAt themselves.
type Writer interface {
	CreateReminder(ctx context.Context, r *model.Reminder) error
}

// Result is the gate's decision. Record is set for StatusSuccess only.
type Result struct {
	Status    string
	Record    *model.Reminder
	Candidate extract.Candidate
}

// Payload is what callers see under "reminder".
func (r Result) Payload() any {
	if r.Record != nil {
		return r.Record
	}
	return r.Candidate
}

// Gate persists resolved candidates that turned out to be important.
type Gate struct {
	store  Writer
	logger *logrus.Entry
}

func NewGate(store Writer, logger *logrus.Entry) *Gate {
	return &Gate{store: store, logger: logger}
}

// Commit writes c when it is important and reports it as ignored otherwise.
func (g *Gate) Commit(ctx context.Context, c extract.Candidate, senderID string, receivers Receivers) (Result, error) {
	if !c.IsImportant() {
		g.logger.WithField("sender_id", senderID).Debug("message not important, nothing stored")
		return Result{Status: StatusIgnored, Candidate: c}, nil
	}

	record := &model.Reminder{
		ID:        uuid.NewString(),
		UserIDs:   Participants(senderID, receivers),
		Datetime:  *c.Datetime,
		Message:   c.Message,
		Important: 1,
	}
	if err := g.store.CreateReminder(ctx, record); err != nil {
		return Result{}, &StoreWriteError{Err: err}
	}
	record.CreatedAt = record.CreatedAt.In(clock.Zone)

	g.logger.WithFields(logrus.Fields{
		"reminder_id": record.ID,
		"sender_id":   senderID,
		"datetime":    record.Datetime,
	}).Info("reminder stored")
	return Result{Status: StatusSuccess, Record: record, Candidate: c}, nil
}
