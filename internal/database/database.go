package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pathakanu/chatmemo/internal/config"
	"github.com/pathakanu/chatmemo/internal/model"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Store is the persistence surface used by the service. Reminder records
// are only ever created; delivery outcomes are appended separately.
type Store interface {
	// CreateReminder writes r in a single atomic operation and fills in
	// the store-assigned CreatedAt.
	CreateReminder(ctx context.Context, r *model.Reminder) error
	// DueReminders returns up to limit undelivered reminders whose datetime
	// is at or before until, oldest first.
	DueReminders(ctx context.Context, until string, limit int) ([]model.Reminder, error)
	RecordDelivery(ctx context.Context, d *model.Delivery) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetGroup(ctx context.Context, id string) (*model.Group, error)
	Close(ctx context.Context) error
}

// Open connects the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Entry) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		store, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		logger.WithField("database", cfg.MongoDB).Info("database: connected to MongoDB")
		return store, nil
	default:
		db, err := New(cfg.DatabaseURL, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logBackend(db, logger)
		return NewSQLStore(db)
	}
}

var (
	sharedOnce  sync.Once
	sharedStore Store
	sharedErr   error
)

// Shared returns the process-wide store, opening it on first use. Later
// calls return the same store (or the same error) and never reconnect.
func Shared(ctx context.Context, cfg *config.Config, logger *logrus.Entry) (Store, error) {
	sharedOnce.Do(func() {
		sharedStore, sharedErr = Open(ctx, cfg, logger)
		if sharedErr != nil {
			sharedErr = fmt.Errorf("open store: %w", sharedErr)
		}
	})
	return sharedStore, sharedErr
}
