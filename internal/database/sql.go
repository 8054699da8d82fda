package database

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pathakanu/chatmemo/internal/model"
)

// New creates a GORM database connection.
// When databaseURL is provided PostgreSQL is used, otherwise SQLite is used.
func New(databaseURL, sqlitePath string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	if databaseURL != "" {
		return gorm.Open(postgres.Open(databaseURL), gormConfig)
	}
	return gorm.Open(sqlite.Open(sqlitePath), gormConfig)
}

func logBackend(db *gorm.DB, log *logrus.Entry) {
	dialector := db.Dialector.Name()
	switch strings.ToLower(dialector) {
	case "postgres":
		log.Info("database: connected to PostgreSQL")
	case "sqlite":
		log.Info("database: using SQLite")
	default:
		log.Infof("database: connected via %s", dialector)
	}
}

// SQLStore implements Store on top of GORM.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore migrates the schema and wraps db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&model.Reminder{}, &model.Delivery{}, &model.User{}, &model.Group{}); err != nil {
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

// DB exposes the underlying connection for maintenance and tests.
func (s *SQLStore) DB() *gorm.DB { return s.db }

// CreateReminder inserts r with a single INSERT. created_at comes from the
// column default; it is read back when the driver cannot return it.
func (s *SQLStore) CreateReminder(ctx context.Context, r *model.Reminder) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return err
	}
	if !r.CreatedAt.IsZero() {
		return nil
	}

	var stored model.Reminder
	if err := s.db.WithContext(ctx).Select("created_at").First(&stored, "id = ?", r.ID).Error; err != nil {
		return err
	}
	r.CreatedAt = stored.CreatedAt
	return nil
}

func (s *SQLStore) DueReminders(ctx context.Context, until string, limit int) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := s.db.WithContext(ctx).
		Select("reminders.*").
		Joins("LEFT JOIN reminder_deliveries ON reminder_deliveries.reminder_id = reminders.id").
		Where("reminder_deliveries.id IS NULL AND reminders.datetime <= ?", until).
		Order("reminders.datetime ASC").
		Limit(limit).
		Find(&reminders).Error
	return reminders, err
}

func (s *SQLStore) RecordDelivery(ctx context.Context, d *model.Delivery) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *SQLStore) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	if err := s.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

func (s *SQLStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
