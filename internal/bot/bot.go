package bot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/pathakanu/chatmemo/internal/clock"
	"github.com/pathakanu/chatmemo/internal/config"
	"github.com/pathakanu/chatmemo/internal/database"
	"github.com/pathakanu/chatmemo/internal/model"
	"github.com/pathakanu/chatmemo/internal/push"
	"github.com/pathakanu/chatmemo/internal/reminder"
)

// Bot coordinates reminder extraction, notifications, and scheduling.
type Bot struct {
	cfg       *config.Config
	store     database.Store
	extractor *reminder.Extractor
	notifier  *push.Notifier
	cron      *cron.Cron
	now       func() time.Time
	logger    *logrus.Entry
}

// New creates a fully configured Bot instance.
func New(cfg *config.Config, store database.Store, classifier reminder.Classifier, sender push.Sender, logger *logrus.Entry) *Bot {
	c := cron.New(
		cron.WithLocation(clock.Zone),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
	)
	return &Bot{
		cfg:       cfg,
		store:     store,
		extractor: reminder.NewExtractor(classifier, store, logger),
		notifier:  push.NewNotifier(store, sender, logger),
		cron:      c,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the wall clock used for extraction and dispatch.
func (b *Bot) WithClock(now func() time.Time) *Bot {
	b.now = now
	b.extractor.WithClock(now)
	return b
}

// StartScheduler registers the dispatch job and starts the scheduler loop.
func (b *Bot) StartScheduler() error {
	_, err := b.cron.AddFunc(b.cfg.DispatchSchedule, func() {
		b.dispatchDue(context.Background())
	})
	if err != nil {
		return err
	}
	b.cron.Start()
	b.logger.WithField("schedule", b.cfg.DispatchSchedule).Info("scheduler started")
	return nil
}

// StopScheduler stops the cron scheduler and waits for a running dispatch.
func (b *Bot) StopScheduler() {
	ctx := b.cron.Stop()
	<-ctx.Done()
}

// dispatchDue fires every undelivered reminder whose time has come and
// records the outcome. A reminder is attempted once; failures are not
// retried. It returns how many reminders were attempted.
func (b *Bot) dispatchDue(ctx context.Context) int {
	now := clock.Normalize(b.now())
	due, err := b.store.DueReminders(ctx, now.DateTime(), b.cfg.DispatchBatch)
	if err != nil {
		b.logger.WithError(err).Error("scheduler: load due reminders")
		return 0
	}

	for _, r := range due {
		log := b.logger.WithField("reminder_id", r.ID)

		delivery := &model.Delivery{ID: uuid.NewString(), ReminderID: r.ID, Status: model.DeliverySent}
		sent, err := b.notifier.NotifyReminder(ctx, r)
		delivery.Sent = sent
		if err != nil {
			delivery.Status = model.DeliveryFailed
			delivery.Error = err.Error()
			log.WithError(err).Warn("scheduler: reminder not delivered")
		}

		if err := b.store.RecordDelivery(ctx, delivery); err != nil {
			// Without a delivery row the reminder is due again on the next tick.
			log.WithError(err).WithFields(logrus.Fields{
				"status":      delivery.Status,
				"sent":        sent,
				"will_refire": true,
			}).Error("scheduler: delivery not recorded, reminder will fire again")
			continue
		}
		log.WithFields(logrus.Fields{"status": delivery.Status, "sent": sent}).Info("scheduler: reminder fired")
	}
	return len(due)
}
