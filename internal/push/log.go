package push

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pathakanu/chatmemo/internal/model"
)

// LogSender only logs notifications. It is used when no push provider is
// configured.
type LogSender struct {
	logger *logrus.Entry
}

func NewLogSender(logger *logrus.Entry) *LogSender {
	return &LogSender{logger: logger.WithField("sender", "log")}
}

func (s *LogSender) Send(_ context.Context, to string, n Notification) error {
	s.logger.WithFields(logrus.Fields{"to": to, "title": n.Title, "channel": n.ChannelID}).Info(n.Body)
	return nil
}

func (s *LogSender) SendMulticast(ctx context.Context, to []string, n Notification) (int, error) {
	for _, addr := range to {
		_ = s.Send(ctx, addr, n)
	}
	return len(to), nil
}

// Address prefers the FCM token and falls back to the phone number.
func (s *LogSender) Address(u model.User) string {
	if u.FCMToken != "" {
		return u.FCMToken
	}
	return u.Phone
}
