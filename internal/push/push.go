// Package push delivers chat and reminder notifications to participants.
package push

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pathakanu/chatmemo/internal/database"
	"github.com/pathakanu/chatmemo/internal/model"
)

const (
	ChatChannel     = "chat_channel"
	GroupChannel    = "default_channel"
	ReminderChannel = "default_channel"

	defaultSound = "default"
)

// ErrNoAddress is returned when the receiver cannot be reached by the
// configured sender.
var ErrNoAddress = errors.New("receiver has no push address")

// Notification is a provider-neutral push payload.
type Notification struct {
	Title     string
	Body      string
	ChannelID string
	Data      map[string]string
}

// Sender delivers notifications to provider-specific addresses.
type Sender interface {
	Send(ctx context.Context, to string, n Notification) error
	// SendMulticast reports how many addresses accepted the notification.
	// The error, if any, describes the addresses that did not.
	SendMulticast(ctx context.Context, to []string, n Notification) (int, error)
	// Address returns where u is reached, or "" when u cannot be.
	Address(u model.User) string
}

// Directory resolves users and groups. Lookups of unknown ids fail with
// database.ErrNotFound.
type Directory interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetGroup(ctx context.Context, id string) (*model.Group, error)
}

// Notifier fans messages out to the members of a conversation.
type Notifier struct {
	dir    Directory
	sender Sender
	logger *logrus.Entry
}

func NewNotifier(dir Directory, sender Sender, logger *logrus.Entry) *Notifier {
	return &Notifier{dir: dir, sender: sender, logger: logger}
}

// NotifyUser pushes a direct chat message to receiverID.
func (n *Notifier) NotifyUser(ctx context.Context, senderID, receiverID, message string) error {
	receiver, err := n.dir.GetUser(ctx, receiverID)
	if err != nil {
		return err
	}
	to := n.sender.Address(*receiver)
	if to == "" {
		return ErrNoAddress
	}

	senderName := "Someone"
	if senderID != "" {
		sender, err := n.dir.GetUser(ctx, senderID)
		switch {
		case err == nil && sender.Name != "":
			senderName = sender.Name
		case err != nil && !errors.Is(err, database.ErrNotFound):
			return err
		}
	}

	if err := n.sender.Send(ctx, to, Notification{Title: senderName, Body: message, ChannelID: ChatChannel}); err != nil {
		return err
	}
	n.logger.WithFields(logrus.Fields{"sender_id": senderID, "receiver_id": receiverID}).Info("notification sent")
	return nil
}

// NotifyGroup pushes a group chat message to every member except the sender
// and returns how many deliveries were accepted. Zero reachable members is
// not an error.
func (n *Notifier) NotifyGroup(ctx context.Context, groupID, senderID, senderName, message string) (int, error) {
	group, err := n.dir.GetGroup(ctx, groupID)
	if err != nil {
		return 0, err
	}
	groupName := group.Name
	if groupName == "" {
		groupName = "Group"
	}

	receivers := make([]string, 0, len(group.Members))
	for _, id := range group.Members {
		if id != senderID {
			receivers = append(receivers, id)
		}
	}
	to, err := n.addresses(ctx, receivers)
	if err != nil {
		return 0, err
	}
	if len(to) == 0 {
		return 0, nil
	}

	return n.multicast(ctx, to, Notification{
		Title:     groupName,
		Body:      fmt.Sprintf("%s: %s", senderName, message),
		ChannelID: GroupChannel,
		Data: map[string]string{
			"groupId":    groupID,
			"senderId":   senderID,
			"senderName": senderName,
			"groupName":  groupName,
		},
	})
}

// NotifyReminder pushes a due reminder to all of its participants.
func (n *Notifier) NotifyReminder(ctx context.Context, r model.Reminder) (int, error) {
	to, err := n.addresses(ctx, r.UserIDs)
	if err != nil {
		return 0, err
	}
	if len(to) == 0 {
		return 0, nil
	}

	return n.multicast(ctx, to, Notification{
		Title:     "Reminder",
		Body:      r.Message,
		ChannelID: ReminderChannel,
		Data: map[string]string{
			"reminderId": r.ID,
			"datetime":   r.Datetime,
		},
	})
}

// multicast treats partial delivery as success; it fails only when no
// address accepted the notification.
func (n *Notifier) multicast(ctx context.Context, to []string, msg Notification) (int, error) {
	sent, err := n.sender.SendMulticast(ctx, to, msg)
	if err != nil && sent == 0 {
		return 0, err
	}
	if err != nil {
		n.logger.WithError(err).WithField("sent", sent).Warn("some notifications were not accepted")
	}
	return sent, nil
}

// addresses resolves user ids to unique sender addresses, skipping unknown
// users and users without an address.
func (n *Notifier) addresses(ctx context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		u, err := n.dir.GetUser(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if to := n.sender.Address(*u); to != "" && !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	return out, nil
}
