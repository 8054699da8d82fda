package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/pathakanu/chatmemo/internal/model"
)

// FCMSender delivers through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender builds a messaging client from service account fields.
func NewFCMSender(ctx context.Context, projectID, clientEmail, privateKey string) (*FCMSender, error) {
	creds, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   projectID,
		"client_email": clientEmail,
		"private_key":  privateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Send(ctx context.Context, token string, n Notification) error {
	msg := fcmMessage(n)
	msg.Token = token
	_, err := s.client.Send(ctx, msg)
	return err
}

func (s *FCMSender) SendMulticast(ctx context.Context, tokens []string, n Notification) (int, error) {
	msg := fcmMessage(n)
	resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: msg.Notification,
		Android:      msg.Android,
		APNS:         msg.APNS,
		Data:         msg.Data,
	})
	if err != nil {
		return 0, err
	}

	var errs []error
	for i, r := range resp.Responses {
		if !r.Success {
			errs = append(errs, fmt.Errorf("token %d: %w", i, r.Error))
		}
	}
	return resp.SuccessCount, errors.Join(errs...)
}

func (s *FCMSender) Address(u model.User) string { return u.FCMToken }

func fcmMessage(n Notification) *messaging.Message {
	return &messaging.Message{
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Sound:     defaultSound,
				ChannelID: n.ChannelID,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: defaultSound},
			},
		},
		Data: n.Data,
	}
}
