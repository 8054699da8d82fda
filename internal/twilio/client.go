package twilio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/pathakanu/chatmemo/internal/model"
	"github.com/pathakanu/chatmemo/internal/push"
)

// messageCreator is the slice of the Twilio REST API the client uses.
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Client delivers push notifications as WhatsApp messages via Twilio.
type Client struct {
	api          messageCreator
	fromWhatsApp string
}

// New creates a Twilio client bound to the configured WhatsApp sender number.
func New(accountSID, authToken, fromWhatsApp string) *Client {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken})
	return &Client{
		api:          rest.Api,
		fromWhatsApp: fromWhatsApp,
	}
}

// Send delivers n to a single phone number. The context is not forwarded;
// the Twilio SDK has no context-aware calls.
func (c *Client) Send(_ context.Context, to string, n push.Notification) error {
	if c.api == nil {
		return fmt.Errorf("twilio client not initialised")
	}

	sender := normalizeWhatsAppAddress(c.fromWhatsApp)
	if sender == "" {
		return fmt.Errorf("twilio sender WhatsApp number is not configured")
	}

	recipient := normalizeWhatsAppAddress(to)
	if recipient == "" {
		return fmt.Errorf("recipient number missing or invalid")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(formatBody(n))

	if _, err := c.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send message error: %w", err)
	}
	return nil
}

// SendMulticast sends to each number in turn.
func (c *Client) SendMulticast(ctx context.Context, to []string, n push.Notification) (int, error) {
	var (
		sent int
		errs []error
	)
	for _, number := range to {
		if err := c.Send(ctx, number, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", number, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// Address returns the user's phone number.
func (c *Client) Address(u model.User) string { return u.Phone }

func formatBody(n push.Notification) string {
	if n.Title == "" {
		return n.Body
	}
	return fmt.Sprintf("*%s*\n%s", n.Title, n.Body)
}

func normalizeWhatsAppAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "whatsapp:") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "+") {
		return "whatsapp:" + trimmed
	}
	return "whatsapp:+" + trimmed
}
