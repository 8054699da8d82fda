package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pathakanu/chatmemo/internal/extract"
)

// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
var ErrClientNotInitialised = errors.New("openai client not initialised")

// Options tunes the classification call.
type Options struct {
	Model     openai.ChatModel
	MaxTokens int64
	Timeout   time.Duration
}

// Client wraps the OpenAI SDK as a reminder classifier.
type Client struct {
	client *openai.Client
	opts   Options
}

// New returns a classifier bound to apiKey. Without a key the client is
// still usable but every call fails with ErrClientNotInitialised.
func New(apiKey string, opts Options, extra ...option.RequestOption) *Client {
	if opts.Model == "" {
		opts.Model = openai.ChatModelGPT4oMini
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 100
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if apiKey == "" {
		return &Client{opts: opts}
	}

	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	client := openai.NewClient(append(base, extra...)...)
	return &Client{client: &client, opts: opts}
}

// Classify sends the extraction instructions and the user's message and
// returns the model's raw answer. No retry is attempted.
func (c *Client) Classify(ctx context.Context, req extract.Request) (string, error) {
	if c.client == nil {
		return "", ErrClientNotInitialised
	}

	params := openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(req.System),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(req.User),
					},
				},
			},
		},
		Temperature:         openai.Float(0.0),
		MaxCompletionTokens: openai.Int(c.opts.MaxTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
