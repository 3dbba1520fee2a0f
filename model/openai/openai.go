// Package openai provides a model.Completer backed by the OpenAI Chat
// Completions API. Any OpenAI-compatible server works, which makes it the
// usual way to reach a Gemma model hosted by a local inference server.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/litertlm/conversation"
	"github.com/hupe1980/litertlm/model"
)

// ErrNoChoices is returned when the API answers without a choice.
var ErrNoChoices = errors.New("openai: no choices returned")

// Options configure the OpenAI completer.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// BaseURL points the client at an OpenAI-compatible server.
	BaseURL string
	APIKey  string
	// RequestOptions are appended to the client options built from the fields
	// above.
	RequestOptions []option.RequestOption
}

// Completer wraps the OpenAI Chat Completions API behind model.Completer.
type Completer struct {
	client *openai.Client
	opts   Options
}

var _ model.Completer = (*Completer)(nil)

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
}

// NewCompleter creates a completer using the official client. Without an
// APIKey the client reads OPENAI_API_KEY from the environment.
func NewCompleter(optFns ...func(o *Options)) *Completer {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	clientOpts = append(clientOpts, opts.RequestOptions...)

	client := openai.NewClient(clientOpts...)

	return &Completer{client: &client, opts: opts}
}

// NewCompleterFromClient creates a completer from an existing client.
func NewCompleterFromClient(client *openai.Client, optFns ...func(o *Options)) *Completer {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Completer{client: client, opts: opts}
}

// Complete implements model.Completer.
func (c *Completer) Complete(ctx context.Context, req model.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               c.opts.Model,
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

// buildMessages converts the conversation into chat messages. Tool turns
// already carry a rendered function response block and are sent as user
// messages, the way Gemma expects them.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns)+1)
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, t := range req.Turns {
		switch t.Role {
		case conversation.RoleModel:
			messages = append(messages, openai.AssistantMessage(t.Text))
		default:
			messages = append(messages, openai.UserMessage(t.Text))
		}
	}
	return messages
}

// Info returns metadata describing this completer.
func (c *Completer) Info() model.Info {
	return model.Info{
		Name:          c.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}
