package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
)

// DefaultAnthropicModel is used when the anthropic provider has no model set.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicClient completes prompts through the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient creates a client. baseURL may be empty to use the SDK
// default. SDK retries are disabled so each call is a single attempt.
func NewAnthropicClient(apiKey, model, baseURL string) (client *AnthropicClient) {
	if model == "" {
		model = DefaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client = &AnthropicClient{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
	return client
}

// Model returns the configured model identifier.
func (a *AnthropicClient) Model() (model string) {
	model = a.model
	return model
}

// Complete sends prompt as a single user message and returns the trimmed text blocks.
func (a *AnthropicClient) Complete(ctx context.Context, prompt string) (text string, err error) {
	var msg *anthropic.Message
	msg, err = a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   MaxTokens,
		Temperature: anthropic.Float(Temperature),
		TopP:        anthropic.Float(TopP),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		err = errors.Wrap(err, "anthropic messages request failed")
		return text, err
	}

	var builder strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}

	reply := strings.TrimSpace(builder.String())
	if reply == "" {
		err = errors.New("no text content in anthropic response")
		return text, err
	}

	text = reply
	return text, err
}
