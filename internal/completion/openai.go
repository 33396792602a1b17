package completion

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig configures the OpenAI chat-completions backend.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // empty uses the SDK default
	Model       string
	Temperature float64
	MaxTokens   int64
}

// OpenAI is a Client backed by the OpenAI chat-completions API.
type OpenAI struct {
	client openai.Client
	cfg    OpenAIConfig
}

var _ Client = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI client. Extra request options are appended
// after the ones derived from cfg.
func NewOpenAI(cfg OpenAIConfig, opts ...option.RequestOption) *OpenAI {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAI{
		client: openai.NewClient(reqOpts...),
		cfg:    cfg,
	}
}

// Complete sends the system and user messages and returns the first choice.
func (c *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.cfg.Temperature),
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(c.cfg.MaxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &Error{Backend: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Backend: "openai", Err: errors.New("response has no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
