package generate

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sells-group/brand-scope/pkg/anthropic"
	"github.com/sells-group/brand-scope/pkg/perplexity"
)

// Provider names accepted in a backend roster.
const (
	ProviderGroq       = "groq"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderPerplexity = "perplexity"
)

// Completion is a provider-level call: one model, one prompt.
type Completion struct {
	Model       string
	System      string
	Prompt      string
	Temperature *float64
	Schema      json.RawMessage
}

// Output is the raw text and token usage of a completion.
type Output struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// Provider executes completions against one API.
type Provider interface {
	Complete(ctx context.Context, c Completion) (*Output, error)
}

// chatCompleter is the subset of *openai.Client used here.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type openAIProvider struct {
	client chatCompleter
}

// NewOpenAIProvider talks to any OpenAI-compatible chat completions endpoint
// (Groq, OpenAI) and requests JSON-object output.
func NewOpenAIProvider(apiKey, baseURL string) Provider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAIProvider{client: openai.NewClientWithConfig(cfg)}
}

func (p *openAIProvider) Complete(ctx context.Context, c Completion) (*Output, error) {
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.System},
			{Role: openai.ChatMessageRoleUser, Content: c.Prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}
	if c.Temperature != nil {
		req.Temperature = float32(*c.Temperature)
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "openai: create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("openai: response has no choices")
	}
	return &Output{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
	}, nil
}

type anthropicProvider struct {
	client    anthropic.Client
	maxTokens int64
}

// NewAnthropicProvider wraps a Claude client.
func NewAnthropicProvider(client anthropic.Client, maxTokens int64) Provider {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &anthropicProvider{client: client, maxTokens: maxTokens}
}

func (p *anthropicProvider) Complete(ctx context.Context, c Completion) (*Output, error) {
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.Model,
		MaxTokens:   p.maxTokens,
		System:      c.System,
		Messages:    []anthropic.Message{{Role: "user", Content: c.Prompt}},
		Temperature: c.Temperature,
	})
	if err != nil {
		return nil, err
	}
	return &Output{
		Text:         resp.Text(),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

type perplexityProvider struct {
	client perplexity.Client
}

// NewPerplexityProvider wraps a Perplexity client and passes the schema as
// a json_schema response format.
func NewPerplexityProvider(client perplexity.Client) Provider {
	return &perplexityProvider{client: client}
}

func (p *perplexityProvider) Complete(ctx context.Context, c Completion) (*Output, error) {
	req := perplexity.ChatCompletionRequest{
		Model: c.Model,
		Messages: []perplexity.Message{
			{Role: "system", Content: c.System},
			{Role: "user", Content: c.Prompt},
		},
		Temperature: c.Temperature,
	}
	if len(c.Schema) > 0 {
		req.ResponseFormat = perplexity.JSONSchemaFormat(c.Schema)
	}

	resp, err := p.client.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Output{
		Text:         resp.Text(),
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
	}, nil
}
