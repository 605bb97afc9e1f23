// ABOUTME: OpenAI-compatible text generation client used for the AI front page
// ABOUTME: Serves OpenAI, Ollama and Anthropic through their chat completions endpoints

package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	coreerrors "daily-feed/core/errors"
	"daily-feed/core/interfaces"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Provider types accepted in configuration
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

const (
	defaultOllamaURL     = "http://127.0.0.1:1234"
	anthropicURL         = "https://api.anthropic.com/v1/"
	defaultTimeout       = 120 * time.Second
	defaultMaxRetries    = 3
	defaultMaxTokens     = 20000
	defaultOllamaModel   = "llama2"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultClaudeModel   = "claude-3-sonnet-20240229"
	ollamaPlaceholderKey = "ollama"
)

// Config selects the provider and model.
type Config struct {
	Type       string
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration

	// MaxRetries of zero uses the default; a negative value disables retries.
	MaxRetries int
}

// Client implements interfaces.TextGenerator
type Client struct {
	client openaisdk.Client
	model  string
	api    string
	logger interfaces.Logger
}

// NewClient validates cfg and builds a client for the configured provider
func NewClient(cfg Config, logger interfaces.Logger) (*Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Type))
	model := cfg.Model
	baseURL := strings.TrimSpace(cfg.BaseURL)
	apiKey := cfg.APIKey

	switch provider {
	case ProviderOllama:
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		baseURL = strings.TrimRight(baseURL, "/") + "/v1/"
		if apiKey == "" {
			apiKey = ollamaPlaceholderKey
		}
		if model == "" {
			model = defaultOllamaModel
		}
	case ProviderAnthropic:
		if baseURL == "" {
			baseURL = anthropicURL
		}
		if model == "" {
			model = defaultClaudeModel
		}
	case ProviderOpenAI:
		if model == "" {
			model = defaultOpenAIModel
		}
	default:
		return nil, &coreerrors.ValidationError{
			Field:   "front_page.provider.type",
			Message: fmt.Sprintf("unsupported provider %q (supported: openai, ollama, anthropic)", cfg.Type),
		}
	}

	if apiKey == "" {
		return nil, &coreerrors.ValidationError{
			Field:   "front_page.provider.api_key",
			Message: provider + " provider requires an API key",
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	} else if retries == 0 {
		retries = defaultMaxRetries
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(retries),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if provider == ProviderAnthropic {
		opts = append(opts, option.WithHeader("x-api-key", apiKey))
	}

	return &Client{
		client: openaisdk.NewClient(opts...),
		model:  model,
		api:    provider,
		logger: logger,
	}, nil
}

// Model returns the effective model name
func (c *Client) Model() string {
	return c.model
}

// GenerateText sends prompt as a single user message at temperature 0 and returns
// the first choice.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(c.model),
		Messages:    []openaisdk.ChatCompletionMessageParamUnion{openaisdk.UserMessage(prompt)},
		Temperature: openaisdk.Float(0),
		MaxTokens:   openaisdk.Int(defaultMaxTokens),
	})
	if err != nil {
		var apiErr *openaisdk.Error
		if errors.As(err, &apiErr) {
			err = &coreerrors.ExternalAPIError{
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Message,
				API:        c.api,
			}
		}
		c.log("Text generation failed", map[string]interface{}{"error": err.Error()})
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices", c.api)
	}

	c.log("Text generated", map[string]interface{}{
		"provider": c.api,
		"model":    c.model,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	})
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) log(msg string, fields map[string]interface{}) {
	if c.logger == nil {
		return
	}
	if _, failed := fields["error"]; failed {
		c.logger.Warn(msg, fields)
		return
	}
	c.logger.Debug(msg, fields)
}
