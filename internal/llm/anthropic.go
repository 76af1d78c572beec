package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/abdul-hamid-achik/pplxchat/internal/config"
)

// AnthropicName is the provider name shown to users
const AnthropicName = "Anthropic"

// AnthropicClient calls the Messages API with a single user message
type AnthropicClient struct {
	keys      KeySource
	baseURL   string
	model     string
	maxTokens int
	timeout   time.Duration
	http      *http.Client
}

// NewAnthropicClient creates a client from cfg
func NewAnthropicClient(cfg *config.Config, keys KeySource) *AnthropicClient {
	return &AnthropicClient{
		keys:      keys,
		baseURL:   cfg.BaseURL,
		model:     cfg.DefaultModel,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		http:      newHTTPClient(),
	}
}

// Complete sends prompt to model ("" uses the configured default)
func (c *AnthropicClient) Complete(ctx context.Context, prompt, model string) Result {
	key, missing := resolveKey(ctx, c.keys, AnthropicName)
	if missing != nil {
		return *missing
	}
	if model == "" {
		model = c.model
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	ctx, capture := withCapture(ctx)

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
		option.WithHTTPClient(c.http),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(c.baseURL, "/")+"/"))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := c.maxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	log.Debug("anthropic: model=%s prompt=%d chars", model, len(prompt))
	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		f := failureFor(ctx, capture, AnthropicName, err)
		log.Warn("anthropic: %s (%v)", f.Kind, err)
		return Fail(f)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return Fail(&Failure{Kind: KindEmptyResponse, Provider: AnthropicName})
	}
	return Success(sb.String())
}
