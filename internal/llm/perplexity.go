package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/abdul-hamid-achik/pplxchat/internal/config"
)

// PerplexityName is the provider name shown to users
const PerplexityName = "Perplexity Pro AI"

// DefaultPerplexityURL is the OpenAI-compatible API root
const DefaultPerplexityURL = "https://api.perplexity.ai"

// PerplexityClient calls the Perplexity chat/completions endpoint with a
// single user message and no streaming.
type PerplexityClient struct {
	keys      KeySource
	baseURL   string
	model     string
	maxTokens int
	timeout   time.Duration
	http      *http.Client
}

// NewPerplexityClient creates a client from cfg
func NewPerplexityClient(cfg *config.Config, keys KeySource) *PerplexityClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultPerplexityURL
	}
	return &PerplexityClient{
		keys:      keys,
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     cfg.DefaultModel,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		http:      newHTTPClient(),
	}
}

// Complete sends prompt to model ("" uses the configured default)
func (c *PerplexityClient) Complete(ctx context.Context, prompt, model string) Result {
	key, missing := resolveKey(ctx, c.keys, PerplexityName)
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

	conf := openai.DefaultConfig(key)
	conf.BaseURL = c.baseURL
	conf.HTTPClient = c.http
	client := openai.NewClientWithConfig(conf)

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: c.maxTokens,
		Stream:    false,
	}

	log.Debug("perplexity: model=%s prompt=%d chars", model, len(prompt))
	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		f := failureFor(ctx, capture, PerplexityName, err)
		log.Warn("perplexity: %s (%v)", f.Kind, err)
		return Fail(f)
	}
	log.Debug("perplexity: %d choices in %v", len(resp.Choices), time.Since(start))

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Fail(&Failure{Kind: KindEmptyResponse, Provider: PerplexityName})
	}
	return Success(resp.Choices[0].Message.Content)
}
