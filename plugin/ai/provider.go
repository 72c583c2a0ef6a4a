// Package ai wraps the OpenAI-compatible chat-completions API behind a small
// provider, memoizing completions through the cache service so repeated
// storefront analyses do not re-bill the model.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/stratix-ai/stratix/cache"
)

// Config holds the AI provider configuration.
type Config struct {
	BaseURL       string
	APIKey        string
	ChatModel     string
	Timeout       time.Duration
	CompletionTTL time.Duration // how long memoized completions stay cached
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://api.openai.com/v1",
		APIKey:        "",
		ChatModel:     "gpt-4o-mini",
		Timeout:       30 * time.Second,
		CompletionTTL: time.Hour,
	}
}

// LLMClient is the subset of the OpenAI client the provider needs.
// *openai.Client satisfies it; tests supply a fake.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Provider provides cached LLM completions.
type Provider struct {
	client LLMClient
	config *Config
	cache  cache.CacheService
}

// NewProvider creates a new AI provider backed by the given cache.
func NewProvider(cfg *Config, cacheService cache.CacheService) *Provider {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CompletionTTL == 0 {
		cfg.CompletionTTL = time.Hour
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		cache:  cacheService,
	}
}

// Complete performs a single-shot chat completion, memoized by model and
// prompt. Concurrent callers asking for the same prompt share one API call.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	key := cache.BuildKey("ai", "completion", cache.KeyHash(p.config.ChatModel+"\x00"+prompt))

	return cache.GetOrSet(ctx, p.cache, key, func(ctx context.Context) (string, error) {
		return p.complete(ctx, prompt)
	}, p.config.CompletionTTL)
}

// BrandDNA is the cached result of a brand-voice analysis.
type BrandDNA struct {
	BrandID string `json:"brand_id"`
	Summary string `json:"summary"`
}

// AnalyzeBrandDNA summarizes a brand's voice from its storefront documents,
// cached under "brand:<id>:dna". Invalidate with pattern "brand:<id>:*" after
// the merchant edits their content.
func (p *Provider) AnalyzeBrandDNA(ctx context.Context, brandID string, documents []string) (*BrandDNA, error) {
	key := cache.BuildKey("brand", brandID, "dna")

	return cache.GetOrSet(ctx, p.cache, key, func(ctx context.Context) (*BrandDNA, error) {
		prompt := buildBrandDNAPrompt(documents)
		summary, err := p.complete(ctx, prompt)
		if err != nil {
			return nil, err
		}
		return &BrandDNA{
			BrandID: brandID,
			Summary: summary,
		}, nil
	}, p.config.CompletionTTL)
}

// GenerateAdCopy writes ad copy for a product, cached under
// "ads:<hash(product, details)>" so regenerating the same listing is free.
func (p *Provider) GenerateAdCopy(ctx context.Context, productName, productDetails string) (string, error) {
	key := cache.BuildKey("ads", cache.KeyHash(productName+"\x00"+productDetails))

	return cache.GetOrSet(ctx, p.cache, key, func(ctx context.Context) (string, error) {
		prompt := fmt.Sprintf(
			"Write a compelling ad for the product '%s'. Highlight: %s. Include a clear call-to-action.",
			productName, productDetails,
		)
		return p.complete(ctx, prompt)
	}, p.config.CompletionTTL)
}

func (p *Provider) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildBrandDNAPrompt(documents []string) string {
	prompt := "Summarize the brand voice, tone, and core values from the following storefront content:\n"
	for _, doc := range documents {
		prompt += "\n---\n" + doc
	}
	return prompt
}
