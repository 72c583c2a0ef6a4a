package ai

import (
	"context"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratix-ai/stratix/cache"
)

// fakeLLMClient records completion requests and replies with a fixed message.
type fakeLLMClient struct {
	calls      int
	lastPrompt string
	content    string
	err        error
}

func (f *fakeLLMClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if len(req.Messages) > 0 {
		f.lastPrompt = req.Messages[len(req.Messages)-1].Content
	}
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func newTestProvider(content string) (*Provider, *fakeLLMClient) {
	fake := &fakeLLMClient{content: content}
	provider := NewProvider(&Config{
		APIKey:        "test-key",
		ChatModel:     "gpt-4o-mini",
		CompletionTTL: time.Minute,
	}, cache.NewMockCacheService())
	provider.client = fake
	return provider, fake
}

func TestProvider_CompleteMemoized(t *testing.T) {
	ctx := context.Background()
	provider, fake := newTestProvider("On-brand answer")

	first, err := provider.Complete(ctx, "What is our brand's tone?")
	require.NoError(t, err)
	assert.Equal(t, "On-brand answer", first)
	assert.Equal(t, 1, fake.calls)

	// Repeated prompt is served from cache, not the API.
	second, err := provider.Complete(ctx, "What is our brand's tone?")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.calls)

	// A different prompt misses and calls the API again.
	_, err = provider.Complete(ctx, "Write a tagline")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestProvider_CompleteError(t *testing.T) {
	ctx := context.Background()
	provider, fake := newTestProvider("")
	fake.err = assert.AnError

	_, err := provider.Complete(ctx, "prompt")
	require.Error(t, err)

	// The failure was not cached; the next call retries the API.
	fake.err = nil
	fake.content = "recovered"
	got, err := provider.Complete(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, fake.calls)
}

func TestProvider_AnalyzeBrandDNA(t *testing.T) {
	ctx := context.Background()
	provider, fake := newTestProvider("Warm, artisanal, sustainability-first")
	documents := []string{"About us: we hand-craft ceramics.", "FAQ: shipping within 3 days."}

	dna, err := provider.AnalyzeBrandDNA(ctx, "7", documents)
	require.NoError(t, err)
	assert.Equal(t, "7", dna.BrandID)
	assert.Equal(t, "Warm, artisanal, sustainability-first", dna.Summary)
	assert.Equal(t, 1, fake.calls)

	// Cached under brand:7:dna.
	dna, err = provider.AnalyzeBrandDNA(ctx, "7", documents)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)

	// Invalidating the brand namespace forces a recompute.
	require.NoError(t, provider.cache.InvalidatePattern(ctx, "brand:7:*"))
	_, err = provider.AnalyzeBrandDNA(ctx, "7", documents)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestProvider_GenerateAdCopy(t *testing.T) {
	ctx := context.Background()
	provider, fake := newTestProvider("Meet the Aurora Mug. Buy yours today!")

	copyText, err := provider.GenerateAdCopy(ctx, "Aurora Mug", "hand-glazed, keeps coffee hot for 2 hours")
	require.NoError(t, err)
	assert.Equal(t, "Meet the Aurora Mug. Buy yours today!", copyText)
	assert.Equal(t, 1, fake.calls)
	assert.Contains(t, fake.lastPrompt, "Aurora Mug")
	assert.Contains(t, fake.lastPrompt, "keeps coffee hot for 2 hours")
	assert.Contains(t, fake.lastPrompt, "call-to-action")

	// Same product and details are served from cache.
	_, err = provider.GenerateAdCopy(ctx, "Aurora Mug", "hand-glazed, keeps coffee hot for 2 hours")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)

	// Changing the details regenerates.
	_, err = provider.GenerateAdCopy(ctx, "Aurora Mug", "now in matte black")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
}
