package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseText(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "world"},
	}}
	assert.Equal(t, "hello world", resp.Text())

	assert.Equal(t, "", (&MessageResponse{}).Text())
}

func TestEstimateCost(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}

	cost := usage.EstimateCost("claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.80+2.00, cost, 0.0001)

	assert.Zero(t, usage.EstimateCost("unknown-model"))
}

func TestEstimateCostWithCache(t *testing.T) {
	usage := TokenUsage{
		InputTokens:              100_000,
		OutputTokens:             10_000,
		CacheCreationInputTokens: 50_000,
		CacheReadInputTokens:     200_000,
	}

	cost := usage.EstimateCost("claude-sonnet-4-5-20250929")
	want := 0.1*3.00 + 0.01*15.00 + 0.05*3.00*1.25 + 0.2*3.00*0.1
	assert.InDelta(t, want, cost, 0.0001)
}

func TestToSDKMessagesIncludesImageBlock(t *testing.T) {
	msgs := toSDKMessages([]Message{{
		Role:    "user",
		Content: "read this form",
		Image:   &ImageAttachment{MediaType: "image/jpeg", Data: "aGVsbG8="},
	}})
	assert.Len(t, msgs, 1)
	assert.Len(t, msgs[0].Content, 2)
}
