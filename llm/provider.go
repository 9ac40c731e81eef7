package llm

import (
	"context"
	"time"

	"github.com/ragent-ai/ragent/types"
)

// ChatRequest is a synchronous completion request.
type ChatRequest struct {
	Model       string          `json:"model,omitempty"`
	Messages    []types.Message `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float32         `json:"temperature,omitempty"`
	Timeout     time.Duration   `json:"timeout,omitempty"`
}

// ChatUsage reports token usage for a completion.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse is the assistant reply to a ChatRequest.
type ChatResponse struct {
	ID           string    `json:"id,omitempty"`
	Provider     string    `json:"provider,omitempty"`
	Model        string    `json:"model"`
	Content      string    `json:"content"`
	FinishReason string    `json:"finish_reason,omitempty"`
	Usage        ChatUsage `json:"usage,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Provider defines the unified chat-model adapter interface.
//
// Completion failures are reported as *types.Error with adapter codes
// (PROVIDER_UNAVAILABLE, UPSTREAM_TIMEOUT, UPSTREAM_ERROR, ...); callers
// must not retry inside the orchestration loop; retry policy, if any,
// belongs to the Provider implementation.
type Provider interface {
	// Completion sends the full conversation context and returns the
	// assistant reply. The call honors ctx cancellation and deadlines.
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the provider's unique identifier.
	Name() string
}

// NewPromptRequest builds a single-turn request from prompt text.
func NewPromptRequest(prompt string) *ChatRequest {
	return &ChatRequest{
		Messages: []types.Message{types.NewUserMessage(prompt)},
	}
}
