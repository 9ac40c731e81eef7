package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/testutil"
	"github.com/ragent-ai/ragent/types"
)

func chatServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenAIProvider) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := NewOpenAIProvider(OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
	}, zap.NewNop())
	return srv, p
}

func TestOpenAIProvider_Completion(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	_, p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-123",
			"model": "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "Hello there."},
			}},
			"usage": map[string]any{
				"prompt_tokens":     12,
				"completion_tokens": 4,
				"total_tokens":      16,
			},
		})
	})

	resp, err := p.Completion(context.Background(), NewPromptRequest("Hi"))
	require.NoError(t, err)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])

	assert.Equal(t, "chatcmpl-123", resp.ID)
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, "Hello there.", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 16, resp.Usage.TotalTokens)
}

func TestOpenAIProvider_Completion_RequestOverrides(t *testing.T) {
	var gotBody map[string]any
	_, p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"role": "assistant", "content": "ok"},
			}},
		})
	})

	_, err := p.Completion(context.Background(), &ChatRequest{
		Model:    "gpt-4o",
		Messages: []types.Message{types.NewUserMessage("Hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", gotBody["model"])
}

func TestOpenAIProvider_Completion_StatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		wantCode  types.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, types.ErrUnauthorized, false},
		{http.StatusForbidden, types.ErrUnauthorized, false},
		{http.StatusTooManyRequests, types.ErrRateLimited, true},
		{http.StatusInternalServerError, types.ErrUpstreamError, true},
		{http.StatusBadGateway, types.ErrUpstreamError, true},
		{http.StatusBadRequest, types.ErrInvalidRequest, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			_, p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream failure", tt.status)
			})

			_, err := p.Completion(context.Background(), NewPromptRequest("Hi"))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, types.GetErrorCode(err))
			assert.Equal(t, tt.retryable, types.IsRetryable(err))
		})
	}
}

func TestOpenAIProvider_Completion_APIError(t *testing.T) {
	_, p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model overloaded", "type": "server_error"},
		})
	})

	_, err := p.Completion(context.Background(), NewPromptRequest("Hi"))
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestOpenAIProvider_Completion_NoChoices(t *testing.T) {
	_, p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := p.Completion(context.Background(), NewPromptRequest("Hi"))
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
}

func TestOpenAIProvider_Completion_MalformedJSON(t *testing.T) {
	_, p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	_, err := p.Completion(context.Background(), NewPromptRequest("Hi"))
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
}

func TestOpenAIProvider_Completion_Timeout(t *testing.T) {
	_, p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	req := NewPromptRequest("Hi")
	req.Timeout = 20 * time.Millisecond

	_, err := p.Completion(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamTimeout, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestOpenAIProvider_Completion_CancelledContext(t *testing.T) {
	_, p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})

	_, err := p.Completion(testutil.CancelledContext(), NewPromptRequest("Hi"))
	require.Error(t, err)
	assert.Equal(t, types.ErrProviderUnavailable, types.GetErrorCode(err))
}

func TestOpenAIProvider_Completion_Unreachable(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{
		BaseURL: "http://127.0.0.1:1",
		Model:   "gpt-4o-mini",
	}, zap.NewNop())

	_, err := p.Completion(context.Background(), NewPromptRequest("Hi"))
	require.Error(t, err)
	assert.Equal(t, types.ErrProviderUnavailable, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}
