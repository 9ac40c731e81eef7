package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ragent-ai/ragent/types"
)

// Config holds configuration for the OpenAI-compatible embedding provider.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	MaxBatch   int
	Timeout    time.Duration
}

// OpenAIProvider implements Provider against an OpenAI-compatible
// /embeddings endpoint.
type OpenAIProvider struct {
	cfg    Config
	client *http.Client
}

// NewOpenAIProvider creates an OpenAI-compatible embedding provider.
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBatch == 0 {
		cfg.MaxBatch = 100
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 1536
	}
	return &OpenAIProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *OpenAIProvider) Name() string      { return "openai" }
func (p *OpenAIProvider) Dimensions() int   { return p.cfg.Dimensions }
func (p *OpenAIProvider) MaxBatchSize() int { return p.cfg.MaxBatch }

type openAIEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Model string `json:"model"`
	Data  []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed generates embeddings for the given inputs in one upstream call.
func (p *OpenAIProvider) Embed(ctx context.Context, req *Request) (*Response, error) {
	if len(req.Input) == 0 {
		return nil, types.NewValidationError("embedding input is empty")
	}
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	raw, err := p.doRequest(ctx, openAIEmbeddingRequest{Model: model, Input: req.Input})
	if err != nil {
		return nil, err
	}

	var parsed openAIEmbeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "malformed embedding response").WithCause(err)
	}
	if parsed.Error != nil {
		return nil, types.NewError(types.ErrUpstreamError, parsed.Error.Message)
	}
	if len(parsed.Data) != len(req.Input) {
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("embedding count mismatch: want %d, got %d", len(req.Input), len(parsed.Data)))
	}

	// Upstream order is not guaranteed; restore input order by index.
	sort.Slice(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })

	resp := &Response{
		Provider: p.Name(),
		Model:    parsed.Model,
		Usage:    Usage{PromptTokens: parsed.Usage.PromptTokens, TotalTokens: parsed.Usage.TotalTokens},
	}
	for _, d := range parsed.Data {
		resp.Embeddings = append(resp.Embeddings, Data{Index: d.Index, Embedding: d.Embedding})
	}
	return resp, nil
}

// EmbedQuery embeds a single query string.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	resp, err := p.Embed(ctx, &Request{Input: []string{query}, InputType: InputTypeQuery})
	if err != nil {
		return nil, err
	}
	return resp.Embeddings[0].Embedding, nil
}

// EmbedDocuments embeds multiple documents, splitting into provider-sized
// batches executed concurrently. Results keep input order. Any batch
// failure fails the whole call; callers must not index partial results.
func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	if len(documents) == 0 {
		return nil, types.NewValidationError("no documents to embed")
	}

	out := make([][]float64, len(documents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for start := 0; start < len(documents); start += p.cfg.MaxBatch {
		end := start + p.cfg.MaxBatch
		if end > len(documents) {
			end = len(documents)
		}
		start, end := start, end
		g.Go(func() error {
			resp, err := p.Embed(gctx, &Request{Input: documents[start:end], InputType: InputTypeDocument})
			if err != nil {
				return err
			}
			for i, d := range resp.Embeddings {
				out[start+i] = d.Embedding
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *OpenAIProvider) doRequest(ctx context.Context, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "marshal request").WithCause(err)
	}

	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/embeddings"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "build request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, types.NewError(types.ErrUpstreamTimeout, "embedding call timed out").
				WithCause(err).WithRetryable(true)
		}
		return nil, types.NewError(types.ErrProviderUnavailable, "embedding provider unreachable").
			WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "read response body").WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, types.NewError(types.ErrUnauthorized, "embedding auth rejected").WithHTTPStatus(resp.StatusCode)
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, types.NewError(types.ErrRateLimited, "embedding rate limited").
				WithHTTPStatus(resp.StatusCode).WithRetryable(true)
		case resp.StatusCode >= 500:
			return nil, types.NewError(types.ErrUpstreamError,
				fmt.Sprintf("embedding upstream returned %d", resp.StatusCode)).
				WithHTTPStatus(resp.StatusCode).WithRetryable(true)
		default:
			return nil, types.NewError(types.ErrInvalidRequest,
				fmt.Sprintf("embedding request rejected with %d", resp.StatusCode)).
				WithHTTPStatus(resp.StatusCode)
		}
	}
	return raw, nil
}
