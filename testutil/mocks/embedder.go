// Mock embedding adapter for tests.
//
// Produces deterministic vectors derived from input text, so identical
// texts embed identically and similarity comparisons are stable across
// runs.
package mocks

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/ragent-ai/ragent/llm/embedding"
)

const mockDimensions = 8

// MockEmbedder is a deterministic mock embedding adapter.
type MockEmbedder struct {
	mu sync.Mutex

	dimensions int
	err        error
	fixed      map[string][]float64 // exact-text overrides

	embedded [][]string // inputs per Embed call
}

// NewMockEmbedder creates a mock embedder with small fixed-dimension
// vectors.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		dimensions: mockDimensions,
		fixed:      make(map[string][]float64),
	}
}

// WithError makes every call fail with err.
func (m *MockEmbedder) WithError(err error) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithVector pins the vector returned for an exact input text. The
// vector length must match the mock's dimensionality.
func (m *MockEmbedder) WithVector(text string, vector []float64) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed[text] = vector
	return m
}

// Name implements embedding.Provider.
func (m *MockEmbedder) Name() string { return "mock" }

// Dimensions implements embedding.Provider.
func (m *MockEmbedder) Dimensions() int { return m.dimensions }

// MaxBatchSize implements embedding.Provider.
func (m *MockEmbedder) MaxBatchSize() int { return 100 }

// Embed implements embedding.Provider.
func (m *MockEmbedder) Embed(ctx context.Context, req *embedding.Request) (*embedding.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	m.embedded = append(m.embedded, append([]string(nil), req.Input...))

	data := make([]embedding.Data, len(req.Input))
	for i, text := range req.Input {
		data[i] = embedding.Data{Index: i, Embedding: m.vectorFor(text)}
	}

	return &embedding.Response{
		Provider:   "mock",
		Model:      "mock-embedding",
		Embeddings: data,
	}, nil
}

// EmbedQuery implements embedding.Provider.
func (m *MockEmbedder) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	resp, err := m.Embed(ctx, &embedding.Request{Input: []string{query}, InputType: embedding.InputTypeQuery})
	if err != nil {
		return nil, err
	}
	return resp.Embeddings[0].Embedding, nil
}

// EmbedDocuments implements embedding.Provider.
func (m *MockEmbedder) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	resp, err := m.Embed(ctx, &embedding.Request{Input: documents, InputType: embedding.InputTypeDocument})
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(documents))
	for _, d := range resp.Embeddings {
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// EmbedCalls returns the inputs of every Embed call.
func (m *MockEmbedder) EmbedCalls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.embedded))
	copy(out, m.embedded)
	return out
}

// vectorFor derives a unit vector from the FNV hash of the text.
func (m *MockEmbedder) vectorFor(text string) []float64 {
	if v, ok := m.fixed[text]; ok {
		return v
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float64, m.dimensions)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float64(int64(seed>>11)) / float64(1<<52)
		norm += vec[i] * vec[i]
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
