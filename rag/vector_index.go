package rag

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/types"
)

// IndexEntry pairs a segment with its embedding. The index is append-only
// and keyed by insertion order; entries are never mutated.
type IndexEntry struct {
	Segment   Segment
	Embedding []float64
}

// Match is one similarity-search result. Matches are ephemeral, created
// per query.
type Match struct {
	Segment Segment `json:"segment"`
	Score   float64 `json:"score"`
}

// VectorIndex is an in-memory append-only vector store. The corpus is
// read-mostly: single-writer/multi-reader via RWMutex is sufficient.
type VectorIndex struct {
	mu      sync.RWMutex
	entries []IndexEntry
	dims    int
	logger  *zap.Logger
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex(logger *zap.Logger) *VectorIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VectorIndex{logger: logger}
}

// Add appends a (segment, embedding) pair. The first add fixes the
// embedding dimension; later adds must match it.
func (x *VectorIndex) Add(seg Segment, embedding []float64) error {
	if len(embedding) == 0 {
		return types.NewValidationError("segment has no embedding")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dims == 0 {
		x.dims = len(embedding)
	} else if len(embedding) != x.dims {
		return types.NewValidationError(
			fmt.Sprintf("embedding dimension mismatch: index has %d, got %d", x.dims, len(embedding)))
	}

	x.entries = append(x.entries, IndexEntry{Segment: seg, Embedding: embedding})
	return nil
}

// Search returns up to k matches with score >= minScore, highest score
// first. The threshold filter applies before the top-k cut, so fewer than
// k (or zero) matches may be returned. Ties are broken by insertion order,
// earlier-inserted first, for determinism.
func (x *VectorIndex) Search(queryEmbedding []float64, k int, minScore float64) []Match {
	if k <= 0 {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	matches := make([]Match, 0, len(x.entries))
	for _, entry := range x.entries {
		score := CosineSimilarity(queryEmbedding, entry.Embedding)
		if score < minScore {
			continue
		}
		matches = append(matches, Match{Segment: entry.Segment, Score: score})
	}

	// Stable sort preserves insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}

// Count returns the number of indexed entries.
func (x *VectorIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Clear removes all entries and resets the dimension.
func (x *VectorIndex) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = nil
	x.dims = 0
	x.logger.Info("vector index cleared")
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|) in [-1, 1]. A zero
// vector (or mismatched lengths) yields 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
