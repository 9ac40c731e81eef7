package rag

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/ragent-ai/ragent/types"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
		{"length mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0.0},
		{"scaled", []float64{1, 1}, []float64{5, 5}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestVectorIndex_Add(t *testing.T) {
	idx := NewVectorIndex(zap.NewNop())

	err := idx.Add(Segment{DocumentID: "d1"}, nil)
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	require.NoError(t, idx.Add(Segment{DocumentID: "d1"}, []float64{1, 0, 0}))
	assert.Equal(t, 1, idx.Count())

	// First add fixed the dimension at 3.
	err = idx.Add(Segment{DocumentID: "d2"}, []float64{1, 0})
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
	assert.Equal(t, 1, idx.Count())
}

func TestVectorIndex_Search_RanksByScore(t *testing.T) {
	idx := NewVectorIndex(zap.NewNop())
	require.NoError(t, idx.Add(Segment{Text: "far"}, []float64{0, 1}))
	require.NoError(t, idx.Add(Segment{Text: "near"}, []float64{1, 0.1}))
	require.NoError(t, idx.Add(Segment{Text: "exact"}, []float64{1, 0}))

	matches := idx.Search([]float64{1, 0}, 10, 0)
	require.Len(t, matches, 3)
	assert.Equal(t, "exact", matches[0].Segment.Text)
	assert.Equal(t, "near", matches[1].Segment.Text)
	assert.Equal(t, "far", matches[2].Segment.Text)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
}

func TestVectorIndex_Search_ThresholdBeforeTopK(t *testing.T) {
	idx := NewVectorIndex(zap.NewNop())
	require.NoError(t, idx.Add(Segment{Text: "good"}, []float64{1, 0}))
	require.NoError(t, idx.Add(Segment{Text: "bad"}, []float64{0, 1}))
	require.NoError(t, idx.Add(Segment{Text: "ok"}, []float64{1, 0.5}))

	// k=2 but only entries at or above the threshold are candidates, so
	// "bad" never displaces anything.
	matches := idx.Search([]float64{1, 0}, 2, 0.5)
	require.Len(t, matches, 2)
	assert.Equal(t, "good", matches[0].Segment.Text)
	assert.Equal(t, "ok", matches[1].Segment.Text)

	// Threshold above everything yields an empty result, not an error.
	matches = idx.Search([]float64{1, 0}, 2, 1.1)
	assert.Empty(t, matches)
}

func TestVectorIndex_Search_TiesKeepInsertionOrder(t *testing.T) {
	idx := NewVectorIndex(zap.NewNop())
	require.NoError(t, idx.Add(Segment{Text: "first"}, []float64{1, 0}))
	require.NoError(t, idx.Add(Segment{Text: "second"}, []float64{2, 0}))
	require.NoError(t, idx.Add(Segment{Text: "third"}, []float64{3, 0}))

	matches := idx.Search([]float64{1, 0}, 3, 0)
	require.Len(t, matches, 3)
	assert.Equal(t, "first", matches[0].Segment.Text)
	assert.Equal(t, "second", matches[1].Segment.Text)
	assert.Equal(t, "third", matches[2].Segment.Text)
}

func TestVectorIndex_Search_TopKCut(t *testing.T) {
	idx := NewVectorIndex(zap.NewNop())
	for i := 0; i < 5; i++ {
		vec := []float64{1, float64(i) / 10}
		require.NoError(t, idx.Add(Segment{Position: i}, vec))
	}

	matches := idx.Search([]float64{1, 0}, 2, 0)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Segment.Position)
	assert.Equal(t, 1, matches[1].Segment.Position)
}

func TestVectorIndex_Search_InvalidK(t *testing.T) {
	idx := NewVectorIndex(zap.NewNop())
	require.NoError(t, idx.Add(Segment{}, []float64{1}))

	assert.Nil(t, idx.Search([]float64{1}, 0, 0))
	assert.Nil(t, idx.Search([]float64{1}, -1, 0))
}

func TestVectorIndex_Clear(t *testing.T) {
	idx := NewVectorIndex(zap.NewNop())
	require.NoError(t, idx.Add(Segment{}, []float64{1, 2, 3}))
	require.Equal(t, 1, idx.Count())

	idx.Clear()
	assert.Equal(t, 0, idx.Count())

	// Dimension resets with the entries.
	assert.NoError(t, idx.Add(Segment{}, []float64{1, 2}))
}

func TestCosineSimilarity_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dims := rapid.IntRange(1, 16).Draw(t, "dims")
		elem := rapid.Float64Range(-100, 100)
		a := rapid.SliceOfN(elem, dims, dims).Draw(t, "a")
		b := rapid.SliceOfN(elem, dims, dims).Draw(t, "b")

		ab := CosineSimilarity(a, b)
		ba := CosineSimilarity(b, a)
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("asymmetric: cos(a,b)=%v cos(b,a)=%v", ab, ba)
		}
		if ab < -1-1e-9 || ab > 1+1e-9 {
			t.Fatalf("out of range: %v", ab)
		}

		var norm float64
		for _, v := range a {
			norm += v * v
		}
		self := CosineSimilarity(a, a)
		if norm > 0 && math.Abs(self-1) > 1e-9 {
			t.Fatalf("self-similarity %v for non-zero vector", self)
		}
		if norm == 0 && self != 0 {
			t.Fatalf("zero vector self-similarity %v, want 0", self)
		}
	})
}

func TestVectorIndex_NormalizedScores(t *testing.T) {
	idx := NewVectorIndex(zap.NewNop())
	require.NoError(t, idx.Add(Segment{Text: "a"}, []float64{3, 4}))

	matches := idx.Search([]float64{3, 4}, 1, 0)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.False(t, math.IsNaN(matches[0].Score))
}
