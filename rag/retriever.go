package rag

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/llm/embedding"
)

// NoMatchAnswer is the fixed sentinel returned when nothing in the corpus
// clears the score threshold. Callers must surface it as a direct answer
// with empty sources, never fabricate one.
const NoMatchAnswer = "I cannot answer this question based on the provided documents. " +
	"Please try asking something related to the uploaded content."

// Source is one provenance reference for a grounded answer.
type Source struct {
	Filename       string  `json:"filename"`
	Excerpt        string  `json:"excerpt"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// RetrievalResult is the assembled grounded context for one query.
// Sources correspond positionally to the order segments were concatenated
// into Context.
type RetrievalResult struct {
	Context  string
	Sources  []Source
	NotFound bool
}

// Retriever embeds a query, searches the index, and assembles a grounded
// context block with provenance.
type Retriever struct {
	embedder embedding.Provider
	index    *VectorIndex
	logger   *zap.Logger
}

// NewRetriever creates a retriever over the given embedder and index.
func NewRetriever(embedder embedding.Provider, index *VectorIndex, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, index: index, logger: logger}
}

// Retrieve embeds the query and returns the matched segments' text joined
// by blank lines in score-descending order, plus parallel sources. Zero
// matches yield the NoMatchAnswer sentinel context with empty sources.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, minScore float64) (*RetrievalResult, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	matches := r.index.Search(queryEmbedding, k, minScore)
	if len(matches) == 0 {
		r.logger.Warn("no relevant documents found",
			zap.String("query", query),
			zap.Float64("min_score", minScore))
		return &RetrievalResult{
			Context:  NoMatchAnswer,
			Sources:  []Source{},
			NotFound: true,
		}, nil
	}

	texts := make([]string, 0, len(matches))
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Segment.Text)
		sources = append(sources, Source{
			Filename:       m.Segment.Filename,
			Excerpt:        m.Segment.Text,
			RelevanceScore: m.Score,
		})
	}

	r.logger.Info("retrieval completed",
		zap.Int("matches", len(matches)),
		zap.Float64("top_score", matches[0].Score))

	return &RetrievalResult{
		Context: strings.Join(texts, "\n\n"),
		Sources: sources,
	}, nil
}
