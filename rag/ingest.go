package rag

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/llm/embedding"
	"github.com/ragent-ai/ragent/types"
)

// IngestResult summarizes one ingested document.
type IngestResult struct {
	DocumentID   string `json:"documentId"`
	Filename     string `json:"filename"`
	SegmentCount int    `json:"segmentCount"`
}

// Ingestor turns raw text into indexed, embedded segments.
type Ingestor struct {
	chunker  *Chunker
	embedder embedding.Provider
	index    *VectorIndex
	logger   *zap.Logger
}

// NewIngestor creates a document ingestor.
func NewIngestor(chunker *Chunker, embedder embedding.Provider, index *VectorIndex, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{chunker: chunker, embedder: embedder, index: index, logger: logger}
}

// Ingest chunks, embeds, and indexes one document. Blank content fails
// with EMPTY_DOCUMENT before anything is touched; index writes happen
// only after every segment embedded successfully, so a failed ingestion
// leaves no partial state.
func (ing *Ingestor) Ingest(ctx context.Context, content, filename string) (*IngestResult, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, types.NewValidationError("filename cannot be blank")
	}
	if strings.TrimSpace(content) == "" {
		return nil, types.NewEmptyDocumentError("document content cannot be blank")
	}

	doc := Document{
		ID:       uuid.NewString(),
		Filename: filename,
		Content:  content,
	}

	segments, err := ing.chunker.Split(doc)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}

	embeddings, err := ing.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}

	for i, seg := range segments {
		if err := ing.index.Add(seg, embeddings[i]); err != nil {
			return nil, err
		}
	}

	ing.logger.Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.String("filename", filename),
		zap.Int("segments", len(segments)))

	return &IngestResult{
		DocumentID:   doc.ID,
		Filename:     filename,
		SegmentCount: len(segments),
	}, nil
}
