package handlers

import (
	"net/http"
	"time"

	"github.com/ragent-ai/ragent/internal/metrics"
	"github.com/ragent-ai/ragent/rag"
	"github.com/ragent-ai/ragent/types"
	"go.uber.org/zap"
)

// RAGHandler serves question answering and document ingestion.
type RAGHandler struct {
	service  *rag.Service
	ingestor *rag.Ingestor
	index    *rag.VectorIndex
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// DocumentUploadRequest is the document ingestion request body.
type DocumentUploadRequest struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// NewRAGHandler creates the RAG handler. The metrics collector may be nil.
func NewRAGHandler(service *rag.Service, ingestor *rag.Ingestor, index *rag.VectorIndex, collector *metrics.Collector, logger *zap.Logger) *RAGHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RAGHandler{
		service:  service,
		ingestor: ingestor,
		index:    index,
		metrics:  collector,
		logger:   logger,
	}
}

// HandleAsk answers a question from the indexed documents
// @Summary Ask a question
// @Description Answer a question grounded in the uploaded documents
// @Tags rag
// @Accept json
// @Produce json
// @Param request body rag.AskRequest true "Question"
// @Success 200 {object} Response{data=rag.AskResponse} "Answer with sources"
// @Failure 400 {object} Response "Validation error"
// @Failure 503 {object} Response "Embedding or chat adapter unavailable"
// @Router /api/rag/ask [post]
func (h *RAGHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req rag.AskRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	start := time.Now()
	resp, err := h.service.Ask(r.Context(), req)
	if err != nil {
		WriteErrorFromErr(w, err, h.logger)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRetrieval(len(resp.Sources) > 0, time.Since(start))
	}

	WriteSuccess(w, resp)
}

// HandleUploadDocument ingests a document into the vector index
// @Summary Upload a document
// @Description Chunk, embed, and index a text document
// @Tags rag
// @Accept json
// @Produce json
// @Param request body DocumentUploadRequest true "Document"
// @Success 200 {object} Response{data=rag.IngestResult} "Ingestion summary"
// @Failure 400 {object} Response "Blank content or filename"
// @Failure 503 {object} Response "Embedding adapter unavailable"
// @Router /api/documents [post]
func (h *RAGHandler) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentUploadRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), req.Content, req.Filename)
	if err != nil {
		WriteErrorFromErr(w, err, h.logger)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordDocumentIngested(h.index.Count())
	}

	WriteSuccess(w, result)
}

// HandleClearIndex removes every indexed segment
// @Summary Clear the index
// @Description Remove all indexed document segments
// @Tags rag
// @Produce json
// @Success 200 {object} Response "Cleared"
// @Router /api/documents [delete]
func (h *RAGHandler) HandleClearIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteErrorMessage(w, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}

	h.index.Clear()
	if h.metrics != nil {
		h.metrics.SetIndexSize(0)
	}

	h.logger.Info("vector index cleared")
	WriteSuccess(w, map[string]any{"cleared": true})
}
