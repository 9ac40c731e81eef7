package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/rag"
	"github.com/ragent-ai/ragent/testutil/mocks"
)

type ragFixture struct {
	handler  *RAGHandler
	index    *rag.VectorIndex
	provider *mocks.MockProvider
	embedder *mocks.MockEmbedder
}

func newRAGFixture(t *testing.T) *ragFixture {
	t.Helper()
	provider := mocks.NewMockProvider().WithResponse("Grounded answer.")
	embedder := mocks.NewMockEmbedder()

	index := rag.NewVectorIndex(zap.NewNop())
	chunker, err := rag.NewChunker(rag.DefaultChunkingConfig(), zap.NewNop())
	require.NoError(t, err)

	ingestor := rag.NewIngestor(chunker, embedder, index, zap.NewNop())
	retriever := rag.NewRetriever(embedder, index, zap.NewNop())
	service := rag.NewService(provider, retriever, rag.DefaultServiceConfig(), zap.NewNop())

	return &ragFixture{
		handler:  NewRAGHandler(service, ingestor, index, nil, zap.NewNop()),
		index:    index,
		provider: provider,
		embedder: embedder,
	}
}

func TestRAGHandler_HandleUploadDocument(t *testing.T) {
	f := newRAGFixture(t)

	body := `{"content":"The sky is blue.","filename":"sky.txt"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(body))

	f.handler.HandleUploadDocument(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result rag.IngestResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "sky.txt", result.Filename)
	assert.Equal(t, 1, result.SegmentCount)
	assert.NotEmpty(t, result.DocumentID)
	assert.Equal(t, 1, f.index.Count())
}

func TestRAGHandler_HandleUploadDocument_Blank(t *testing.T) {
	f := newRAGFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"content":"   ","filename":"a.txt"}`))
	f.handler.HandleUploadDocument(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_DOCUMENT", decodeEnvelope(t, rec).Error.Code)
	assert.Equal(t, 0, f.index.Count())
}

func TestRAGHandler_HandleAsk(t *testing.T) {
	f := newRAGFixture(t)

	// Seed the index through the upload path so the segment text matches
	// the query embedding exactly.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"content":"The sky is blue.","filename":"sky.txt"}`))
	f.handler.HandleUploadDocument(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/rag/ask", strings.NewReader(`{"question":"The sky is blue."}`))
	f.handler.HandleAsk(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var answer rag.AskResponse
	require.NoError(t, json.Unmarshal(data, &answer))

	assert.Equal(t, "Grounded answer.", answer.Answer)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "sky.txt", answer.Sources[0].Filename)
}

func TestRAGHandler_HandleAsk_NoMatch(t *testing.T) {
	f := newRAGFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rag/ask", strings.NewReader(`{"question":"anything"}`))
	f.handler.HandleAsk(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	data, err := json.Marshal(decodeEnvelope(t, rec).Data)
	require.NoError(t, err)
	var answer rag.AskResponse
	require.NoError(t, json.Unmarshal(data, &answer))

	assert.Equal(t, rag.NoMatchAnswer, answer.Answer)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, 0, f.provider.CallCount())
}

func TestRAGHandler_HandleAsk_BlankQuestion(t *testing.T) {
	f := newRAGFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rag/ask", strings.NewReader(`{"question":"  "}`))
	f.handler.HandleAsk(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", decodeEnvelope(t, rec).Error.Code)
}

func TestRAGHandler_HandleAsk_InvalidJSON(t *testing.T) {
	f := newRAGFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rag/ask", strings.NewReader(`{"question"`))
	f.handler.HandleAsk(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeEnvelope(t, rec).Error.Code)
	assert.Equal(t, 0, f.provider.CallCount())
}

func TestRAGHandler_HandleClearIndex(t *testing.T) {
	f := newRAGFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"content":"some text","filename":"a.txt"}`))
	f.handler.HandleUploadDocument(rec, req)
	require.Equal(t, 1, f.index.Count())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/documents", nil)
	f.handler.HandleClearIndex(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
	assert.Equal(t, 0, f.index.Count())
}

func TestRAGHandler_HandleClearIndex_WrongMethod(t *testing.T) {
	f := newRAGFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	f.handler.HandleClearIndex(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
