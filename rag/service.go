package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/llm"
	"github.com/ragent-ai/ragent/types"
)

const ragPromptTemplate = `Answer the question based on the following context.
If the answer cannot be found in the context, say so.

Context:
%s

Question: %s

Answer:`

// ServiceConfig controls retrieval defaults for question answering.
type ServiceConfig struct {
	MaxResults int     `json:"max_results" yaml:"max_results"`
	MinScore   float64 `json:"min_score" yaml:"min_score"`
}

// DefaultServiceConfig returns the retrieval defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{MaxResults: 5, MinScore: 0.7}
}

// AskRequest is a RAG question.
type AskRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversationId,omitempty"`
	MaxResults     int    `json:"maxResults,omitempty"`
}

// AskResponse is a grounded answer with provenance.
type AskResponse struct {
	Answer         string   `json:"answer"`
	ConversationID string   `json:"conversationId,omitempty"`
	Sources        []Source `json:"sources"`
}

// Service answers questions with retrieval-augmented generation.
type Service struct {
	provider  llm.Provider
	retriever *Retriever
	cfg       ServiceConfig
	logger    *zap.Logger
}

// NewService creates the RAG question-answering service.
func NewService(provider llm.Provider, retriever *Retriever, cfg ServiceConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = 0.7
	}
	return &Service{provider: provider, retriever: retriever, cfg: cfg, logger: logger}
}

// Ask validates the question, retrieves grounding context, and generates
// an answer. A blank question fails before any retrieval occurs. When
// nothing clears the score threshold the fixed sentinel is returned as
// the answer with an empty source list, without calling the chat model.
func (s *Service) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, types.NewValidationError("question cannot be blank")
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.cfg.MaxResults
	}

	s.logger.Info("processing RAG request",
		zap.String("question", req.Question),
		zap.Int("max_results", maxResults))

	result, err := s.retriever.Retrieve(ctx, req.Question, maxResults, s.cfg.MinScore)
	if err != nil {
		return nil, err
	}

	if result.NotFound {
		return &AskResponse{
			Answer:         result.Context,
			ConversationID: req.ConversationID,
			Sources:        []Source{},
		}, nil
	}

	prompt := fmt.Sprintf(ragPromptTemplate, result.Context, req.Question)
	resp, err := s.provider.Completion(ctx, llm.NewPromptRequest(prompt))
	if err != nil {
		return nil, err
	}

	s.logger.Info("RAG response generated",
		zap.Int("sources", len(result.Sources)),
		zap.Int("tokens_used", resp.Usage.TotalTokens))

	return &AskResponse{
		Answer:         resp.Content,
		ConversationID: req.ConversationID,
		Sources:        result.Sources,
	}, nil
}
