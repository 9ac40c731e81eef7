package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/agent"
	"github.com/ragent-ai/ragent/api/handlers"
	"github.com/ragent-ai/ragent/config"
	"github.com/ragent-ai/ragent/internal/metrics"
	"github.com/ragent-ai/ragent/internal/server"
	"github.com/ragent-ai/ragent/internal/telemetry"
	"github.com/ragent-ai/ragent/llm"
	"github.com/ragent-ai/ragent/llm/embedding"
	"github.com/ragent-ai/ragent/llm/tools"
	"github.com/ragent-ai/ragent/rag"
)

// Server wires the retrieval pipeline, the agent loop, and the HTTP
// surface together.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	healthHandler *handlers.HealthHandler
	ragHandler    *handlers.RAGHandler
	agentHandler  *handlers.AgentHandler

	metricsCollector *metrics.Collector
	otelProviders    *telemetry.Providers

	rateLimiterCancel context.CancelFunc
}

// NewServer creates the server from loaded configuration.
func NewServer(cfg *config.Config, logger *zap.Logger, otelProviders *telemetry.Providers) *Server {
	return &Server{
		cfg:           cfg,
		logger:        logger,
		otelProviders: otelProviders,
	}
}

// Start initializes dependencies and starts the HTTP and metrics servers.
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector("ragent", s.logger)

	if err := s.initHandlers(); err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
	)

	return nil
}

func (s *Server) initHandlers() error {
	s.healthHandler = handlers.NewHealthHandler(s.logger)

	// Chat and embedding adapters.
	provider := llm.NewOpenAIProvider(llm.OpenAIConfig{
		BaseURL:     s.cfg.LLM.BaseURL,
		APIKey:      s.cfg.LLM.APIKey,
		Model:       s.cfg.LLM.Model,
		MaxTokens:   s.cfg.LLM.MaxTokens,
		Temperature: float32(s.cfg.LLM.Temperature),
		Timeout:     s.cfg.LLM.Timeout,
	}, s.logger)

	embedder := embedding.NewOpenAIProvider(embedding.Config{
		BaseURL:    s.cfg.Embedding.BaseURL,
		APIKey:     s.cfg.Embedding.APIKey,
		Model:      s.cfg.Embedding.Model,
		Dimensions: s.cfg.Embedding.Dimensions,
		MaxBatch:   s.cfg.Embedding.MaxBatch,
		Timeout:    s.cfg.Embedding.Timeout,
	})

	// Retrieval pipeline.
	chunker, err := rag.NewChunker(rag.ChunkingConfig{
		ChunkSize:    s.cfg.RAG.ChunkSize,
		ChunkOverlap: s.cfg.RAG.ChunkOverlap,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("invalid chunking config: %w", err)
	}

	index := rag.NewVectorIndex(s.logger)
	ingestor := rag.NewIngestor(chunker, embedder, index, s.logger)
	retriever := rag.NewRetriever(embedder, index, s.logger)
	ragService := rag.NewService(provider, retriever, rag.ServiceConfig{
		MaxResults: s.cfg.RAG.MaxResults,
		MinScore:   s.cfg.RAG.MinScore,
	}, s.logger)

	s.ragHandler = handlers.NewRAGHandler(ragService, ingestor, index, s.metricsCollector, s.logger)

	// Agent loop.
	registry := tools.NewRegistry(s.logger)
	if err := tools.RegisterBuiltins(registry, s.logger); err != nil {
		return fmt.Errorf("failed to register builtin tools: %w", err)
	}

	sessions := agent.NewSessionStore(s.cfg.Agent.MemoryWindow, s.logger)
	orchestrator := agent.NewOrchestrator(provider, registry, sessions, agent.Config{
		MaxIterations:    s.cfg.Agent.MaxIterations,
		MaxMessageLength: s.cfg.Agent.MaxMessageLength,
		MemoryWindow:     s.cfg.Agent.MemoryWindow,
	}, s.logger)

	s.agentHandler = handlers.NewAgentHandler(orchestrator, s.metricsCollector, s.logger)

	s.logger.Info("Handlers initialized",
		zap.String("llm_model", s.cfg.LLM.Model),
		zap.String("embedding_model", s.cfg.Embedding.Model),
		zap.Int("tools", len(registry.List())),
	)
	return nil
}

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	mux.HandleFunc("POST /api/rag/ask", s.ragHandler.HandleAsk)
	mux.HandleFunc("POST /api/documents", s.ragHandler.HandleUploadDocument)
	mux.HandleFunc("DELETE /api/documents", s.ragHandler.HandleClearIndex)

	mux.HandleFunc("POST /api/agent/execute", s.agentHandler.HandleExecute)
	mux.HandleFunc("DELETE /api/agent/sessions/{id}", s.agentHandler.HandleDeleteSession)
	mux.HandleFunc("GET /api/tools", s.agentHandler.HandleListTools)

	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	handler := Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		OTelTracing(),
		MetricsMiddleware(s.metricsCollector),
		RateLimiter(rateLimiterCtx, float64(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst, s.logger),
	)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20, // 1 MB
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)

	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)

	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// WaitForShutdown blocks until a termination signal, then shuts down
// everything.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}

	s.Shutdown()
}

// Shutdown stops all components gracefully.
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	if s.otelProviders != nil {
		if err := s.otelProviders.Shutdown(ctx); err != nil {
			s.logger.Error("Telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}
