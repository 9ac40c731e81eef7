// Reasonable defaults for every configuration section.
package config

import "time"

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		LLM:       DefaultLLMConfig(),
		Embedding: DefaultEmbeddingConfig(),
		RAG:       DefaultRAGConfig(),
		Agent:     DefaultAgentConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig returns default HTTP server settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
	}
}

// DefaultLLMConfig returns default chat model settings.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		BaseURL:     "https://api.openai.com/v1",
		APIKey:      "",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   2048,
		Timeout:     2 * time.Minute,
	}
}

// DefaultEmbeddingConfig returns default embedding settings.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		BaseURL:    "https://api.openai.com/v1",
		APIKey:     "",
		Model:      "text-embedding-3-small",
		Dimensions: 1536,
		MaxBatch:   100,
		Timeout:    30 * time.Second,
	}
}

// DefaultRAGConfig returns default chunking and retrieval settings.
func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		ChunkSize:    300,
		ChunkOverlap: 30,
		MaxResults:   5,
		MinScore:     0.7,
	}
}

// DefaultAgentConfig returns default orchestration settings.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		MaxIterations:    5,
		MaxMessageLength: 1000,
		MemoryWindow:     20,
	}
}

// DefaultLogConfig returns default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns default tracing settings.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "ragent",
		SampleRate:   0.1,
	}
}
