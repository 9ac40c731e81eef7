/*
Package handlers implements the HTTP request handlers for the service.

Endpoints cover retrieval-augmented question answering, document
ingestion, agent task execution, session lifecycle, the tool catalog,
and health checks. All handlers follow standard net/http interfaces.

Core types:

  - RAGHandler: question answering and document ingestion
  - AgentHandler: agent execution, sessions, tool catalog
  - HealthHandler: service health checks
  - Response: unified JSON envelope (success, data, error, timestamp)
  - ErrorInfo: structured error payload with code and retryable flag

WriteSuccess / WriteError / WriteJSON provide the unified response
format, DecodeJSONBody enforces strict JSON decoding, and error codes
map automatically to 4xx/5xx status codes.
*/
package handlers
