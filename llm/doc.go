// Package llm defines the chat-model adapter boundary: a Provider interface
// for synchronous text completion plus an OpenAI-compatible HTTP
// implementation. Tool execution is not handled here; the agent package
// parses tool-call directives out of plain completion text.
package llm
