// Package agent drives the tool-calling loop: it sends conversation
// context to the chat model, scans the reply for tool-call directives,
// dispatches them through the tool registry, feeds observations back, and
// stops when the model answers directly or the iteration cap is reached.
// Per-session conversation memory and the session store live here too.
package agent
