// Package server manages the HTTP server lifecycle: non-blocking start,
// graceful shutdown, and termination signal handling.
package server
