/*
Package testutil provides shared helpers for tests across the project.

Context helpers (TestContext, CancelledContext) register cleanup
automatically to avoid leaks. The mocks subpackage provides builder-style
mock implementations of the chat and embedding adapters with error
injection and call recording.
*/
package testutil
