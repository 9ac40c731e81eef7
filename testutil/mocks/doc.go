// Package mocks provides builder-style mock implementations of the chat
// and embedding adapters for tests.
package mocks
