// Package embedding defines the embedding adapter boundary and an
// OpenAI-compatible HTTP implementation. Only the embed/embed-batch
// contract is specified here; vector storage lives in the rag package.
package embedding
