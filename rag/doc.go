// Package rag implements the retrieval-augmented generation pipeline:
// document chunking, an in-memory vector index with cosine similarity
// search, a retriever that assembles grounded context with provenance,
// document ingestion, and the question-answering service on top.
package rag
