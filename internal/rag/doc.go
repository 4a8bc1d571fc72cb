// Package rag implements retrieval-augmented generation over pre-embedded
// IS code document chunks.
//
// Components:
//   - Store: in-memory chunk store, loaded once per domain from a JSON file
//     of pre-computed embeddings, ranked by cosine similarity
//   - Embedder: query embedding via a Genkit ai.Embedder (one call per query;
//     chunk embeddings are never recomputed)
//   - Retriever: orchestrates load + search and assembles the cited context
//     block handed to the prompt builder
//   - Indexer: offline tool that fills in missing chunk embeddings
//
// Retrieval is best-effort by design: every failure in the chain degrades to
// an empty context instead of failing the chat request.
package rag
