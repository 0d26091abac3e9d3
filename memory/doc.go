// Package memory contains concrete core.VectorStore and core.Embedder
// implementations that live entirely in process. The contracts reside in the
// core package; select an implementation at wiring time.
//
// InMemoryStore ranks documents by cosine similarity and is suitable for
// tests, demos and small portfolios whose corpus fits in memory. Production
// deployments plug a dedicated vector database behind core.VectorStore.
package memory
