package memory

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/hupe1980/folio/core"
)

// Document is a portfolio passage stored with its embedding.
type Document struct {
	ID        string
	Section   string
	Text      string
	Embedding []float32
}

// InMemoryStore is a naive process-local VectorStore.
//
// Concurrency: protected by RWMutex.
// Query: linear scan computing cosine similarity against every document.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
	dim  int
}

var _ core.VectorStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string]Document)}
}

// Add stores or replaces documents. All embeddings must share one dimension.
func (m *InMemoryStore) Add(docs ...Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document id must not be empty")
		}
		if len(d.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", d.ID)
		}
		if m.dim == 0 {
			m.dim = len(d.Embedding)
		} else if len(d.Embedding) != m.dim {
			return fmt.Errorf("document %s: embedding dimension %d, store uses %d", d.ID, len(d.Embedding), m.dim)
		}
		emb := make([]float32, len(d.Embedding))
		copy(emb, d.Embedding)
		d.Embedding = emb
		m.docs[d.ID] = d
	}
	return nil
}

// Delete removes a document by id.
func (m *InMemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("document not found")
	}
	delete(m.docs, id)
	return nil
}

// Len returns the number of stored documents.
func (m *InMemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Query returns up to k documents ranked by cosine similarity.
func (m *InMemoryStore) Query(ctx context.Context, embedding []float32, k int) ([]core.EvidenceChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dim != 0 && len(embedding) != m.dim {
		return nil, fmt.Errorf("query dimension %d, store uses %d", len(embedding), m.dim)
	}
	results := make([]core.EvidenceChunk, 0, len(m.docs))
	for _, d := range m.docs {
		results = append(results, core.EvidenceChunk{
			ID:      d.ID,
			Section: d.Section,
			Text:    d.Text,
			Score:   cosine(embedding, d.Embedding),
		})
	}
	core.SortEvidence(results)
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
