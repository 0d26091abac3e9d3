package core

import (
	"context"
	"sort"
)

// EvidenceChunk is a retrieved passage with a relevance score (higher is more
// relevant). It is an immutable value owned by the turn that retrieved it.
type EvidenceChunk struct {
	ID      string  `json:"id"`
	Section string  `json:"section"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// SortEvidence orders chunks by descending score with a stable tie-break on ID.
func SortEvidence(chunks []EvidenceChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score != chunks[j].Score {
			return chunks[i].Score > chunks[j].Score
		}
		return chunks[i].ID < chunks[j].ID
	})
}

// Scores returns the relevance scores in chunk order.
func Scores(chunks []EvidenceChunk) []float64 {
	out := make([]float64, len(chunks))
	for i, c := range chunks {
		out[i] = c.Score
	}
	return out
}

// Embedder turns text into a query embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the nearest-neighbor backend. Implementations can back the
// query with any index; only the ranked result contract matters.
type VectorStore interface {
	Query(ctx context.Context, embedding []float32, k int) ([]EvidenceChunk, error)
}
