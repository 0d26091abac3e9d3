package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_QueryRanksByCosine(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Add(
		Document{ID: "a", Section: "projects", Text: "A", Embedding: []float32{1, 0}},
		Document{ID: "b", Section: "skills", Text: "B", Embedding: []float32{0.7, 0.7}},
		Document{ID: "c", Section: "bio", Text: "C", Embedding: []float32{0, 1}},
	))

	res, err := s.Query(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "a", res[0].ID)
	assert.Equal(t, "b", res[1].ID)
	assert.Greater(t, res[0].Score, res[1].Score)
}

func TestInMemoryStore_DimensionChecks(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Add(Document{ID: "a", Embedding: []float32{1, 0}}))
	assert.Error(t, s.Add(Document{ID: "b", Embedding: []float32{1, 0, 0}}))
	assert.Error(t, s.Add(Document{ID: "", Embedding: []float32{1, 0}}))
	assert.Error(t, s.Add(Document{ID: "c"}))

	_, err := s.Query(context.Background(), []float32{1}, 1)
	assert.Error(t, err)
}

func TestInMemoryStore_Delete(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Add(Document{ID: "a", Embedding: []float32{1}}))
	require.NoError(t, s.Delete("a"))
	assert.Zero(t, s.Len())
	assert.Error(t, s.Delete("a"))
}

func TestInMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewInMemoryStore().Query(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Add(Document{ID: string(rune('A' + i%5)), Embedding: []float32{float32(i), 1}})
			if _, err := s.Query(context.Background(), []float32{1, 1}, 3); err != nil {
				t.Errorf("query error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, s.Len())
}

func TestHashEmbedder_DeterministicAndNormalized(t *testing.T) {
	e := NewHashEmbedder(64)
	a, err := e.Embed(context.Background(), "Go microservices and Kubernetes")
	require.NoError(t, err)
	b, _ := e.Embed(context.Background(), "go MICROSERVICES and kubernetes!")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	var norm float32
	for _, v := range a {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestHashEmbedder_SimilarTextRanksHigher(t *testing.T) {
	e := NewHashEmbedder(256)
	s := NewInMemoryStore()
	for id, text := range map[string]string{
		"rag":    "retrieval augmented generation pipeline with embeddings",
		"coffee": "espresso and latte art hobby",
	} {
		v, _ := e.Embed(context.Background(), text)
		require.NoError(t, s.Add(Document{ID: id, Text: text, Embedding: v}))
	}
	q, _ := e.Embed(context.Background(), "how does the retrieval pipeline use embeddings")
	res, err := s.Query(context.Background(), q, 1)
	require.NoError(t, err)
	assert.Equal(t, "rag", res[0].ID)
}
