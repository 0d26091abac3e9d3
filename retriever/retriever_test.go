package retriever

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Query(ctx context.Context, embedding []float32, k int) ([]core.EvidenceChunk, error) {
	args := m.Called(ctx, embedding, k)
	chunks, _ := args.Get(0).([]core.EvidenceChunk)
	return chunks, args.Error(1)
}

type mockEmbedder struct{ mock.Mock }

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	v, _ := args.Get(0).([]float32)
	return v, args.Error(1)
}

func TestRetrieve_DefaultK(t *testing.T) {
	store := new(mockStore)
	store.On("Query", mock.Anything, []float32{1}, DefaultK).Return([]core.EvidenceChunk{}, nil)

	_, err := New(store, nil).Retrieve(context.Background(), []float32{1}, 0)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRetrieve_NegativeK(t *testing.T) {
	store := new(mockStore)
	_, err := New(store, nil).Retrieve(context.Background(), []float32{1}, -1)
	assert.ErrorIs(t, err, ErrInvalidK)
	store.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetrieve_SortsAndTruncates(t *testing.T) {
	store := new(mockStore)
	store.On("Query", mock.Anything, mock.Anything, 2).Return([]core.EvidenceChunk{
		{ID: "b", Score: 0.5},
		{ID: "c", Score: 0.9},
		{ID: "a", Score: 0.5},
	}, nil)

	got, err := New(store, nil).Retrieve(context.Background(), []float32{1}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestRetrieve_BackendFailure(t *testing.T) {
	store := new(mockStore)
	store.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := New(store, nil).Retrieve(context.Background(), []float32{1}, 3)
	assert.ErrorIs(t, err, core.ErrRetrievalUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRetrieve_NoStore(t *testing.T) {
	_, err := New(nil, nil).Retrieve(context.Background(), []float32{1}, 1)
	assert.ErrorIs(t, err, core.ErrRetrievalUnavailable)
	assert.ErrorIs(t, err, core.ErrBackendNotConfigured)
}

func TestRetrieve_Timeout(t *testing.T) {
	store := new(mockStore)
	store.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	r := New(store, nil, func(o *Options) { o.Timeout = 10 * time.Millisecond })
	_, err := r.Retrieve(context.Background(), []float32{1}, 1)
	assert.ErrorIs(t, err, core.ErrRetrievalUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetrieveText_EmbedFailure(t *testing.T) {
	emb := new(mockEmbedder)
	emb.On("Embed", mock.Anything, "q").Return(nil, errors.New("quota"))

	_, err := New(new(mockStore), emb).RetrieveText(context.Background(), "q", 0)
	assert.ErrorIs(t, err, core.ErrRetrievalUnavailable)
}

func TestRetrieveText_EndToEnd(t *testing.T) {
	e := memory.NewHashEmbedder(128)
	store := memory.NewInMemoryStore()
	for _, d := range []struct{ id, text string }{
		{"go", "built a distributed job scheduler in Go"},
		{"art", "paints watercolor landscapes on weekends"},
	} {
		v, _ := e.Embed(context.Background(), d.text)
		require.NoError(t, store.Add(memory.Document{ID: d.id, Text: d.text, Embedding: v}))
	}

	got, err := New(store, e).RetrieveText(context.Background(), "distributed scheduler in Go", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "go", got[0].ID)
}
