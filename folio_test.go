package folio

import (
	"context"
	"testing"

	"github.com/hupe1980/folio/analytics"
	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/engine"
	"github.com/hupe1980/folio/memory"
	"github.com/hupe1980/folio/model"
	"github.com/hupe1980/folio/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readOnlyStore struct{}

func (readOnlyStore) Query(context.Context, []float32, int) ([]core.EvidenceChunk, error) {
	return nil, nil
}

func TestFolio_ChatWithIndexedPassages(t *testing.T) {
	sink := analytics.NewInMemorySink()
	f := New(func(o *Options) {
		o.Model = model.NewMockModel("mock")
		o.Analytics = sink
	})

	passages, err := memory.LoadPassages("memory/testdata/portfolio.yaml")
	require.NoError(t, err)
	require.NoError(t, f.Index(context.Background(), passages...))

	res, err := f.Chat(context.Background(), "s1", "Software Developer", "Show me the job queue code")
	require.NoError(t, err)

	assert.NotEmpty(t, res.Answer)
	assert.Empty(t, res.Degraded)
	assert.Equal(t, engine.StateDone, res.States[len(res.States)-1])

	events := sink.Events("s1")
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].RetrievalScores)
}

func TestFolio_WithoutModelApologizes(t *testing.T) {
	f := New()

	res, err := f.Chat(context.Background(), "s1", "casual_visitor", "hello")
	require.NoError(t, err)
	assert.Contains(t, res.Degraded, "generation")
	assert.NotEmpty(t, res.Answer)
}

func TestFolio_UnknownRole(t *testing.T) {
	_, err := New().Chat(context.Background(), "s1", "pirate", "ahoy")
	require.ErrorIs(t, err, core.ErrUnknownRole)
}

func TestFolio_ResumeLinkOncePerSession(t *testing.T) {
	rec := notify.NewRecorder()
	f := New(func(o *Options) {
		o.Model = model.NewMockModel("mock")
		o.Email = rec
		o.OwnerEmail = "owner@example.com"
	})

	for range 3 {
		_, err := f.Chat(context.Background(), "s1", "Hiring Manager (technical)", "Please send me your resume")
		require.NoError(t, err)
	}

	msgs := rec.Messages("email")
	require.Len(t, msgs, 1)
	assert.Equal(t, "owner@example.com", msgs[0].To)
	assert.Contains(t, msgs[0].Body, "ref=s1")
}

func TestFolio_IndexUnsupported(t *testing.T) {
	f := New(func(o *Options) { o.VectorStore = readOnlyStore{} })
	assert.ErrorIs(t, f.Index(context.Background(), memory.Passage{ID: "a", Text: "b"}), ErrIndexUnsupported)
}

func TestFolio_Roles(t *testing.T) {
	assert.Len(t, New().Roles(), len(core.Roles()))
}
