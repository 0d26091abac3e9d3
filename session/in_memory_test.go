package session

import (
	"context"
	"testing"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_LoadUnknownReturnsFreshState(t *testing.T) {
	s := NewInMemoryStore()
	st, err := s.Load(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, "new", st.SessionID)
	assert.Equal(t, 1, st.TurnNumber())
	assert.Zero(t, s.Len())
}

func TestInMemoryStore_SaveLoadIsolation(t *testing.T) {
	s := NewInMemoryStore()
	st := testutil.NewStateBuilder("s1").Turns(2).Executed(core.ActionOfferResume).Build()
	require.NoError(t, s.Save(context.Background(), st))

	st.Turns = nil
	loaded, err := s.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, loaded.Turns, 2)
	assert.True(t, loaded.HasExecuted(core.ActionOfferResume))

	loaded.MarkExecuted(core.ActionNotifySMS, loaded.Updated)
	again, _ := s.Load(context.Background(), "s1")
	assert.False(t, again.HasExecuted(core.ActionNotifySMS))
}

func TestInMemoryStore_SaveRequiresID(t *testing.T) {
	assert.Error(t, NewInMemoryStore().Save(context.Background(), &core.ConversationState{}))
	assert.Error(t, NewInMemoryStore().Save(context.Background(), nil))
}

func TestInMemoryStore_Delete(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Save(context.Background(), core.NewConversationState("x")))
	require.NoError(t, s.Delete(context.Background(), "x"))
	assert.Zero(t, s.Len())
}
