package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/engine"
)

type mockChatter struct {
	mock.Mock
}

func (m *mockChatter) Chat(ctx context.Context, sessionID, role, query string) (*engine.TurnResult, error) {
	args := m.Called(ctx, sessionID, role, query)
	res, _ := args.Get(0).(*engine.TurnResult)
	return res, args.Error(1)
}

func (m *mockChatter) Roles() []core.RoleID {
	return core.Roles()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&m))
	return m
}

func TestCreateTurn(t *testing.T) {
	chat := &mockChatter{}
	chat.On("Chat", mock.Anything, "s1", "software_developer", "What is your stack?").Return(&engine.TurnResult{
		SessionID: "s1",
		Role:      core.RoleSoftwareDeveloper,
		Answer:    "Go all the way down.",
		FollowUps: []string{"Show another code example"},
		States:    []engine.State{engine.StateStart, engine.StateDone},
	}, nil)

	w := post(t, New(chat), "/v1/sessions/s1/turns", `{"role":"software_developer","query":"  What is your stack?  "}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decode(t, w)
	assert.Equal(t, "Go all the way down.", body["answer"])
	assert.Equal(t, []any{"Show another code example"}, body["follow_ups"])
	chat.AssertExpectations(t)
}

func TestCreateTurn_UnknownRole(t *testing.T) {
	chat := &mockChatter{}
	chat.On("Chat", mock.Anything, "s1", "pirate", "ahoy").Return(nil, fmt.Errorf("%w: %q", core.ErrUnknownRole, "pirate"))

	w := post(t, New(chat), "/v1/sessions/s1/turns", `{"role":"pirate","query":"ahoy"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "unknown role")
}

func TestCreateTurn_BadRequests(t *testing.T) {
	chat := &mockChatter{}
	srv := New(chat, func(o *Options) { o.MaxQueryLength = 10 })

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"role":`, http.StatusBadRequest},
		{"empty query", `{"role":"casual_visitor","query":"   "}`, http.StatusBadRequest},
		{"query too long", `{"role":"casual_visitor","query":"this is far too long"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, srv, "/v1/sessions/s1/turns", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
	chat.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTurn_InternalError(t *testing.T) {
	chat := &mockChatter{}
	chat.On("Chat", mock.Anything, "s1", "casual_visitor", "hi").Return(nil, errors.New("load session s1: disk gone"))

	w := post(t, New(chat), "/v1/sessions/s1/turns", `{"role":"casual_visitor","query":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "turn failed", decode(t, w)["error"])
}

func TestCreateTurn_ResultWithPersistError(t *testing.T) {
	chat := &mockChatter{}
	chat.On("Chat", mock.Anything, "s1", "casual_visitor", "hi").
		Return(&engine.TurnResult{Answer: "hello"}, errors.New("save session s1: disk gone"))

	w := post(t, New(chat), "/v1/sessions/s1/turns", `{"role":"casual_visitor","query":"hi"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", decode(t, w)["answer"])
}

func TestListRoles(t *testing.T) {
	w := httptest.NewRecorder()
	New(&mockChatter{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/roles", nil))

	require.Equal(t, http.StatusOK, w.Code)
	roles, ok := decode(t, w)["roles"].([]any)
	require.True(t, ok)
	assert.Len(t, roles, len(core.Roles()))
	first, ok := roles[0].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, first["name"])
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	New(&mockChatter{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	New(&mockChatter{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/turns", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
