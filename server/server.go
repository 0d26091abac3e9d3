// Package server exposes the assistant over HTTP.
//
// Routes:
//
//	POST /v1/sessions/{id}/turns   run one turn, body {"role": "...", "query": "..."}
//	GET  /v1/roles                 list selectable roles
//	GET  /health                   liveness
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/engine"
	"github.com/hupe1980/folio/logging"
)

// DefaultMaxQueryLength bounds the query size in bytes.
const DefaultMaxQueryLength = 4000

// Chatter runs turns. *folio.Folio implements it.
type Chatter interface {
	Chat(ctx context.Context, sessionID, role, query string) (*engine.TurnResult, error)
	Roles() []core.RoleID
}

// Options configure a Server.
type Options struct {
	MaxQueryLength int
	Logger         logging.Logger
}

// Server is the HTTP presentation layer.
type Server struct {
	chat   Chatter
	opts   Options
	router chi.Router
}

// TurnRequest is the body of POST /v1/sessions/{id}/turns.
type TurnRequest struct {
	Role  string `json:"role"`
	Query string `json:"query"`
}

// RoleInfo describes a selectable role.
type RoleInfo struct {
	ID   core.RoleID `json:"id"`
	Name string      `json:"name"`
}

// New creates a Server.
func New(chat Chatter, optFns ...func(o *Options)) *Server {
	opts := Options{
		MaxQueryLength: DefaultMaxQueryLength,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxQueryLength <= 0 {
		opts.MaxQueryLength = DefaultMaxQueryLength
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	s := &Server{chat: chat, opts: opts}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	s.RegisterRoutes(r)
	s.router = r

	return s
}

// RegisterRoutes mounts the API routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/roles", s.listRoles)
		r.Post("/sessions/{id}/turns", s.createTurn)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) listRoles(w http.ResponseWriter, _ *http.Request) {
	roles := s.chat.Roles()
	out := make([]RoleInfo, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleInfo{ID: r, Name: r.DisplayName()})
	}
	JSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (s *Server) createTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if strings.TrimSpace(sessionID) == "" {
		Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(s.opts.MaxQueryLength)+1024)

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(req.Query) > s.opts.MaxQueryLength {
		Error(w, http.StatusRequestEntityTooLarge, "query is too long")
		return
	}

	res, err := s.chat.Chat(r.Context(), sessionID, req.Role, req.Query)
	switch {
	case errors.Is(err, core.ErrUnknownRole):
		Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil && res == nil:
		s.opts.Logger.Error("turn failed",
			"session_id", sessionID, "request_id", chiMiddleware.GetReqID(r.Context()), "error", err)
		Error(w, http.StatusInternalServerError, "turn failed")
		return
	case err != nil:
		// the turn ran but its state was not persisted
		s.opts.Logger.Warn("turn not persisted",
			"session_id", sessionID, "request_id", chiMiddleware.GetReqID(r.Context()), "error", err)
	}

	JSON(w, http.StatusOK, res)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
