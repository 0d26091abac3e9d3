// Package folio provides a high-level façade over the flow controller and its
// collaborators (retrieval, generation, notifications, analytics and session
// state) for a role-aware portfolio assistant. Most applications interact
// with this package by:
//  1. Creating a Folio via New() with a model and optional backends
//  2. Indexing portfolio passages (Index)
//  3. Answering visitor queries per session (Chat)
//
// The façade delegates orchestration to engine.Engine. All defaults are safe
// for local development and testing: in-memory vector store, hashing
// embedder, in-memory session state and no notification backends.
// Production deployments supply a provider model, an embedding model and
// durable stores.
package folio

import (
	"context"
	"errors"

	"github.com/hupe1980/folio/analytics"
	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/engine"
	"github.com/hupe1980/folio/enricher"
	"github.com/hupe1980/folio/executor"
	"github.com/hupe1980/folio/generator"
	"github.com/hupe1980/folio/logging"
	"github.com/hupe1980/folio/memory"
	"github.com/hupe1980/folio/model"
	"github.com/hupe1980/folio/planner"
	"github.com/hupe1980/folio/policy"
	"github.com/hupe1980/folio/retriever"
	"github.com/hupe1980/folio/session"
)

// ErrIndexUnsupported is returned by Index when the vector store cannot add documents.
var ErrIndexUnsupported = errors.New("vector store does not support indexing")

// Options configures the Folio instance.
type Options struct {
	// Engine configuration (stage timeouts, top-k, history window)
	EngineConfig engine.Config

	// Model answers queries. Without a model every turn returns the role's apology.
	Model model.Model
	// Stream requests streamed completions from the model.
	Stream bool

	// Retrieval (defaults to an in-memory store and a hashing embedder)
	VectorStore core.VectorStore
	Embedder    core.Embedder

	// Policies is the role table (defaults to policy.Default()).
	Policies *policy.Table
	// Classifier overrides the default keyword classifier.
	Classifier core.Classifier

	// Notification backends. A nil backend disables the matching action.
	Email       core.EmailSender
	SMS         core.SMSSender
	Confessions core.ConfessionStore

	// OwnerName is how the assistant refers to the portfolio owner.
	OwnerName          string
	OwnerEmail         string
	OwnerPhone         string
	ResumeLinkTemplate string

	// Stores (defaults to in-memory implementations if not provided)
	States    core.StateStore
	Analytics core.AnalyticsSink

	Callbacks []engine.Callback

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Folio is the high-level façade aggregating the engine and its services.
type Folio struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new Folio instance with optional overrides.
func New(optFns ...func(o *Options)) *Folio {
	opts := Options{
		EngineConfig:       engine.DefaultConfig,
		Policies:           policy.Default(),
		ResumeLinkTemplate: planner.DefaultResumeLinkTemplate,
		States:             session.NewInMemoryStore(),
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)

	if opts.Policies == nil {
		opts.Policies = policy.Default()
	}

	if opts.VectorStore == nil {
		opts.VectorStore = memory.NewInMemoryStore()
	}

	if opts.Embedder == nil {
		opts.Embedder = memory.NewHashEmbedder(0)
	}

	if opts.Analytics == nil {
		opts.Analytics = analytics.LogSink{Logger: opts.Logger}
	}

	var gen engine.Generator
	if opts.Model != nil {
		gen = generator.New(opts.Model, func(o *generator.Options) {
			o.HistoryTurns = opts.EngineConfig.HistoryTurns
			o.Stream = opts.Stream
			o.Logger = opts.Logger
		})
	}

	eng := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Policies = opts.Policies
		o.Classifier = opts.Classifier
		o.Retriever = retriever.New(opts.VectorStore, opts.Embedder, func(ro *retriever.Options) {
			ro.DefaultK = opts.EngineConfig.TopK
			ro.Logger = opts.Logger
		})
		o.Planner = planner.New(func(po *planner.Options) {
			po.Capabilities = planner.Capabilities{Email: opts.Email != nil, SMS: opts.SMS != nil}
			po.OwnerPhone = opts.OwnerPhone
			po.OwnerEmail = opts.OwnerEmail
			po.ResumeLinkTemplate = opts.ResumeLinkTemplate
			po.Logger = opts.Logger
		})
		o.Enricher = enricher.New(func(eo *enricher.Options) {
			if opts.OwnerName != "" {
				eo.Owner = opts.OwnerName
			}
		})
		o.Generator = gen
		o.Executor = executor.New(func(eo *executor.Options) {
			eo.Email = opts.Email
			eo.SMS = opts.SMS
			eo.Confessions = opts.Confessions
			eo.OwnerEmail = opts.OwnerEmail
			eo.ActionTimeout = opts.EngineConfig.NotificationTimeout
			eo.Logger = opts.Logger
		})
		o.Analytics = opts.Analytics
		o.States = opts.States
		o.Callbacks = opts.Callbacks
		o.Logger = opts.Logger
	})

	return &Folio{opts: opts, engine: eng}
}

// Engine exposes the underlying flow controller.
func (f *Folio) Engine() *engine.Engine { return f.engine }

// Index embeds passages and adds them to the vector store.
func (f *Folio) Index(ctx context.Context, passages ...memory.Passage) error {
	idx, ok := f.opts.VectorStore.(memory.Indexer)
	if !ok {
		return ErrIndexUnsupported
	}
	return memory.Index(ctx, idx, f.opts.Embedder, passages...)
}

// Chat answers one visitor query. It loads the session's state, runs the turn
// and saves the state under the session lock.
func (f *Folio) Chat(ctx context.Context, sessionID, role, query string) (*engine.TurnResult, error) {
	return f.engine.Turn(ctx, sessionID, role, query)
}

// Roles returns the roles a visitor can pick.
func (f *Folio) Roles() []core.RoleID { return f.opts.Policies.Roles() }
