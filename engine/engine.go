package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/folio/classifier"
	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/enricher"
	"github.com/hupe1980/folio/executor"
	"github.com/hupe1980/folio/logging"
	"github.com/hupe1980/folio/planner"
	"github.com/hupe1980/folio/policy"
	"github.com/hupe1980/folio/retriever"
	"github.com/hupe1980/folio/session"
)

var (
	// ErrNilState is returned by HandleTurn when no conversation state is given.
	ErrNilState = errors.New("conversation state is nil")

	// ErrSessionMismatch is returned when the state belongs to another session.
	ErrSessionMismatch = errors.New("conversation state belongs to another session")
)

// Config defines the per-stage budgets of a turn.
//
// Retrieval and generation run under the caller's context bounded by their
// timeout. Notifications and the analytics write are detached from the
// caller's cancellation and only bounded by their own timeout, so a turn
// whose caller went away still records what it already started.
type Config struct {
	// RetrievalTimeout bounds the evidence lookup. On expiry the turn
	// continues with empty evidence.
	RetrievalTimeout time.Duration

	// GenerationTimeout bounds the model call. On expiry the role's apology
	// is returned.
	GenerationTimeout time.Duration

	// NotificationTimeout bounds each side-effecting action of the default executor.
	NotificationTimeout time.Duration

	// AnalyticsTimeout bounds the analytics write.
	AnalyticsTimeout time.Duration

	// PersistTimeout bounds loading and saving state in Turn.
	PersistTimeout time.Duration

	// TopK is the number of evidence chunks requested per turn.
	TopK int

	// HistoryTurns is the number of prior turns handed to the generator.
	HistoryTurns int
}

// DefaultConfig provides the default stage budgets:
//   - RetrievalTimeout: 3s
//   - GenerationTimeout: 10s
//   - NotificationTimeout: 2s
//   - AnalyticsTimeout: 2s
//   - PersistTimeout: 2s
//   - TopK: 4
//   - HistoryTurns: 6
var DefaultConfig = Config{
	RetrievalTimeout:    3 * time.Second,
	GenerationTimeout:   10 * time.Second,
	NotificationTimeout: executor.DefaultActionTimeout,
	AnalyticsTimeout:    2 * time.Second,
	PersistTimeout:      2 * time.Second,
	TopK:                retriever.DefaultK,
	HistoryTurns:        6,
}

// Retriever returns the evidence for a query.
type Retriever interface {
	RetrieveText(ctx context.Context, query string, k int) ([]core.EvidenceChunk, error)
}

// Planner computes the action plan of a turn.
type Planner interface {
	Plan(pol core.RolePolicy, state *core.ConversationState, features core.QueryFeatures) core.Plan
}

// Enricher builds the generation input from evidence, plan and policy.
type Enricher interface {
	Enrich(query string, evidence []core.EvidenceChunk, plan core.Plan, pol core.RolePolicy) core.EnrichedContext
}

// Generator produces the answer.
type Generator interface {
	Generate(ctx context.Context, enriched core.EnrichedContext, history []core.Turn) (core.Answer, error)
}

// Executor runs the side effects of a plan.
type Executor interface {
	Execute(ctx context.Context, state *core.ConversationState, plan core.Plan) []core.ExecutionResult
}

// Options configures an Engine. Every stage has a default except Retriever
// and Generator: without them every turn degrades to empty evidence and the
// role's apology respectively.
//
// Example:
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Retriever = retriever.New(store, embedder)
//	    o.Generator = generator.New(model)
//	    o.Logger = logger
//	})
type Options struct {
	// Config contains the stage budgets. Defaults to DefaultConfig.
	Config Config

	// Policies is the read-only role table shared by all turns.
	// Defaults to policy.Default().
	Policies *policy.Table

	// Classifier extracts query features. Defaults to the keyword classifier.
	Classifier core.Classifier

	Retriever Retriever
	Planner   Planner
	Enricher  Enricher
	Generator Generator

	// Executor defaults to an executor without notification backends.
	Executor Executor

	// Analytics receives one event per generated turn. Nil disables the write.
	Analytics core.AnalyticsSink

	// States persists conversation state for Turn. Defaults to an in-memory store.
	States core.StateStore

	// Locker serializes turns of the same session. Defaults to a new Locker.
	Locker *session.Locker

	// Callbacks are registered in order on the engine's CallbackManager.
	Callbacks []Callback

	// Logger defaults to a NoOp logger.
	Logger logging.Logger

	// Now is the clock used for turn timestamps.
	Now func() time.Time
}

// Engine is the flow controller. It drives each turn through a linear state
// machine:
//
//	Start -> Retrieving -> Planning -> Enriching -> Generating -> Executing -> Logging -> Done
//	Start -> ConfessionShortCircuit
//
// Stage failures degrade instead of failing the turn:
//   - retrieval unavailable: continue with empty evidence
//   - generation unavailable: answer with the role's apology
//   - action failure: recorded per action, other actions still run
//   - analytics write failure: logged, never surfaced
//
// Turns of different sessions run concurrently; turns of the same session are
// serialized by the session Locker. The engine holds no mutable state besides
// the locker.
type Engine struct {
	config     Config
	policies   *policy.Table
	classifier core.Classifier
	retriever  Retriever
	planner    Planner
	enricher   Enricher
	generator  Generator
	executor   Executor
	analytics  core.AnalyticsSink
	states     core.StateStore
	locker     *session.Locker
	callbacks  *CallbackManager
	logger     logging.Logger
	now        func() time.Time
}

// New creates an Engine with defaults for every unset option.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
		Now:    func() time.Time { return time.Now().UTC() },
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)
	opts.Config = withConfigDefaults(opts.Config)

	if opts.Policies == nil {
		opts.Policies = policy.Default()
	}

	if opts.Classifier == nil {
		opts.Classifier = classifier.New(classifier.DefaultKeywords())
	}

	if opts.Planner == nil {
		opts.Planner = planner.New(func(o *planner.Options) { o.Logger = opts.Logger })
	}

	if opts.Enricher == nil {
		opts.Enricher = enricher.New()
	}

	if opts.Executor == nil {
		opts.Executor = executor.New(func(o *executor.Options) {
			o.ActionTimeout = opts.Config.NotificationTimeout
			o.Logger = opts.Logger
			o.Now = opts.Now
		})
	}

	if opts.States == nil {
		opts.States = session.NewInMemoryStore()
	}

	if opts.Locker == nil {
		opts.Locker = session.NewLocker()
	}

	cm := NewCallbackManager()
	for _, cb := range opts.Callbacks {
		cm.RegisterCallback(cb)
	}

	return &Engine{
		config:     opts.Config,
		policies:   opts.Policies,
		classifier: opts.Classifier,
		retriever:  opts.Retriever,
		planner:    opts.Planner,
		enricher:   opts.Enricher,
		generator:  opts.Generator,
		executor:   opts.Executor,
		analytics:  opts.Analytics,
		states:     opts.States,
		locker:     opts.Locker,
		callbacks:  cm,
		logger:     opts.Logger,
		now:        opts.Now,
	}
}

func withConfigDefaults(c Config) Config {
	if c.RetrievalTimeout <= 0 {
		c.RetrievalTimeout = DefaultConfig.RetrievalTimeout
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = DefaultConfig.GenerationTimeout
	}
	if c.NotificationTimeout <= 0 {
		c.NotificationTimeout = DefaultConfig.NotificationTimeout
	}
	if c.AnalyticsTimeout <= 0 {
		c.AnalyticsTimeout = DefaultConfig.AnalyticsTimeout
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = DefaultConfig.PersistTimeout
	}
	if c.TopK <= 0 {
		c.TopK = DefaultConfig.TopK
	}
	if c.HistoryTurns < 0 {
		c.HistoryTurns = DefaultConfig.HistoryTurns
	}
	return c
}

// Policies returns the engine's role table.
func (e *Engine) Policies() *policy.Table { return e.policies }

// HandleTurn runs one turn on a caller-owned state. The role may be given as
// canonical id or display label; an unknown role fails with
// core.ErrUnknownRole before any stage runs. The state is mutated in place
// (executed set, turn history) while the session lock is held.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, role, query string, state *core.ConversationState) (*TurnResult, error) {
	pol, err := e.policies.ResolveName(role)
	if err != nil {
		return nil, err
	}

	if state == nil {
		return nil, ErrNilState
	}

	unlock, err := e.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if state.SessionID == "" {
		state.SessionID = sessionID
	}

	if state.SessionID != sessionID {
		return nil, fmt.Errorf("%w: %q != %q", ErrSessionMismatch, state.SessionID, sessionID)
	}

	return e.run(ctx, pol, query, state)
}

// Turn loads the session's state, runs one turn and saves the state, all
// under the session lock. When saving fails the result is still returned
// together with the error since its actions have already run.
func (e *Engine) Turn(ctx context.Context, sessionID, role, query string) (*TurnResult, error) {
	pol, err := e.policies.ResolveName(role)
	if err != nil {
		return nil, err
	}

	unlock, err := e.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	loadCtx, cancel := context.WithTimeout(ctx, e.config.PersistTimeout)
	state, err := e.states.Load(loadCtx, sessionID)
	cancel()

	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	res, err := e.run(ctx, pol, query, state)
	if err != nil {
		return nil, err
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.config.PersistTimeout)
	defer cancel()

	if err := e.states.Save(saveCtx, state); err != nil {
		return res, fmt.Errorf("save session %s: %w", sessionID, err)
	}

	return res, nil
}

func (e *Engine) run(ctx context.Context, pol core.RolePolicy, query string, state *core.ConversationState) (*TurnResult, error) {
	t := &turn{
		e:      e,
		policy: pol,
		state:  state,
		query:  query,
		start:  e.now(),
		m:      newMachine(e.now),
		result: &TurnResult{
			TurnID:    core.NewID(),
			SessionID: state.SessionID,
			Role:      pol.Role,
		},
	}
	t.log = e.turnLogger(t.result.SessionID, t.result.TurnID)

	var steps []step
	if pol.Role.IsTerminal() {
		steps = []step{{StateConfessionShortCircuit, t.confess}}
	} else {
		steps = []step{
			{StateRetrieving, t.retrieve},
			{StatePlanning, t.planActions},
			{StateEnriching, t.enrich},
			{StateGenerating, t.generate},
			{StateExecuting, t.execute},
			{StateLogging, t.writeAnalytics},
			{StateDone, nil},
		}
	}

	for _, s := range steps {
		if err := t.advance(ctx, s.to); err != nil {
			return nil, err
		}
		if s.fn != nil {
			s.fn(ctx)
		}
	}

	return t.finish(ctx), nil
}

func (e *Engine) turnLogger(sessionID, turnID string) logging.Logger {
	if sl, ok := e.logger.(*logging.StructuredLogger); ok {
		return sl.WithComponent("engine").WithSession(sessionID, turnID)
	}
	return e.logger
}

func (e *Engine) fire(ctx context.Context, ct CallbackType, cc *CallbackContext) {
	if err := e.callbacks.ExecuteCallbacks(ctx, ct, cc); err != nil {
		e.logger.Warn("callback failed", "callback", string(ct), "session_id", cc.SessionID, "error", err)
	}
}
