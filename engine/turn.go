package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/generator"
	"github.com/hupe1980/folio/logging"
)

// TurnResult is what a turn returns to the presentation layer.
type TurnResult struct {
	TurnID    string                 `json:"turn_id"`
	SessionID string                 `json:"session_id"`
	Role      core.RoleID            `json:"role"`
	Answer    string                 `json:"answer"`
	FollowUps []string               `json:"follow_ups"`
	Actions   []core.ExecutionResult `json:"actions"`
	States    []State                `json:"states"`
	// Degraded names the stages that fell back, e.g. "retrieval".
	Degraded []string      `json:"degraded,omitempty"`
	Tokens   int           `json:"tokens"`
	Latency  time.Duration `json:"latency"`
}

// Executed returns the kinds that ran successfully in this turn.
func (r *TurnResult) Executed() []core.ActionKind {
	return kindsWithStatus(r.Actions, core.StatusExecuted)
}

// Failed returns the kinds that were attempted and failed in this turn.
func (r *TurnResult) Failed() []core.ActionKind {
	return kindsWithStatus(r.Actions, core.StatusFailed)
}

func kindsWithStatus(results []core.ExecutionResult, status core.ExecutionStatus) []core.ActionKind {
	var out []core.ActionKind
	for _, a := range results {
		if a.Status == status {
			out = append(out, a.Kind)
		}
	}
	return out
}

type step struct {
	to State
	fn func(ctx context.Context)
}

// turn holds the working data of one HandleTurn call.
type turn struct {
	e      *Engine
	policy core.RolePolicy
	state  *core.ConversationState
	query  string
	start  time.Time
	log    logging.Logger
	m      *machine

	evidence []core.EvidenceChunk
	plan     core.Plan
	enriched core.EnrichedContext
	result   *TurnResult
}

func (t *turn) advance(ctx context.Context, to State) error {
	from := t.m.current

	spent, err := t.m.advance(to)
	if err != nil {
		return err
	}

	if sl, ok := t.log.(*logging.StructuredLogger); ok {
		sl.LogStageTransition(string(from), string(to), spent)
	} else {
		t.log.Debug("Stage transition", "session_id", t.result.SessionID, "from", string(from), "to", string(to), "duration", spent)
	}

	t.e.fire(ctx, CallbackOnTransition, t.callbackContext(func(cc *CallbackContext) {
		cc.From = from
		cc.To = to
		cc.Duration = spent
	}))

	return nil
}

func (t *turn) degrade(ctx context.Context, stage string, err error) {
	t.result.Degraded = append(t.result.Degraded, stage)
	t.log.Warn("stage degraded", "session_id", t.result.SessionID, "stage", stage, "error", err)
	t.e.fire(ctx, CallbackOnDegraded, t.callbackContext(func(cc *CallbackContext) {
		cc.Stage = stage
		cc.Err = err
	}))
}

func (t *turn) callbackContext(fn func(cc *CallbackContext)) *CallbackContext {
	cc := &CallbackContext{
		SessionID: t.result.SessionID,
		TurnID:    t.result.TurnID,
		Role:      t.policy.Role,
	}
	fn(cc)
	return cc
}

// confess stores the confession through the executor and acknowledges it.
// Neither retrieval nor generation run, and nothing is added to the
// executed set or the turn history.
func (t *turn) confess(ctx context.Context) {
	t.result.Answer = t.policy.Acknowledgment

	if !t.policy.Allows(core.ActionLogConfession) {
		return
	}

	t.result.Actions = t.e.executor.Execute(ctx, t.state, core.Plan{Actions: []core.PendingAction{{
		Kind:    core.ActionLogConfession,
		Reason:  "confession",
		Payload: core.ConfessionPayload{Text: t.query},
	}}})
}

func (t *turn) retrieve(ctx context.Context) {
	if t.e.retriever == nil {
		t.degrade(ctx, "retrieval", fmt.Errorf("%w: %w", core.ErrRetrievalUnavailable, core.ErrBackendNotConfigured))
		return
	}

	rctx, cancel := context.WithTimeout(ctx, t.e.config.RetrievalTimeout)
	defer cancel()

	evidence, err := t.e.retriever.RetrieveText(rctx, t.query, t.e.config.TopK)
	if err != nil {
		t.degrade(ctx, "retrieval", err)
		return
	}

	t.evidence = evidence
}

func (t *turn) planActions(_ context.Context) {
	features := t.e.classifier.Classify(t.query)
	t.plan = t.e.planner.Plan(t.policy, t.state, features)
}

func (t *turn) enrich(_ context.Context) {
	t.enriched = t.e.enricher.Enrich(t.query, t.evidence, t.plan, t.policy)
}

func (t *turn) generate(ctx context.Context) {
	answer, err := t.callGenerator(ctx)
	if err != nil {
		t.degrade(ctx, "generation", err)
		answer = core.Answer{
			Text:      t.policy.Apology,
			FollowUps: generator.FollowUps(t.policy.FollowUps, generator.DefaultFollowUpBudget),
		}
		// content actions are only recorded when the answer carried them
		t.plan = withoutContentActions(t.plan)
	}

	t.result.Answer = answer.Text
	t.result.FollowUps = answer.FollowUps
	t.result.Tokens = answer.Tokens
}

func (t *turn) callGenerator(ctx context.Context) (core.Answer, error) {
	if t.e.generator == nil {
		return core.Answer{}, fmt.Errorf("%w: %w", core.ErrGenerationUnavailable, core.ErrBackendNotConfigured)
	}

	gctx, cancel := context.WithTimeout(ctx, t.e.config.GenerationTimeout)
	defer cancel()

	answer, err := t.e.generator.Generate(gctx, t.enriched, t.state.History(t.e.config.HistoryTurns))
	if err != nil {
		return core.Answer{}, err
	}

	if answer.Text == "" {
		return core.Answer{}, fmt.Errorf("%w: empty answer", core.ErrGenerationUnavailable)
	}

	return answer, nil
}

func withoutContentActions(p core.Plan) core.Plan {
	out := core.Plan{IncludeCode: p.IncludeCode}
	for _, a := range p.Actions {
		if a.Kind.HasSideEffect() {
			out.Actions = append(out.Actions, a)
		}
	}
	return out
}

// execute runs the plan unless the caller already gave up before it began.
// Once started, the executor detaches deliveries from ctx.
func (t *turn) execute(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		t.degrade(ctx, "execution", err)
	} else {
		t.result.Actions = t.e.executor.Execute(ctx, t.state, t.plan)
	}

	t.state.AppendTurn(core.Turn{
		Query:     t.query,
		Answer:    t.result.Answer,
		Timestamp: t.e.now(),
		Role:      t.policy.Role,
	})
}

func (t *turn) writeAnalytics(ctx context.Context) {
	if t.e.analytics == nil {
		return
	}

	ev := core.NewAnalyticsEvent(t.result.SessionID, t.policy.Role)
	ev.Timestamp = t.e.now()
	ev.Query = t.query
	ev.Answer = t.result.Answer
	ev.LatencyMS = ev.Timestamp.Sub(t.start).Milliseconds()
	ev.Tokens = t.result.Tokens
	ev.RetrievalScores = core.Scores(t.evidence)
	ev.ExecutedActions = t.result.Executed()
	ev.FailedActions = t.result.Failed()
	ev.Degraded = append([]string(nil), t.result.Degraded...)

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.e.config.AnalyticsTimeout)
	defer cancel()

	if err := t.e.analytics.Write(actx, ev); err != nil {
		err = fmt.Errorf("%w: %w", core.ErrAnalyticsWriteFailed, err)
		t.log.Warn("analytics write failed", "session_id", t.result.SessionID, "error", err)
		t.e.fire(ctx, CallbackOnDegraded, t.callbackContext(func(cc *CallbackContext) {
			cc.Stage = "analytics"
			cc.Err = err
		}))
	}
}

func (t *turn) finish(ctx context.Context) *TurnResult {
	t.result.States = t.m.states()
	t.result.Latency = t.e.now().Sub(t.start)

	if sl, ok := t.log.(*logging.StructuredLogger); ok {
		sl.LogTurn(string(t.policy.Role), len(t.result.States), t.result.Latency, t.result.Degraded)
	} else {
		t.log.Info("Turn completed",
			"session_id", t.result.SessionID,
			"role", string(t.policy.Role),
			"stage_count", len(t.result.States),
			"duration", t.result.Latency,
			"degraded", t.result.Degraded,
		)
	}

	t.e.fire(ctx, CallbackOnTurnComplete, t.callbackContext(func(cc *CallbackContext) {
		cc.Result = t.result
	}))

	return t.result
}
