// Package executor runs the side effects of an action plan after the answer
// has been generated. Actions are isolated from each other: an error or
// panic in one is recorded as that action's failure and never prevents the
// remaining actions from running. Deliveries are detached from the caller's
// cancellation and bounded by their own timeout so an in-flight action
// either completes or times out, and is recorded either way.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/internal/util"
	"github.com/hupe1980/folio/logging"
)

// DefaultActionTimeout bounds a single notification.
const DefaultActionTimeout = 2 * time.Second

// Options configure an Executor. Nil backends make the corresponding
// actions fail with core.ErrBackendNotConfigured.
type Options struct {
	Email       core.EmailSender
	SMS         core.SMSSender
	Confessions core.ConfessionStore
	// OwnerEmail receives the resume link when the visitor left no address.
	OwnerEmail    string
	ResumeSubject string
	ActionTimeout time.Duration
	Logger        logging.Logger
	Now           func() time.Time
}

// Executor executes pending actions.
type Executor struct {
	opts Options
}

// New creates an Executor.
func New(optFns ...func(o *Options)) *Executor {
	opts := Options{
		ResumeSubject: "The resume you asked for",
		ActionTimeout: DefaultActionTimeout,
		Logger:        logging.NoOpLogger{},
		Now:           func() time.Time { return time.Now().UTC() },
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = DefaultActionTimeout
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Executor{opts: opts}
}

// Execute runs every action of plan in order and returns one result per
// action. Successful idempotent actions are marked executed on state, which
// the caller must own exclusively for the duration of the call.
func (e *Executor) Execute(ctx context.Context, state *core.ConversationState, plan core.Plan) []core.ExecutionResult {
	results := make([]core.ExecutionResult, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		results = append(results, e.executeOne(ctx, state, a))
	}
	return results
}

func (e *Executor) executeOne(ctx context.Context, state *core.ConversationState, a core.PendingAction) core.ExecutionResult {
	res := core.ExecutionResult{Kind: a.Kind, Reason: a.Reason}

	if a.Kind.Idempotent() && state.HasExecuted(a.Kind) {
		res.Status = core.StatusSkippedDuplicate
		e.opts.Logger.Info("Action skipped", "action", string(a.Kind), "status", string(res.Status), "session_id", state.SessionID)
		return res
	}

	start := time.Now()
	err := e.dispatch(ctx, state, a)
	res.Duration = time.Since(start)

	if err != nil {
		res.Status = core.StatusFailed
		res.Err = &core.ActionError{Kind: a.Kind, Err: err}
		res.Error = err.Error()
		e.logResult(state.SessionID, res, err)
		return res
	}

	res.Status = core.StatusExecuted
	if a.Kind.Idempotent() {
		state.MarkExecuted(a.Kind, e.opts.Now())
	}
	e.logResult(state.SessionID, res, nil)
	return res
}

func (e *Executor) logResult(sessionID string, res core.ExecutionResult, err error) {
	if sl, ok := e.opts.Logger.(*logging.StructuredLogger); ok {
		sl.WithContext("session_id", sessionID).LogActionExecution(string(res.Kind), res.Duration, string(res.Status), err)
		return
	}

	if err != nil {
		e.opts.Logger.Warn("Action execution failed",
			"action", string(res.Kind), "duration", res.Duration, "session_id", sessionID, "error", err)
		return
	}
	e.opts.Logger.Info("Action execution completed",
		"action", string(res.Kind), "duration", res.Duration, "session_id", sessionID)
}

func (e *Executor) dispatch(ctx context.Context, state *core.ConversationState, a core.PendingAction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.ActionTimeout)
	defer cancel()

	switch a.Kind {
	case core.ActionOfferResume, core.ActionEnrichTopic:
		// content actions are realized by the enricher
		return nil
	case core.ActionSendResumeLink:
		p, ok := a.Payload.(core.ResumeLinkPayload)
		if !ok {
			return unexpectedPayload(a)
		}
		return e.sendResumeLink(actx, state.SessionID, p)
	case core.ActionNotifySMS:
		p, ok := a.Payload.(core.SMSPayload)
		if !ok {
			return unexpectedPayload(a)
		}
		if e.opts.SMS == nil {
			return core.ErrBackendNotConfigured
		}
		if p.Contact == "" {
			return fmt.Errorf("sms contact is empty")
		}
		return e.opts.SMS.SendSMS(actx, p.Contact, p.Message)
	case core.ActionLogConfession:
		p, ok := a.Payload.(core.ConfessionPayload)
		if !ok {
			return unexpectedPayload(a)
		}
		if e.opts.Confessions == nil {
			return core.ErrBackendNotConfigured
		}
		return e.opts.Confessions.StoreConfession(actx, state.SessionID, p.Text)
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

func (e *Executor) sendResumeLink(ctx context.Context, sessionID string, p core.ResumeLinkPayload) error {
	if e.opts.Email == nil {
		return core.ErrBackendNotConfigured
	}
	link, err := util.RenderTemplate(p.LinkTemplate, map[string]any{"SessionID": sessionID})
	if err != nil {
		return fmt.Errorf("render resume link: %w", err)
	}
	if link == "" {
		return fmt.Errorf("resume link is empty")
	}

	to, body := p.Recipient, "Thanks for your interest. You can download the resume here:\n\n"+link
	if to == "" {
		to = e.opts.OwnerEmail
		body = fmt.Sprintf("A visitor in session %s asked for the resume. Link sent on their behalf:\n\n%s", sessionID, link)
	}
	if to == "" {
		return fmt.Errorf("no recipient for resume link: %w", core.ErrBackendNotConfigured)
	}
	return e.opts.Email.SendEmail(ctx, to, e.opts.ResumeSubject, body)
}

func unexpectedPayload(a core.PendingAction) error {
	return fmt.Errorf("unexpected payload %T for %s", a.Payload, a.Kind)
}
