// Package planner turns a role policy, the conversation state and the
// classified query features into an ordered plan of pending actions.
//
// Rules are evaluated in a fixed priority order:
//
//  1. technical query: include a code snippet in the answer (content flag only)
//  2. second turn or later: offer the resume once per session
//  3. resume or contact request: send the resume link (to the visitor's
//     address or the owner's inbox), notify the owner by SMS
//  4. recognized topic: enrich the answer with topic content
//
// Every rule is gated by the policy's eligible actions, notification rules
// additionally by the configured backends. Kinds already executed in the
// session are never planned again. The planner is deterministic.
package planner

import (
	"fmt"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/logging"
)

// DefaultResumeLinkTemplate is rendered by the executor with the session id.
const DefaultResumeLinkTemplate = "https://portfolio.example.com/resume?ref={{.SessionID}}"

// Capabilities report which notification backends are configured.
type Capabilities struct {
	Email bool
	SMS   bool
}

// Options configure a Planner.
type Options struct {
	Capabilities       Capabilities
	ResumeLinkTemplate string
	OwnerPhone         string
	// OwnerEmail receives the resume link when the visitor left no address.
	// Without it SendResumeLink is only planned for queries carrying an address.
	OwnerEmail string
	// OfferResumeAfter is the turn number from which OfferResume is planned.
	OfferResumeAfter int
	Logger           logging.Logger
}

// Planner computes per-turn action plans.
type Planner struct {
	opts Options
}

// New creates a Planner.
func New(optFns ...func(o *Options)) *Planner {
	opts := Options{
		ResumeLinkTemplate: DefaultResumeLinkTemplate,
		OfferResumeAfter:   2,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.OfferResumeAfter < 1 {
		opts.OfferResumeAfter = 2
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Planner{opts: opts}
}

// Plan returns the ordered plan for one turn. A nil state is treated as the
// first turn of a fresh session.
func (p *Planner) Plan(pol core.RolePolicy, state *core.ConversationState, features core.QueryFeatures) core.Plan {
	if state == nil {
		state = core.NewConversationState("")
	}

	b := builder{policy: pol, state: state}

	if features.Has(core.FeatureTechnical) {
		b.plan.IncludeCode = true
	}

	if state.TurnNumber() >= p.opts.OfferResumeAfter {
		b.add(core.PendingAction{
			Kind:   core.ActionOfferResume,
			Reason: fmt.Sprintf("turn %d of session", state.TurnNumber()),
		})
	}

	if features.Has(core.FeatureResumeRequest) || features.Has(core.FeatureContactRequest) {
		reason := "resume request"
		if !features.Has(core.FeatureResumeRequest) {
			reason = "contact request"
		}
		if p.opts.Capabilities.Email && (features.Email != "" || p.opts.OwnerEmail != "") {
			b.add(core.PendingAction{
				Kind:   core.ActionSendResumeLink,
				Reason: reason,
				Payload: core.ResumeLinkPayload{
					LinkTemplate: p.opts.ResumeLinkTemplate,
					Recipient:    features.Email,
				},
			})
		}
		if p.opts.Capabilities.SMS && p.opts.OwnerPhone != "" {
			b.add(core.PendingAction{
				Kind:   core.ActionNotifySMS,
				Reason: reason,
				Payload: core.SMSPayload{
					Contact: p.opts.OwnerPhone,
					Message: smsMessage(pol.Role, state.SessionID, features.Email),
				},
			})
		}
	}

	for _, topic := range features.Topics() {
		b.add(core.PendingAction{
			Kind:    core.ActionEnrichTopic,
			Reason:  "topic " + topic,
			Payload: core.TopicPayload{Topic: topic},
		})
	}

	p.opts.Logger.Debug("plan computed",
		"role", string(pol.Role),
		"turn", state.TurnNumber(),
		"actions", b.plan.Kinds(),
		"include_code", b.plan.IncludeCode,
		"filtered", b.filtered,
	)
	return b.plan
}

func smsMessage(role core.RoleID, sessionID, email string) string {
	msg := fmt.Sprintf("Portfolio: a %s asked for your resume (session %s)", role.DisplayName(), sessionID)
	if email != "" {
		msg += ", reply to " + email
	}
	return msg
}

type builder struct {
	policy   core.RolePolicy
	state    *core.ConversationState
	plan     core.Plan
	filtered []core.ActionKind
}

// add appends a if the policy allows it, it was not executed before and it is
// not already planned (topic actions are unique per topic).
func (b *builder) add(a core.PendingAction) {
	if !b.policy.Allows(a.Kind) {
		return
	}
	if b.state.HasExecuted(a.Kind) {
		b.filtered = append(b.filtered, a.Kind)
		return
	}
	for _, existing := range b.plan.Actions {
		if existing.Kind != a.Kind {
			continue
		}
		if a.Kind != core.ActionEnrichTopic || existing.Payload == a.Payload {
			return
		}
	}
	b.plan.Actions = append(b.plan.Actions, a)
}
