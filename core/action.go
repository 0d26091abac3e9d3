package core

import "sort"

// ActionKind enumerates the closed set of actions a plan may contain.
type ActionKind string

const (
	// ActionOfferResume appends a resume offer to the generated answer.
	ActionOfferResume ActionKind = "offer_resume"
	// ActionSendResumeLink e-mails the resume link.
	ActionSendResumeLink ActionKind = "send_resume_link"
	// ActionNotifySMS notifies the portfolio owner by SMS.
	ActionNotifySMS ActionKind = "notify_sms"
	// ActionLogConfession persists a confession text.
	ActionLogConfession ActionKind = "log_confession"
	// ActionEnrichTopic is content-only: it adds a topical fun-fact block.
	ActionEnrichTopic ActionKind = "enrich_topic"
)

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionOfferResume, ActionSendResumeLink, ActionNotifySMS, ActionLogConfession, ActionEnrichTopic:
		return true
	}
	return false
}

// HasSideEffect reports whether executing k calls an external collaborator.
func (k ActionKind) HasSideEffect() bool {
	switch k {
	case ActionSendResumeLink, ActionNotifySMS, ActionLogConfession:
		return true
	}
	return false
}

// Idempotent reports whether k is recorded in the executed set once it
// succeeds, so that it is never planned again in the same session.
// Topic enrichment and confessions may repeat.
func (k ActionKind) Idempotent() bool {
	return k != ActionEnrichTopic && k != ActionLogConfession
}

// ActionPayload is the variant-specific data carried by a PendingAction.
// Concrete payloads implement the unexported marker enabling a closed set.
type ActionPayload interface{ isActionPayload() }

// ResumeLinkPayload carries what SendResumeLink needs.
type ResumeLinkPayload struct {
	LinkTemplate string // text/template rendered with the session id
	Recipient    string // visitor address; empty means the owner's inbox
}

func (ResumeLinkPayload) isActionPayload() {}

// SMSPayload carries what NotifySMS needs.
type SMSPayload struct {
	Contact string // phone number of the portfolio owner
	Message string
}

func (SMSPayload) isActionPayload() {}

// TopicPayload names the recognized topic for EnrichTopic.
type TopicPayload struct {
	Topic string
}

func (TopicPayload) isActionPayload() {}

// ConfessionPayload carries the raw confession text.
type ConfessionPayload struct {
	Text string
}

func (ConfessionPayload) isActionPayload() {}

// PendingAction is an action proposed for the current turn whose eligibility
// guard has already been evaluated true. It never outlives the turn.
type PendingAction struct {
	Kind    ActionKind
	Reason  string // free text, for auditing
	Payload ActionPayload
}

// Plan is the ordered output of the action planner.
type Plan struct {
	Actions []PendingAction
	// IncludeCode is a content flag raised by technical queries. It does not
	// correspond to any executed action.
	IncludeCode bool
}

// Kinds returns the action kinds of the plan in plan order.
func (p Plan) Kinds() []ActionKind {
	kinds := make([]ActionKind, len(p.Actions))
	for i, a := range p.Actions {
		kinds[i] = a.Kind
	}
	return kinds
}

// Has reports whether the plan contains an action of kind k.
func (p Plan) Has(k ActionKind) bool {
	for _, a := range p.Actions {
		if a.Kind == k {
			return true
		}
	}
	return false
}

// SortKinds sorts action kinds in place by name.
func SortKinds(kinds []ActionKind) {
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
}
