package core

import (
	"fmt"
	"sort"
	"strings"
)

// RoleID identifies a visitor role. The set of roles is closed.
type RoleID string

const (
	// RoleHiringManagerNontechnical is a recruiter or manager without an engineering background.
	RoleHiringManagerNontechnical RoleID = "hiring_manager_nontechnical"
	// RoleHiringManagerTechnical is an engineering manager evaluating the candidate.
	RoleHiringManagerTechnical RoleID = "hiring_manager_technical"
	// RoleSoftwareDeveloper is a peer developer interested in implementation detail.
	RoleSoftwareDeveloper RoleID = "software_developer"
	// RoleCasualVisitor is anyone browsing without a hiring intent.
	RoleCasualVisitor RoleID = "casual_visitor"
	// RoleConfession is the anonymous confession box; it never enters the pipeline.
	RoleConfession RoleID = "confession"
)

var roleDisplayNames = map[RoleID]string{
	RoleHiringManagerNontechnical: "Hiring Manager (nontechnical)",
	RoleHiringManagerTechnical:    "Hiring Manager (technical)",
	RoleSoftwareDeveloper:         "Software Developer",
	RoleCasualVisitor:             "Casual Visitor",
	RoleConfession:                "Confession",
}

// Roles returns every known role in a stable order.
func Roles() []RoleID {
	return []RoleID{
		RoleHiringManagerNontechnical,
		RoleHiringManagerTechnical,
		RoleSoftwareDeveloper,
		RoleCasualVisitor,
		RoleConfession,
	}
}

// Valid reports whether r is one of the known roles.
func (r RoleID) Valid() bool {
	_, ok := roleDisplayNames[r]
	return ok
}

// DisplayName returns the human readable label used by the chat UI.
func (r RoleID) DisplayName() string {
	if n, ok := roleDisplayNames[r]; ok {
		return n
	}
	return string(r)
}

// IsTerminal reports whether the role short-circuits the conversation flow.
func (r RoleID) IsTerminal() bool { return r == RoleConfession }

// ParseRole accepts either the canonical identifier ("software_developer") or
// the display label ("Software Developer"), case-insensitively.
func ParseRole(s string) (RoleID, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for id, name := range roleDisplayNames {
		if norm == string(id) || norm == strings.ToLower(name) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Enrichment is a flag enabling a role-conditioned context transformation.
type Enrichment string

const (
	// EnrichCodeSnippet injects a fenced snippet drawn from the top evidence chunk.
	EnrichCodeSnippet Enrichment = "include_code_snippet"
	// EnrichDataTable renders tabular evidence data as a markdown table.
	EnrichDataTable Enrichment = "include_data_table"
	// EnrichFunFacts appends a fun-fact block for recognized topics.
	EnrichFunFacts Enrichment = "include_fun_facts"
)

// Valid reports whether e is a known enrichment flag.
func (e Enrichment) Valid() bool {
	switch e {
	case EnrichCodeSnippet, EnrichDataTable, EnrichFunFacts:
		return true
	}
	return false
}

// RolePolicy is the static behavioral configuration for one role. Policies
// are loaded once at process start and must be treated as read-only.
type RolePolicy struct {
	Role            RoleID
	Tone            string
	Enrichments     map[Enrichment]bool
	EligibleActions map[ActionKind]bool
	// Closing is the persona-appropriate note appended to enriched context.
	Closing string
	// Apology is shown instead of an answer when generation is unavailable.
	Apology string
	// Acknowledgment is the fixed reply for terminal roles.
	Acknowledgment string
	// FollowUps are the next-step suggestions offered after an answer.
	FollowUps []string
	// FunFacts maps a topic name to short facts surfaced by EnrichTopic.
	FunFacts map[string][]string
}

// HasEnrichment reports whether the enrichment flag is enabled.
func (p RolePolicy) HasEnrichment(e Enrichment) bool { return p.Enrichments[e] }

// Allows reports whether the action kind is eligible for this role.
func (p RolePolicy) Allows(k ActionKind) bool { return p.EligibleActions[k] }

// EnrichmentList returns enabled enrichment flags sorted by name.
func (p RolePolicy) EnrichmentList() []Enrichment {
	out := make([]Enrichment, 0, len(p.Enrichments))
	for e, on := range p.Enrichments {
		if on {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ActionList returns eligible action kinds sorted by name.
func (p RolePolicy) ActionList() []ActionKind {
	out := make([]ActionKind, 0, len(p.EligibleActions))
	for k, on := range p.EligibleActions {
		if on {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
