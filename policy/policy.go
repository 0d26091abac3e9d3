// Package policy holds the static Role Policy table: role identifier to tone,
// enrichment flags and eligible actions. The table is built once at process
// start (from Default or a YAML file) and is read-only afterwards, so it is
// safe for concurrent use without locking.
package policy

import (
	"fmt"

	"github.com/hupe1980/folio/core"
)

// Table maps every known role to its policy.
type Table struct {
	policies map[core.RoleID]core.RolePolicy
}

// New validates the given policies and builds a table. Every role of
// core.Roles must be present exactly once.
func New(policies ...core.RolePolicy) (*Table, error) {
	t := &Table{policies: make(map[core.RoleID]core.RolePolicy, len(policies))}
	for _, p := range policies {
		if !p.Role.Valid() {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownRole, p.Role)
		}
		if _, dup := t.policies[p.Role]; dup {
			return nil, fmt.Errorf("duplicate policy for role %s", p.Role)
		}
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("policy %s: %w", p.Role, err)
		}
		t.policies[p.Role] = p
	}
	for _, r := range core.Roles() {
		if _, ok := t.policies[r]; !ok {
			return nil, fmt.Errorf("missing policy for role %s", r)
		}
	}
	return t, nil
}

func validate(p core.RolePolicy) error {
	for e := range p.Enrichments {
		if !e.Valid() {
			return fmt.Errorf("unknown enrichment %q", e)
		}
	}
	for k := range p.EligibleActions {
		if !k.Valid() {
			return fmt.Errorf("unknown action kind %q", k)
		}
	}
	if p.Role.IsTerminal() {
		if p.Acknowledgment == "" {
			return fmt.Errorf("terminal role requires an acknowledgment")
		}
		for k, on := range p.EligibleActions {
			if on && k != core.ActionLogConfession {
				return fmt.Errorf("terminal role cannot enable %s", k)
			}
		}
		return nil
	}
	if p.EligibleActions[core.ActionSendResumeLink] && p.Role != core.RoleHiringManagerTechnical {
		return fmt.Errorf("%s is reserved for %s", core.ActionSendResumeLink, core.RoleHiringManagerTechnical)
	}
	if p.EligibleActions[core.ActionLogConfession] {
		return fmt.Errorf("%s is reserved for the terminal role", core.ActionLogConfession)
	}
	if p.Apology == "" {
		return fmt.Errorf("apology fallback must not be empty")
	}
	if len(p.FollowUps) > 3 {
		return fmt.Errorf("at most 3 follow-ups allowed, got %d", len(p.FollowUps))
	}
	return nil
}

// Resolve returns the policy for role or core.ErrUnknownRole.
func (t *Table) Resolve(role core.RoleID) (core.RolePolicy, error) {
	p, ok := t.policies[role]
	if !ok {
		return core.RolePolicy{}, fmt.Errorf("%w: %q", core.ErrUnknownRole, role)
	}
	return p, nil
}

// ResolveName parses a canonical id or display label and resolves it.
func (t *Table) ResolveName(name string) (core.RolePolicy, error) {
	role, err := core.ParseRole(name)
	if err != nil {
		return core.RolePolicy{}, err
	}
	return t.Resolve(role)
}

// Roles returns the roles in the table in stable order.
func (t *Table) Roles() []core.RoleID {
	out := make([]core.RoleID, 0, len(t.policies))
	for _, r := range core.Roles() {
		if _, ok := t.policies[r]; ok {
			out = append(out, r)
		}
	}
	return out
}
