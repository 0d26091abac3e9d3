package core

import "time"

// EnrichedContext is the prompt-construction input produced by the enricher.
// Evidence keeps retrieval order; CodeSnippet and DataTable are only ever
// sourced from the highest-scoring chunk.
type EnrichedContext struct {
	Role         RoleID
	Tone         string
	SystemPrompt string
	Query        string
	Evidence     []string
	Sections     []string
	CodeSnippet  string
	DataTable    string
	FunFacts     []string
	Offers       []string
	Closing      string
	FollowUps    []string
}

// Answer is the generator output.
type Answer struct {
	Text      string
	Tokens    int
	FollowUps []string
}

// ExecutionStatus is the per-action outcome reported by the executor.
type ExecutionStatus string

const (
	// StatusExecuted means the action ran successfully.
	StatusExecuted ExecutionStatus = "executed"
	// StatusSkippedDuplicate means the action already ran in this session.
	StatusSkippedDuplicate ExecutionStatus = "skipped_duplicate"
	// StatusFailed means the action was attempted and failed.
	StatusFailed ExecutionStatus = "failed"
)

// ExecutionResult summarizes one executed, skipped or failed action.
type ExecutionResult struct {
	Kind     ActionKind      `json:"kind"`
	Status   ExecutionStatus `json:"status"`
	Reason   string          `json:"reason,omitempty"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration"`
	Err      error           `json:"-"`
}

// Succeeded reports whether the action ran.
func (r ExecutionResult) Succeeded() bool { return r.Status == StatusExecuted }
