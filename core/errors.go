package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRole is fatal for a turn and is returned before any stage runs.
	ErrUnknownRole = errors.New("unknown role")

	// ErrRetrievalUnavailable signals the retrieval backend could not be
	// reached; callers degrade to an empty evidence set.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrGenerationUnavailable signals a language model failure; callers
	// surface the role's apology fallback.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrActionExecutionFailed marks an isolated per-action failure.
	ErrActionExecutionFailed = errors.New("action execution failed")

	// ErrAnalyticsWriteFailed is logged locally and never surfaced.
	ErrAnalyticsWriteFailed = errors.New("analytics write failed")

	// ErrBackendNotConfigured is returned when an action's delivery backend is absent.
	ErrBackendNotConfigured = errors.New("backend not configured")
)

// ActionError records why a specific action failed. It matches
// ErrActionExecutionFailed via errors.Is and unwraps to the provider error.
type ActionError struct {
	Kind ActionKind
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying provider error.
func (e *ActionError) Unwrap() error { return e.Err }

// Is makes every ActionError match ErrActionExecutionFailed.
func (e *ActionError) Is(target error) bool { return target == ErrActionExecutionFailed }
