package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/folio/core"
)

// CallbackType defines the lifecycle points of a turn where callbacks run.
//
// Callbacks hook into the turn pipeline without modifying it:
//   - OnTransition: after every state change
//   - OnDegraded: when a stage falls back (retrieval, generation, analytics)
//   - OnTurnComplete: once the turn reached a terminal state
//
// Callbacks run synchronously on the turn goroutine. A callback error is
// logged and never changes the answer returned to the caller.
type CallbackType string

const (
	// CallbackOnTransition is triggered after the flow moved to a new state.
	CallbackOnTransition CallbackType = "on_transition"

	// CallbackOnDegraded is triggered when a stage failed and the turn continued
	// with a fallback.
	CallbackOnDegraded CallbackType = "on_degraded"

	// CallbackOnTurnComplete is triggered with the final TurnResult.
	CallbackOnTurnComplete CallbackType = "on_turn_complete"
)

// CallbackContext carries the information available at a lifecycle point.
type CallbackContext struct {
	SessionID string
	TurnID    string
	Role      core.RoleID

	// CallbackType indicates which lifecycle point triggered this execution.
	CallbackType CallbackType

	// From and To are set for transitions. Duration is the time spent in From.
	From     State
	To       State
	Duration time.Duration

	// Stage and Err are set for degradations.
	Stage string
	Err   error

	// Result is set when the turn completed.
	Result *TurnResult
}

// Callback is a turn lifecycle hook.
type Callback interface {
	// Type returns the lifecycle point this callback handles.
	Type() CallbackType

	// Execute performs the callback logic.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback.
//
// Example:
//
//	cb := NewFunctionCallback(CallbackOnDegraded, func(ctx context.Context, c *CallbackContext) error {
//	    metrics.Inc(c.Stage)
//	    return nil
//	})
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager routes callbacks by type.
//
// Registration is not synchronized; register everything before the engine
// serves turns. Execution is safe for concurrent use afterwards.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty callback manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback. Callbacks of one type run in registration order.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks runs every callback registered for the type and stops at
// the first error.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	callbacks, exists := cm.callbacks[callbackType]
	if !exists {
		return nil
	}

	callbackCtx.CallbackType = callbackType

	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// LoggingCallback formats lifecycle events and forwards them to a logging function.
//
// Example:
//
//	callback := NewLoggingCallback(CallbackOnTransition, func(msg string) {
//	    log.Printf("[ENGINE] %s", msg)
//	})
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the event. Without a logger function it silently succeeds.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}

	var message string

	switch c.callbackType {
	case CallbackOnTransition:
		message = fmt.Sprintf("[%s] session=%s %s -> %s (%s)",
			c.callbackType, callbackCtx.SessionID, callbackCtx.From, callbackCtx.To, callbackCtx.Duration)
	case CallbackOnDegraded:
		message = fmt.Sprintf("[%s] session=%s stage=%s err=%v",
			c.callbackType, callbackCtx.SessionID, callbackCtx.Stage, callbackCtx.Err)
	default:
		message = fmt.Sprintf("[%s] session=%s turn=%s",
			c.callbackType, callbackCtx.SessionID, callbackCtx.TurnID)
	}

	c.logger(message)

	return nil
}
