// Package generator adapts a model.Model into the answer generator of a
// conversation turn. Provider failures, timeouts and empty completions are
// reported as core.ErrGenerationUnavailable; the flow controller replaces
// them with the role's apology.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/logging"
	"github.com/hupe1980/folio/model"
)

// Options configure a Generator.
type Options struct {
	// HistoryTurns is the number of prior turns replayed to the model.
	HistoryTurns int
	// FollowUpBudget bounds the follow-up segment in whitespace tokens.
	FollowUpBudget int
	Stream         bool
	Logger         logging.Logger
}

// Generator produces answers through a model.
type Generator struct {
	model model.Model
	opts  Options
}

// New creates a Generator.
func New(m model.Model, optFns ...func(o *Options)) *Generator {
	opts := Options{
		HistoryTurns:   6,
		FollowUpBudget: DefaultFollowUpBudget,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FollowUpBudget <= 0 {
		opts.FollowUpBudget = DefaultFollowUpBudget
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Generator{model: m, opts: opts}
}

// Generate answers the enriched query given the conversation history.
func (g *Generator) Generate(ctx context.Context, enriched core.EnrichedContext, history []core.Turn) (core.Answer, error) {
	if g.model == nil {
		return core.Answer{}, fmt.Errorf("%w: %w", core.ErrGenerationUnavailable, core.ErrBackendNotConfigured)
	}

	req := model.Request{
		Instructions: enriched.SystemPrompt,
		Messages:     g.messages(enriched.Query, history),
		Stream:       g.opts.Stream,
	}

	info := g.model.Info()
	start := time.Now()
	resp, err := model.Collect(ctx, g.model, req)
	dur := time.Since(start)
	if err != nil {
		g.logCall(info, 0, dur, err)
		return core.Answer{}, fmt.Errorf("%w: %w", core.ErrGenerationUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		g.opts.Logger.Warn("LLM returned empty answer", "model", info.Name, "finish_reason", resp.FinishReason)
		return core.Answer{}, fmt.Errorf("%w: empty answer", core.ErrGenerationUnavailable)
	}

	tokens := len(strings.Fields(text))
	if resp.Usage != nil && resp.Usage.TotalTokens > 0 {
		tokens = resp.Usage.TotalTokens
	}
	g.logCall(info, tokens, dur, nil)

	return core.Answer{
		Text:      text,
		Tokens:    tokens,
		FollowUps: FollowUps(enriched.FollowUps, g.opts.FollowUpBudget),
	}, nil
}

func (g *Generator) logCall(info model.Info, tokens int, dur time.Duration, err error) {
	if sl, ok := g.opts.Logger.(*logging.StructuredLogger); ok {
		sl.WithContext("provider", info.Provider).LogLLMCall(info.Name, tokens, dur, err == nil, err)
		return
	}

	if err != nil {
		g.opts.Logger.Warn("LLM call failed", "model", info.Name, "provider", info.Provider, "duration", dur, "error", err)
		return
	}
	g.opts.Logger.Info("LLM call completed", "model", info.Name, "provider", info.Provider, "token_count", tokens, "duration", dur)
}

func (g *Generator) messages(query string, history []core.Turn) []model.Message {
	if g.opts.HistoryTurns >= 0 && len(history) > g.opts.HistoryTurns {
		history = history[len(history)-g.opts.HistoryTurns:]
	}
	msgs := make([]model.Message, 0, 2*len(history)+1)
	for _, t := range history {
		if t.Query != "" {
			msgs = append(msgs, model.Message{Role: model.RoleUser, Text: t.Query})
		}
		if t.Answer != "" {
			msgs = append(msgs, model.Message{Role: model.RoleAssistant, Text: t.Answer})
		}
	}
	return append(msgs, model.Message{Role: model.RoleUser, Text: query})
}
