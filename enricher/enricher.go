// Package enricher applies role-conditioned transformations to retrieved
// evidence and the action plan before generation. Enrich is a pure function
// of its inputs: it performs no I/O and never mutates the evidence slice.
package enricher

import (
	"strings"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/internal/util"
)

// DefaultSystemPrompt is rendered with a promptData value.
const DefaultSystemPrompt = `You are the portfolio assistant of {{.Owner}}, talking to a {{.RoleName}}.
Tone: {{.Tone}}.
Answer only from the evidence below. If it does not cover the question, say so briefly and suggest a related topic.
{{- if .Evidence}}

Evidence:
{{bullets .Evidence}}
{{- end}}
{{- if .CodeSnippet}}

Include this code sample verbatim where it helps the explanation:
{{.CodeSnippet}}
{{- end}}
{{- if .DataTable}}

Present these figures as a table:
{{.DataTable}}
{{- end}}
{{- if .FunFacts}}

Weave in one of these fun facts:
{{bullets .FunFacts}}
{{- end}}
{{- if .Offers}}

Also:
{{bullets .Offers}}
{{- end}}
{{- if .Closing}}

End with a note in this spirit: {{.Closing}}
{{- end}}`

// Options configure an Enricher.
type Options struct {
	Owner          string
	PromptTemplate string
	// MaxEvidence caps the evidence passages placed in the prompt.
	MaxEvidence int
}

// Enricher builds core.EnrichedContext values.
type Enricher struct {
	opts Options
}

// New creates an Enricher.
func New(optFns ...func(o *Options)) *Enricher {
	opts := Options{
		Owner:          "the portfolio owner",
		PromptTemplate: DefaultSystemPrompt,
		MaxEvidence:    8,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.PromptTemplate == "" {
		opts.PromptTemplate = DefaultSystemPrompt
	}
	return &Enricher{opts: opts}
}

var defaultEnricher = New()

// Enrich uses an Enricher with default options.
func Enrich(query string, evidence []core.EvidenceChunk, plan core.Plan, pol core.RolePolicy) core.EnrichedContext {
	return defaultEnricher.Enrich(query, evidence, plan, pol)
}

type promptData struct {
	Owner    string
	RoleName string
	core.EnrichedContext
}

// Enrich builds the prompt-construction input for one turn.
func (e *Enricher) Enrich(query string, evidence []core.EvidenceChunk, plan core.Plan, pol core.RolePolicy) core.EnrichedContext {
	chunks := make([]core.EvidenceChunk, len(evidence))
	copy(chunks, evidence)
	core.SortEvidence(chunks)
	if e.opts.MaxEvidence > 0 && len(chunks) > e.opts.MaxEvidence {
		chunks = chunks[:e.opts.MaxEvidence]
	}

	out := core.EnrichedContext{
		Role:    pol.Role,
		Tone:    pol.Tone,
		Query:   query,
		Closing: pol.Closing,
	}
	if len(pol.FollowUps) > 0 {
		out.FollowUps = append([]string(nil), pol.FollowUps...)
	}

	for _, c := range chunks {
		text := strings.TrimSpace(stripCode(c.Text))
		if text == "" {
			continue
		}
		out.Evidence = append(out.Evidence, text)
		out.Sections = append(out.Sections, c.Section)
	}

	if len(chunks) > 0 {
		top := chunks[0]
		if plan.IncludeCode && pol.HasEnrichment(core.EnrichCodeSnippet) {
			if lang, body, ok := extractCode(top.Text); ok {
				out.CodeSnippet = fence(lang, body)
			}
		}
		if pol.HasEnrichment(core.EnrichDataTable) {
			if rows, ok := extractTable(stripCode(top.Text)); ok {
				out.DataTable = renderTable(rows)
			}
		}
	}

	for _, a := range plan.Actions {
		switch p := a.Payload.(type) {
		case core.TopicPayload:
			out.FunFacts = append(out.FunFacts, funFacts(pol, p.Topic)...)
		default:
			if offer := offerLine(a); offer != "" {
				out.Offers = append(out.Offers, offer)
			}
		}
	}

	out.SystemPrompt = e.render(promptData{Owner: e.opts.Owner, RoleName: pol.Role.DisplayName(), EnrichedContext: out})
	return out
}

func (e *Enricher) render(data promptData) string {
	prompt, err := util.RenderTemplate(e.opts.PromptTemplate, data)
	if err != nil {
		return util.MustRender(DefaultSystemPrompt, data)
	}
	return prompt
}

func funFacts(pol core.RolePolicy, topic string) []string {
	facts := pol.FunFacts[topic]
	if len(facts) == 0 {
		return nil
	}
	if !pol.HasEnrichment(core.EnrichFunFacts) {
		return facts[:1]
	}
	return append([]string(nil), facts...)
}

func offerLine(a core.PendingAction) string {
	switch a.Kind {
	case core.ActionOfferResume:
		return "Offer to share the resume."
	case core.ActionSendResumeLink:
		if p, ok := a.Payload.(core.ResumeLinkPayload); ok && p.Recipient != "" {
			return "Mention that a resume link is being sent to " + p.Recipient + "."
		}
		return "Mention that a resume link is being sent."
	case core.ActionNotifySMS:
		return "Mention that the owner has been notified and will reach out."
	}
	return ""
}
