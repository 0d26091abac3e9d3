package policy

import "github.com/hupe1980/folio/core"

func set[T comparable](items ...T) map[T]bool {
	m := make(map[T]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

const apology = "Sorry, I can't answer that right now. Please try again in a moment."

// DefaultPolicies returns the built-in role policies.
func DefaultPolicies() []core.RolePolicy {
	funFacts := map[string][]string{
		"coffee": {"Runs on a precisely weighed 18g espresso shot every morning."},
		"mma":    {"Trains Brazilian jiu-jitsu three times a week and treats debugging like grappling."},
	}
	return []core.RolePolicy{
		{
			Role:            core.RoleHiringManagerNontechnical,
			Tone:            "warm, plain language, focused on outcomes and business impact",
			Enrichments:     set(core.EnrichDataTable),
			EligibleActions: set(core.ActionOfferResume, core.ActionNotifySMS),
			Closing:         "Happy to share more about how this work translated into results.",
			Apology:         apology,
			FollowUps: []string{
				"See a summary of recent results",
				"Learn about team leadership experience",
				"Request the resume",
			},
		},
		{
			Role:            core.RoleHiringManagerTechnical,
			Tone:            "concise and technically precise, highlighting architecture decisions and trade-offs",
			Enrichments:     set(core.EnrichCodeSnippet, core.EnrichDataTable),
			EligibleActions: set(core.ActionOfferResume, core.ActionSendResumeLink, core.ActionNotifySMS),
			Closing:         "Glad to go deeper on any of these systems in an interview.",
			Apology:         apology,
			FollowUps: []string{
				"Walk through a system design",
				"See production metrics",
				"Get the resume by email",
			},
		},
		{
			Role:            core.RoleSoftwareDeveloper,
			Tone:            "collegial and detail oriented, comfortable with code and jargon",
			Enrichments:     set(core.EnrichCodeSnippet),
			EligibleActions: set(core.ActionEnrichTopic),
			Closing:         "Feel free to dig into the repositories; PRs and questions welcome.",
			Apology:         apology,
			FollowUps: []string{
				"Show another code example",
				"Explain the retrieval pipeline",
				"Compare the tech stack choices",
			},
			FunFacts: funFacts,
		},
		{
			Role:            core.RoleCasualVisitor,
			Tone:            "friendly and light, avoiding jargon",
			Enrichments:     set(core.EnrichFunFacts),
			EligibleActions: set(core.ActionEnrichTopic),
			Closing:         "Thanks for stopping by!",
			Apology:         apology,
			FollowUps: []string{
				"Hear a fun fact",
				"See favorite projects",
			},
			FunFacts: funFacts,
		},
		{
			Role:            core.RoleConfession,
			Tone:            "neutral",
			EligibleActions: set(core.ActionLogConfession),
			Acknowledgment:  "Thanks for sharing. Your confession has been received anonymously.",
		},
	}
}

// Default returns the table built from DefaultPolicies.
func Default() *Table {
	t, err := New(DefaultPolicies()...)
	if err != nil {
		panic("policy: invalid default policies: " + err.Error())
	}
	return t
}
