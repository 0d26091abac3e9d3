package generator

import "strings"

// DefaultFollowUpBudget is the whitespace token budget of the follow-up segment.
const DefaultFollowUpBudget = 50

const (
	minFollowUps = 2
	maxFollowUps = 3
)

var fallbackFollowUps = []string{"Ask another question", "Explore the projects"}

// FollowUps selects 2-3 distinct next-step options whose combined length
// stays within budget whitespace tokens.
func FollowUps(options []string, budget int) []string {
	if budget <= 0 {
		budget = DefaultFollowUpBudget
	}

	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		s = strings.Join(strings.Fields(s), " ")
		key := strings.ToLower(s)
		if s == "" || seen[key] || len(out) == maxFollowUps {
			return
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, o := range options {
		add(o)
	}
	for _, f := range fallbackFollowUps {
		if len(out) >= minFollowUps {
			break
		}
		add(f)
	}

	for len(out) > minFollowUps && words(out) > budget {
		out = out[:len(out)-1]
	}
	if words(out) > budget {
		per := budget / len(out)
		if per < 1 {
			per = 1
		}
		for i, o := range out {
			if f := strings.Fields(o); len(f) > per {
				out[i] = strings.Join(f[:per], " ")
			}
		}
	}
	return out
}

func words(items []string) int {
	n := 0
	for _, it := range items {
		n += len(strings.Fields(it))
	}
	return n
}
