// Package classifier provides the default keyword-based core.Classifier.
// Keyword lists are data: they can be supplied through the policy file so
// deployments tune detection without code changes.
package classifier

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/hupe1980/folio/core"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// Keywords holds the keyword lists per feature. Multi-word entries match as
// phrases; single words match whole tokens only.
type Keywords struct {
	Technical []string            `yaml:"technical"`
	Resume    []string            `yaml:"resume"`
	Contact   []string            `yaml:"contact"`
	Data      []string            `yaml:"data"`
	Topics    map[string][]string `yaml:"topics"`
}

// DefaultKeywords returns the built-in keyword lists.
func DefaultKeywords() Keywords {
	return Keywords{
		Technical: []string{
			"code", "coding", "golang", "go", "python", "typescript", "api", "architecture",
			"algorithm", "backend", "frontend", "database", "sql", "kubernetes", "docker",
			"snippet", "function", "implementation", "github", "repository", "stack", "rag",
			"embedding", "langchain", "llm", "system design",
		},
		Resume: []string{"resume", "cv", "curriculum vitae", "résumé"},
		Contact: []string{
			"contact", "reach out", "get in touch", "email me", "call me", "phone", "hire",
			"interview", "schedule",
		},
		Data: []string{"metrics", "numbers", "statistics", "stats", "analytics", "data", "results", "impact"},
		Topics: map[string][]string{
			"coffee": {"coffee", "espresso", "latte"},
			"mma":    {"mma", "jiu jitsu", "bjj", "martial arts"},
		},
	}
}

// Merge returns k with every empty list replaced by the matching list in fallback.
func (k Keywords) Merge(fallback Keywords) Keywords {
	if len(k.Technical) == 0 {
		k.Technical = fallback.Technical
	}
	if len(k.Resume) == 0 {
		k.Resume = fallback.Resume
	}
	if len(k.Contact) == 0 {
		k.Contact = fallback.Contact
	}
	if len(k.Data) == 0 {
		k.Data = fallback.Data
	}
	if len(k.Topics) == 0 {
		k.Topics = fallback.Topics
	}
	return k
}

type matcher struct {
	words   map[string]bool
	phrases []string
}

func newMatcher(list []string) matcher {
	m := matcher{words: map[string]bool{}}
	for _, kw := range list {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.ContainsRune(kw, ' ') {
			// padded so a phrase only matches on token boundaries
			m.phrases = append(m.phrases, " "+strings.Join(strings.Fields(kw), " ")+" ")
			continue
		}
		m.words[kw] = true
	}
	sort.Strings(m.phrases)
	return m
}

func (m matcher) match(tokens []string, normalized string) bool {
	for _, t := range tokens {
		if m.words[t] {
			return true
		}
	}
	for _, p := range m.phrases {
		if strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}

// KeywordClassifier implements core.Classifier with whole-token keyword
// matching. It is immutable after construction and safe for concurrent use.
type KeywordClassifier struct {
	technical matcher
	resume    matcher
	contact   matcher
	data      matcher
	topics    map[string]matcher
}

var _ core.Classifier = (*KeywordClassifier)(nil)

// New builds a classifier from keyword lists. Empty lists fall back to DefaultKeywords.
func New(kw Keywords) *KeywordClassifier {
	kw = kw.Merge(DefaultKeywords())
	c := &KeywordClassifier{
		technical: newMatcher(kw.Technical),
		resume:    newMatcher(kw.Resume),
		contact:   newMatcher(kw.Contact),
		data:      newMatcher(kw.Data),
		topics:    make(map[string]matcher, len(kw.Topics)),
	}
	for topic, list := range kw.Topics {
		c.topics[strings.ToLower(topic)] = newMatcher(list)
	}
	return c
}

// Classify returns the features detected in query. Identical input always
// yields an identical result.
func (c *KeywordClassifier) Classify(query string) core.QueryFeatures {
	features := core.NewQueryFeatures()
	if email := emailPattern.FindString(query); email != "" {
		features.Email = email
		query = strings.Replace(query, email, " ", 1)
	}
	tokens, normalized := tokenize(query)

	if c.technical.match(tokens, normalized) {
		features.Add(core.FeatureTechnical)
	}
	if c.resume.match(tokens, normalized) {
		features.Add(core.FeatureResumeRequest)
	}
	if c.contact.match(tokens, normalized) {
		features.Add(core.FeatureContactRequest)
	}
	if c.data.match(tokens, normalized) {
		features.Add(core.FeatureDataRequest)
	}
	for topic, m := range c.topics {
		if m.match(tokens, normalized) {
			features.Add(core.TopicFeature(topic))
		}
	}
	return features
}

// tokenize lowercases s, splits it on anything that is not a letter, digit or
// one of "+#." (so "c++" and "node.js" survive) and returns both the tokens and
// a single-space-joined form used for phrase matching.
func tokenize(s string) ([]string, string) {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})
	out := tokens[:0]
	for _, t := range tokens {
		if t = strings.Trim(t, "."); t != "" {
			out = append(out, t)
		}
	}
	return out, " " + strings.Join(out, " ") + " "
}
