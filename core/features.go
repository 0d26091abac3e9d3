package core

import (
	"sort"
	"strings"
)

// QueryFeature is a classifier output label.
type QueryFeature string

const (
	// FeatureTechnical marks code or engineering related queries.
	FeatureTechnical QueryFeature = "technical"
	// FeatureResumeRequest marks an explicit request for the resume.
	FeatureResumeRequest QueryFeature = "resume_request"
	// FeatureContactRequest marks an explicit request to get in touch.
	FeatureContactRequest QueryFeature = "contact_request"
	// FeatureDataRequest marks questions about metrics, numbers or analytics.
	FeatureDataRequest QueryFeature = "data_request"

	topicPrefix = "topic:"
)

// TopicFeature builds the feature label for a recognized special-interest topic.
func TopicFeature(topic string) QueryFeature {
	return QueryFeature(topicPrefix + strings.ToLower(topic))
}

// QueryFeatures is the classifier result for one query.
type QueryFeatures struct {
	Set map[QueryFeature]bool
	// Email is a visitor address found in the query, if any.
	Email string
}

// NewQueryFeatures builds a feature set from labels.
func NewQueryFeatures(fs ...QueryFeature) QueryFeatures {
	q := QueryFeatures{Set: map[QueryFeature]bool{}}
	for _, f := range fs {
		q.Set[f] = true
	}
	return q
}

// Add inserts a label.
func (q *QueryFeatures) Add(f QueryFeature) {
	if q.Set == nil {
		q.Set = map[QueryFeature]bool{}
	}
	q.Set[f] = true
}

// Has reports whether a label is present.
func (q QueryFeatures) Has(f QueryFeature) bool { return q.Set[f] }

// Topics returns the recognized topics sorted by name.
func (q QueryFeatures) Topics() []string {
	var topics []string
	for f := range q.Set {
		if t, ok := strings.CutPrefix(string(f), topicPrefix); ok {
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)
	return topics
}

// Labels returns every label sorted by name.
func (q QueryFeatures) Labels() []QueryFeature {
	out := make([]QueryFeature, 0, len(q.Set))
	for f := range q.Set {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Classifier turns query text into features. Keyword matching rules are a
// deployment concern; implementations must be deterministic.
type Classifier interface {
	Classify(query string) QueryFeatures
}
