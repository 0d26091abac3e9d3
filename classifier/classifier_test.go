package classifier

import (
	"testing"

	"github.com/hupe1980/folio/core"
	"github.com/stretchr/testify/assert"
)

func TestClassify_Features(t *testing.T) {
	c := New(Keywords{})

	tests := []struct {
		name  string
		query string
		want  []core.QueryFeature
	}{
		{"technical", "Can you show me some Golang code?", []core.QueryFeature{core.FeatureTechnical}},
		{"resume", "Could I get your resume please", []core.QueryFeature{core.FeatureResumeRequest}},
		{"contact phrase", "How do I get in touch?", []core.QueryFeature{core.FeatureContactRequest}},
		{"data", "What metrics did the project move?", []core.QueryFeature{core.FeatureDataRequest}},
		{"topic", "Do you like espresso?", []core.QueryFeature{core.TopicFeature("coffee")}},
		{"nothing", "Hello there", nil},
		{"phrase inside words", "Tell me about the data breach outage last year", []core.QueryFeature{core.FeatureDataRequest}},
		{"phrase suffix of a word", "Did you recall me?", nil},
		{"phrase across word prefix", "How does the ecosystem designer work?", nil},
		{"phrase with punctuation", "Could you reach out, please?", []core.QueryFeature{core.FeatureContactRequest}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.query)
			assert.ElementsMatch(t, tt.want, got.Labels())
		})
	}
}

func TestClassify_WholeTokenMatching(t *testing.T) {
	c := New(Keywords{Technical: []string{"go"}})
	assert.False(t, c.Classify("I am going home").Has(core.FeatureTechnical))
	assert.True(t, c.Classify("I write Go daily").Has(core.FeatureTechnical))
}

func TestClassify_ExtractsEmail(t *testing.T) {
	c := New(Keywords{})
	f := c.Classify("send the resume to jane.doe@example.com")
	assert.Equal(t, "jane.doe@example.com", f.Email)
	assert.True(t, f.Has(core.FeatureResumeRequest))
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(Keywords{})
	q := "Share your resume and the kubernetes code, also coffee?"
	first := c.Classify(q)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first.Labels(), c.Classify(q).Labels())
	}
}

func TestKeywords_Merge(t *testing.T) {
	k := Keywords{Resume: []string{"portfolio pdf"}}.Merge(DefaultKeywords())
	assert.Equal(t, []string{"portfolio pdf"}, k.Resume)
	assert.NotEmpty(t, k.Technical)
	assert.Contains(t, k.Topics, "coffee")
}
