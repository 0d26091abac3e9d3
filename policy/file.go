package policy

import (
	"bytes"
	"fmt"
	"os"

	"github.com/hupe1980/folio/classifier"
	"github.com/hupe1980/folio/core"
	"gopkg.in/yaml.v3"
)

// RoleSpec is the YAML shape of one role policy.
type RoleSpec struct {
	Tone           string              `yaml:"tone"`
	Enrichments    []string            `yaml:"enrichments"`
	Actions        []string            `yaml:"actions"`
	Closing        string              `yaml:"closing"`
	Apology        string              `yaml:"apology"`
	Acknowledgment string              `yaml:"acknowledgment"`
	FollowUps      []string            `yaml:"follow_ups"`
	FunFacts       map[string][]string `yaml:"fun_facts"`
}

// File is the YAML document holding role policies and classifier keywords.
type File struct {
	Roles    map[string]RoleSpec `yaml:"roles"`
	Keywords classifier.Keywords `yaml:"keywords"`
}

// Parse decodes a policy document. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode policy file: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses the policy document at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(data)
}

// Table converts the document into a validated Table.
func (f *File) Table() (*Table, error) {
	policies := make([]core.RolePolicy, 0, len(f.Roles))
	for name, spec := range f.Roles {
		role, err := core.ParseRole(name)
		if err != nil {
			return nil, err
		}
		p := core.RolePolicy{
			Role:            role,
			Tone:            spec.Tone,
			Enrichments:     map[core.Enrichment]bool{},
			EligibleActions: map[core.ActionKind]bool{},
			Closing:         spec.Closing,
			Apology:         spec.Apology,
			Acknowledgment:  spec.Acknowledgment,
			FollowUps:       spec.FollowUps,
			FunFacts:        spec.FunFacts,
		}
		for _, e := range spec.Enrichments {
			p.Enrichments[core.Enrichment(e)] = true
		}
		for _, a := range spec.Actions {
			p.EligibleActions[core.ActionKind(a)] = true
		}
		policies = append(policies, p)
	}
	return New(policies...)
}
