package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/folio/core"
)

// Passage is a portfolio text before embedding.
type Passage struct {
	ID      string `yaml:"id"`
	Section string `yaml:"section"`
	Text    string `yaml:"text"`
}

type passageFile struct {
	Passages []Passage `yaml:"passages"`
}

// Indexer accepts embedded documents. InMemoryStore implements it.
type Indexer interface {
	Add(docs ...Document) error
}

var _ Indexer = (*InMemoryStore)(nil)

// ParsePassages decodes a YAML passage file. Unknown fields, empty ids or
// texts and duplicate ids are rejected.
func ParsePassages(data []byte) ([]Passage, error) {
	var f passageFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse passages: %w", err)
	}

	seen := make(map[string]bool, len(f.Passages))
	for i, p := range f.Passages {
		if p.ID == "" {
			return nil, fmt.Errorf("passage %d: id must not be empty", i)
		}
		if p.Text == "" {
			return nil, fmt.Errorf("passage %s: text must not be empty", p.ID)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("passage %s: duplicate id", p.ID)
		}
		seen[p.ID] = true
	}
	return f.Passages, nil
}

// LoadPassages reads and parses a YAML passage file.
func LoadPassages(path string) ([]Passage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePassages(data)
}

// Index embeds every passage and adds it to idx.
func Index(ctx context.Context, idx Indexer, embedder core.Embedder, passages ...Passage) error {
	if idx == nil || embedder == nil {
		return errors.New("index: store and embedder are required")
	}

	docs := make([]Document, 0, len(passages))
	for _, p := range passages {
		emb, err := embedder.Embed(ctx, p.Text)
		if err != nil {
			return fmt.Errorf("embed passage %s: %w", p.ID, err)
		}
		docs = append(docs, Document{ID: p.ID, Section: p.Section, Text: p.Text, Embedding: emb})
	}
	return idx.Add(docs...)
}
