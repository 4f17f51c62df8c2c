// Package ner adapts the NLP engine that emits named-entity spans.
package ner

import (
	prose "github.com/jdkato/prose/v2"
)

// Entity is one named-entity span with its semantic label.
type Entity struct {
	Text  string
	Label string
}

// Recognizer turns free text into labeled entity spans.
type Recognizer interface {
	Analyze(text string) ([]Entity, error)
}

// ProseRecognizer backs the Recognizer with the prose NLP model. The
// model is loaded once and is read-only afterwards, so one instance
// may be shared across concurrently processed documents.
type ProseRecognizer struct{}

func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

func (r *ProseRecognizer) Analyze(text string) ([]Entity, error) {
	if text == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}

	spans := doc.Entities()
	entities := make([]Entity, 0, len(spans))
	for _, s := range spans {
		entities = append(entities, Entity{Text: s.Text, Label: s.Label})
	}
	return entities, nil
}
