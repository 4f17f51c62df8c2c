package models

import (
	"errors"
	"fmt"
	"time"
)

// RawDocument is a fetched page handed over by the crawler. It is
// consumed exactly once by the enrichment pipeline.
type RawDocument struct {
	URL  string
	Body []byte
}

// ParsedArticle accumulates the fields recovered from a raw document.
// Each field is written once by the stage responsible for it. Date is
// always timezone-naive: the wall clock as written on the page, stored
// with the UTC location as the naive convention. Content is never
// persisted.
type ParsedArticle struct {
	URL         string    `bson:"url"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Keywords    []string  `bson:"keywords"`
	Date        time.Time `bson:"date"`
	Content     string    `bson:"-"`
}

// TaggedArticle is a ParsedArticle with up to two country tags, each a
// valid gazetteer country name.
type TaggedArticle struct {
	ParsedArticle `bson:",inline"`

	NormalizedURL string   `bson:"normalized_url"`
	Locations     []string `bson:"locations"`
}

// Dropped is the terminal outcome for an item that failed an
// enrichment stage. It is an expected business result, not a failure:
// the orchestrator stops the chain and nothing is persisted.
type Dropped struct {
	Reason string
	Title  string
}

func (d *Dropped) Error() string {
	return fmt.Sprintf("dropped (%s): %s", d.Reason, d.Title)
}

// Drop builds a Dropped outcome as an error value.
func Drop(reason, title string) error {
	return &Dropped{Reason: reason, Title: title}
}

// AsDropped reports whether err is a drop outcome.
func AsDropped(err error) (*Dropped, bool) {
	var d *Dropped
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
