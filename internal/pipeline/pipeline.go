// Package pipeline implements the per-document enrichment chain:
// content validation, date resolution, recency filtering and entity
// geotagging, with drop-on-failure semantics.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"news_mapper/internal/config"
	"news_mapper/internal/extract"
	"news_mapper/internal/gazetteer"
	"news_mapper/internal/models"
	"news_mapper/internal/ner"
	"news_mapper/internal/urlutil"
)

// Deps wires the shared read-only resources into the pipeline.
type Deps struct {
	Gazetteer  *gazetteer.Gazetteer
	Recognizer ner.Recognizer
	Enrich     config.EnrichConfig
	// Clock supplies "now" for the recency check. Injected so runs are
	// reproducible; production wiring passes time.Now.
	Clock  func() time.Time
	Logger *zap.Logger
}

// Pipeline turns raw documents into tagged articles. It holds no
// mutable state across documents and is safe for concurrent
// invocation.
type Pipeline struct {
	dates   DateResolver
	content ContentValidator
	geotag  *Geotagger

	recencyDays int
	clock       func() time.Time
	log         *zap.Logger
}

func New(deps Deps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		content: ContentValidator{MinContentLen: deps.Enrich.MinContentLen},
		geotag: NewGeotagger(deps.Recognizer, deps.Gazetteer, GeotagConfig{
			MinMentionScore: deps.Enrich.MinMentionScore,
			KeepRatio:       deps.Enrich.KeepRatio,
			MaxTags:         deps.Enrich.MaxTags,
		}),
		recencyDays: deps.Enrich.RecencyDays,
		clock:       clock,
		log:         logger,
	}
}

// Process runs the enrichment chain on one raw document. The first
// Dropped outcome halts the chain; content and date are validated
// before geotagging so no NLP work is spent on invalid documents.
func (p *Pipeline) Process(ctx context.Context, raw models.RawDocument) (*models.TaggedArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := extract.Parse(raw.URL, raw.Body)
	if err != nil {
		return nil, p.drop("unreadable document", raw.URL)
	}

	art := models.ParsedArticle{URL: raw.URL}

	if err := p.content.Validate(doc, &art); err != nil {
		return nil, p.logDrop(err)
	}

	date, ok := p.dates.Resolve(doc)
	if !ok || !IsRecent(stripZone(p.clock()), date, p.recencyDays) {
		return nil, p.drop("missing or invalid date", art.Title)
	}
	art.Date = date

	locations, err := p.geotag.Tag(art.Title, art.Description, art.Content)
	if err != nil {
		return nil, p.logDrop(err)
	}

	p.log.Info("article enriched",
		zap.String("title", art.Title),
		zap.Time("date", art.Date),
		zap.Strings("locations", locations))

	return &models.TaggedArticle{
		ParsedArticle: art,
		NormalizedURL: urlutil.Normalize(raw.URL),
		Locations:     locations,
	}, nil
}

func (p *Pipeline) drop(reason, title string) error {
	return p.logDrop(models.Drop(reason, title))
}

func (p *Pipeline) logDrop(err error) error {
	if d, ok := models.AsDropped(err); ok {
		p.log.Info("document dropped",
			zap.String("reason", d.Reason),
			zap.String("title", d.Title))
	}
	return err
}
