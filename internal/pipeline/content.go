package pipeline

import (
	"unicode/utf8"

	"news_mapper/internal/extract"
	"news_mapper/internal/models"
)

// ContentValidator isolates the main article body and enforces the
// minimum length. It also populates the title, description and keyword
// fields from the extractor's meta lookups.
type ContentValidator struct {
	MinContentLen int
}

// Validate writes title, description, keywords and content into art.
// Articles shorter than the minimum are dropped.
func (v ContentValidator) Validate(doc *extract.Document, art *models.ParsedArticle) error {
	art.Title = doc.Title()
	art.Description = doc.Description()

	// Prefer the dedicated news keyword tag, fall back to the generic
	// keyword extractor.
	art.Keywords = doc.NewsKeywords()
	if len(art.Keywords) == 0 {
		art.Keywords = doc.MetaKeywords()
	}

	text, err := doc.ArticleText()
	if err != nil || utf8.RuneCountInString(text) < v.MinContentLen {
		return models.Drop("not enough text", art.Title)
	}
	art.Content = text
	return nil
}
