package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news_mapper/internal/gazetteer"
	"news_mapper/internal/models"
	"news_mapper/internal/ner"
)

// scanRecognizer emits one GPE entity per occurrence of a known name,
// standing in for the NLP engine.
type scanRecognizer struct {
	names []string
}

func (r scanRecognizer) Analyze(text string) ([]ner.Entity, error) {
	var entities []ner.Entity
	for _, name := range r.names {
		for i := 0; i < strings.Count(text, name); i++ {
			entities = append(entities, ner.Entity{Text: name, Label: "GPE"})
		}
	}
	return entities, nil
}

func testGazetteer() *gazetteer.Gazetteer {
	return gazetteer.New(
		[]gazetteer.Country{
			{Name: "Palestine", Alpha3: "PSE"},
			{Name: "Israel", Alpha3: "ISR"},
			{Name: "Russia", Alpha3: "RUS"},
			{Name: "Ukraine", Alpha3: "UKR"},
			{Name: "Egypt", Alpha3: "EGY"},
		},
		[]gazetteer.City{
			{Name: "Moscow", Country: "Russia", Population: 10452000},
			{Name: "Cairo", Country: "Egypt", Population: 11893000},
		},
	)
}

func newTestGeotagger(rec ner.Recognizer) *Geotagger {
	return NewGeotagger(rec, testGazetteer(), GeotagConfig{
		MinMentionScore: 2,
		KeepRatio:       0.5,
		MaxTags:         2,
	})
}

func TestTagBoostedScoring(t *testing.T) {
	// Gaza: 1 title + 1 description + 1 body = 3 mentions, boosted
	// 3 x 1.25 x 1.5 = 5.625. Israel: 2 body mentions = 2. The ratio
	// 2/5.625 is under 0.5, so only Gaza survives and resolves through
	// the alias table.
	g := newTestGeotagger(scanRecognizer{names: []string{"Gaza", "Israel"}})

	tags, err := g.Tag(
		"Gaza under fire",
		"Strikes on Gaza continued overnight.",
		"Residents of Gaza reported strikes. Israel said the operation would continue. Israel also closed two crossings.",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Palestine"}, tags)
}

func TestTagPrunesSingleMentions(t *testing.T) {
	g := newTestGeotagger(scanRecognizer{names: []string{"Ukraine"}})

	// One body mention scores 1, below the minimum of 2.
	_, err := g.Tag("Talks resume", "", "Ukraine hosted the delegation.")
	d, ok := models.AsDropped(err)
	require.True(t, ok)
	assert.Equal(t, "no locations tagged", d.Reason)
}

func TestTagMaxTwoCountries(t *testing.T) {
	g := newTestGeotagger(scanRecognizer{names: []string{"Russia", "Ukraine", "Egypt"}})

	body := strings.Repeat("Russia Ukraine Egypt ", 3)
	tags, err := g.Tag("", "", body)
	require.NoError(t, err)

	assert.Len(t, tags, 2)
	for _, tag := range tags {
		assert.True(t, testGazetteer().IsCountry(tag), "tag %q must be a country", tag)
	}
}

func TestTagTieBreakIsLexicographic(t *testing.T) {
	// Equal scores everywhere: candidate order, and therefore which
	// two countries win the tag slots, must be deterministic.
	g := newTestGeotagger(scanRecognizer{names: []string{"Ukraine", "Egypt", "Russia"}})

	body := strings.Repeat("Ukraine Egypt Russia ", 2)
	for i := 0; i < 10; i++ {
		tags, err := g.Tag("", "", body)
		require.NoError(t, err)
		assert.Equal(t, []string{"Egypt", "Russia"}, tags)
	}
}

func TestTagDeduplicatesSameCountry(t *testing.T) {
	// Moscow resolves to Russia; a second slot stays open for Ukraine
	// even though Russia was already tagged via its own name.
	g := newTestGeotagger(scanRecognizer{names: []string{"Russia", "Moscow", "Ukraine"}})

	body := strings.Repeat("Russia Moscow ", 3) + "Ukraine Ukraine"
	tags, err := g.Tag("", "", body)
	require.NoError(t, err)

	// Moscow ranks first (score 3, lexicographic before Russia) and
	// resolves to Russia; the literal Russia mention is skipped as a
	// duplicate without consuming the second slot.
	assert.Equal(t, []string{"Russia", "Ukraine"}, tags)
}

func TestTagNoResolvableLocation(t *testing.T) {
	g := newTestGeotagger(scanRecognizer{names: []string{"Atlantis"}})

	_, err := g.Tag("Atlantis rising", "", "Atlantis Atlantis Atlantis")
	d, ok := models.AsDropped(err)
	require.True(t, ok)
	assert.Equal(t, "no locations tagged", d.Reason)
}

func TestTagIgnoresNonLocationLabels(t *testing.T) {
	rec := labeledRecognizer{entities: []ner.Entity{
		{Text: "Putin", Label: "PERSON"},
		{Text: "Putin", Label: "PERSON"},
		{Text: "Putin", Label: "PERSON"},
	}}
	g := newTestGeotagger(rec)

	_, err := g.Tag("Putin speaks", "Putin", "Putin Putin")
	_, ok := models.AsDropped(err)
	assert.True(t, ok)
}

type labeledRecognizer struct {
	entities []ner.Entity
}

func (r labeledRecognizer) Analyze(string) ([]ner.Entity, error) {
	return r.entities, nil
}
