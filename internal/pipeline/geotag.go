package pipeline

import (
	"sort"

	"news_mapper/internal/gazetteer"
	"news_mapper/internal/models"
	"news_mapper/internal/ner"
)

// Boosts applied once per source field to every distinct entity text
// appearing there, independent of its raw frequency in that field.
const (
	descriptionBoost = 1.25
	titleBoost       = 1.5
)

// LocationMention is a scored location string, transient to the
// geotagger.
type LocationMention struct {
	Text  string
	Score float64
}

// Geotagger assigns up to MaxTags country tags to an article from the
// locations its title, description and body mention.
type Geotagger struct {
	recognizer ner.Recognizer
	gaz        *gazetteer.Gazetteer

	MinMentionScore float64
	KeepRatio       float64
	MaxTags         int
	TopCandidates   int
}

func NewGeotagger(recognizer ner.Recognizer, gaz *gazetteer.Gazetteer, cfg GeotagConfig) *Geotagger {
	return &Geotagger{
		recognizer:      recognizer,
		gaz:             gaz,
		MinMentionScore: cfg.MinMentionScore,
		KeepRatio:       cfg.KeepRatio,
		MaxTags:         cfg.MaxTags,
		TopCandidates:   3,
	}
}

// GeotagConfig is the tuning surface of the geotagger.
type GeotagConfig struct {
	MinMentionScore float64
	KeepRatio       float64
	MaxTags         int
}

// Tag runs the recognizer over the three fields independently, scores
// location mentions, prunes and ranks them, and resolves the survivors
// through the gazetteer into country tags.
func (g *Geotagger) Tag(title, description, body string) ([]string, error) {
	titleLocs := g.locations(title)
	descLocs := g.locations(description)
	bodyLocs := g.locations(body)

	mentions := scoreMentions(titleLocs, descLocs, bodyLocs, g.MinMentionScore)
	if len(mentions) == 0 {
		return nil, models.Drop("no locations tagged", title)
	}

	mentions = topMentions(mentions, g.TopCandidates, g.KeepRatio)

	tags := make([]string, 0, g.MaxTags)
	seen := make(map[string]bool)
	for _, m := range mentions {
		if len(tags) >= g.MaxTags {
			break
		}
		country, ok := g.gaz.Resolve(m.Text)
		if !ok || seen[country] {
			continue
		}
		seen[country] = true
		tags = append(tags, country)
	}

	if len(tags) == 0 {
		return nil, models.Drop("no locations tagged", title)
	}
	return tags, nil
}

// locations returns the GPE/LOC entity texts of one field. Recognizer
// failures are treated as "no entities", like any other parse failure.
func (g *Geotagger) locations(text string) []string {
	entities, err := g.recognizer.Analyze(text)
	if err != nil {
		return nil
	}
	var locs []string
	for _, e := range entities {
		if e.Label == "GPE" || e.Label == "LOC" {
			locs = append(locs, e.Text)
		}
	}
	return locs
}

// scoreMentions counts raw mentions across all three fields, applies
// the per-source boosts, and prunes entries below minScore. The result
// is sorted score descending, ties broken lexicographically, so
// ranking is deterministic.
func scoreMentions(titleLocs, descLocs, bodyLocs []string, minScore float64) []LocationMention {
	scores := make(map[string]float64)
	for _, loc := range titleLocs {
		scores[loc]++
	}
	for _, loc := range descLocs {
		scores[loc]++
	}
	for _, loc := range bodyLocs {
		scores[loc]++
	}

	inTitle := stringSet(titleLocs)
	inDesc := stringSet(descLocs)
	for text := range scores {
		if inDesc[text] {
			scores[text] *= descriptionBoost
		}
		if inTitle[text] {
			scores[text] *= titleBoost
		}
	}

	mentions := make([]LocationMention, 0, len(scores))
	for text, score := range scores {
		if score < minScore {
			continue
		}
		mentions = append(mentions, LocationMention{Text: text, Score: score})
	}

	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].Score != mentions[j].Score {
			return mentions[i].Score > mentions[j].Score
		}
		return mentions[i].Text < mentions[j].Text
	})
	return mentions
}

// topMentions keeps the first n candidates whose score holds up
// against the best one.
func topMentions(mentions []LocationMention, n int, keepRatio float64) []LocationMention {
	if len(mentions) > n {
		mentions = mentions[:n]
	}
	maxScore := mentions[0].Score
	kept := mentions[:0:0]
	for _, m := range mentions {
		if m.Score/maxScore >= keepRatio {
			kept = append(kept, m)
		}
	}
	return kept
}

func stringSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
