package pipeline

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"news_mapper/internal/extract"
)

// Meta selectors queried after the extractor's dedicated publishing
// date, in priority order.
var dateMetaSelectors = []string{
	"meta[name='LastModifiedDate']",
	"meta[name='Last-Modified']",
	"meta[property='og:updated_time']",
}

// Words marking a <time> element whose text carries a timestamp after
// a label prefix.
var dateIndicators = []string{"Edited", "Updated", "Published"}

// DateResolver recovers a publication instant from document metadata,
// falling back to a scan of marked-up time elements.
type DateResolver struct{}

// Resolve returns the naive publication timestamp for the document.
// The first non-empty candidate in the cascade wins; if it does not
// parse, there is no date.
func (DateResolver) Resolve(doc *extract.Document) (time.Time, bool) {
	raw := doc.PublishingDate()
	for _, selector := range dateMetaSelectors {
		if raw != "" {
			break
		}
		raw = doc.MetaContent(selector)
	}
	if raw != "" {
		return parseNaive(raw)
	}
	return fromTimeElements(doc)
}

// fromTimeElements scans all <time> elements. Text behind an indicator
// word has everything up to the first "at" (or, failing that, the
// first ":") discarded before parsing. The earliest parsed candidate
// wins.
func fromTimeElements(doc *extract.Document) (time.Time, bool) {
	var earliest time.Time
	found := false

	doc.ElementsByTag("time").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		for _, indicator := range dateIndicators {
			if !strings.Contains(text, indicator) {
				continue
			}
			if _, after, ok := strings.Cut(text, "at"); ok {
				text = after
			} else if _, after, ok := strings.Cut(text, ":"); ok {
				text = after
			}
			break
		}

		candidate, ok := parseNaive(text)
		if !ok {
			return
		}
		if !found || candidate.Before(earliest) {
			earliest = candidate
			found = true
		}
	})

	return earliest, found
}

// parseNaive parses a raw date string and strips the zone, keeping the
// wall clock as written. Parse failures of any kind are swallowed and
// reported as "no candidate".
func parseNaive(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}
	return stripZone(t), true
}

// stripZone rebuilds t's wall-clock reading in the naive (UTC-tagged)
// convention so all date comparisons are wall-clock comparisons.
func stripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// IsRecent reports whether date falls inside the recency window ending
// at now. Both sides are naive timestamps.
func IsRecent(now, date time.Time, maxDaysElapsed int) bool {
	return now.Sub(date) < time.Duration(maxDaysElapsed)*24*time.Hour
}
