// Package extract adapts the HTML extraction stack (goquery +
// go-readability) behind the capability surface the enrichment
// pipeline consumes: meta lookups, tag scans, and main-content
// extraction with cleanup and plain-text formatting.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)

	// Nodes stripped from the scored content node before formatting.
	postCleanupSelector = "figure, aside, script, style, noscript, iframe, form, .related, .advert"
)

// Document is a parsed page. It is built once per raw document and
// used by a single pipeline invocation; it is not safe for concurrent
// use.
type Document struct {
	pageURL *url.URL
	doc     *goquery.Document
	body    []byte

	article    *readability.Article
	articleErr error
}

// Parse decodes the body to UTF-8 (charset sniffed from the content)
// and builds the DOM.
func Parse(pageURL string, body []byte) (*Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", pageURL, err)
	}

	utf8Reader, err := charset.NewReader(bytes.NewReader(body), "")
	if err != nil {
		utf8Reader = bytes.NewReader(body)
	}
	decoded, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return &Document{pageURL: u, doc: doc, body: decoded}, nil
}

// URL returns the page URL the document was fetched from.
func (d *Document) URL() string {
	return d.pageURL.String()
}

// MetaContent returns the content attribute of the first element
// matching selector, or "" when absent.
func (d *Document) MetaContent(selector string) string {
	return strings.TrimSpace(d.doc.Find(selector).AttrOr("content", ""))
}

// Title prefers the readability-extracted title and falls back to
// og:title, then the document title element.
func (d *Document) Title() string {
	if art := d.readability(); art != nil && art.Title != "" {
		return art.Title
	}
	if t := d.MetaContent("meta[property='og:title']"); t != "" {
		return t
	}
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Description returns the meta description, preferring the dedicated
// tag over og:description.
func (d *Document) Description() string {
	if desc := d.MetaContent("meta[name='description']"); desc != "" {
		return desc
	}
	return d.MetaContent("meta[property='og:description']")
}

// MetaKeywords returns the generic keyword list from the keywords meta
// tag, comma-split and trimmed.
func (d *Document) MetaKeywords() []string {
	return splitKeywords(d.MetaContent("meta[name='keywords']"))
}

// NewsKeywords returns the dedicated news keyword tag, the preferred
// keyword source when present.
func (d *Document) NewsKeywords() []string {
	return splitKeywords(d.MetaContent("meta[name='news_keywords']"))
}

// PublishingDate returns the extractor's dedicated publication date as
// a raw string, or "" when it found none.
func (d *Document) PublishingDate() string {
	art := d.readability()
	if art == nil || art.PublishedTime == nil {
		return ""
	}
	return art.PublishedTime.Format(time.RFC3339)
}

// ElementsByTag returns all elements with the given tag name.
func (d *Document) ElementsByTag(tag string) *goquery.Selection {
	return d.doc.Find(tag)
}

// ArticleText extracts the main article body as plain text: the
// highest-scoring content node, post-cleaned and formatted with
// collapsed whitespace.
func (d *Document) ArticleText() (string, error) {
	art := d.readability()
	if art == nil {
		return "", d.articleErr
	}

	frag, err := goquery.NewDocumentFromReader(strings.NewReader(art.Content))
	if err != nil {
		return "", fmt.Errorf("parse content node: %w", err)
	}
	frag.Find(postCleanupSelector).Remove()

	text := reWhitespace.ReplaceAllString(frag.Text(), " ")
	return strings.TrimSpace(text), nil
}

// readability runs the content extractor once and caches the result.
// The extractor cleans the DOM and scores candidate nodes itself.
func (d *Document) readability() *readability.Article {
	if d.article != nil || d.articleErr != nil {
		return d.article
	}
	art, err := readability.FromReader(bytes.NewReader(d.body), d.pageURL)
	if err != nil {
		d.articleErr = fmt.Errorf("readability: %w", err)
		return nil
	}
	d.article = &art
	return d.article
}

func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
