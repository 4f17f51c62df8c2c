package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head>
	<title>Border crossing reopens</title>
	<meta name="description" content="The crossing reopened after a week.">
	<meta property="og:description" content="og fallback">
	<meta name="keywords" content="border, trade , ">
	<meta name="news_keywords" content="crossing">
	<meta property="og:updated_time" content="2024-01-05 23:22:46">
</head><body>
	<time>Published: 2024-01-05 10:00:00</time>
	<time datetime="2024-01-04">04 Jan</time>
	<article><p>The crossing reopened after a week of closures, officials said.</p></article>
</body></html>`

func parseSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse("https://news.example.com/story", []byte(samplePage))
	require.NoError(t, err)
	return doc
}

func TestMetaContent(t *testing.T) {
	doc := parseSample(t)

	assert.Equal(t, "2024-01-05 23:22:46", doc.MetaContent("meta[property='og:updated_time']"))
	assert.Equal(t, "", doc.MetaContent("meta[name='LastModifiedDate']"))
}

func TestDescriptionPrefersDedicatedTag(t *testing.T) {
	doc := parseSample(t)
	assert.Equal(t, "The crossing reopened after a week.", doc.Description())
}

func TestKeywordSplitting(t *testing.T) {
	doc := parseSample(t)

	assert.Equal(t, []string{"border", "trade"}, doc.MetaKeywords())
	assert.Equal(t, []string{"crossing"}, doc.NewsKeywords())
}

func TestElementsByTag(t *testing.T) {
	doc := parseSample(t)
	assert.Equal(t, 2, doc.ElementsByTag("time").Length())
}

func TestParseBadURL(t *testing.T) {
	_, err := Parse("://not-a-url", []byte("<html></html>"))
	assert.Error(t, err)
}

func TestArticleTextCollapsesWhitespace(t *testing.T) {
	page := `<html><head><title>t</title></head><body><article><p>one
		two    three</p></article></body></html>`
	doc, err := Parse("https://news.example.com/story", []byte(page))
	require.NoError(t, err)

	text, err := doc.ArticleText()
	require.NoError(t, err)
	assert.Contains(t, text, "one two three")
	assert.NotContains(t, text, "  ")
}
