package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"news_mapper/internal/config"
	"news_mapper/internal/models"
)

type fakeStore struct {
	mu       sync.Mutex
	inserted []string
	failOn   string
}

func (f *fakeStore) InsertArticle(_ context.Context, art *models.TaggedArticle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if art.NormalizedURL == f.failOn {
		return errors.New("write failed")
	}
	f.inserted = append(f.inserted, art.NormalizedURL)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Crawl.AllowedDomains = []string{"example.com"}
	cfg.Writer.QueueSize = 10
	cfg.Writer.Workers = 2
	cfg.Crawl.Parallelism = 1
	cfg.Crawl.DelayMS = 1
	cfg.Crawl.MaxDepth = 1
	cfg.Crawl.UserAgent = "test"
	return cfg
}

func article(url string) *models.TaggedArticle {
	return &models.TaggedArticle{NormalizedURL: url, Locations: []string{"Russia"}}
}

func TestWriterPoolDrainsQueue(t *testing.T) {
	store := &fakeStore{}
	s, err := NewSpider(testConfig(), nil, store, nil, zap.NewNop())
	require.NoError(t, err)

	s.startWriters()
	s.saveChan <- article("https://example.com/a")
	s.saveChan <- article("https://example.com/b")
	close(s.saveChan)
	s.wgSave.Wait()

	assert.ElementsMatch(t, []string{"https://example.com/a", "https://example.com/b"}, store.inserted)
	assert.Equal(t, int64(2), atomic.LoadInt64(&s.saved))
}

func TestWriterSurfacesStoreFailureWithoutRetry(t *testing.T) {
	store := &fakeStore{failOn: "https://example.com/bad"}
	s, err := NewSpider(testConfig(), nil, store, nil, zap.NewNop())
	require.NoError(t, err)

	s.startWriters()
	s.saveChan <- article("https://example.com/bad")
	s.saveChan <- article("https://example.com/good")
	close(s.saveChan)
	s.wgSave.Wait()

	// The failed item is not retried and does not stop the pool.
	assert.Equal(t, []string{"https://example.com/good"}, store.inserted)
	assert.Equal(t, int64(1), atomic.LoadInt64(&s.saved))
}

func TestNewSpiderRejectsBadDenyPattern(t *testing.T) {
	cfg := testConfig()
	cfg.Crawl.DenyPatterns = []string{"("}

	_, err := NewSpider(cfg, nil, &fakeStore{}, nil, zap.NewNop())
	assert.Error(t, err)
}
