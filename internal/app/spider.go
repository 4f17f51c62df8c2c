package app

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly"
	"github.com/gocolly/colly/extensions"
	"go.uber.org/zap"

	"news_mapper/internal/config"
	"news_mapper/internal/models"
	"news_mapper/internal/pipeline"
	"news_mapper/internal/urlutil"
)

// Store is the persistence capability the spider hands finished
// records to.
type Store interface {
	InsertArticle(ctx context.Context, art *models.TaggedArticle) error
}

// LinkFilter decides whether a discovered link should be enqueued. The
// caller passes a concrete function value into the spider.
type LinkFilter func(link string) bool

// Spider fetches pages, feeds each through the enrichment pipeline and
// queues surviving articles for the store writers. A slow store never
// blocks fetching: the hand-off goes through a bounded channel drained
// by a writer pool.
type Spider struct {
	collector *colly.Collector
	pipeline  *pipeline.Pipeline
	store     Store
	filter    LinkFilter
	log       *zap.Logger

	visited  sync.Map
	saveChan chan *models.TaggedArticle
	wgSave   sync.WaitGroup
	workers  int

	saved   int64
	dropped int64

	ctx    context.Context
	cancel context.CancelFunc
}

func NewSpider(cfg *config.Config, pipe *pipeline.Pipeline, store Store, filter LinkFilter, logger *zap.Logger) (*Spider, error) {
	denied := make([]*regexp.Regexp, 0, len(cfg.Crawl.DenyPatterns))
	for _, pattern := range cfg.Crawl.DenyPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		denied = append(denied, re)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(cfg.Crawl.AllowedDomains...),
		colly.UserAgent(cfg.Crawl.UserAgent),
		colly.MaxDepth(cfg.Crawl.MaxDepth),
		colly.DisallowedURLFilters(denied...),
		colly.Async(true),
	)
	c.IgnoreRobotsTxt = false

	extensions.RandomUserAgent(c)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Crawl.Parallelism,
		Delay:       time.Duration(cfg.Crawl.DelayMS) * time.Millisecond,
		RandomDelay: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())

	if filter == nil {
		filter = func(string) bool { return true }
	}

	return &Spider{
		collector: c,
		pipeline:  pipe,
		store:     store,
		filter:    filter,
		log:       logger,
		saveChan:  make(chan *models.TaggedArticle, cfg.Writer.QueueSize),
		workers:   cfg.Writer.Workers,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Run crawls from the start URLs until the frontier is exhausted or
// Stop is called, then drains the save queue.
func (s *Spider) Run(startURLs []string) error {
	s.setupCollector()
	s.startWriters()

	for _, u := range startURLs {
		if err := s.collector.Visit(u); err != nil {
			s.log.Warn("start url rejected", zap.String("url", u), zap.Error(err))
		}
	}

	s.collector.Wait()

	close(s.saveChan)
	s.wgSave.Wait()

	s.log.Info("crawl finished",
		zap.Int64("articles_saved", atomic.LoadInt64(&s.saved)),
		zap.Int64("documents_dropped", atomic.LoadInt64(&s.dropped)))
	return nil
}

// Stop stops feeding new documents. In-flight documents run to
// completion or explicit drop.
func (s *Spider) Stop() {
	s.cancel()
}

func (s *Spider) setupCollector() {
	s.collector.OnRequest(func(r *colly.Request) {
		select {
		case <-s.ctx.Done():
			r.Abort()
		default:
		}
	})

	s.collector.OnHTML("html", func(e *colly.HTMLElement) {
		raw := models.RawDocument{
			URL:  e.Request.URL.String(),
			Body: e.Response.Body,
		}

		art, err := s.pipeline.Process(s.ctx, raw)
		if err != nil {
			if _, ok := models.AsDropped(err); ok {
				atomic.AddInt64(&s.dropped, 1)
			} else {
				s.log.Error("pipeline failed", zap.String("url", raw.URL), zap.Error(err))
			}
		} else {
			select {
			case s.saveChan <- art:
			default:
				s.log.Warn("save queue full, discarding article",
					zap.String("url", art.NormalizedURL))
			}
		}

		s.processLinks(e)
	})

	s.collector.OnError(func(r *colly.Response, err error) {
		if err == colly.ErrRobotsTxtBlocked {
			return
		}
		if r.StatusCode != 429 {
			s.log.Warn("fetch error", zap.String("url", r.Request.URL.String()), zap.Error(err))
		}
	})
}

func (s *Spider) processLinks(e *colly.HTMLElement) {
	e.ForEach("a[href]", func(_ int, el *colly.HTMLElement) {
		link := urlutil.Normalize(el.Request.AbsoluteURL(el.Attr("href")))
		if link == "" {
			return
		}

		if _, loaded := s.visited.LoadOrStore(link, true); loaded {
			return
		}

		if !s.filter(link) {
			return
		}

		e.Request.Visit(link)
	})
}

// startWriters drains the save queue. Write failures are surfaced per
// item and not retried; recovery belongs to the store.
func (s *Spider) startWriters() {
	for i := 0; i < s.workers; i++ {
		s.wgSave.Add(1)
		go func() {
			defer s.wgSave.Done()
			for art := range s.saveChan {
				if err := s.store.InsertArticle(context.Background(), art); err != nil {
					s.log.Error("store write failed",
						zap.String("url", art.NormalizedURL), zap.Error(err))
					continue
				}
				atomic.AddInt64(&s.saved, 1)
			}
		}()
	}
}
