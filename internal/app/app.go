package app

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"news_mapper/internal/config"
	"news_mapper/internal/db"
	"news_mapper/internal/gazetteer"
	"news_mapper/internal/logging"
	"news_mapper/internal/ner"
	"news_mapper/internal/pipeline"
	"news_mapper/internal/urlutil"
)

// App wires the shared resources and runs the spider until the crawl
// finishes or a termination signal arrives.
type App struct {
	cfg    *config.Config
	store  *db.MongoStore
	spider *Spider
	log    *zap.Logger
}

func New(cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	// Both lookups are loaded once and shared read-only across
	// concurrently processed documents.
	gaz, err := gazetteer.Load(cfg.Gazetteer.CountriesFile, cfg.Gazetteer.CitiesFile)
	if err != nil {
		return nil, err
	}

	store, err := db.NewMongoStore(cfg.DB)
	if err != nil {
		return nil, err
	}

	pipe := pipeline.New(pipeline.Deps{
		Gazetteer:  gaz,
		Recognizer: ner.NewProseRecognizer(),
		Enrich:     cfg.Enrich,
		Clock:      time.Now,
		Logger:     logger.Named("pipeline"),
	})

	filter := func(link string) bool {
		return urlutil.ShouldFollow(link, cfg.Crawl.FollowPatterns, cfg.Crawl.DenyPatterns)
	}

	spider, err := NewSpider(cfg, pipe, store, filter, logger.Named("spider"))
	if err != nil {
		store.Close()
		return nil, err
	}

	return &App{cfg: cfg, store: store, spider: spider, log: logger}, nil
}

func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		a.log.Info("termination signal received, stopping feed")
		a.spider.Stop()
	}()

	if err := a.spider.Run(a.cfg.Crawl.StartURLs); err != nil {
		return err
	}

	return a.store.Close()
}
