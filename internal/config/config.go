package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type DBConfig struct {
	Connection string `yaml:"connection"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type CrawlConfig struct {
	AllowedDomains []string `yaml:"allowed_domains"`
	StartURLs      []string `yaml:"start_urls"`
	DenyPatterns   []string `yaml:"deny_patterns"`
	FollowPatterns []string `yaml:"follow_patterns"`
	UserAgent      string   `yaml:"user_agent"`
	DelayMS        int      `yaml:"delay_ms"`
	Parallelism    int      `yaml:"parallelism"`
	MaxDepth       int      `yaml:"max_depth"`
}

// EnrichConfig is the tuning surface of the enrichment pipeline.
type EnrichConfig struct {
	RecencyDays     int     `yaml:"recency_days"`
	MinContentLen   int     `yaml:"min_content_len"`
	MinMentionScore float64 `yaml:"min_mention_score"`
	KeepRatio       float64 `yaml:"keep_ratio"`
	MaxTags         int     `yaml:"max_tags"`
}

type GazetteerConfig struct {
	CountriesFile string `yaml:"countries_file"`
	CitiesFile    string `yaml:"cities_file"`
}

type WriterConfig struct {
	QueueSize int `yaml:"queue_size"`
	Workers   int `yaml:"workers"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type Config struct {
	DB        DBConfig        `yaml:"db"`
	Crawl     CrawlConfig     `yaml:"crawl"`
	Enrich    EnrichConfig    `yaml:"enrich"`
	Gazetteer GazetteerConfig `yaml:"gazetteer"`
	Writer    WriterConfig    `yaml:"writer"`
	Logging   LoggingConfig   `yaml:"logging"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Crawl.UserAgent == "" {
		c.Crawl.UserAgent = "Mozilla/5.0 (NewsBot/1.0)"
	}
	if c.Crawl.Parallelism == 0 {
		c.Crawl.Parallelism = 4
	}
	if c.Crawl.DelayMS == 0 {
		c.Crawl.DelayMS = 500
	}
	if c.Crawl.MaxDepth == 0 {
		c.Crawl.MaxDepth = 5
	}
	if c.Enrich.RecencyDays == 0 {
		c.Enrich.RecencyDays = 7
	}
	if c.Enrich.MinContentLen == 0 {
		c.Enrich.MinContentLen = 600
	}
	if c.Enrich.MinMentionScore == 0 {
		c.Enrich.MinMentionScore = 2
	}
	if c.Enrich.KeepRatio == 0 {
		c.Enrich.KeepRatio = 0.5
	}
	if c.Enrich.MaxTags == 0 {
		c.Enrich.MaxTags = 2
	}
	if c.Writer.QueueSize == 0 {
		c.Writer.QueueSize = 1000
	}
	if c.Writer.Workers == 0 {
		c.Writer.Workers = 2
	}
}
