// CLAUDE:SUMMARY YAML configuration for pacm with defaults, resolved into search, dedupe and logging settings.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
	"github.com/hazyhaar/pacm-search/pkg/fulltext"
	"gopkg.in/yaml.v3"
)

// Config is the content of config.yaml.
type Config struct {
	Addr      string `yaml:"addr"`
	DataDir   string `yaml:"data_dir"`
	SourcesDB string `yaml:"sources_db"`
	LogLevel  string `yaml:"log_level"`

	TLS   TLSConfig `yaml:"tls"`
	HTTP3 bool      `yaml:"http3"`

	// Watch reloads the data directory when it changes.
	Watch         bool          `yaml:"watch"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
	// CheckInterval enables the periodic source availability check.
	CheckInterval time.Duration `yaml:"check_interval"`
	// ReloadToken enables POST /v1/reload for callers presenting it as a
	// bearer token.
	ReloadToken string `yaml:"reload_token"`

	Search    SearchConfig          `yaml:"search"`
	Dedupe    DedupeConfig          `yaml:"dedupe"`
	Grammars  []catalog.GrammarSpec `yaml:"grammars"`
	RateLimit RateLimitConfig       `yaml:"rate_limit"`
	// ImportRate is the per-host request rate of the importer.
	ImportRate float64 `yaml:"import_rate"`
	// Audit maps required symbols to their expected titles.
	Audit map[string]string `yaml:"audit"`
}

type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	Dev      bool   `yaml:"dev"`
}

type SearchConfig struct {
	fulltext.Options `yaml:",inline"`
	MultiWord        string `yaml:"multi_word"`
}

type DedupeConfig struct {
	Tie string `yaml:"tie"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// defaultAudit lists the Supervisory Body annual reports and addenda the
// catalogue must carry under their published titles.
var defaultAudit = map[string]string{
	"FCCC/PA/CMA/2022/6":        "Annual report (reporting period 28 Jul. - 22 Sep. 2022)",
	"FCCC/PA/CMA/2022/6/Add.1":  "Addendum (reporting period 23 Sep. - 6 Nov. 2022)",
	"FCCC/PA/CMA/2023/15":       "Annual report (reporting period 7 Nov. 2022 - 14 Sep. 2023)",
	"FCCC/PA/CMA/2023/15/Add.1": "Addendum (reporting period 15 Sep. - 2 Nov. 2023)",
	"FCCC/PA/CMA/2024/2":        "Annual report (reporting period 18 Nov. 2023 - 18 Jul. 2024)",
	"FCCC/PA/CMA/2024/2/Add.1":  "Addendum (reporting period 19 Jul. 2024 - 9 Oct. 2024)",
}

func defaultConfig() *Config {
	return &Config{
		Addr:          ":8420",
		DataDir:       "data",
		SourcesDB:     "sources.db",
		LogLevel:      "info",
		WatchDebounce: 2 * time.Second,
		Search:        SearchConfig{Options: fulltext.DefaultOptions(), MultiWord: "and"},
		Dedupe:        DedupeConfig{Tie: "first"},
		RateLimit:     RateLimitConfig{RPS: 20, Burst: 40},
		ImportRate:    1,
	}
}

// loadConfig reads path over the defaults. A missing file yields the
// defaults; found reports whether the file existed.
func loadConfig(path string) (cfg *Config, found bool, err error) {
	cfg = defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return nil, false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, true, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := cfg.SearchOptions(); err != nil {
		return nil, true, err
	}
	if _, err := cfg.DedupeOptions(); err != nil {
		return nil, true, err
	}
	if _, err := cfg.Level(); err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// SearchOptions resolves the search section.
func (c *Config) SearchOptions() (fulltext.Options, error) {
	opts := c.Search.Options
	mw, err := fulltext.ParseMultiWordPolicy(c.Search.MultiWord)
	if err != nil {
		return opts, fmt.Errorf("search.multi_word: %w", err)
	}
	opts.MultiWord = mw
	return opts, nil
}

// DedupeOptions resolves the tie policy and the symbol grammars. No grammars
// configured means the built-in ones.
func (c *Config) DedupeOptions() (catalog.DedupeOptions, error) {
	tie, err := catalog.ParseTiePolicy(c.Dedupe.Tie)
	if err != nil {
		return catalog.DedupeOptions{}, fmt.Errorf("dedupe.tie: %w", err)
	}
	canon := catalog.DefaultCanonicalizer()
	if len(c.Grammars) > 0 {
		if canon, err = catalog.NewCanonicalizer(c.Grammars); err != nil {
			return catalog.DedupeOptions{}, fmt.Errorf("grammars: %w", err)
		}
	}
	return catalog.DedupeOptions{Canonicalizer: canon, Tie: tie}, nil
}

// Level parses log_level (debug, info, warn, error).
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// AuditRequired returns the configured audit map, or the built-in one.
func (c *Config) AuditRequired() map[string]string {
	if len(c.Audit) > 0 {
		return c.Audit
	}
	return defaultAudit
}
