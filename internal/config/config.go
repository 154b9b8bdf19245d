// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxDepth       = 3
	DefaultMaxPages       = 100
	DefaultUserAgent      = "SiteKnowledgeGraph/1.0 (Web Crawler)"
	DefaultHTTPTimeout    = 60 * time.Second
	DefaultSitemapTimeout = 30 * time.Second
	DefaultRequestDelay   = time.Second
	DefaultNavTimeout     = 60 * time.Second
	DefaultSettleDelay    = 2 * time.Second
	DefaultJobInterval    = 5 * time.Second

	envPrefix = "SITEGRAPH_"
)

// Config is the full runtime configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Crawl    CrawlConfig    `yaml:"crawl"`
	Render   RenderConfig   `yaml:"render"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type CrawlConfig struct {
	MaxDepth        int           `yaml:"max_depth"`
	MaxPages        int           `yaml:"max_pages"`
	RequestDelay    time.Duration `yaml:"request_delay"`
	UserAgent       string        `yaml:"user_agent"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	SitemapTimeout  time.Duration `yaml:"sitemap_timeout"`
	ExcludePatterns []string      `yaml:"exclude_patterns"` // glob patterns matched against normalized URLs
	JobInterval     time.Duration `yaml:"job_interval"`     // minimum gap between queued jobs
}

type RenderConfig struct {
	Enabled           bool          `yaml:"enabled"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	ChromeFlags       []string      `yaml:"chrome_flags"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the /metrics listener
}

// Default returns a config populated with built-in defaults.
func Default() *Config {
	dbPath := "sitegraph.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".sitegraph", "sitegraph.db")
	}
	return &Config{
		Database: DatabaseConfig{Path: dbPath},
		Crawl: CrawlConfig{
			MaxDepth:       DefaultMaxDepth,
			MaxPages:       DefaultMaxPages,
			RequestDelay:   DefaultRequestDelay,
			UserAgent:      DefaultUserAgent,
			HTTPTimeout:    DefaultHTTPTimeout,
			SitemapTimeout: DefaultSitemapTimeout,
			JobInterval:    DefaultJobInterval,
		},
		Render: RenderConfig{
			Enabled:           true,
			NavigationTimeout: DefaultNavTimeout,
			SettleDelay:       DefaultSettleDelay,
		},
		Log: LogConfig{Level: "info", Pretty: true},
	}
}

// Load reads defaults, then the YAML file at path (if non-empty), then .env
// files and SITEGRAPH_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	loadDotEnv()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads .env without overriding variables already set in the process.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

func (c *Config) applyEnv() {
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Crawl.MaxDepth = getEnvInt("MAX_DEPTH", c.Crawl.MaxDepth)
	c.Crawl.MaxPages = getEnvInt("MAX_PAGES", c.Crawl.MaxPages)
	c.Crawl.UserAgent = getEnv("USER_AGENT", c.Crawl.UserAgent)
	c.Crawl.RequestDelay = getEnvDuration("REQUEST_DELAY", c.Crawl.RequestDelay)
	c.Render.Enabled = getEnvBool("RENDER_ENABLED", c.Render.Enabled)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Metrics.Addr = getEnv("METRICS_ADDR", c.Metrics.Addr)
	if v := os.Getenv(envPrefix + "EXCLUDE"); v != "" {
		c.Crawl.ExcludePatterns = strings.Split(v, ",")
	}
}

// Validate rejects budgets and timeouts that cannot drive a crawl.
func (c *Config) Validate() error {
	if c.Crawl.MaxDepth < 0 {
		return fmt.Errorf("crawl.max_depth must be >= 0, got %d", c.Crawl.MaxDepth)
	}
	if c.Crawl.MaxPages <= 0 {
		return fmt.Errorf("crawl.max_pages must be > 0, got %d", c.Crawl.MaxPages)
	}
	if c.Crawl.HTTPTimeout <= 0 {
		return fmt.Errorf("crawl.http_timeout must be positive")
	}
	if c.Crawl.RequestDelay < 0 {
		return fmt.Errorf("crawl.request_delay must not be negative")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
