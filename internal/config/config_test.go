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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3, cfg.Crawl.MaxDepth)
	assert.Equal(t, 100, cfg.Crawl.MaxPages)
	assert.Equal(t, "SiteKnowledgeGraph/1.0 (Web Crawler)", cfg.Crawl.UserAgent)
	assert.Equal(t, 60*time.Second, cfg.Crawl.HTTPTimeout)
	assert.Equal(t, 2*time.Second, cfg.Render.SettleDelay)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sitegraph.yaml")
	content := `
database:
  path: /tmp/graph.db
crawl:
  max_depth: 1
  max_pages: 5
  request_delay: 250ms
  exclude_patterns:
    - "https://example.com/blog/*"
render:
  enabled: false
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("SITEGRAPH_MAX_PAGES", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/graph.db", cfg.Database.Path)
	assert.Equal(t, 1, cfg.Crawl.MaxDepth)
	assert.Equal(t, 7, cfg.Crawl.MaxPages, "environment overrides file")
	assert.Equal(t, 250*time.Millisecond, cfg.Crawl.RequestDelay)
	assert.Equal(t, []string{"https://example.com/blog/*"}, cfg.Crawl.ExcludePatterns)
	assert.False(t, cfg.Render.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultUserAgent, cfg.Crawl.UserAgent)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero pages", func(c *Config) { c.Crawl.MaxPages = 0 }},
		{"negative depth", func(c *Config) { c.Crawl.MaxDepth = -1 }},
		{"no timeout", func(c *Config) { c.Crawl.HTTPTimeout = 0 }},
		{"negative delay", func(c *Config) { c.Crawl.RequestDelay = -time.Second }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
