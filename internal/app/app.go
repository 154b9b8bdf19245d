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

package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/agentberlin/sitegraph"
	"github.com/agentberlin/sitegraph/internal/config"
	"github.com/agentberlin/sitegraph/internal/graph"
	"github.com/agentberlin/sitegraph/internal/logger"
	"github.com/agentberlin/sitegraph/internal/metrics"
	"github.com/agentberlin/sitegraph/internal/store"
)

// jobQueueSize bounds the crawl jobs waiting on the runner.
const jobQueueSize = 64

// Options carries the collaborators of an App. Only Config and Store are
// required.
type Options struct {
	Config  *config.Config
	Store   *store.Store
	Emitter EventEmitter
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	// HTTPClient overrides the client used for pages and sitemaps.
	HTTPClient *http.Client
	// Renderer overrides the browser fallback. When nil and rendering is
	// enabled, a BrowserManager is created.
	Renderer sitegraph.Renderer
}

// App represents the core application logic
type App struct {
	cfg     *config.Config
	store   *store.Store
	emitter EventEmitter
	log     *logger.Logger
	metrics *metrics.Metrics

	browser *sitegraph.BrowserManager
	crawler *Crawler
	builder *graph.Builder
	builds  *BuildRegistry
	runner  *JobRunner
}

// NewApp wires the fetch, crawl and graph components around the store.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil || opts.Store == nil {
		return nil, fmt.Errorf("app requires a config and a store")
	}
	cfg := opts.Config
	emitter := opts.Emitter
	if emitter == nil {
		emitter = &NoOpEmitter{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	a := &App{
		cfg:     cfg,
		store:   opts.Store,
		emitter: emitter,
		log:     log.WithComponent("app"),
		metrics: opts.Metrics,
		builds:  NewBuildRegistry(),
	}

	renderer := opts.Renderer
	if renderer == nil && cfg.Render.Enabled {
		a.browser = sitegraph.NewBrowserManager(sitegraph.BrowserOptions{
			UserAgent:         cfg.Crawl.UserAgent,
			NavigationTimeout: cfg.Render.NavigationTimeout,
			SettleDelay:       cfg.Render.SettleDelay,
			ExtraFlags:        chromeFlags(cfg.Render.ChromeFlags),
		})
		renderer = a.browser
	}

	fetcher := sitegraph.NewFetcher(sitegraph.FetcherOptions{
		Client:    opts.HTTPClient,
		UserAgent: cfg.Crawl.UserAgent,
		Timeout:   cfg.Crawl.HTTPTimeout,
		Renderer:  renderer,
	})
	sitemaps := sitegraph.NewSitemapReader(opts.HTTPClient, cfg.Crawl.UserAgent, cfg.Crawl.SitemapTimeout, log)

	crawler, err := NewCrawler(CrawlerOptions{
		Store:           opts.Store,
		Fetcher:         fetcher,
		Sitemaps:        sitemaps,
		Delay:           cfg.Crawl.RequestDelay,
		ExcludePatterns: cfg.Crawl.ExcludePatterns,
		Emitter:         emitter,
		Logger:          log,
		Metrics:         opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	a.crawler = crawler
	a.builder = graph.NewBuilder(opts.Store, log, opts.Metrics)
	a.runner = NewJobRunner(ctx, cfg.Crawl.JobInterval, jobQueueSize)
	return a, nil
}

// chromeFlags turns "name" and "name=value" entries into chromedp flags.
func chromeFlags(flags []string) map[string]interface{} {
	if len(flags) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(flags))
	for _, f := range flags {
		name, value, hasValue := strings.Cut(strings.TrimLeft(f, "-"), "=")
		if hasValue {
			out[name] = value
		} else {
			out[name] = true
		}
	}
	return out
}

// Store returns the underlying store.
func (a *App) Store() *store.Store {
	return a.store
}

// PrepareCrawl registers the site for rawURL and creates a PENDING crawl
// job. Budgets <= 0 fall back to the configured defaults.
func (a *App) PrepareCrawl(rawURL string, maxDepth, maxPages int) (CrawlJobRequest, error) {
	startURL, domain, err := normalizeStartURL(rawURL)
	if err != nil {
		return CrawlJobRequest{}, err
	}
	if maxDepth < 0 {
		maxDepth = a.cfg.Crawl.MaxDepth
	}
	if maxPages <= 0 {
		maxPages = a.cfg.Crawl.MaxPages
	}

	site, err := a.store.GetOrCreateSite(startURL, domain)
	if err != nil {
		return CrawlJobRequest{}, err
	}
	job, err := a.store.CreateCrawlJob(site.ID, maxDepth, maxPages)
	if err != nil {
		return CrawlJobRequest{}, err
	}
	return CrawlJobRequest{
		JobID:    job.ID,
		SiteID:   site.ID,
		BaseURL:  startURL,
		MaxDepth: maxDepth,
		MaxPages: maxPages,
	}, nil
}

// CrawlSite crawls rawURL synchronously.
func (a *App) CrawlSite(ctx context.Context, rawURL string, maxDepth, maxPages int) (*CrawlResult, error) {
	req, err := a.PrepareCrawl(rawURL, maxDepth, maxPages)
	if err != nil {
		return nil, err
	}
	return a.crawler.Run(ctx, req)
}

// SubmitCrawl queues a crawl on the job runner. done, if non-nil, is called
// from the runner goroutine when the crawl finishes, or with a FAILED result
// if the app shuts down before the crawl starts.
func (a *App) SubmitCrawl(rawURL string, maxDepth, maxPages int, done func(*CrawlResult, error)) (CrawlJobRequest, error) {
	req, err := a.PrepareCrawl(rawURL, maxDepth, maxPages)
	if err != nil {
		return CrawlJobRequest{}, err
	}
	err = a.runner.Submit(Job{
		Run: func(ctx context.Context) {
			result, err := a.crawler.Run(ctx, req)
			if done != nil {
				done(result, err)
			}
		},
		Abandon: func(reason error) {
			result := a.crawler.Abandon(req, reason)
			if done != nil {
				done(result, nil)
			}
		},
	})
	if err != nil {
		a.crawler.Abandon(req, err)
		return CrawlJobRequest{}, err
	}
	a.log.WithJob(req.JobID, req.SiteID).Infof("Queued crawl of %s", req.BaseURL)
	return req, nil
}

// BuildGraph rebuilds the entity graph of a site from its crawled pages.
// Only one build per site runs at a time.
func (a *App) BuildGraph(ctx context.Context, siteID string) (*graph.BuildStats, error) {
	if _, err := a.store.GetSite(siteID); err != nil {
		return nil, err
	}
	release, err := a.builds.Acquire(siteID)
	if err != nil {
		return nil, err
	}
	defer release()

	a.emitter.Emit(EventGraphStarted, siteID)
	stats, err := a.builder.Build(ctx, siteID)
	if err != nil {
		return nil, err
	}
	a.emitter.Emit(EventGraphCompleted, stats)
	return stats, nil
}

// Wait blocks until every queued crawl has finished. No crawls can be
// submitted afterwards.
func (a *App) Wait() {
	a.runner.Close()
}

// Close waits for queued crawls and shuts the browser down.
func (a *App) Close() error {
	a.runner.Close()
	if a.browser != nil {
		return a.browser.Close()
	}
	return nil
}

// SystemHealthCheck reports whether optional runtime dependencies exist.
type SystemHealthCheck struct {
	IsHealthy  bool   `json:"isHealthy"`
	ErrorTitle string `json:"errorTitle,omitempty"`
	ErrorMsg   string `json:"errorMsg,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// CheckSystemHealth checks if all required dependencies are available
func (a *App) CheckSystemHealth() *SystemHealthCheck {
	if !a.cfg.Render.Enabled || isChromeBrowserAvailable() {
		return &SystemHealthCheck{IsHealthy: true}
	}
	return &SystemHealthCheck{
		IsHealthy:  false,
		ErrorTitle: "Chrome Browser Required",
		ErrorMsg:   "Google Chrome or Chromium is required for rendering JavaScript pages but was not found on your system.",
		Suggestion: "Install Google Chrome or Chromium, or set CHROME_EXECUTABLE_PATH to your Chrome binary.\n\nCrawls still run without Chrome, but client-rendered pages are stored as fetched.",
	}
}

// isChromeBrowserAvailable checks if Chrome or Chromium is available
func isChromeBrowserAvailable() bool {
	if customPath := os.Getenv("CHROME_EXECUTABLE_PATH"); customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return true
		}
	}

	var chromePaths []string
	switch runtime.GOOS {
	case "darwin":
		chromePaths = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			os.Getenv("HOME") + "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	case "windows":
		chromePaths = []string{
			os.Getenv("ProgramFiles") + "\\Google\\Chrome\\Application\\chrome.exe",
			os.Getenv("ProgramFiles(x86)") + "\\Google\\Chrome\\Application\\chrome.exe",
			os.Getenv("LocalAppData") + "\\Google\\Chrome\\Application\\chrome.exe",
		}
	case "linux":
		chromePaths = []string{
			"/usr/bin/google-chrome",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	}
	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
