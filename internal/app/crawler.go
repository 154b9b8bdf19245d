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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agentberlin/sitegraph"
	"github.com/agentberlin/sitegraph/internal/logger"
	"github.com/agentberlin/sitegraph/internal/metrics"
	"github.com/agentberlin/sitegraph/internal/store"
	"github.com/gobwas/glob"
	"golang.org/x/time/rate"
)

// maxFailureSamples is the number of example failures quoted in an error
// summary.
const maxFailureSamples = 3

// CrawlJobRequest is one unit of crawl work.
type CrawlJobRequest struct {
	JobID    string `json:"jobId"`
	SiteID   string `json:"siteId"`
	BaseURL  string `json:"baseUrl"`
	MaxDepth int    `json:"maxDepth"`
	MaxPages int    `json:"maxPages"`
}

// CrawlFailure is a URL that could not be crawled.
type CrawlFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// CrawlResult is the terminal state of a crawl job.
type CrawlResult struct {
	JobID          string         `json:"jobId"`
	Status         string         `json:"status"`
	PagesProcessed int            `json:"pagesProcessed"`
	Failures       []CrawlFailure `json:"failures,omitempty"`
	ErrorMessage   string         `json:"errorMessage,omitempty"`
}

// CrawlStore is the persistence the crawler needs.
type CrawlStore interface {
	StartCrawlJob(id string, at time.Time) error
	UpdateCrawlJobProgress(id string, pagesProcessed int) error
	CompleteCrawlJob(id string, pagesProcessed int, errorMessage string, at time.Time) error
	FailCrawlJob(id string, pagesProcessed int, errorMessage string, at time.Time) error
	UpdateSiteStatus(id string, status string) error
	MarkSiteCrawled(id string, status string, at time.Time) error
	GetPageByURL(siteID string, url string) (*store.Page, error)
	UpsertPage(page *store.Page) error
}

// PageFetcher fetches a single page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*sitegraph.FetchResult, error)
}

// SitemapSource lists the page URLs of a sitemap.
type SitemapSource interface {
	Read(ctx context.Context, sitemapURL, baseDomain string) []string
}

// CrawlerOptions configures a Crawler. Store and Fetcher are required.
type CrawlerOptions struct {
	Store    CrawlStore
	Fetcher  PageFetcher
	Sitemaps SitemapSource
	// Delay is the minimum gap between consecutive fetches.
	Delay           time.Duration
	ExcludePatterns []string
	Emitter         EventEmitter
	Logger          *logger.Logger
	Metrics         *metrics.Metrics
	now             func() time.Time
}

// Crawler runs crawl jobs one page at a time.
type Crawler struct {
	store    CrawlStore
	fetcher  PageFetcher
	sitemaps SitemapSource
	delay    time.Duration
	exclude  []glob.Glob
	emitter  EventEmitter
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewCrawler validates the exclude patterns and returns a Crawler.
func NewCrawler(opts CrawlerOptions) (*Crawler, error) {
	if opts.Store == nil || opts.Fetcher == nil {
		return nil, errors.New("crawler requires a store and a fetcher")
	}
	c := &Crawler{
		store:    opts.Store,
		fetcher:  opts.Fetcher,
		sitemaps: opts.Sitemaps,
		delay:    opts.Delay,
		emitter:  opts.Emitter,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.now,
	}
	if c.emitter == nil {
		c.emitter = &NoOpEmitter{}
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	c.log = c.log.WithComponent("crawler")
	if c.now == nil {
		c.now = time.Now
	}
	for _, pattern := range opts.ExcludePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		c.exclude = append(c.exclude, g)
	}
	return c, nil
}

type frontierEntry struct {
	url   string
	depth int
}

// crawlRun is the state of one job.
type crawlRun struct {
	req       CrawlJobRequest
	domain    string
	queue     []frontierEntry
	queued    map[string]bool
	visited   map[string]bool
	processed int
	failures  []CrawlFailure
	log       *logger.Logger
}

func (r *crawlRun) push(url string, depth int) {
	r.queued[url] = true
	r.queue = append(r.queue, frontierEntry{url: url, depth: depth})
}

func (r *crawlRun) pop() frontierEntry {
	next := r.queue[0]
	r.queue = r.queue[1:]
	return next
}

// Run crawls req.BaseURL breadth-first within its domain. Per-page failures
// are recorded and the crawl continues; any other error marks the job
// FAILED and is returned alongside the result.
func (c *Crawler) Run(ctx context.Context, req CrawlJobRequest) (*CrawlResult, error) {
	run := &crawlRun{
		req:     req,
		domain:  sitegraph.ExtractDomain(req.BaseURL),
		queued:  make(map[string]bool),
		visited: make(map[string]bool),
		log:     c.log.WithJob(req.JobID, req.SiteID),
	}

	c.emitter.Emit(EventCrawlStarted, req)
	run.log.Event(logger.InfoLevel).
		Str("base_url", req.BaseURL).
		Int("max_depth", req.MaxDepth).
		Int("max_pages", req.MaxPages).
		Msg("Crawl started")

	err := c.crawl(ctx, run)
	result := &CrawlResult{
		JobID:          req.JobID,
		PagesProcessed: run.processed,
		Failures:       run.failures,
	}
	finishedAt := c.now()

	if err != nil {
		result.Status = store.JobStatusFailed
		result.ErrorMessage = err.Error()
		if ferr := c.store.FailCrawlJob(req.JobID, run.processed, err.Error(), finishedAt); ferr != nil {
			run.log.WithError(ferr).Error("Failed to mark crawl job as failed")
		}
		if serr := c.store.MarkSiteCrawled(req.SiteID, store.SiteStatusError, finishedAt); serr != nil {
			run.log.WithError(serr).Error("Failed to update site status")
		}
		c.metrics.CrawlJobFinished(store.JobStatusFailed)
		c.emitter.Emit(EventCrawlFailed, result)
		run.log.WithError(err).Error("Crawl failed")
		return result, err
	}

	result.Status = store.JobStatusCompleted
	if run.processed == 0 {
		result.ErrorMessage = summarizeFailures(run.failures)
	}
	if err := c.store.CompleteCrawlJob(req.JobID, run.processed, result.ErrorMessage, finishedAt); err != nil {
		return result, fmt.Errorf("failed to complete crawl job: %w", err)
	}
	if err := c.store.MarkSiteCrawled(req.SiteID, store.SiteStatusCompleted, finishedAt); err != nil {
		return result, fmt.Errorf("failed to update site status: %w", err)
	}
	c.metrics.CrawlJobFinished(store.JobStatusCompleted)
	c.emitter.Emit(EventCrawlCompleted, result)
	run.log.StatsEvent("Crawl completed", map[string]interface{}{
		"pages_processed": run.processed,
		"failures":        len(run.failures),
	})
	return result, nil
}

// Abandon marks a queued job that never started as FAILED.
func (c *Crawler) Abandon(req CrawlJobRequest, reason error) *CrawlResult {
	result := &CrawlResult{
		JobID:        req.JobID,
		Status:       store.JobStatusFailed,
		ErrorMessage: "Crawl cancelled: " + reason.Error(),
	}
	log := c.log.WithJob(req.JobID, req.SiteID)
	if err := c.store.FailCrawlJob(req.JobID, 0, result.ErrorMessage, c.now()); err != nil {
		log.WithError(err).Error("Failed to mark abandoned crawl job as failed")
	}
	c.metrics.CrawlJobFinished(store.JobStatusFailed)
	c.emitter.Emit(EventCrawlFailed, result)
	log.Warn("Crawl abandoned before it started")
	return result
}

func (c *Crawler) crawl(ctx context.Context, run *crawlRun) error {
	req := run.req
	if run.domain == "" {
		return fmt.Errorf("invalid base URL: %s", req.BaseURL)
	}
	if err := c.store.StartCrawlJob(req.JobID, c.now()); err != nil {
		return err
	}
	if err := c.store.UpdateSiteStatus(req.SiteID, store.SiteStatusActive); err != nil {
		return err
	}

	c.seed(ctx, run)

	limit := rate.Inf
	if c.delay > 0 {
		limit = rate.Every(c.delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	for len(run.queue) > 0 && run.processed < req.MaxPages {
		entry := run.pop()
		if run.visited[entry.url] || entry.depth > req.MaxDepth {
			continue
		}
		run.visited[entry.url] = true
		if c.excluded(entry.url) {
			run.log.WithURL(entry.url).Debug("Skipping excluded URL")
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		if err := c.processPage(ctx, run, entry); err != nil {
			run.failures = append(run.failures, CrawlFailure{URL: entry.url, Error: err.Error()})
			run.log.PageEvent(logger.WarnLevel, entry.url, entry.depth).Err(err).Msg("Failed to crawl page")
			continue
		}

		run.processed++
		if err := c.store.UpdateCrawlJobProgress(req.JobID, run.processed); err != nil {
			return err
		}
	}
	return nil
}

// seed fills the frontier from the site's sitemap, capped at the page
// budget, and puts the start URL first.
func (c *Crawler) seed(ctx context.Context, run *crawlRun) {
	if c.sitemaps != nil {
		for _, u := range c.sitemaps.Read(ctx, sitegraph.DefaultSitemapURL(run.req.BaseURL), run.domain) {
			if len(run.queue) >= run.req.MaxPages {
				break
			}
			u = sitegraph.NormalizeURL(u)
			if !run.queued[u] {
				run.push(u, 0)
			}
		}
		run.log.Infof("Seeded %d URLs from sitemap", len(run.queue))
	}

	start := sitegraph.NormalizeURL(run.req.BaseURL)
	if !run.queued[start] {
		run.queued[start] = true
		run.queue = append([]frontierEntry{{url: start, depth: 0}}, run.queue...)
	}
}

func (c *Crawler) excluded(url string) bool {
	for _, g := range c.exclude {
		if g.Match(url) {
			return true
		}
	}
	return false
}

// processPage fetches, extracts and stores one page, then queues its links
// unless the stored content hash is unchanged.
func (c *Crawler) processPage(ctx context.Context, run *crawlRun, entry frontierEntry) error {
	req := run.req
	existing, err := c.store.GetPageByURL(req.SiteID, entry.url)
	if err != nil {
		return err
	}

	started := time.Now()
	fetched, err := c.fetcher.Fetch(ctx, entry.url)
	if err != nil {
		var fetchErr *sitegraph.FetchError
		if errors.As(err, &fetchErr) {
			c.metrics.FetchFailed(fetchErr.Kind.String())
		} else {
			c.metrics.FetchFailed("other")
		}
		return err
	}
	c.metrics.PageFetched(string(fetched.Method), time.Since(started))

	html := fetched.EffectiveHTML()
	if strings.TrimSpace(html) == "" {
		return sitegraph.ErrEmptyContent
	}

	content, warnings := sitegraph.ExtractContent(html, entry.url, run.domain)
	for _, w := range warnings {
		run.log.WithURL(entry.url).WithError(w).Debug("Content extraction warning")
	}
	hash := sitegraph.HashText(content.Text)

	metadata, err := json.Marshal(content.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode page metadata: %w", err)
	}

	page := &store.Page{
		SiteID:          req.SiteID,
		URL:             entry.url,
		Title:           content.Title,
		MetaDescription: content.MetaDescription,
		CanonicalURL:    sitegraph.ResolveCanonical(entry.url, content.CanonicalURL),
		ContentHash:     hash,
		HTMLContent:     fetched.HTML,
		RenderedHTML:    fetched.RenderedHTML,
		TextContent:     content.Text,
		FetchMethod:     string(fetched.Method),
		Metadata:        string(metadata),
		Depth:           entry.depth,
		Status:          store.PageStatusCompleted,
		CrawledAt:       c.now().Unix(),
	}
	if err := c.store.UpsertPage(page); err != nil {
		return err
	}

	unchanged := existing != nil && existing.ContentHash == hash
	c.emitter.Emit(EventPageCrawled, PageEvent{
		JobID:     req.JobID,
		URL:       entry.url,
		Depth:     entry.depth,
		Method:    string(fetched.Method),
		Unchanged: unchanged,
		Processed: run.processed + 1,
	})
	pageLog := run.log.PageEvent(logger.DebugLevel, entry.url, entry.depth).Str("method", string(fetched.Method))
	if unchanged {
		pageLog.Msg("Content unchanged, skipping link discovery")
		return nil
	}
	boilerplate := 0
	for _, link := range content.Links {
		if link.Position.IsBoilerplate() {
			boilerplate++
		}
	}
	pageLog.Int("links", len(content.Links)).Int("boilerplate_links", boilerplate).Msg("Page crawled")

	if entry.depth >= req.MaxDepth {
		return nil
	}
	for _, link := range content.Links {
		if len(run.queue)+run.processed >= req.MaxPages {
			break
		}
		if run.visited[link.URL] || run.queued[link.URL] {
			continue
		}
		run.push(link.URL, entry.depth+1)
	}
	return nil
}

// summarizeFailures builds the diagnostic attached to a job that crawled no
// pages: an error histogram in first-seen order followed by a few samples.
func summarizeFailures(failures []CrawlFailure) string {
	if len(failures) == 0 {
		return "No pages were successfully crawled."
	}

	counts := make(map[string]int)
	var order []string
	for _, f := range failures {
		if counts[f.Error] == 0 {
			order = append(order, f.Error)
		}
		counts[f.Error]++
	}

	lines := []string{fmt.Sprintf("Failed to crawl %d URL(s).", len(failures)), "", "Common errors:"}
	for _, msg := range order {
		lines = append(lines, fmt.Sprintf("  • %s (%dx)", msg, counts[msg]))
	}
	lines = append(lines, "", "Sample failures:")
	for i, f := range failures {
		if i == maxFailureSamples {
			break
		}
		lines = append(lines, fmt.Sprintf("  • %s: %s", f.URL, f.Error))
	}
	return strings.Join(lines, "\n")
}
