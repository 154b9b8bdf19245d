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

package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/agentberlin/sitegraph/internal/app"
	"github.com/agentberlin/sitegraph/internal/config"
	"github.com/agentberlin/sitegraph/internal/store"
	"github.com/spf13/cobra"
)

type crawlOptions struct {
	maxDepth   int
	maxPages   int
	buildGraph bool
	noRender   bool
}

func newCrawlCmd(root *rootOptions) *cobra.Command {
	opts := &crawlOptions{}
	cmd := &cobra.Command{
		Use:   "crawl <url> [url...]",
		Short: "Crawl one or more sites",
		Long: `Crawl discovers pages from the site's sitemaps and links, extracts their
main content and stores it. Several URLs are queued and crawled one after
another.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), root, func(c *config.Config) {
				if opts.noRender {
					c.Render.Enabled = false
				}
			})
			if err != nil {
				return err
			}
			defer e.close()
			return runCrawl(cmd, e, opts, args)
		},
	}
	cmd.Flags().IntVarP(&opts.maxDepth, "max-depth", "d", -1, "Maximum link depth (default from config)")
	cmd.Flags().IntVarP(&opts.maxPages, "max-pages", "p", 0, "Maximum pages per site (default from config)")
	cmd.Flags().BoolVarP(&opts.buildGraph, "build-graph", "g", false, "Build the entity graph after a successful crawl")
	cmd.Flags().BoolVar(&opts.noRender, "no-render", false, "Fetch with plain HTTP only")
	return cmd
}

func runCrawl(cmd *cobra.Command, e *env, opts *crawlOptions, urls []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if len(urls) == 1 {
		result, err := e.app.CrawlSite(ctx, urls[0], opts.maxDepth, opts.maxPages)
		if err != nil {
			return err
		}
		printCrawlResult(out, urls[0], result)
		return maybeBuild(cmd, e, opts, result)
	}

	var (
		mu      sync.Mutex
		results = make(map[string]*app.CrawlResult)
		jobs    []app.CrawlJobRequest
	)
	for _, u := range urls {
		req, err := e.app.SubmitCrawl(u, opts.maxDepth, opts.maxPages, func(r *app.CrawlResult, err error) {
			if err != nil {
				e.log.WithError(err).Error("Crawl failed")
				return
			}
			mu.Lock()
			results[r.JobID] = r
			mu.Unlock()
		})
		if err != nil {
			fmt.Fprintf(out, "Skipping %s: %v\n", u, err)
			continue
		}
		jobs = append(jobs, req)
	}
	e.app.Wait()

	for _, req := range jobs {
		r, ok := results[req.JobID]
		if !ok {
			fmt.Fprintf(out, "%s: no result\n", req.BaseURL)
			continue
		}
		printCrawlResult(out, req.BaseURL, r)
		if err := maybeBuild(cmd, e, opts, r); err != nil {
			return err
		}
	}
	return nil
}

func maybeBuild(cmd *cobra.Command, e *env, opts *crawlOptions, result *app.CrawlResult) error {
	if !opts.buildGraph || result.Status != store.JobStatusCompleted || result.PagesProcessed == 0 {
		return nil
	}
	job, err := e.store.GetCrawlJob(result.JobID)
	if err != nil {
		return err
	}
	stats, err := e.app.BuildGraph(cmd.Context(), job.SiteID)
	if err != nil {
		return err
	}
	printBuildStats(cmd.OutOrStdout(), stats)
	return nil
}

func printCrawlResult(w io.Writer, url string, r *app.CrawlResult) {
	fmt.Fprintf(w, "\n%s\n", url)
	fmt.Fprintf(w, "  Job:       %s\n", r.JobID)
	fmt.Fprintf(w, "  Status:    %s\n", r.Status)
	fmt.Fprintf(w, "  Processed: %d\n", r.PagesProcessed)
	fmt.Fprintf(w, "  Failed:    %d\n", len(r.Failures))
	if r.ErrorMessage != "" {
		fmt.Fprintf(w, "\n%s\n", r.ErrorMessage)
	}
}
