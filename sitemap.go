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

package sitegraph

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/agentberlin/sitegraph/internal/logger"
)

const DefaultSitemapTimeout = 30 * time.Second

// SitemapReader discovers page URLs from XML sitemaps and sitemap indexes.
type SitemapReader struct {
	http *httpBackend
	log  *logger.Logger
}

func NewSitemapReader(client *http.Client, userAgent string, timeout time.Duration, log *logger.Logger) *SitemapReader {
	if timeout <= 0 {
		timeout = DefaultSitemapTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SitemapReader{
		http: newHTTPBackend(client, userAgent, timeout),
		log:  log.WithComponent("sitemap"),
	}
}

// DefaultSitemapURL returns <origin>/sitemap.xml for baseURL.
func DefaultSitemapURL(baseURL string) string {
	u, err := parseURL(baseURL)
	if err != nil {
		return strings.TrimSuffix(baseURL, "/") + "/sitemap.xml"
	}
	return u.Scheme + "://" + u.Host + "/sitemap.xml"
}

// Read returns the normalized in-domain page URLs listed in the sitemap at
// sitemapURL, following child sitemaps of an index that belong to
// baseDomain. Failures are logged and yield no URLs.
func (s *SitemapReader) Read(ctx context.Context, sitemapURL, baseDomain string) []string {
	seen := make(map[string]bool)
	return s.read(ctx, sitemapURL, baseDomain, seen)
}

func (s *SitemapReader) read(ctx context.Context, sitemapURL, baseDomain string, seen map[string]bool) []string {
	if seen[sitemapURL] {
		return nil
	}
	seen[sitemapURL] = true

	doc, err := s.fetch(ctx, sitemapURL)
	if err != nil {
		s.log.WithError(err).WithURL(sitemapURL).Warn("sitemap unavailable")
		return nil
	}

	if index := xmlquery.FindOne(doc, "//sitemapindex"); index != nil {
		s.log.WithURL(sitemapURL).Info("found sitemap index")
		var urls []string
		for _, loc := range xmlquery.Find(index, "sitemap/loc") {
			child := strings.TrimSpace(loc.InnerText())
			if child == "" || !isInternalHost(ExtractDomain(child), baseDomain) {
				continue
			}
			urls = append(urls, s.read(ctx, child, baseDomain, seen)...)
		}
		return urls
	}

	var urls []string
	for _, loc := range xmlquery.Find(doc, "//urlset/url/loc") {
		u := strings.TrimSpace(loc.InnerText())
		if u == "" || !isInternalHost(ExtractDomain(u), baseDomain) {
			continue
		}
		urls = append(urls, NormalizeURL(u))
	}
	s.log.WithURL(sitemapURL).Debugf("sitemap listed %d urls", len(urls))
	return urls
}

func (s *SitemapReader) fetch(ctx context.Context, sitemapURL string) (*xmlquery.Node, error) {
	resp, err := s.http.Do(ctx, sitemapURL)
	if err != nil {
		return nil, &SitemapError{URL: sitemapURL, Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SitemapError{URL: sitemapURL, Cause: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	doc, err := xmlquery.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &SitemapError{URL: sitemapURL, Cause: err}
	}
	return doc, nil
}

// isInternalHost applies the same www-tolerant comparison as IsSameDomain to
// a bare hostname.
func isInternalHost(host, baseDomain string) bool {
	if host == "" {
		return false
	}
	return host == baseDomain || host == "www."+baseDomain || baseDomain == "www."+host
}
