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
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FetchMethod records how a page's HTML was obtained.
type FetchMethod string

const (
	FetchMethodHTTP    FetchMethod = "HTTP"
	FetchMethodBrowser FetchMethod = "BROWSER"
)

// minBodyTextLength is the visible body text a plain HTTP response needs
// before it is trusted without rendering.
const minBodyTextLength = 100

// spaMarkers appear in server HTML of client-rendered frameworks.
var spaMarkers = []string{
	"data-reactroot",
	"data-react-helmet",
	"ng-version",
	"data-vue-",
	"__NEXT_DATA__",
	"nuxt",
}

// FetchResult is a fetched page. RenderedHTML is set only when the browser
// fallback ran; HTML always holds the plain HTTP body.
type FetchResult struct {
	URL          string
	HTML         string
	RenderedHTML string
	Method       FetchMethod
	StatusCode   int
	// Timing covers the HTTP leg only.
	Timing *FetchTiming
}

// EffectiveHTML returns the rendered HTML when present, else the raw HTML.
func (r *FetchResult) EffectiveHTML() string {
	if r.RenderedHTML != "" {
		return r.RenderedHTML
	}
	return r.HTML
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
	// Renderer is used for the browser fallback. Nil disables the fallback,
	// in which case insufficient pages are returned as fetched.
	Renderer Renderer
}

// Fetcher picks between a plain HTTP GET and a headless browser render.
type Fetcher struct {
	http     *httpBackend
	renderer Renderer
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	return &Fetcher{
		http:     newHTTPBackend(opts.Client, opts.UserAgent, opts.Timeout),
		renderer: opts.Renderer,
	}
}

// Fetch tries HTTP first and falls back to the renderer when the response
// looks like a single-page app shell or carries too little text. Errors are
// *FetchError values; nothing is retried here.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	resp, err := f.http.FetchHTML(ctx, url)
	if err != nil {
		return nil, err
	}
	html := string(resp.Body)

	result := &FetchResult{
		URL:        url,
		HTML:       html,
		Method:     FetchMethodHTTP,
		StatusCode: resp.StatusCode,
		Timing:     resp.Timing,
	}
	if !NeedsRendering(html) || f.renderer == nil {
		return result, nil
	}

	rendered, err := f.renderer.Render(ctx, url)
	if err != nil {
		return nil, err
	}
	result.RenderedHTML = rendered.HTML
	result.Method = FetchMethodBrowser
	result.StatusCode = rendered.StatusCode
	return result, nil
}

// NeedsRendering reports whether html should be re-fetched with a browser.
func NeedsRendering(html string) bool {
	return HasSPAMarkers(html) || !HasSufficientContent(html)
}

// HasSPAMarkers reports whether html contains a known client-side framework marker.
func HasSPAMarkers(html string) bool {
	for _, marker := range spaMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}

// HasSufficientContent reports whether the <body> holds more than
// minBodyTextLength characters of text once scripts and styles are removed.
// A document without a body element is insufficient.
func HasSufficientContent(html string) bool {
	if !strings.Contains(strings.ToLower(html), "<body") {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	if err != nil {
		return false
	}
	body := doc.Find("body")
	body.Find("script, style").Remove()
	return len(strings.TrimSpace(body.Text())) > minBodyTextLength
}
