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
	"errors"
	"fmt"
)

var (
	// ErrBrowserClosed is returned when rendering is attempted after Close.
	ErrBrowserClosed = errors.New("browser manager is closed")
	// ErrRenderDisabled is returned by a fetcher built without a renderer.
	ErrRenderDisabled = errors.New("browser rendering is disabled")
	// ErrEmptyContent is returned when a fetch yields no HTML to extract from.
	ErrEmptyContent = errors.New("page has no content")
)

// FetchKind classifies a fetch failure.
type FetchKind int

const (
	FetchNetwork FetchKind = iota
	FetchTimeout
	FetchStatus
	FetchContentType
	FetchRender
)

func (k FetchKind) String() string {
	switch k {
	case FetchTimeout:
		return "timeout"
	case FetchStatus:
		return "status"
	case FetchContentType:
		return "content_type"
	case FetchRender:
		return "render"
	default:
		return "network"
	}
}

// FetchError is returned for a single URL that could not be fetched. Its
// message is the short, URL-free text recorded in crawl failure summaries,
// e.g. "HTTP 404" or "Non-HTML content type: application/pdf".
type FetchError struct {
	Kind       FetchKind
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is matches any *FetchError of the same kind.
func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newStatusError(url string, status int) *FetchError {
	return &FetchError{Kind: FetchStatus, URL: url, StatusCode: status, Message: fmt.Sprintf("HTTP %d", status)}
}

func newContentTypeError(url, contentType string) *FetchError {
	return &FetchError{Kind: FetchContentType, URL: url, Message: "Non-HTML content type: " + contentType}
}

// SitemapError describes a sitemap that could not be fetched or parsed.
// Discovery treats it as "no URLs found".
type SitemapError struct {
	URL   string
	Cause error
}

func (e *SitemapError) Error() string {
	return fmt.Sprintf("sitemap %s: %v", e.URL, e.Cause)
}

func (e *SitemapError) Unwrap() error {
	return e.Cause
}

// ExtractionError reports a content or JSON-LD block that failed to parse.
// Callers fall back to an empty value.
type ExtractionError struct {
	Stage string
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Stage, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
