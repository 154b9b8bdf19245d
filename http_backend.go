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
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

const (
	DefaultUserAgent   = "SiteKnowledgeGraph/1.0 (Web Crawler)"
	DefaultHTTPTimeout = 60 * time.Second

	maxBodySize = 20 << 20
)

// Response is the result of a plain HTTP GET.
type Response struct {
	// URL is the final URL after redirects.
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Timing     *FetchTiming
}

type httpBackend struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
}

func newHTTPBackend(client *http.Client, userAgent string, timeout time.Duration) *httpBackend {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if client == nil {
		client = &http.Client{}
	}
	return &httpBackend{Client: client, UserAgent: userAgent, Timeout: timeout}
}

// Do issues a GET and reads the (possibly gzip-compressed) body. Redirects are
// followed by the client. Non-2xx responses are returned without error so
// callers decide how to treat them.
func (h *httpBackend) Do(ctx context.Context, rawURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchNetwork, URL: rawURL, Message: err.Error(), Cause: err}
	}
	req.Header.Set("User-Agent", h.UserAgent)

	timing := &FetchTiming{}
	req = timing.attach(req)

	res, err := h.Client.Do(req)
	if err != nil {
		return nil, h.wrapTransportError(rawURL, err)
	}
	defer res.Body.Close()

	var bodyReader io.Reader = io.LimitReader(res.Body, maxBodySize)
	contentEncoding := strings.ToLower(res.Header.Get("Content-Encoding"))
	if !res.Uncompressed && (strings.Contains(contentEncoding, "gzip") || strings.HasSuffix(strings.ToLower(req.URL.Path), ".xml.gz")) {
		gz, err := gzip.NewReader(bodyReader)
		if err != nil {
			return nil, &FetchError{Kind: FetchNetwork, URL: rawURL, Message: err.Error(), Cause: err}
		}
		defer gz.Close()
		bodyReader = gz
	}

	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, h.wrapTransportError(rawURL, err)
	}
	timing.finish()

	finalURL := rawURL
	if res.Request != nil && res.Request.URL != nil {
		finalURL = res.Request.URL.String()
	}
	return &Response{
		URL:        finalURL,
		StatusCode: res.StatusCode,
		Headers:    res.Header,
		Body:       body,
		Timing:     timing,
	}, nil
}

// FetchHTML performs Do and then rejects non-2xx statuses and anything that
// is not text/html. The body is decoded to UTF-8.
func (h *httpBackend) FetchHTML(ctx context.Context, rawURL string) (*Response, error) {
	resp, err := h.Do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(rawURL, resp.StatusCode)
	}
	contentType := resp.Headers.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		return nil, newContentTypeError(rawURL, contentType)
	}
	resp.Body = decodeBody(resp.Body, contentType)
	return resp, nil
}

func (h *httpBackend) wrapTransportError(rawURL string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{
			Kind:    FetchTimeout,
			URL:     rawURL,
			Message: fmt.Sprintf("Request timeout (%ds)", int(h.Timeout.Seconds())),
			Cause:   err,
		}
	}
	return &FetchError{Kind: FetchNetwork, URL: rawURL, Message: err.Error(), Cause: err}
}

// decodeBody converts body to UTF-8 using the declared charset, falling back
// to statistical detection when the declaration is missing or unreliable.
func decodeBody(body []byte, contentType string) []byte {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	// windows-1252 is the guess returned when nothing was declared
	if !certain && name == "windows-1252" {
		if r, err := chardet.NewHtmlDetector().DetectBest(body); err == nil && r.Confidence >= 50 {
			if detected, detectedName := charset.Lookup(r.Charset); detected != nil {
				enc, name = detected, detectedName
			}
		}
	}
	if name == "utf-8" || enc == nil {
		return body
	}
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return body
	}
	return decoded
}
