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
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"
)

// MockResponse is a canned response served by MockTransport.
type MockResponse struct {
	StatusCode int // defaults to 200
	Body       string
	Headers    http.Header
	// Delay is slept before responding; it honours request cancellation.
	Delay time.Duration
	// Error simulates a transport failure.
	Error error
}

type mockPattern struct {
	pattern  *regexp.Regexp
	response *MockResponse
}

// MockTransport is an http.RoundTripper serving registered responses, so
// fetch and crawl code can be tested without a network. Unregistered URLs
// get a 404.
type MockTransport struct {
	mu        sync.RWMutex
	responses map[string]*MockResponse
	patterns  []mockPattern
	hits      map[string]int
}

func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[string]*MockResponse),
		hits:      make(map[string]int),
	}
}

// Client returns an *http.Client using this transport.
func (m *MockTransport) Client() *http.Client {
	return &http.Client{Transport: m}
}

func withDefaults(r *MockResponse) *MockResponse {
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	if r.Headers == nil {
		r.Headers = make(http.Header)
	}
	return r
}

// RegisterResponse registers a response for an exact URL.
func (m *MockTransport) RegisterResponse(url string, response *MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[url] = withDefaults(response)
}

// RegisterHTML registers a 200 text/html response.
func (m *MockTransport) RegisterHTML(url, html string) {
	m.RegisterContent(url, "text/html; charset=utf-8", html)
}

// RegisterXML registers a 200 application/xml response, as served for sitemaps.
func (m *MockTransport) RegisterXML(url, xml string) {
	m.RegisterContent(url, "application/xml", xml)
}

// RegisterContent registers a 200 response with the given content type.
func (m *MockTransport) RegisterContent(url, contentType, body string) {
	h := make(http.Header)
	h.Set("Content-Type", contentType)
	m.RegisterResponse(url, &MockResponse{Body: body, Headers: h})
}

// RegisterStatus registers an HTML response with a non-200 status.
func (m *MockTransport) RegisterStatus(url string, status int) {
	h := make(http.Header)
	h.Set("Content-Type", "text/html")
	m.RegisterResponse(url, &MockResponse{StatusCode: status, Headers: h})
}

// RegisterError makes requests for url fail at the transport level.
func (m *MockTransport) RegisterError(url string, err error) {
	m.RegisterResponse(url, &MockResponse{Error: err})
}

// RegisterPattern registers a response for every URL matching pattern.
// Exact registrations win over patterns.
func (m *MockTransport) RegisterPattern(pattern string, response *MockResponse) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, mockPattern{pattern: re, response: withDefaults(response)})
	return nil
}

// Hits returns how many times url has been requested.
func (m *MockTransport) Hits(url string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits[url]
}

func (m *MockTransport) lookup(url string) (*MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[url]++
	if r, ok := m.responses[url]; ok {
		return r, true
	}
	for _, p := range m.patterns {
		if p.pattern.MatchString(url) {
			return p.response, true
		}
	}
	return nil, false
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mockResp, found := m.lookup(req.URL.String())
	if !found {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewBufferString("Not Found")),
			Header:     http.Header{"Content-Type": []string{"text/plain"}},
			Request:    req,
		}, nil
	}

	if mockResp.Delay > 0 {
		select {
		case <-time.After(mockResp.Delay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
	if mockResp.Error != nil {
		return nil, mockResp.Error
	}

	return &http.Response{
		StatusCode:    mockResp.StatusCode,
		Body:          io.NopCloser(bytes.NewBufferString(mockResp.Body)),
		Header:        mockResp.Headers.Clone(),
		ContentLength: int64(len(mockResp.Body)),
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}, nil
}
