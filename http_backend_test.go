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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackendTestServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/redirect-1", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/redirect-2", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/redirect-2", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>Final " + r.UserAgent() + "</body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/doc.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	})
	mux.HandleFunc("/gzip", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte("<html><body>compressed</body></html>"))
		gz.Close()
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	})
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<html><body>Caf\xe9</body></html>"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
	})

	return httptest.NewServer(mux)
}

func TestHTTPBackendFollowsRedirects(t *testing.T) {
	server := newBackendTestServer()
	defer server.Close()

	backend := newHTTPBackend(server.Client(), "sitegraph-test", time.Second)
	resp, err := backend.FetchHTML(context.Background(), server.URL+"/redirect-1")
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/final", resp.URL)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "Final sitegraph-test")
}

func TestHTTPBackendRejections(t *testing.T) {
	server := newBackendTestServer()
	defer server.Close()
	backend := newHTTPBackend(server.Client(), "", time.Second)

	_, err := backend.FetchHTML(context.Background(), server.URL+"/missing")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, FetchStatus, fetchErr.Kind)
	assert.Equal(t, "HTTP 404", err.Error())

	_, err = backend.FetchHTML(context.Background(), server.URL+"/doc.pdf")
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, FetchContentType, fetchErr.Kind)
	assert.Equal(t, "Non-HTML content type: application/pdf", err.Error())
}

func TestHTTPBackendTimeout(t *testing.T) {
	server := newBackendTestServer()
	defer server.Close()

	backend := newHTTPBackend(server.Client(), "", 50*time.Millisecond)
	_, err := backend.FetchHTML(context.Background(), server.URL+"/slow")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, FetchTimeout, fetchErr.Kind)
}

func TestHTTPBackendDecodesBodies(t *testing.T) {
	server := newBackendTestServer()
	defer server.Close()
	backend := newHTTPBackend(server.Client(), "", time.Second)

	resp, err := backend.FetchHTML(context.Background(), server.URL+"/gzip")
	require.NoError(t, err)
	assert.Contains(t, string(resp.Body), "compressed")

	resp, err = backend.FetchHTML(context.Background(), server.URL+"/latin1")
	require.NoError(t, err)
	assert.Contains(t, string(resp.Body), "Café")
}
