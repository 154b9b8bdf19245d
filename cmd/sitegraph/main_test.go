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
	"bytes"
	"context"
	"encoding/csv"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentberlin/sitegraph/internal/version"
	"github.com/agentberlin/sitegraph/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, version.ToolName+" "+version.CurrentVersion))
}

func TestArgumentValidation(t *testing.T) {
	_, err := run(t, "crawl")
	assert.Error(t, err)

	_, err = run(t, "graph")
	assert.Error(t, err, "--site is required")

	_, err = run(t, "questions", "--site", "x", "--format", "xml")
	assert.ErrorContains(t, err, "xml")
}

func TestSitesEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	out, err := run(t, "sites", "--db", db, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "No sites crawled yet")
}

func TestUnknownSite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	_, err := run(t, "report", "--db", db, "--log-level", "error", "--site", "nowhere.example")
	assert.ErrorContains(t, err, "nowhere.example")
}

func TestCrawlReportQuestions(t *testing.T) {
	srv := testutil.NewAcmeServer()
	defer srv.Close()

	t.Setenv("SITEGRAPH_REQUEST_DELAY", "0s")
	dir := t.TempDir()
	db := filepath.Join(dir, "test.db")
	common := []string{"--db", db, "--log-level", "error"}

	out, err := run(t, append([]string{"crawl", srv.URL, "--no-render", "--build-graph", "-d", "1", "-p", "10"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:    COMPLETED")
	assert.Contains(t, out, "Processed: 2")
	assert.Contains(t, out, "Failed:    2")
	assert.Contains(t, out, "Graph built")

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	domain := u.Host

	out, err = run(t, append([]string{"sites"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, domain)
	assert.Contains(t, out, "COMPLETED (2 pages)")

	out, err = run(t, append([]string{"report", "--site", domain}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Acme Corp"`)
	assert.Contains(t, out, `"toolName": "sitegraph"`)

	csvPath := filepath.Join(dir, "questions.csv")
	out, err = run(t, append([]string{"questions", "--site", domain, "-f", "csv", "-o", csvPath}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "By level:")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Greater(t, len(rows), 1)
	assert.Equal(t, "ID", rows[0][0])
}

func TestCrawlSeedsFromSitemap(t *testing.T) {
	srv := testutil.NewSiteServer(map[string]string{
		"/":         testutil.HomeHTML,
		"/services": testutil.ServicesHTML,
	}, true)
	defer srv.Close()

	t.Setenv("SITEGRAPH_REQUEST_DELAY", "0s")
	db := filepath.Join(t.TempDir(), "test.db")

	out, err := run(t, "crawl", srv.URL, "--no-render", "-d", "0", "--db", db, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed: 2")
}
