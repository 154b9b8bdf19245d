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

// Package testutil provides an HTTP fixture site for end-to-end tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
)

// Fixture pages of a small company site.
var (
	HomeHTML = `<!DOCTYPE html>
<html lang="en"><head><title>Acme Corp</title>
<meta name="description" content="Acme Corp builds rockets.">
<script type="application/ld+json">{"@type":"Organization","name":"Acme Corp"}</script>
</head><body><main><h1>Acme Corp</h1>
<p>Acme Corp builds dependable rockets for commercial customers around the world.</p>
<a href="/services">Services</a> <a href="/brochure.pdf">Brochure</a> <a href="/missing">Old page</a>
</main></body></html>`

	ServicesHTML = `<!DOCTYPE html>
<html lang="en"><head><title>Services</title>
<script type="application/ld+json">{"@type":"Service","name":"Orbital Launch","provider":{"@type":"Organization","name":"Acme Corp"}}</script>
</head><body><main><h1>Orbital Launch</h1>
<p>Orbital Launch takes your payload to low earth orbit on a reusable vehicle.</p>
</main></body></html>`
)

// SiteServer serves a set of HTML pages, a generated sitemap.xml and 404s
// for everything else. Paths ending in .pdf are served as application/pdf.
type SiteServer struct {
	*httptest.Server
	pages   map[string]string
	sitemap bool
}

// NewSiteServer starts a server for pages keyed by path. When sitemap is
// true, /sitemap.xml lists every page.
func NewSiteServer(pages map[string]string, sitemap bool) *SiteServer {
	s := &SiteServer{pages: pages, sitemap: sitemap}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// NewAcmeServer starts the two-page fixture site with a dead link and a
// binary document.
func NewAcmeServer() *SiteServer {
	return NewSiteServer(map[string]string{
		"/":         HomeHTML,
		"/services": ServicesHTML,
	}, false)
}

func (s *SiteServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/sitemap.xml" && s.sitemap {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, s.sitemapXML())
		return
	}
	if strings.HasSuffix(r.URL.Path, ".pdf") {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
		return
	}
	body, ok := s.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}

func (s *SiteServer) sitemapXML() string {
	paths := make([]string, 0, len(s.pages))
	for p := range s.pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, p := range paths {
		fmt.Fprintf(&b, "  <url><loc>%s%s</loc></url>\n", s.URL, p)
	}
	b.WriteString("</urlset>\n")
	return b.String()
}
