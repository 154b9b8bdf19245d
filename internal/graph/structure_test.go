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


package graph

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/sitegraph"
	"github.com/agentberlin/sitegraph/internal/store"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractHeadingEntities(t *testing.T) {
	entities := ExtractHeadingEntities(sitegraph.Headings{
		H1: []string{" About Acme ", "Hi"},
		H2: []string{"Consulting Services", "Our Products"},
		H3: []string{"Cloud Solutions", "Pricing"},
	})

	require.Len(t, entities, 5)
	assert.Equal(t, ExtractedEntity{Name: "About Acme", Type: store.EntityTopic, Source: store.SourceStructure, Confidence: 0.8, Aliases: []string{}}, entities[0])

	types := map[string]string{}
	for _, e := range entities[1:] {
		types[e.Name] = e.Type
		assert.Equal(t, 0.6, e.Confidence)
	}
	assert.Equal(t, map[string]string{
		"Consulting Services": store.EntityService,
		"Our Products":        store.EntityProduct,
		"Cloud Solutions":     store.EntityService,
		"Pricing":             store.EntityTopic,
	}, types)
}

func TestExtractNavigationEntities(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<nav><a href="/a">Web Design</a><a href="/b">About Us</a><a href="/c">Go</a></nav>
		<div role="navigation"><a href="/t">Meet the Team</a></div>
		<a href="/x">Outside nav</a>
	</body></html>`)

	entities := ExtractNavigationEntities(doc)
	require.Len(t, entities, 3)
	assert.Equal(t, "Web Design", entities[0].Name)
	assert.Equal(t, store.EntityService, entities[0].Type)
	assert.Equal(t, store.EntityTopic, entities[1].Type)
	assert.Equal(t, store.EntityTopic, entities[2].Type)
	assert.Equal(t, 0.5, entities[0].Confidence)
}

func TestExtractBreadcrumbEntities(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<ol itemtype="https://schema.org/BreadcrumbList"><li><a href="/">Home</a></li></ol>
		<div class="breadcrumb"><a href="/docs">Documentation</a></div>
		<nav aria-label="breadcrumb"><a href="/docs/api">` + strings.Repeat("x", 60) + `</a></nav>
	</body></html>`)

	entities := ExtractBreadcrumbEntities(doc)
	require.Len(t, entities, 2)
	assert.Equal(t, "Home", entities[0].Name)
	assert.Equal(t, "Documentation", entities[1].Name)
	assert.Equal(t, store.EntityTopic, entities[1].Type)
	assert.Equal(t, 0.7, entities[1].Confidence)
}
