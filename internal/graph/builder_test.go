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
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/sitegraph/internal/store"
)

const builderPageHTML = `<html><body>
	<nav><a href="/services">Web Design</a><a href="/about">About Us</a></nav>
	<h1>About Acme</h1>
	<p>Acme has been building reliable rockets for the commercial market since the early days.</p>
	<footer><p>Footer text that is long enough to be a chunk but sits in page chrome.</p></footer>
</body></html>`

const builderPageMetadata = `{
	"headings": {"h1": ["About Acme"], "h2": [], "h3": []},
	"jsonLd": [
		{"@type": "Organization", "name": "Acme Corp", "alternateName": "Acme", "description": "<b>Rockets</b> since 1999"},
		{"@type": "Service", "name": "Launch Service", "provider": {"@type": "Organization", "name": "Acme Corp"}}
	]
}`

func newBuilderStore(t *testing.T) (*store.Store, *store.Site) {
	t.Helper()
	st, err := store.NewStoreForTesting(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	site, err := st.GetOrCreateSite("https://example.com/", "example.com")
	require.NoError(t, err)
	return st, site
}

func TestBuilderBuild(t *testing.T) {
	st, site := newBuilderStore(t)

	page := &store.Page{
		SiteID:      site.ID,
		URL:         "https://example.com/",
		HTMLContent: builderPageHTML,
		TextContent: "Acme has been building reliable rockets.",
		Metadata:    builderPageMetadata,
		Status:      store.PageStatusCompleted,
	}
	require.NoError(t, st.UpsertPage(page))
	require.NoError(t, st.UpsertPage(&store.Page{SiteID: site.ID, URL: "https://example.com/empty", Status: store.PageStatusCompleted}))
	require.NoError(t, st.UpsertPage(&store.Page{SiteID: site.ID, URL: "https://example.com/broken", Status: store.PageStatusFailed, HTMLContent: builderPageHTML}))

	builder := NewBuilder(st, nil, nil)
	stats, err := builder.Build(context.Background(), site.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.PagesProcessed)
	assert.Equal(t, 5, stats.EntitiesCreated)
	assert.Equal(t, 21, stats.RelationsCreated, "20 co-occurrence edges plus offered_by")
	assert.Equal(t, 1, stats.ChunksCreated)
	assert.Equal(t, 5, stats.MentionsCreated)

	entities, err := st.ListEntities(site.ID)
	require.NoError(t, err)
	byName := map[string]store.Entity{}
	for _, e := range entities {
		byName[e.Name] = e
	}
	require.Contains(t, byName, "Acme Corp")
	assert.Equal(t, store.EntityOrganization, byName["Acme Corp"].Type)
	assert.Equal(t, store.EntityTopic, byName["About Acme"].Type)
	assert.Equal(t, store.EntityService, byName["Web Design"].Type)
	assert.Equal(t, store.EntityTopic, byName["About Us"].Type)

	relations, err := st.ListRelations(site.ID)
	require.NoError(t, err)
	assert.Len(t, relations, 21)

	var offeredBy *store.EntityRelation
	for i := range relations {
		if relations[i].RelationType == RelationOfferedBy {
			offeredBy = &relations[i]
		}
	}
	require.NotNil(t, offeredBy)
	assert.Equal(t, byName["Launch Service"].ID, offeredBy.FromEntityID)
	assert.Equal(t, byName["Acme Corp"].ID, offeredBy.ToEntityID)
	assert.Equal(t, store.SourceSchema, offeredBy.Source)
	assert.Equal(t, 1.0, offeredBy.Weight)

	chunks, err := st.ListChunks(site.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []string{"About Acme"}, chunks[0].GetHeadingPath())

	mentions, err := st.ListMentions(site.ID)
	require.NoError(t, err)
	for _, m := range mentions {
		if m.EntityID == byName["Acme Corp"].ID {
			assert.Contains(t, m.ContextSnippet, "Rockets")
			assert.False(t, strings.Contains(m.ContextSnippet, "<b>"))
		}
		if m.EntityID == byName["Launch Service"].ID {
			assert.Equal(t, "Acme has been building reliable rockets.", m.ContextSnippet)
		}
	}

	t.Run("RebuildIsIdempotent", func(t *testing.T) {
		again, err := builder.Build(context.Background(), site.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, again.EntitiesCreated)
		assert.Equal(t, 0, again.MentionsCreated)

		chunks, _ := st.ListChunks(site.ID)
		assert.Len(t, chunks, 1)

		relations, _ := st.ListRelations(site.ID)
		assert.Len(t, relations, 21)
		for _, r := range relations {
			if r.RelationType == RelationOfferedBy {
				assert.Equal(t, 1.0, r.Weight, "persisted weight is replaced, not accumulated")
			}
		}
	})
}

func TestBuilderCancelled(t *testing.T) {
	st, site := newBuilderStore(t)
	require.NoError(t, st.UpsertPage(&store.Page{SiteID: site.ID, URL: "https://example.com/", Status: store.PageStatusCompleted}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(st, nil, nil).Build(ctx, site.ID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuilderSchemaRelationsMatchEntityType(t *testing.T) {
	st, site := newBuilderStore(t)

	// A topic from an earlier build shares the provider's name.
	topic := &store.Entity{SiteID: site.ID, Name: "Acme Corp", Type: store.EntityTopic, Source: store.SourceStructure, Confidence: 0.8}
	require.NoError(t, st.CreateEntity(topic))

	require.NoError(t, st.UpsertPage(&store.Page{
		SiteID:      site.ID,
		URL:         "https://example.com/",
		HTMLContent: builderPageHTML,
		Metadata:    builderPageMetadata,
		Status:      store.PageStatusCompleted,
	}))

	_, err := NewBuilder(st, nil, nil).Build(context.Background(), site.ID)
	require.NoError(t, err)

	relations, err := st.ListRelations(site.ID)
	require.NoError(t, err)
	var offeredBy *store.EntityRelation
	for i := range relations {
		if relations[i].RelationType == RelationOfferedBy {
			offeredBy = &relations[i]
		}
	}
	require.NotNil(t, offeredBy)
	assert.NotEqual(t, topic.ID, offeredBy.ToEntityID)

	org, err := st.GetEntity(offeredBy.ToEntityID)
	require.NoError(t, err)
	assert.Equal(t, store.EntityOrganization, org.Type)
	assert.Equal(t, "Acme Corp", org.Name)
}
