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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kennygrant/sanitize"

	"github.com/agentberlin/sitegraph"
	"github.com/agentberlin/sitegraph/internal/logger"
	"github.com/agentberlin/sitegraph/internal/metrics"
	"github.com/agentberlin/sitegraph/internal/store"
)

const (
	pageContextLength = 200
	maxContextLength  = 500
)

// Store is everything a graph build reads and writes.
type Store interface {
	EntityStore
	RelationStore
	ListCompletedPages(siteID string) ([]store.Page, error)
	DeletePageChunks(pageID string) error
	CreateChunk(chunk *store.ContentChunk) error
	CreateMention(mention *store.EntityMention) (bool, error)
}

// BuildStats summarizes one graph build.
type BuildStats struct {
	EntitiesCreated  int `json:"entitiesCreated"`
	RelationsCreated int `json:"relationsCreated"`
	PagesProcessed   int `json:"pagesProcessed"`
	ChunksCreated    int `json:"chunksCreated"`
	MentionsCreated  int `json:"mentionsCreated"`
}

// Builder runs the graph build pass over a site's crawled pages.
type Builder struct {
	store   Store
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewBuilder(st Store, log *logger.Logger, m *metrics.Metrics) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{store: st, log: log.WithComponent("graph"), metrics: m}
}

// Build extracts entities, chunks and relations from every completed page of
// the site. A page that fails is logged and skipped.
func (b *Builder) Build(ctx context.Context, siteID string) (*BuildStats, error) {
	log := b.log.WithField("site_id", siteID)
	log.Info("Starting graph build")

	resolver := NewResolver(siteID, b.store, b.log, b.metrics)
	if err := resolver.Load(); err != nil {
		return nil, err
	}
	relations := NewRelationBuilder(siteID, b.log, b.metrics)

	pages, err := b.store.ListCompletedPages(siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	log.Infof("Processing %d pages for graph building", len(pages))

	stats := &BuildStats{}
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := &pages[i]
		if err := b.processPage(page, resolver, relations, stats); err != nil {
			log.WithURL(page.URL).WithError(err).Error("Failed to process page for graph")
			continue
		}
		stats.PagesProcessed++

		if stats.PagesProcessed%10 == 0 {
			log.Event(logger.InfoLevel).
				Int("pages_processed", stats.PagesProcessed).
				Int("total", len(pages)).
				Msg("Graph build progress")
		}
	}

	relations.Save(b.store)

	stats.EntitiesCreated = len(resolver.Entities())
	stats.RelationsCreated = relations.Count()

	log.StatsEvent("Graph build completed", map[string]interface{}{
		"entities":  stats.EntitiesCreated,
		"relations": stats.RelationsCreated,
		"pages":     stats.PagesProcessed,
		"chunks":    stats.ChunksCreated,
		"mentions":  stats.MentionsCreated,
	})
	return stats, nil
}

// pageEntitySet keeps the distinct entity ids seen on a page in order.
type pageEntitySet struct {
	ids  []string
	seen map[string]bool
}

func (s *pageEntitySet) add(id string) bool {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[id] {
		return false
	}
	s.seen[id] = true
	s.ids = append(s.ids, id)
	return true
}

func (b *Builder) processPage(page *store.Page, resolver *Resolver, relations *RelationBuilder, stats *BuildStats) error {
	log := b.log.WithURL(page.URL)

	var meta sitegraph.PageMetadata
	if page.Metadata != "" {
		if err := json.Unmarshal([]byte(page.Metadata), &meta); err != nil {
			log.WithError(err).Debug("Page metadata is not valid JSON")
		}
	}

	var onPage pageEntitySet

	// JSON-LD
	for _, candidate := range ExtractSchemaEntities(meta.JSONLD) {
		entity, ok := b.resolve(resolver, candidate, log)
		if !ok {
			continue
		}
		snippet := sanitize.HTML(candidate.Context)
		if strings.TrimSpace(snippet) == "" {
			snippet = truncateRunes(page.TextContent, pageContextLength)
		}
		if onPage.add(entity.ID) {
			b.mention(entity.ID, page.ID, snippet, stats, log)
		}
	}

	for _, rel := range ExtractSchemaRelations(meta.JSONLD) {
		from, okFrom := resolver.FindByName(rel.FromName, rel.FromType)
		to, okTo := resolver.FindByName(rel.ToName, rel.ToType)
		if !okFrom || !okTo {
			continue
		}
		relations.Add(Relation{
			FromEntityID: from.ID,
			ToEntityID:   to.ID,
			RelationType: rel.RelationType,
			Weight:       1.0,
			Source:       store.SourceSchema,
		})
	}

	// Headings
	for _, candidate := range ExtractHeadingEntities(meta.Headings) {
		b.resolveAndMention(resolver, candidate, page.ID, &onPage, stats, log)
	}

	// Navigation, breadcrumbs and chunks
	if html := page.EffectiveHTML(); html != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return fmt.Errorf("failed to parse page HTML: %w", err)
		}

		structural := append(ExtractNavigationEntities(doc), ExtractBreadcrumbEntities(doc)...)
		for _, candidate := range structural {
			b.resolveAndMention(resolver, candidate, page.ID, &onPage, stats, log)
		}

		if err := b.store.DeletePageChunks(page.ID); err != nil {
			return err
		}
		for _, c := range ExtractChunks(doc) {
			chunk := &store.ContentChunk{PageID: page.ID, Text: c.Text, Position: c.Position}
			chunk.SetHeadingPath(c.HeadingPath)
			if err := b.store.CreateChunk(chunk); err != nil {
				return err
			}
			stats.ChunksCreated++
		}
	}

	if len(onPage.ids) > 1 {
		relations.AddCoOccurrence(onPage.ids)
	}
	return nil
}

func (b *Builder) resolve(resolver *Resolver, candidate ExtractedEntity, log *logger.Logger) (store.Entity, bool) {
	entity, err := resolver.Resolve(candidate)
	if err != nil {
		log.WithError(err).WithField("entity", candidate.Name).Warn("Failed to resolve entity")
		return store.Entity{}, false
	}
	return entity, true
}

func (b *Builder) resolveAndMention(resolver *Resolver, candidate ExtractedEntity, pageID string, onPage *pageEntitySet, stats *BuildStats, log *logger.Logger) {
	entity, ok := b.resolve(resolver, candidate, log)
	if !ok {
		return
	}
	if onPage.add(entity.ID) {
		b.mention(entity.ID, pageID, candidate.Name, stats, log)
	}
}

func (b *Builder) mention(entityID, pageID, snippet string, stats *BuildStats, log *logger.Logger) {
	created, err := b.store.CreateMention(&store.EntityMention{
		EntityID:       entityID,
		PageID:         pageID,
		ContextSnippet: truncateRunes(strings.TrimSpace(snippet), maxContextLength),
	})
	if err != nil {
		log.WithError(err).WithField("entity_id", entityID).Debug("Entity mention not saved")
		return
	}
	if created {
		stats.MentionsCreated++
	}
}
