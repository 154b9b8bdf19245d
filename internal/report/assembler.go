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

package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/agentberlin/sitegraph/internal/logger"
	"github.com/agentberlin/sitegraph/internal/store"
	"github.com/agentberlin/sitegraph/internal/version"
	"golang.org/x/sync/errgroup"
)

// Store is the read side of the storage layer used to assemble a report.
type Store interface {
	GetSite(id string) (*store.Site, error)
	ListPageSummaries(siteID string) ([]store.Page, error)
	ListChunks(siteID string) ([]store.ChunkRow, error)
	ListEntities(siteID string) ([]store.Entity, error)
	ListMentions(siteID string) ([]store.EntityMention, error)
	ListRelations(siteID string) ([]store.EntityRelation, error)
	ListCrawlJobs(siteID string) ([]store.CrawlJob, error)
}

// Assembler builds SiteReports.
type Assembler struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func NewAssembler(st Store, log *logger.Logger) *Assembler {
	if log == nil {
		log = logger.Nop()
	}
	return &Assembler{store: st, log: log.WithComponent("report"), now: time.Now}
}

// snapshot is the raw query results a report is computed from.
type snapshot struct {
	site      *store.Site
	pages     []store.Page
	chunks    []store.ChunkRow
	entities  []store.Entity
	mentions  []store.EntityMention
	relations []store.EntityRelation
	jobs      []store.CrawlJob
}

// Build runs the read queries for siteID in parallel and assembles the
// report. A missing site yields store.ErrNotFound.
func (a *Assembler) Build(ctx context.Context, siteID string) (*SiteReport, error) {
	log := a.log.WithField("site_id", siteID)
	log.Info("Building site report")

	var snap snapshot
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.site, err = a.store.GetSite(siteID)
		return err
	})
	g.Go(func() (err error) {
		snap.pages, err = a.store.ListPageSummaries(siteID)
		return err
	})
	g.Go(func() (err error) {
		snap.chunks, err = a.store.ListChunks(siteID)
		return err
	})
	g.Go(func() (err error) {
		snap.entities, err = a.store.ListEntities(siteID)
		return err
	})
	g.Go(func() (err error) {
		snap.mentions, err = a.store.ListMentions(siteID)
		return err
	})
	g.Go(func() (err error) {
		snap.relations, err = a.store.ListRelations(siteID)
		return err
	})
	g.Go(func() (err error) {
		snap.jobs, err = a.store.ListCrawlJobs(siteID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := a.now()
	pages := buildPages(&snap)
	entities := buildEntities(&snap)
	report := &SiteReport{
		Site:          buildSiteInfo(&snap),
		CrawlStats:    buildCrawlStats(pages, snap.jobs),
		Pages:         pages,
		Chunks:        buildChunks(snap.chunks),
		Entities:      entities,
		Relationships: buildRelationships(&snap),
		Metadata: Metadata{
			ToolName:    version.ToolName,
			ToolVersion: version.CurrentVersion,
			GeneratedAt: now,
			ReportID:    fmt.Sprintf("%s-%d", siteID, now.UnixMilli()),
		},
	}
	report.Summaries = buildSummaries(report.Pages, report.Chunks, report.Entities)

	log.StatsEvent("Site report built", map[string]interface{}{
		"pages":         len(report.Pages),
		"chunks":        len(report.Chunks),
		"entities":      len(report.Entities),
		"relationships": len(report.Relationships),
	})
	return report, nil
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func buildSiteInfo(snap *snapshot) SiteInfo {
	info := SiteInfo{
		ID:            snap.site.ID,
		URL:           snap.site.URL,
		Domain:        snap.site.Domain,
		Status:        snap.site.Status,
		LastCrawledAt: unixTime(snap.site.LastCrawledAt),
	}
	var home *store.Page
	for i := range snap.pages {
		p := &snap.pages[i]
		if p.URL == snap.site.URL {
			home = p
			break
		}
		if home == nil && p.Depth == 0 {
			home = p
		}
	}
	if home != nil {
		info.Title = home.Title
		info.Description = home.MetaDescription
	}
	return info
}

func buildPages(snap *snapshot) []PageInfo {
	entityCounts := make(map[string]int)
	for _, m := range snap.mentions {
		entityCounts[m.PageID]++
	}
	chunkCounts := make(map[string]int)
	for _, c := range snap.chunks {
		chunkCounts[c.PageID]++
	}

	pages := make([]PageInfo, 0, len(snap.pages))
	for _, p := range snap.pages {
		pages = append(pages, PageInfo{
			ID:          p.ID,
			URL:         p.URL,
			Title:       p.Title,
			Depth:       p.Depth,
			Status:      p.Status,
			FetchMethod: p.FetchMethod,
			CrawledAt:   unixTime(p.CrawledAt),
			EntityCount: entityCounts[p.ID],
			ChunkCount:  chunkCounts[p.ID],
		})
	}
	return pages
}

func buildCrawlStats(pages []PageInfo, jobs []store.CrawlJob) CrawlStats {
	stats := CrawlStats{TotalPages: len(pages)}
	for _, p := range pages {
		switch p.Status {
		case store.PageStatusCompleted:
			stats.PagesCompleted++
		case store.PageStatusPending:
			stats.PagesPending++
		case store.PageStatusFailed:
			stats.PagesFailed++
		}
		switch p.FetchMethod {
		case "HTTP":
			stats.FetchMethods.HTTP++
		case "BROWSER":
			stats.FetchMethods.Browser++
		}
		if p.Depth > stats.MaxDepth {
			stats.MaxDepth = p.Depth
		}
	}

	if len(jobs) > 0 {
		latest := jobs[0]
		stats.LastCrawlJobStatus = latest.Status
		if latest.StartedAt != 0 && latest.CompletedAt != 0 {
			d := latest.Duration()
			stats.CrawlDurationSeconds = &d
		}
	}
	return stats
}

func buildChunks(rows []store.ChunkRow) []ChunkInfo {
	chunks := make([]ChunkInfo, 0, len(rows))
	for i := range rows {
		chunks = append(chunks, ChunkInfo{
			ID:          rows[i].ID,
			PageID:      rows[i].PageID,
			PageURL:     rows[i].PageURL,
			HeadingPath: rows[i].GetHeadingPath(),
			Text:        rows[i].Text,
			Position:    rows[i].Position,
		})
	}
	return chunks
}

// buildEntities lists entities by descending confidence, keeping creation
// order among equals.
func buildEntities(snap *snapshot) []EntityInfo {
	pageURLs := make(map[string]string, len(snap.pages))
	for _, p := range snap.pages {
		pageURLs[p.ID] = p.URL
	}

	mentionCounts := make(map[string]int)
	pagesMentioned := make(map[string][]string)
	seen := make(map[string]bool)
	for _, m := range snap.mentions {
		mentionCounts[m.EntityID]++
		url, ok := pageURLs[m.PageID]
		key := m.EntityID + "|" + url
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		pagesMentioned[m.EntityID] = append(pagesMentioned[m.EntityID], url)
	}

	relationCounts := make(map[string]int)
	for _, r := range snap.relations {
		relationCounts[r.FromEntityID]++
		relationCounts[r.ToEntityID]++
	}

	entities := make([]EntityInfo, 0, len(snap.entities))
	for i := range snap.entities {
		e := &snap.entities[i]
		urls := pagesMentioned[e.ID]
		if urls == nil {
			urls = []string{}
		}
		entities = append(entities, EntityInfo{
			ID:             e.ID,
			Name:           e.Name,
			Type:           e.Type,
			Aliases:        e.GetAliases(),
			Source:         e.Source,
			Confidence:     e.Confidence,
			MentionCount:   mentionCounts[e.ID],
			PagesMentioned: urls,
			RelationsCount: relationCounts[e.ID],
		})
	}
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Confidence > entities[j].Confidence
	})
	return entities
}

// buildRelationships resolves entity names and lists relations by
// descending weight.
func buildRelationships(snap *snapshot) []RelationshipInfo {
	byID := make(map[string]*store.Entity, len(snap.entities))
	for i := range snap.entities {
		byID[snap.entities[i].ID] = &snap.entities[i]
	}

	rels := make([]RelationshipInfo, 0, len(snap.relations))
	for _, r := range snap.relations {
		from, to := byID[r.FromEntityID], byID[r.ToEntityID]
		if from == nil || to == nil {
			continue
		}
		rels = append(rels, RelationshipInfo{
			ID:             r.ID,
			FromEntityID:   from.ID,
			FromEntityName: from.Name,
			FromEntityType: from.Type,
			ToEntityID:     to.ID,
			ToEntityName:   to.Name,
			ToEntityType:   to.Type,
			RelationType:   r.RelationType,
			Weight:         r.Weight,
			Source:         r.Source,
		})
	}
	sort.SliceStable(rels, func(i, j int) bool { return rels[i].Weight > rels[j].Weight })
	return rels
}

func buildSummaries(pages []PageInfo, chunks []ChunkInfo, entities []EntityInfo) Summaries {
	var s Summaries

	s.Content.TotalChunks = len(chunks)
	for _, c := range chunks {
		s.Content.TotalTextLength += utf8.RuneCountInString(c.Text)
	}
	if len(chunks) > 0 {
		s.Content.AvgChunkLength = int(math.Round(float64(s.Content.TotalTextLength) / float64(len(chunks))))
	}

	s.Structure.PagesPerDepthLevel = make(map[int]int)
	totalDepth := 0
	for _, p := range pages {
		s.Structure.PagesPerDepthLevel[p.Depth]++
		totalDepth += p.Depth
		if p.Depth > s.Structure.MaxDepthReached {
			s.Structure.MaxDepthReached = p.Depth
		}
		if p.EntityCount > 0 {
			s.Coverage.PagesWithEntities++
		}
	}
	if len(pages) > 0 {
		s.Structure.AvgDepth = math.Round(float64(totalDepth)/float64(len(pages))*100) / 100
	}
	s.Coverage.PagesWithoutEntities = len(pages) - s.Coverage.PagesWithEntities

	best := 0
	for _, e := range entities {
		if e.RelationsCount == 0 {
			s.Coverage.OrphanEntities++
		}
		if e.RelationsCount > best {
			best = e.RelationsCount
			s.Coverage.MostConnectedEntity = e.Name
		}
	}
	return s
}
