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

// Package report assembles a read-only snapshot of everything known about a
// crawled site: pages, chunks, entities, relationships and summary figures.
package report

import "time"

// SiteReport is the complete snapshot of one site.
type SiteReport struct {
	Site          SiteInfo           `json:"site"`
	CrawlStats    CrawlStats         `json:"crawlStats"`
	Pages         []PageInfo         `json:"pages"`
	Chunks        []ChunkInfo        `json:"chunks"`
	Entities      []EntityInfo       `json:"entities"`
	Relationships []RelationshipInfo `json:"relationships"`
	Summaries     Summaries          `json:"summaries"`
	Metadata      Metadata           `json:"metadata"`
}

type SiteInfo struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Domain string `json:"domain"`
	// Title and Description come from the start page.
	Title         string     `json:"title,omitempty"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status"`
	LastCrawledAt *time.Time `json:"lastCrawledAt"`
}

type CrawlStats struct {
	TotalPages     int `json:"totalPages"`
	MaxDepth       int `json:"maxDepth"`
	PagesCompleted int `json:"pagesCompleted"`
	PagesPending   int `json:"pagesPending"`
	PagesFailed    int `json:"pagesFailed"`
	// CrawlDurationSeconds is the wall time of the latest finished job.
	CrawlDurationSeconds *int64      `json:"crawlDurationSeconds"`
	LastCrawlJobStatus   string      `json:"lastCrawlJobStatus,omitempty"`
	FetchMethods         FetchCounts `json:"fetchMethods"`
}

type FetchCounts struct {
	HTTP    int `json:"http"`
	Browser int `json:"browser"`
}

type PageInfo struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Depth       int        `json:"depth"`
	Status      string     `json:"status"`
	FetchMethod string     `json:"fetchMethod"`
	CrawledAt   *time.Time `json:"crawledAt"`
	EntityCount int        `json:"entityCount"`
	ChunkCount  int        `json:"chunkCount"`
}

type ChunkInfo struct {
	ID          string   `json:"id"`
	PageID      string   `json:"pageId"`
	PageURL     string   `json:"pageUrl"`
	HeadingPath []string `json:"headingPath"`
	Text        string   `json:"text"`
	Position    int      `json:"position"`
}

type EntityInfo struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Aliases        []string `json:"aliases"`
	Source         string   `json:"source"`
	Confidence     float64  `json:"confidence"`
	MentionCount   int      `json:"mentionCount"`
	PagesMentioned []string `json:"pagesMentioned"` // page URLs
	RelationsCount int      `json:"relationsCount"`
}

type RelationshipInfo struct {
	ID             string  `json:"id"`
	FromEntityID   string  `json:"fromEntityId"`
	FromEntityName string  `json:"fromEntityName"`
	FromEntityType string  `json:"fromEntityType"`
	ToEntityID     string  `json:"toEntityId"`
	ToEntityName   string  `json:"toEntityName"`
	ToEntityType   string  `json:"toEntityType"`
	RelationType   string  `json:"relationType"`
	Weight         float64 `json:"weight"`
	Source         string  `json:"source"`
}

type Summaries struct {
	Content   ContentSummary   `json:"content"`
	Structure StructureSummary `json:"structure"`
	Coverage  CoverageSummary  `json:"coverage"`
}

type ContentSummary struct {
	TotalChunks     int `json:"totalChunks"`
	AvgChunkLength  int `json:"avgChunkLength"`
	TotalTextLength int `json:"totalTextLength"`
}

type StructureSummary struct {
	AvgDepth           float64     `json:"avgDepth"`
	MaxDepthReached    int         `json:"maxDepthReached"`
	PagesPerDepthLevel map[int]int `json:"pagesPerDepthLevel"`
}

type CoverageSummary struct {
	PagesWithEntities    int    `json:"pagesWithEntities"`
	PagesWithoutEntities int    `json:"pagesWithoutEntities"`
	OrphanEntities       int    `json:"orphanEntities"`
	MostConnectedEntity  string `json:"mostConnectedEntity,omitempty"`
}

type Metadata struct {
	ToolName    string    `json:"toolName"`
	ToolVersion string    `json:"toolVersion"`
	GeneratedAt time.Time `json:"generatedAt"`
	ReportID    string    `json:"reportId"`
}
