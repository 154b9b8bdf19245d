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


package store

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Site status constants
const (
	SiteStatusPending   = "PENDING"
	SiteStatusActive    = "ACTIVE"
	SiteStatusCompleted = "COMPLETED"
	SiteStatusError     = "ERROR"
)

// Crawl job status constants
const (
	JobStatusPending   = "PENDING"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

// Page status constants
const (
	PageStatusPending   = "PENDING"
	PageStatusCompleted = "COMPLETED"
	PageStatusFailed    = "FAILED"
)

// Entity type constants
const (
	EntityOrganization = "ORGANIZATION"
	EntityService      = "SERVICE"
	EntityProduct      = "PRODUCT"
	EntityPerson       = "PERSON"
	EntityLocation     = "LOCATION"
	EntityTopic        = "TOPIC"
)

// Provenance of an entity or relation
const (
	SourceSchema    = "SCHEMA"
	SourceStructure = "STRUCTURE"
)

func newID() string {
	return uuid.NewString()
}

// Site is a crawled website, identified by its domain.
type Site struct {
	ID            string     `gorm:"primaryKey;type:text"`
	URL           string     `gorm:"not null"`             // Normalized root URL
	Domain        string     `gorm:"uniqueIndex;not null"` // Host including subdomain
	Status        string     `gorm:"not null;default:'PENDING'"`
	LastCrawledAt int64      `gorm:"default:0"` // Unix seconds, 0 = never
	CrawlJobs     []CrawlJob `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE"`
	Pages         []Page     `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE"`
	CreatedAt     int64      `gorm:"autoCreateTime"`
	UpdatedAt     int64      `gorm:"autoUpdateTime"`
}

func (s *Site) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = newID()
	}
	return nil
}

// CrawlJob is one crawl invocation against a site.
type CrawlJob struct {
	ID             string `gorm:"primaryKey;type:text"`
	SiteID         string `gorm:"not null;index"`
	Status         string `gorm:"not null;default:'PENDING'"`
	MaxDepth       int    `gorm:"not null"`
	MaxPages       int    `gorm:"not null"`
	PagesProcessed int    `gorm:"not null;default:0"`
	ErrorMessage   string `gorm:"type:text"`
	StartedAt      int64  `gorm:"default:0"`
	CompletedAt    int64  `gorm:"default:0"`
	CreatedAt      int64  `gorm:"autoCreateTime:nano"`
	UpdatedAt      int64  `gorm:"autoUpdateTime"`
}

func (j *CrawlJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = newID()
	}
	return nil
}

// Duration returns the job's wall time in seconds, or 0 while it has not finished.
func (j *CrawlJob) Duration() int64 {
	if j.StartedAt == 0 || j.CompletedAt == 0 {
		return 0
	}
	return j.CompletedAt - j.StartedAt
}

// Page is a crawled URL. (SiteID, URL) is unique.
type Page struct {
	ID              string `gorm:"primaryKey;type:text"`
	SiteID          string `gorm:"not null;uniqueIndex:idx_page_site_url"`
	URL             string `gorm:"not null;uniqueIndex:idx_page_site_url"`
	Title           string `gorm:"type:text"`
	MetaDescription string `gorm:"type:text"`
	CanonicalURL    string `gorm:"type:text"`
	ContentHash     string `gorm:"type:text;index"`
	HTMLContent     string `gorm:"type:text"`
	RenderedHTML    string `gorm:"type:text"` // Empty unless the page was rendered
	TextContent     string `gorm:"type:text"`
	FetchMethod     string `gorm:"type:text"` // HTTP or BROWSER
	Metadata        string `gorm:"type:text"` // JSON: headings, jsonLd, author, language
	Depth           int    `gorm:"not null;default:0"`
	Status          string `gorm:"not null;default:'PENDING';index"`
	CrawledAt       int64  `gorm:"default:0"`
	CreatedAt       int64  `gorm:"autoCreateTime"`
	UpdatedAt       int64  `gorm:"autoUpdateTime"`
}

func (p *Page) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return nil
}

// EffectiveHTML returns the rendered HTML when present, else the raw HTML.
func (p *Page) EffectiveHTML() string {
	if p.RenderedHTML != "" {
		return p.RenderedHTML
	}
	return p.HTMLContent
}

// ContentChunk is a passage of page text under a heading path.
type ContentChunk struct {
	ID          string `gorm:"primaryKey;type:text"`
	PageID      string `gorm:"not null;index"`
	HeadingPath string `gorm:"type:text"` // JSON array
	Text        string `gorm:"type:text;not null"`
	Position    int    `gorm:"not null"`
	CreatedAt   int64  `gorm:"autoCreateTime"`
}

func (c *ContentChunk) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}

// GetHeadingPath deserializes the HeadingPath JSON to []string
func (c *ContentChunk) GetHeadingPath() []string {
	return decodeStrings(c.HeadingPath)
}

// SetHeadingPath serializes []string to JSON for HeadingPath
func (c *ContentChunk) SetHeadingPath(path []string) {
	c.HeadingPath = encodeStrings(path)
}

// Entity is a named thing in a site's knowledge graph. Merges update it in place.
type Entity struct {
	ID         string  `gorm:"primaryKey;type:text"`
	SiteID     string  `gorm:"not null;index:idx_entity_site_type"`
	Name       string  `gorm:"not null"`
	Type       string  `gorm:"not null;index:idx_entity_site_type"`
	Aliases    string  `gorm:"type:text"` // JSON array
	Source     string  `gorm:"not null"`
	Confidence float64 `gorm:"not null;default:0"`
	CreatedAt  int64   `gorm:"autoCreateTime:nano"`
	UpdatedAt  int64   `gorm:"autoUpdateTime"`
}

func (e *Entity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = newID()
	}
	return nil
}

// GetAliases deserializes the Aliases JSON to []string
func (e *Entity) GetAliases() []string {
	return decodeStrings(e.Aliases)
}

// SetAliases serializes []string to JSON for Aliases
func (e *Entity) SetAliases(aliases []string) {
	e.Aliases = encodeStrings(aliases)
}

// EntityMention records that an entity appears on a page. (EntityID, PageID) is unique.
type EntityMention struct {
	ID             string `gorm:"primaryKey;type:text"`
	EntityID       string `gorm:"not null;uniqueIndex:idx_mention_entity_page"`
	PageID         string `gorm:"not null;uniqueIndex:idx_mention_entity_page;index"`
	ChunkID        string `gorm:"type:text"`
	ContextSnippet string `gorm:"type:text"`
	Position       int    `gorm:"default:0"`
	CreatedAt      int64  `gorm:"autoCreateTime:nano"`
}

func (m *EntityMention) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = newID()
	}
	return nil
}

// EntityRelation is a directed, typed, weighted edge. (From, To, Type) is unique.
type EntityRelation struct {
	ID           string  `gorm:"primaryKey;type:text"`
	SiteID       string  `gorm:"not null;index"`
	FromEntityID string  `gorm:"not null;uniqueIndex:idx_relation_triple"`
	ToEntityID   string  `gorm:"not null;uniqueIndex:idx_relation_triple"`
	RelationType string  `gorm:"not null;uniqueIndex:idx_relation_triple"`
	Weight       float64 `gorm:"not null;default:1"`
	Source       string  `gorm:"not null"`
	CreatedAt    int64   `gorm:"autoCreateTime:nano"`
	UpdatedAt    int64   `gorm:"autoUpdateTime"`
}

func (r *EntityRelation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = newID()
	}
	return nil
}

func decodeStrings(raw string) []string {
	if raw == "" || raw == "null" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func encodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}
