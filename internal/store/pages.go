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
	"fmt"

	"gorm.io/gorm"
)

// GetPageByURL gets a page by site and URL, or nil if it has not been crawled
func (s *Store) GetPageByURL(siteID string, url string) (*Page, error) {
	var page Page
	result := s.db.Where("site_id = ? AND url = ?", siteID, url).First(&page)
	if result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get page: %w", result.Error)
	}
	return &page, nil
}

// UpsertPage inserts a page or overwrites the stored page with the same
// (SiteID, URL). The stored id is kept and written back into page.ID.
func (s *Store) UpsertPage(page *Page) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing Page
		err := tx.Select("id", "created_at").Where("site_id = ? AND url = ?", page.SiteID, page.URL).First(&existing).Error
		switch {
		case notFound(err):
			if err := tx.Create(page).Error; err != nil {
				return fmt.Errorf("failed to create page: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to get page: %w", err)
		}

		page.ID = existing.ID
		page.CreatedAt = existing.CreatedAt
		if err := tx.Save(page).Error; err != nil {
			return fmt.Errorf("failed to update page: %w", err)
		}
		return nil
	})
}

// ListCompletedPages returns the site's successfully crawled pages with their HTML
func (s *Store) ListCompletedPages(siteID string) ([]Page, error) {
	var pages []Page
	if err := s.db.Where("site_id = ? AND status = ?", siteID, PageStatusCompleted).
		Order("depth ASC").Order("url ASC").
		Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}
	return pages, nil
}

// ListPageSummaries returns every page of a site without the HTML columns
func (s *Store) ListPageSummaries(siteID string) ([]Page, error) {
	var pages []Page
	if err := s.db.Omit("html_content", "rendered_html").
		Where("site_id = ?", siteID).
		Order("depth ASC").Order("url ASC").
		Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}
	return pages, nil
}

// CountPages returns the number of pages stored for a site
func (s *Store) CountPages(siteID string) (int64, error) {
	var n int64
	if err := s.db.Model(&Page{}).Where("site_id = ?", siteID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

// CreateChunk saves a content chunk
func (s *Store) CreateChunk(chunk *ContentChunk) error {
	if err := s.db.Create(chunk).Error; err != nil {
		return fmt.Errorf("failed to create chunk: %w", err)
	}
	return nil
}

// DeletePageChunks removes every chunk of a page
func (s *Store) DeletePageChunks(pageID string) error {
	if err := s.db.Where("page_id = ?", pageID).Delete(&ContentChunk{}).Error; err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// ChunkRow is a content chunk joined with its page URL.
type ChunkRow struct {
	ID          string
	PageID      string
	PageURL     string
	HeadingPath string
	Text        string
	Position    int
}

// GetHeadingPath deserializes the HeadingPath JSON to []string
func (c *ChunkRow) GetHeadingPath() []string {
	return decodeStrings(c.HeadingPath)
}

// ListChunks returns all chunks of a site in page and position order
func (s *Store) ListChunks(siteID string) ([]ChunkRow, error) {
	var rows []ChunkRow
	err := s.db.Table("content_chunks").
		Select("content_chunks.id, content_chunks.page_id, pages.url AS page_url, content_chunks.heading_path, content_chunks.text, content_chunks.position").
		Joins("JOIN pages ON pages.id = content_chunks.page_id").
		Where("pages.site_id = ?", siteID).
		Order("pages.url ASC").Order("content_chunks.position ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}
	return rows, nil
}
