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
	"time"
)

// GetOrCreateSite gets or creates a site by domain
func (s *Store) GetOrCreateSite(urlStr string, domain string) (*Site, error) {
	var site Site
	result := s.db.Where("domain = ?", domain).First(&site)

	if notFound(result.Error) {
		site = Site{
			URL:    urlStr,
			Domain: domain,
			Status: SiteStatusPending,
		}
		if err := s.db.Create(&site).Error; err != nil {
			return nil, fmt.Errorf("failed to create site: %w", err)
		}
		return &site, nil
	}

	if result.Error != nil {
		return nil, fmt.Errorf("failed to get site: %w", result.Error)
	}

	// Keep the stored root URL in step with the latest normalized input
	if site.URL != urlStr {
		if err := s.db.Model(&site).Update("url", urlStr).Error; err != nil {
			return nil, fmt.Errorf("failed to update site url: %w", err)
		}
		site.URL = urlStr
	}

	return &site, nil
}

// GetSite gets a site by ID
func (s *Store) GetSite(id string) (*Site, error) {
	var site Site
	if err := s.db.First(&site, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return &site, nil
}

// GetSiteByDomain gets a site by its domain
func (s *Store) GetSiteByDomain(domain string) (*Site, error) {
	var site Site
	if err := s.db.Where("domain = ?", domain).First(&site).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return &site, nil
}

// ListSites returns all sites ordered by creation
func (s *Store) ListSites() ([]Site, error) {
	var sites []Site
	if err := s.db.Order("created_at ASC").Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to get sites: %w", err)
	}
	return sites, nil
}

// UpdateSiteStatus sets a site's status
func (s *Store) UpdateSiteStatus(id string, status string) error {
	result := s.db.Model(&Site{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update site status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("site %s not found: %w", id, ErrNotFound)
	}
	return nil
}

// MarkSiteCrawled sets the final status of a site and stamps its last crawl time
func (s *Store) MarkSiteCrawled(id string, status string, at time.Time) error {
	result := s.db.Model(&Site{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":          status,
		"last_crawled_at": at.Unix(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to mark site crawled: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("site %s not found: %w", id, ErrNotFound)
	}
	return nil
}
