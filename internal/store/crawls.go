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

// CreateCrawlJob creates a pending crawl job for a site
func (s *Store) CreateCrawlJob(siteID string, maxDepth, maxPages int) (*CrawlJob, error) {
	job := CrawlJob{
		SiteID:   siteID,
		Status:   JobStatusPending,
		MaxDepth: maxDepth,
		MaxPages: maxPages,
	}

	if err := s.db.Create(&job).Error; err != nil {
		return nil, fmt.Errorf("failed to create crawl job: %w", err)
	}

	return &job, nil
}

// GetCrawlJob gets a crawl job by ID
func (s *Store) GetCrawlJob(id string) (*CrawlJob, error) {
	var job CrawlJob
	if err := s.db.First(&job, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get crawl job: %w", err)
	}
	return &job, nil
}

// GetLatestCrawlJob gets the most recent crawl job for a site, or nil if it has none
func (s *Store) GetLatestCrawlJob(siteID string) (*CrawlJob, error) {
	var job CrawlJob
	result := s.db.Where("site_id = ?", siteID).Order("created_at DESC").Order("started_at DESC").First(&job)
	if result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest crawl job: %w", result.Error)
	}
	return &job, nil
}

// ListCrawlJobs returns all crawl jobs for a site, newest first
func (s *Store) ListCrawlJobs(siteID string) ([]CrawlJob, error) {
	var jobs []CrawlJob
	if err := s.db.Where("site_id = ?", siteID).Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to get crawl jobs: %w", err)
	}
	return jobs, nil
}

// StartCrawlJob moves a job to RUNNING
func (s *Store) StartCrawlJob(id string, at time.Time) error {
	return s.updateJob(id, map[string]interface{}{
		"status":     JobStatusRunning,
		"started_at": at.Unix(),
	})
}

// UpdateCrawlJobProgress records the pages processed so far
func (s *Store) UpdateCrawlJobProgress(id string, pagesProcessed int) error {
	return s.updateJob(id, map[string]interface{}{
		"pages_processed": pagesProcessed,
	})
}

// CompleteCrawlJob moves a job to COMPLETED. errorMessage may be empty.
func (s *Store) CompleteCrawlJob(id string, pagesProcessed int, errorMessage string, at time.Time) error {
	return s.updateJob(id, map[string]interface{}{
		"status":          JobStatusCompleted,
		"pages_processed": pagesProcessed,
		"error_message":   errorMessage,
		"completed_at":    at.Unix(),
	})
}

// FailCrawlJob moves a job to FAILED with the error that stopped it
func (s *Store) FailCrawlJob(id string, pagesProcessed int, errorMessage string, at time.Time) error {
	return s.updateJob(id, map[string]interface{}{
		"status":          JobStatusFailed,
		"pages_processed": pagesProcessed,
		"error_message":   errorMessage,
		"completed_at":    at.Unix(),
	})
}

func (s *Store) updateJob(id string, updates map[string]interface{}) error {
	result := s.db.Model(&CrawlJob{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update crawl job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("crawl job %s not found: %w", id, ErrNotFound)
	}
	return nil
}
