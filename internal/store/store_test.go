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
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := newStoreWithPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "sitegraph.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	defer store.Close()

	if store.DB() == nil {
		t.Error("DB() should not be nil")
	}
}

func TestNewStoreForTestingMissingDirectory(t *testing.T) {
	_, err := NewStoreForTesting(filepath.Join(t.TempDir(), "missing", "test.db"))
	if err == nil {
		t.Error("expected an error for a missing parent directory")
	}
}

func TestGetOrCreateSite(t *testing.T) {
	store := newTestStore(t)

	site, err := store.GetOrCreateSite("https://example.com/", "example.com")
	if err != nil {
		t.Fatalf("GetOrCreateSite() failed: %v", err)
	}
	if site.ID == "" {
		t.Fatal("site should have an id")
	}
	if site.Status != SiteStatusPending {
		t.Errorf("expected status %s, got %s", SiteStatusPending, site.Status)
	}

	t.Run("SameDomain_ReturnsExisting", func(t *testing.T) {
		again, err := store.GetOrCreateSite("https://example.com/home", "example.com")
		if err != nil {
			t.Fatalf("GetOrCreateSite() failed: %v", err)
		}
		if again.ID != site.ID {
			t.Errorf("expected id %s, got %s", site.ID, again.ID)
		}
		if again.URL != "https://example.com/home" {
			t.Errorf("expected url to be updated, got %s", again.URL)
		}
	})

	t.Run("GetSite_NotFound", func(t *testing.T) {
		_, err := store.GetSite("missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("MarkSiteCrawled", func(t *testing.T) {
		at := time.Unix(1700000000, 0)
		if err := store.MarkSiteCrawled(site.ID, SiteStatusCompleted, at); err != nil {
			t.Fatalf("MarkSiteCrawled() failed: %v", err)
		}
		got, err := store.GetSiteByDomain("example.com")
		if err != nil {
			t.Fatalf("GetSiteByDomain() failed: %v", err)
		}
		if got.Status != SiteStatusCompleted || got.LastCrawledAt != at.Unix() {
			t.Errorf("unexpected site state: %+v", got)
		}
	})

	t.Run("UpdateSiteStatus_Missing", func(t *testing.T) {
		if err := store.UpdateSiteStatus("missing", SiteStatusActive); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	sites, err := store.ListSites()
	if err != nil {
		t.Fatalf("ListSites() failed: %v", err)
	}
	if len(sites) != 1 {
		t.Errorf("expected 1 site, got %d", len(sites))
	}
}

func TestCrawlJobLifecycle(t *testing.T) {
	store := newTestStore(t)
	site, err := store.GetOrCreateSite("https://example.com/", "example.com")
	if err != nil {
		t.Fatalf("Failed to create site: %v", err)
	}

	job, err := store.CreateCrawlJob(site.ID, 3, 100)
	if err != nil {
		t.Fatalf("CreateCrawlJob() failed: %v", err)
	}
	if job.Status != JobStatusPending {
		t.Errorf("expected PENDING, got %s", job.Status)
	}

	start := time.Unix(1700000000, 0)
	if err := store.StartCrawlJob(job.ID, start); err != nil {
		t.Fatalf("StartCrawlJob() failed: %v", err)
	}
	if err := store.UpdateCrawlJobProgress(job.ID, 4); err != nil {
		t.Fatalf("UpdateCrawlJobProgress() failed: %v", err)
	}

	got, err := store.GetCrawlJob(job.ID)
	if err != nil {
		t.Fatalf("GetCrawlJob() failed: %v", err)
	}
	if got.Status != JobStatusRunning || got.PagesProcessed != 4 || got.StartedAt != start.Unix() {
		t.Errorf("unexpected running job: %+v", got)
	}
	if got.Duration() != 0 {
		t.Errorf("running job should have no duration, got %d", got.Duration())
	}

	t.Run("Complete", func(t *testing.T) {
		if err := store.CompleteCrawlJob(job.ID, 5, "", start.Add(30*time.Second)); err != nil {
			t.Fatalf("CompleteCrawlJob() failed: %v", err)
		}
		got, _ := store.GetCrawlJob(job.ID)
		if got.Status != JobStatusCompleted || got.PagesProcessed != 5 {
			t.Errorf("unexpected completed job: %+v", got)
		}
		if got.Duration() != 30 {
			t.Errorf("expected duration 30, got %d", got.Duration())
		}
	})

	t.Run("Fail", func(t *testing.T) {
		failed, _ := store.CreateCrawlJob(site.ID, 1, 1)
		if err := store.FailCrawlJob(failed.ID, 0, "boom", time.Now()); err != nil {
			t.Fatalf("FailCrawlJob() failed: %v", err)
		}
		got, _ := store.GetCrawlJob(failed.ID)
		if got.Status != JobStatusFailed || got.ErrorMessage != "boom" {
			t.Errorf("unexpected failed job: %+v", got)
		}
	})

	t.Run("MissingJob", func(t *testing.T) {
		if err := store.UpdateCrawlJobProgress("missing", 1); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	jobs, err := store.ListCrawlJobs(site.ID)
	if err != nil {
		t.Fatalf("ListCrawlJobs() failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(jobs))
	}

	latest, err := store.GetLatestCrawlJob(site.ID)
	if err != nil || latest == nil {
		t.Fatalf("GetLatestCrawlJob() failed: %v", err)
	}

	none, err := store.GetLatestCrawlJob("other-site")
	if err != nil || none != nil {
		t.Errorf("expected nil job for unknown site, got %+v, %v", none, err)
	}
}
