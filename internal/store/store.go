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
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup by id matches no record.
var ErrNotFound = errors.New("record not found")

// Store represents the database store
type Store struct {
	db *gorm.DB
}

// NewStore opens (creating if needed) the database at dbPath
func NewStore(dbPath string) (*Store, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if info, err := os.Stat(dbDir); err != nil {
		return nil, fmt.Errorf("database directory does not exist after creation: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("database path exists but is not a directory: %s", dbDir)
	}

	return newStoreWithPath(dbPath)
}

// NewStoreForTesting creates a store with a custom database path (used for testing)
func NewStoreForTesting(dbPath string) (*Store, error) {
	return newStoreWithPath(dbPath)
}

func newStoreWithPath(dbPath string) (*Store, error) {
	dbDir := filepath.Dir(dbPath)
	if _, err := os.Stat(dbDir); err != nil {
		return nil, fmt.Errorf("database directory does not exist: %s, error: %w", dbDir, err)
	}

	// WAL lets the report reader run alongside a crawl writer
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_cache_size=1000000000", dbPath)

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := database.AutoMigrate(
		&Site{}, &CrawlJob{}, &Page{}, &ContentChunk{},
		&Entity{}, &EntityMention{}, &EntityRelation{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Relations are upserted on the triple; the index has to exist before the first ON CONFLICT
	if err := database.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_relation_triple ON entity_relations(from_entity_id, to_entity_id, relation_type)").Error; err != nil {
		return nil, fmt.Errorf("failed to create relation unique index: %w", err)
	}

	if err := database.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_mention_entity_page ON entity_mentions(entity_id, page_id)").Error; err != nil {
		return nil, fmt.Errorf("failed to create mention unique index: %w", err)
	}

	return &Store{db: database}, nil
}

// DB returns the underlying GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	return sqlDB.Close()
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
