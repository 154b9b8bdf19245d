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

	"gorm.io/gorm/clause"
)

// CreateEntity saves a new entity
func (s *Store) CreateEntity(entity *Entity) error {
	if err := s.db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	return nil
}

// UpdateEntity writes the merge-mutable fields of an existing entity
func (s *Store) UpdateEntity(entity *Entity) error {
	result := s.db.Model(&Entity{}).Where("id = ?", entity.ID).Updates(map[string]interface{}{
		"name":       entity.Name,
		"aliases":    entity.Aliases,
		"confidence": entity.Confidence,
		"source":     entity.Source,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update entity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("entity %s not found: %w", entity.ID, ErrNotFound)
	}
	return nil
}

// GetEntity gets an entity by ID
func (s *Store) GetEntity(id string) (*Entity, error) {
	var entity Entity
	if err := s.db.First(&entity, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return &entity, nil
}

// ListEntities returns all entities of a site in creation order
func (s *Store) ListEntities(siteID string) ([]Entity, error) {
	var entities []Entity
	if err := s.db.Where("site_id = ?", siteID).Order("created_at ASC").Order("id ASC").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to get entities: %w", err)
	}
	return entities, nil
}

// CreateMention saves an entity mention. A mention of the same entity on the
// same page is left as is and reported with created == false.
func (s *Store) CreateMention(mention *EntityMention) (created bool, err error) {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}, {Name: "page_id"}},
		DoNothing: true,
	}).Create(mention)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create mention: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListMentions returns all mentions of a site's entities
func (s *Store) ListMentions(siteID string) ([]EntityMention, error) {
	var mentions []EntityMention
	err := s.db.Model(&EntityMention{}).
		Select("entity_mentions.*").
		Joins("JOIN entities ON entities.id = entity_mentions.entity_id").
		Where("entities.site_id = ?", siteID).
		Order("entity_mentions.created_at ASC").
		Find(&mentions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get mentions: %w", err)
	}
	return mentions, nil
}

// UpsertRelation inserts a relation or, when the (from, to, type) triple
// already exists, overwrites its weight and source.
func (s *Store) UpsertRelation(relation *EntityRelation) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "from_entity_id"},
			{Name: "to_entity_id"},
			{Name: "relation_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"weight", "source", "updated_at"}),
	}).Create(relation)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert relation: %w", result.Error)
	}
	return nil
}

// ListRelations returns all relations of a site
func (s *Store) ListRelations(siteID string) ([]EntityRelation, error) {
	var relations []EntityRelation
	if err := s.db.Where("site_id = ?", siteID).Order("created_at ASC").Order("id ASC").Find(&relations).Error; err != nil {
		return nil, fmt.Errorf("failed to get relations: %w", err)
	}
	return relations, nil
}
