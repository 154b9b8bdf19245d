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
	"github.com/agentberlin/sitegraph/internal/logger"
	"github.com/agentberlin/sitegraph/internal/metrics"
	"github.com/agentberlin/sitegraph/internal/store"
)

const coOccurrenceWeight = 0.5

// RelationStore persists relations by (from, to, type).
type RelationStore interface {
	UpsertRelation(relation *store.EntityRelation) error
}

// Relation is an aggregated edge held by a RelationBuilder.
type Relation struct {
	FromEntityID string
	ToEntityID   string
	RelationType string
	Weight       float64
	Source       string
}

// RelationBuilder aggregates relations found during a build. Repeated
// (from, to, type) triples add their weights.
type RelationBuilder struct {
	siteID    string
	log       *logger.Logger
	metrics   *metrics.Metrics
	relations map[string]*Relation
	order     []string
}

func NewRelationBuilder(siteID string, log *logger.Logger, m *metrics.Metrics) *RelationBuilder {
	if log == nil {
		log = logger.Nop()
	}
	return &RelationBuilder{
		siteID:    siteID,
		log:       log.WithComponent("relations"),
		metrics:   m,
		relations: make(map[string]*Relation),
	}
}

func relationKey(from, to, relationType string) string {
	return from + ":" + to + ":" + relationType
}

// Add records a relation. Self-relations are ignored.
func (b *RelationBuilder) Add(rel Relation) {
	if rel.FromEntityID == "" || rel.ToEntityID == "" || rel.FromEntityID == rel.ToEntityID {
		return
	}

	key := relationKey(rel.FromEntityID, rel.ToEntityID, rel.RelationType)
	if existing, ok := b.relations[key]; ok {
		existing.Weight += rel.Weight
		if rel.Source == store.SourceSchema {
			existing.Source = store.SourceSchema
		}
		return
	}

	r := rel
	b.relations[key] = &r
	b.order = append(b.order, key)
}

// AddCoOccurrence links every pair of entities seen on one page with a
// mentioned_with edge in each direction.
func (b *RelationBuilder) AddCoOccurrence(entityIDs []string) {
	for i := 0; i < len(entityIDs); i++ {
		for j := i + 1; j < len(entityIDs); j++ {
			b.Add(Relation{
				FromEntityID: entityIDs[i],
				ToEntityID:   entityIDs[j],
				RelationType: RelationMentionedWith,
				Weight:       coOccurrenceWeight,
				Source:       store.SourceStructure,
			})
			b.Add(Relation{
				FromEntityID: entityIDs[j],
				ToEntityID:   entityIDs[i],
				RelationType: RelationMentionedWith,
				Weight:       coOccurrenceWeight,
				Source:       store.SourceStructure,
			})
		}
	}
}

// Relations returns the aggregated relations in first-seen order.
func (b *RelationBuilder) Relations() []Relation {
	out := make([]Relation, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, *b.relations[key])
	}
	return out
}

// Count returns the number of distinct relations.
func (b *RelationBuilder) Count() int {
	return len(b.order)
}

// Save upserts every relation. Failed writes are logged and skipped; the
// number written is returned.
func (b *RelationBuilder) Save(st RelationStore) int {
	saved := 0
	for _, rel := range b.Relations() {
		record := &store.EntityRelation{
			SiteID:       b.siteID,
			FromEntityID: rel.FromEntityID,
			ToEntityID:   rel.ToEntityID,
			RelationType: rel.RelationType,
			Weight:       rel.Weight,
			Source:       rel.Source,
		}
		if err := st.UpsertRelation(record); err != nil {
			b.log.WithError(err).Event(logger.ErrorLevel).
				Str("from", rel.FromEntityID).
				Str("to", rel.ToEntityID).
				Str("type", rel.RelationType).
				Msg("Failed to save relation")
			continue
		}
		saved++
		b.metrics.RelationPersisted()
	}
	return saved
}
