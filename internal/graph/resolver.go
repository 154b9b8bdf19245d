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
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/agentberlin/sitegraph/internal/logger"
	"github.com/agentberlin/sitegraph/internal/metrics"
	"github.com/agentberlin/sitegraph/internal/store"
)

// ErrEmptyName is returned for candidates whose name normalizes to nothing.
var ErrEmptyName = errors.New("entity name is empty")

// EntityStore is the storage the resolver writes through to.
type EntityStore interface {
	ListEntities(siteID string) ([]store.Entity, error)
	CreateEntity(entity *store.Entity) error
	UpdateEntity(entity *store.Entity) error
}

// Resolver dedupes entity candidates against a site's entity set. The cache
// maps TYPE:normalized-name to the entity; after a merge older keys keep
// pointing at the same record, so every key sees the merged state.
type Resolver struct {
	siteID  string
	store   EntityStore
	log     *logger.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	cache    map[string]*store.Entity
	entities []*store.Entity // creation order, one per id
}

// NewResolver creates a resolver for one site. Call Load before resolving.
func NewResolver(siteID string, st EntityStore, log *logger.Logger, m *metrics.Metrics) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		siteID:  siteID,
		store:   st,
		log:     log.WithComponent("resolver"),
		metrics: m,
		cache:   make(map[string]*store.Entity),
	}
}

func cacheKey(name, entityType string) string {
	return entityType + ":" + NormalizeEntityName(name)
}

// Load replaces the cache with the site's stored entities.
func (r *Resolver) Load() error {
	stored, err := r.store.ListEntities(r.siteID)
	if err != nil {
		return fmt.Errorf("failed to load entities: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = make(map[string]*store.Entity, len(stored))
	r.entities = r.entities[:0]
	for i := range stored {
		e := stored[i]
		r.entities = append(r.entities, &e)
		r.cache[cacheKey(e.Name, e.Type)] = &e
	}

	r.log.Event(logger.InfoLevel).
		Str("site_id", r.siteID).
		Int("count", len(stored)).
		Msg("Loaded existing entities")
	return nil
}

// Resolve returns the entity a candidate belongs to: an exact cache hit, an
// existing same-type entity it merges into, or a newly created one.
func (r *Resolver) Resolve(candidate ExtractedEntity) (store.Entity, error) {
	candidate.Name = strings.TrimSpace(candidate.Name)
	if NormalizeEntityName(candidate.Name) == "" {
		return store.Entity{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if hit, ok := r.cache[cacheKey(candidate.Name, candidate.Type)]; ok {
		r.metrics.EntityResolved(metrics.OutcomeExact)
		return *hit, nil
	}

	if similar := r.findSimilar(candidate.Name, candidate.Type); similar != nil {
		if err := r.merge(similar, candidate); err != nil {
			return store.Entity{}, err
		}
		r.metrics.EntityResolved(metrics.OutcomeMerged)
		return *similar, nil
	}

	created, err := r.create(candidate)
	if err != nil {
		return store.Entity{}, err
	}
	r.metrics.EntityResolved(metrics.OutcomeCreated)
	return *created, nil
}

// findSimilar scans same-type entities in creation order. O(n) per candidate.
func (r *Resolver) findSimilar(name, entityType string) *store.Entity {
	for _, e := range r.entities {
		if e.Type != entityType {
			continue
		}
		if ShouldMerge(name, e.Name) {
			return e
		}
		for _, alias := range e.GetAliases() {
			if ShouldMerge(name, alias) {
				return e
			}
		}
	}
	return nil
}

func (r *Resolver) merge(existing *store.Entity, candidate ExtractedEntity) error {
	names := append([]string{existing.Name}, existing.GetAliases()...)
	names = append(names, candidate.Name)
	names = uniqueNames(append(names, candidate.Aliases...)...)

	canonical := longestName(names)
	if candidate.Source == store.SourceSchema {
		canonical = candidate.Name
	}

	canonicalKey := NormalizeEntityName(canonical)
	aliases := make([]string, 0, len(names))
	for _, n := range names {
		if NormalizeEntityName(n) != canonicalKey {
			aliases = append(aliases, n)
		}
	}

	updated := *existing
	updated.Name = canonical
	updated.SetAliases(aliases)
	updated.Confidence = mergeConfidence(existing.Confidence, candidate.Confidence)
	updated.Source = mergeSource(existing.Source, candidate.Source)

	if err := r.store.UpdateEntity(&updated); err != nil {
		return fmt.Errorf("failed to merge entity %q into %q: %w", candidate.Name, existing.Name, err)
	}

	r.log.Event(logger.DebugLevel).
		Str("existing", existing.Name).
		Str("candidate", candidate.Name).
		Str("canonical", canonical).
		Msg("Merged entities")

	*existing = updated
	r.cache[cacheKey(canonical, existing.Type)] = existing
	return nil
}

func (r *Resolver) create(candidate ExtractedEntity) (*store.Entity, error) {
	entity := &store.Entity{
		SiteID:     r.siteID,
		Name:       candidate.Name,
		Type:       candidate.Type,
		Source:     candidate.Source,
		Confidence: candidate.Confidence,
	}
	entity.SetAliases(uniqueNames(candidate.Aliases...))

	if err := r.store.CreateEntity(entity); err != nil {
		return nil, fmt.Errorf("failed to create entity %q: %w", candidate.Name, err)
	}

	r.log.Event(logger.DebugLevel).
		Str("name", entity.Name).
		Str("type", entity.Type).
		Msg("Created entity")

	r.entities = append(r.entities, entity)
	r.cache[cacheKey(entity.Name, entity.Type)] = entity
	return entity, nil
}

func mergeConfidence(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func mergeSource(a, b string) string {
	if a == store.SourceSchema || b == store.SourceSchema {
		return store.SourceSchema
	}
	return a
}

// Entities returns a snapshot of every entity known to the resolver.
func (r *Resolver) Entities() []store.Entity {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]store.Entity, len(r.entities))
	for i, e := range r.entities {
		out[i] = *e
	}
	return out
}

// FindByName returns the entity whose name or alias normalizes to the same
// form as name. When entityType is set only entities of that type match.
// Otherwise SCHEMA-sourced entities are preferred over the rest. Name hits
// rank above alias hits within the same tier.
func (r *Resolver) FindByName(name, entityType string) (store.Entity, bool) {
	key := NormalizeEntityName(name)
	if key == "" {
		return store.Entity{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var tiers [][]*store.Entity
	if entityType != "" {
		var typed []*store.Entity
		for _, e := range r.entities {
			if e.Type == entityType {
				typed = append(typed, e)
			}
		}
		tiers = append(tiers, typed)
	} else {
		var schema, rest []*store.Entity
		for _, e := range r.entities {
			if e.Source == store.SourceSchema {
				schema = append(schema, e)
			} else {
				rest = append(rest, e)
			}
		}
		tiers = append(tiers, schema, rest)
	}

	for _, tier := range tiers {
		if e := matchName(tier, key); e != nil {
			return *e, true
		}
	}
	return store.Entity{}, false
}

func matchName(entities []*store.Entity, key string) *store.Entity {
	for _, e := range entities {
		if NormalizeEntityName(e.Name) == key {
			return e
		}
	}
	for _, e := range entities {
		for _, alias := range e.GetAliases() {
			if NormalizeEntityName(alias) == key {
				return e
			}
		}
	}
	return nil
}
