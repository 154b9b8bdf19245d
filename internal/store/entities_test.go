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
	"testing"
)

func TestEntities(t *testing.T) {
	store := newTestStore(t)
	site, _ := store.GetOrCreateSite("https://example.com/", "example.com")

	entity := &Entity{SiteID: site.ID, Name: "Acme Corp", Type: EntityOrganization, Source: SourceSchema, Confidence: 1}
	entity.SetAliases([]string{"Acme"})
	if err := store.CreateEntity(entity); err != nil {
		t.Fatalf("CreateEntity() failed: %v", err)
	}
	id := entity.ID

	entity.Name = "Acme Corporation"
	entity.SetAliases([]string{"Acme", "Acme Corp"})
	entity.Confidence = 0.9
	if err := store.UpdateEntity(entity); err != nil {
		t.Fatalf("UpdateEntity() failed: %v", err)
	}

	got, err := store.GetEntity(id)
	if err != nil {
		t.Fatalf("GetEntity() failed: %v", err)
	}
	if got.Name != "Acme Corporation" || len(got.GetAliases()) != 2 || got.Confidence != 0.9 {
		t.Errorf("entity was not updated: %+v", got)
	}

	if err := store.UpdateEntity(&Entity{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	list, err := store.ListEntities(site.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListEntities() = %d, %v", len(list), err)
	}
}

func TestCreateMentionIgnoresDuplicates(t *testing.T) {
	store := newTestStore(t)
	site, _ := store.GetOrCreateSite("https://example.com/", "example.com")
	page := &Page{SiteID: site.ID, URL: "https://example.com/", Status: PageStatusCompleted}
	store.UpsertPage(page)
	entity := &Entity{SiteID: site.ID, Name: "Acme", Type: EntityOrganization, Source: SourceStructure}
	store.CreateEntity(entity)

	created, err := store.CreateMention(&EntityMention{EntityID: entity.ID, PageID: page.ID, ContextSnippet: "first"})
	if err != nil || !created {
		t.Fatalf("CreateMention() = %v, %v", created, err)
	}

	created, err = store.CreateMention(&EntityMention{EntityID: entity.ID, PageID: page.ID, ContextSnippet: "second"})
	if err != nil {
		t.Fatalf("duplicate CreateMention() should not fail: %v", err)
	}
	if created {
		t.Error("duplicate mention should not be created")
	}

	mentions, err := store.ListMentions(site.ID)
	if err != nil {
		t.Fatalf("ListMentions() failed: %v", err)
	}
	if len(mentions) != 1 || mentions[0].ContextSnippet != "first" {
		t.Errorf("unexpected mentions: %+v", mentions)
	}
}

func TestUpsertRelation(t *testing.T) {
	store := newTestStore(t)
	site, _ := store.GetOrCreateSite("https://example.com/", "example.com")

	rel := &EntityRelation{SiteID: site.ID, FromEntityID: "a", ToEntityID: "b", RelationType: "mentioned_with", Weight: 0.5, Source: SourceStructure}
	if err := store.UpsertRelation(rel); err != nil {
		t.Fatalf("UpsertRelation() failed: %v", err)
	}

	again := &EntityRelation{SiteID: site.ID, FromEntityID: "a", ToEntityID: "b", RelationType: "mentioned_with", Weight: 1.5, Source: SourceSchema}
	if err := store.UpsertRelation(again); err != nil {
		t.Fatalf("second UpsertRelation() failed: %v", err)
	}

	other := &EntityRelation{SiteID: site.ID, FromEntityID: "b", ToEntityID: "a", RelationType: "mentioned_with", Weight: 0.5, Source: SourceStructure}
	if err := store.UpsertRelation(other); err != nil {
		t.Fatalf("reverse UpsertRelation() failed: %v", err)
	}

	relations, err := store.ListRelations(site.ID)
	if err != nil {
		t.Fatalf("ListRelations() failed: %v", err)
	}
	if len(relations) != 2 {
		t.Fatalf("expected 2 relations, got %d", len(relations))
	}
	for _, r := range relations {
		if r.FromEntityID == "a" && (r.Weight != 1.5 || r.Source != SourceSchema) {
			t.Errorf("upsert should overwrite weight and source: %+v", r)
		}
	}
}
