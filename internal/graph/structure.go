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
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentberlin/sitegraph"
	"github.com/agentberlin/sitegraph/internal/store"
)

const (
	h1Confidence         = 0.8
	subheadingConfidence = 0.6
	navigationConfidence = 0.5
	breadcrumbConfidence = 0.7
)

const (
	navigationSelector = `nav a, [role="navigation"] a`
	breadcrumbSelector = `[itemtype*="BreadcrumbList"] a, .breadcrumb a, [aria-label="breadcrumb"] a`
)

// ExtractHeadingEntities turns H1s into topics and H2/H3s into services,
// products or topics by keyword.
func ExtractHeadingEntities(headings sitegraph.Headings) []ExtractedEntity {
	var entities []ExtractedEntity

	for _, h := range headings.H1 {
		name := strings.TrimSpace(h)
		if len([]rune(name)) <= 2 {
			continue
		}
		entities = append(entities, structureEntity(name, store.EntityTopic, h1Confidence))
	}

	subheadings := append(append([]string{}, headings.H2...), headings.H3...)
	for _, h := range subheadings {
		name := strings.TrimSpace(h)
		if len([]rune(name)) <= 2 {
			continue
		}
		entityType := classifyByKeywords(name, subheadingRules, store.EntityTopic)
		entities = append(entities, structureEntity(name, entityType, subheadingConfidence))
	}

	return entities
}

// ExtractNavigationEntities reads navigation link labels as services, or as
// topics for about/contact/team links.
func ExtractNavigationEntities(doc *goquery.Document) []ExtractedEntity {
	var entities []ExtractedEntity
	doc.Find(navigationSelector).Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		if !validLabel(text) {
			return
		}
		entityType := classifyByKeywords(text, navigationRules, store.EntityService)
		entities = append(entities, structureEntity(text, entityType, navigationConfidence))
	})
	return entities
}

// ExtractBreadcrumbEntities reads breadcrumb link labels as topics.
func ExtractBreadcrumbEntities(doc *goquery.Document) []ExtractedEntity {
	var entities []ExtractedEntity
	doc.Find(breadcrumbSelector).Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		if !validLabel(text) {
			return
		}
		entities = append(entities, structureEntity(text, store.EntityTopic, breadcrumbConfidence))
	})
	return entities
}

func structureEntity(name, entityType string, confidence float64) ExtractedEntity {
	return ExtractedEntity{
		Name:       name,
		Type:       entityType,
		Source:     store.SourceStructure,
		Confidence: confidence,
		Aliases:    []string{},
	}
}
