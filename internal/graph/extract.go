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


// Package graph turns crawled pages into a site knowledge graph: entity
// extraction from JSON-LD, headings and page structure, entity resolution
// against the stored entity set, and relation aggregation.
package graph

import (
	"strings"
	"unicode/utf8"

	"github.com/agentberlin/sitegraph/internal/store"
)

// ExtractedEntity is an entity candidate before resolution.
type ExtractedEntity struct {
	Name       string
	Type       string
	Source     string
	Confidence float64
	Aliases    []string
	Context    string
}

// ExtractedRelation names both ends of a relation found in structured data.
type ExtractedRelation struct {
	FromName     string
	FromType     string // entity type of the source node, "" if unmapped
	ToName       string
	ToType       string // entity type of the target, "" when only a name is given
	RelationType string
}

// Relation types
const (
	RelationOfferedBy     = "offered_by"
	RelationProvidedBy    = "provided_by"
	RelationMentionedWith = "mentioned_with"
)

// keywordRule assigns Type when the lowercased text contains any keyword.
type keywordRule struct {
	keywords   []string
	entityType string
}

// Rules are checked in order; the first match wins.
var subheadingRules = []keywordRule{
	{keywords: []string{"service", "solution"}, entityType: store.EntityService},
	{keywords: []string{"product"}, entityType: store.EntityProduct},
}

var navigationRules = []keywordRule{
	{keywords: []string{"about", "contact", "team"}, entityType: store.EntityTopic},
}

func classifyByKeywords(text string, rules []keywordRule, fallback string) string {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.entityType
			}
		}
	}
	return fallback
}

// validLabel bounds short structural labels: 3 to 49 characters.
func validLabel(text string) bool {
	n := utf8.RuneCountInString(text)
	return n > 2 && n < 50
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
