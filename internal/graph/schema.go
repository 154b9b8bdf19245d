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
	"sort"
	"strings"

	"github.com/agentberlin/sitegraph/internal/store"
)

// schemaTypes maps schema.org types to entity types. Unlisted types yield no entity.
var schemaTypes = map[string]string{
	"Organization":  store.EntityOrganization,
	"Corporation":   store.EntityOrganization,
	"LocalBusiness": store.EntityOrganization,
	"Service":       store.EntityService,
	"Product":       store.EntityProduct,
	"Person":        store.EntityPerson,
	"Place":         store.EntityLocation,
	"PostalAddress": store.EntityLocation,
	"City":          store.EntityLocation,
	"Country":       store.EntityLocation,
}

const schemaConfidence = 1.0

func schemaTypeName(t string) string {
	t = strings.TrimPrefix(t, "https://schema.org/")
	return strings.TrimPrefix(t, "http://schema.org/")
}

// schemaTypesOf returns the @type values of a node; @type may be a string or a list.
func schemaTypesOf(node map[string]interface{}) []string {
	switch t := node["@type"].(type) {
	case string:
		return []string{schemaTypeName(t)}
	case []interface{}:
		var out []string
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, schemaTypeName(s))
			}
		}
		return out
	}
	return nil
}

func mapSchemaType(node map[string]interface{}) (string, bool) {
	for _, t := range schemaTypesOf(node) {
		if et, ok := schemaTypes[t]; ok {
			return et, true
		}
	}
	return "", false
}

func stringField(node map[string]interface{}, key string) string {
	s, _ := node[key].(string)
	return strings.TrimSpace(s)
}

// schemaVisitor walks a decoded JSON-LD tree depth first, collecting an
// entity for every node with a mapped @type and a name.
type schemaVisitor struct {
	entities []ExtractedEntity
}

func (v *schemaVisitor) visit(node interface{}) {
	switch n := node.(type) {
	case map[string]interface{}:
		v.visitObject(n)
	case []interface{}:
		for _, item := range n {
			v.visit(item)
		}
	}
}

func (v *schemaVisitor) visitObject(node map[string]interface{}) {
	if entity, ok := entityFromSchemaNode(node); ok {
		v.entities = append(v.entities, entity)
	}

	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.visit(node[k])
	}
}

func entityFromSchemaNode(node map[string]interface{}) (ExtractedEntity, bool) {
	entityType, ok := mapSchemaType(node)
	if !ok {
		return ExtractedEntity{}, false
	}

	legalName := stringField(node, "legalName")
	name := stringField(node, "name")
	if name == "" {
		name = legalName
	}
	if name == "" {
		return ExtractedEntity{}, false
	}

	var aliases []string
	switch alt := node["alternateName"].(type) {
	case string:
		aliases = append(aliases, alt)
	case []interface{}:
		for _, a := range alt {
			if s, ok := a.(string); ok {
				aliases = append(aliases, s)
			}
		}
	}
	if legalName != "" && legalName != name {
		aliases = append(aliases, legalName)
	}

	kept := aliases[:0]
	for _, a := range aliases {
		if a = strings.TrimSpace(a); a != "" {
			kept = append(kept, a)
		}
	}

	return ExtractedEntity{
		Name:       name,
		Type:       entityType,
		Source:     store.SourceSchema,
		Confidence: schemaConfidence,
		Aliases:    kept,
		Context:    stringField(node, "description"),
	}, true
}

// ExtractSchemaEntities collects entities from decoded JSON-LD blocks,
// including nested nodes.
func ExtractSchemaEntities(blocks []interface{}) []ExtractedEntity {
	v := &schemaVisitor{}
	for _, block := range blocks {
		v.visit(block)
	}
	return v.entities
}

// schemaRelationRules map a top-level node type and property to a relation.
var schemaRelationRules = []struct {
	nodeType     string
	property     string
	relationType string
}{
	{"Service", "provider", RelationOfferedBy},
	{"Product", "manufacturer", RelationProvidedBy},
}

// ExtractSchemaRelations returns the provider and manufacturer relations of
// top-level JSON-LD nodes, including members of list blocks and @graph.
func ExtractSchemaRelations(blocks []interface{}) []ExtractedRelation {
	var relations []ExtractedRelation
	for _, node := range topLevelNodes(blocks) {
		name := stringField(node, "name")
		if name == "" {
			continue
		}
		types := schemaTypesOf(node)
		fromType, _ := mapSchemaType(node)
		for _, rule := range schemaRelationRules {
			if !containsString(types, rule.nodeType) {
				continue
			}
			target := referencedName(node[rule.property])
			if target == "" {
				continue
			}
			relations = append(relations, ExtractedRelation{
				FromName:     name,
				FromType:     fromType,
				ToName:       target,
				ToType:       referencedType(node[rule.property]),
				RelationType: rule.relationType,
			})
		}
	}
	return relations
}

func topLevelNodes(blocks []interface{}) []map[string]interface{} {
	var nodes []map[string]interface{}
	var add func(v interface{})
	add = func(v interface{}) {
		switch n := v.(type) {
		case map[string]interface{}:
			nodes = append(nodes, n)
			if graph, ok := n["@graph"].([]interface{}); ok {
				for _, item := range graph {
					add(item)
				}
			}
		case []interface{}:
			for _, item := range n {
				add(item)
			}
		}
	}
	for _, b := range blocks {
		add(b)
	}
	return nodes
}

// referencedName reads the name of a property that is either a string or a node.
func referencedName(v interface{}) string {
	switch ref := v.(type) {
	case string:
		return strings.TrimSpace(ref)
	case map[string]interface{}:
		return stringField(ref, "name")
	}
	return ""
}

// referencedType maps the @type of a referenced node; plain string
// references have no type.
func referencedType(v interface{}) string {
	ref, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	t, _ := mapSchemaType(ref)
	return t
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
