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

package sitegraph

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkPosition is the page region a link was found in.
type LinkPosition string

const (
	PositionContent     LinkPosition = "content"
	PositionNavigation  LinkPosition = "navigation"
	PositionBreadcrumbs LinkPosition = "breadcrumbs"
	PositionPagination  LinkPosition = "pagination"
	PositionHeader      LinkPosition = "header"
	PositionFooter      LinkPosition = "footer"
	PositionSidebar     LinkPosition = "sidebar"
	PositionUnknown     LinkPosition = "unknown"
)

type positionRule struct {
	position LinkPosition
	match    func(node, role, attrs string) bool
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// positionRules are checked in order against each ancestor of a link.
// Breadcrumbs and pagination come before navigation since they are usually
// marked up as navigation too.
var positionRules = []positionRule{
	{PositionContent, func(node, role, _ string) bool {
		return node == "main" || node == "article" || role == "main" || role == "article"
	}},
	{PositionBreadcrumbs, func(_, _, attrs string) bool {
		return containsAny(attrs, "breadcrumb")
	}},
	{PositionPagination, func(_, _, attrs string) bool {
		return containsAny(attrs, "pagination", "pager", "page-number")
	}},
	{PositionNavigation, func(node, role, attrs string) bool {
		return node == "nav" || role == "navigation" || containsAny(attrs, "nav", "menu")
	}},
	{PositionHeader, func(node, role, attrs string) bool {
		return node == "header" || role == "banner" || containsAny(attrs, "header", "masthead", "topbar")
	}},
	{PositionFooter, func(node, role, attrs string) bool {
		return node == "footer" || role == "contentinfo" || containsAny(attrs, "footer")
	}},
	{PositionSidebar, func(node, role, attrs string) bool {
		return node == "aside" || role == "complementary" || containsAny(attrs, "sidebar")
	}},
}

// ClassifyLinkPosition walks up from sel and returns the first region whose
// tag, ARIA role, class, id, itemtype or aria-label identifies it.
func ClassifyLinkPosition(sel *goquery.Selection) LinkPosition {
	for current := sel.Parent(); current.Length() > 0; current = current.Parent() {
		node := goquery.NodeName(current)
		if node == "body" || node == "html" {
			break
		}
		role, _ := current.Attr("role")
		class, _ := current.Attr("class")
		id, _ := current.Attr("id")
		itemtype, _ := current.Attr("itemtype")
		label, _ := current.Attr("aria-label")
		attrs := strings.ToLower(strings.Join([]string{node, role, class, id, itemtype, label}, " "))

		for _, rule := range positionRules {
			if rule.match(node, role, attrs) {
				return rule.position
			}
		}
	}
	return PositionUnknown
}

// IsBoilerplate reports whether p is a template region rather than content.
func (p LinkPosition) IsBoilerplate() bool {
	switch p {
	case PositionNavigation, PositionHeader, PositionFooter, PositionSidebar, PositionBreadcrumbs, PositionPagination:
		return true
	}
	return false
}
