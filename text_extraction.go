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
	"golang.org/x/net/html"
)

// readableText returns the main article text of doc: noise is filtered out,
// then the first of article, main or [role=main] wins, else the paragraph
// container with the best stopword score. Returns "" when nothing qualifies.
// doc is modified.
func readableText(doc *goquery.Document) string {
	root := doc.Selection
	root.Find("script, style, noscript, template").Remove()
	defaultContentFilters.Apply(root)

	for _, sel := range []string{"article", "main", "[role='main']"} {
		if s := root.Find(sel).First(); s.Length() > 0 {
			if text := spacedText(s); text != "" {
				return text
			}
		}
	}

	if best := bestContentNode(root); best != nil {
		return spacedText(best)
	}
	return ""
}

// bestContentNode scores each paragraph's parent (full score) and
// grandparent (half score) and returns the highest scoring container.
func bestContentNode(root *goquery.Selection) *goquery.Selection {
	density := NewLinkDensityFilter()
	scores := make(map[*html.Node]int)
	var order []*html.Node

	add := func(n *html.Node, score int) {
		if n == nil || n.Type != html.ElementNode {
			return
		}
		if _, ok := scores[n]; !ok {
			order = append(order, n)
		}
		scores[n] += score
	}

	root.Find("p, pre, td").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if countStopwords(text) < 2 || density.isHighLinkDensity(s) {
			return
		}
		score := scoreText(text)
		parent := s.Get(0).Parent
		add(parent, score)
		if parent != nil {
			add(parent.Parent, score/2)
		}
	})

	var best *html.Node
	bestScore := 0
	for _, n := range order {
		if scores[n] > bestScore {
			best, bestScore = n, scores[n]
		}
	}
	if best == nil {
		return nil
	}
	return goquery.NewDocumentFromNode(best).Selection
}

// fallbackText is the body text with page chrome removed and whitespace
// collapsed. doc is modified.
func fallbackText(doc *goquery.Document) string {
	body := doc.Find("body")
	body.Find("script, style, nav, header, footer, aside").Remove()
	return collapseWhitespace(body.Text())
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// spacedText concatenates the text under sel, separating block elements so
// that "<p>a</p><p>b</p>" reads "a b" rather than "ab".
func spacedText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteByte(' ')
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return collapseWhitespace(b.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
