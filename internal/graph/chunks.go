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
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// MaxChunksPerPage caps the chunks kept for one page.
	MaxChunksPerPage = 20
	minChunkLength   = 50
)

// Chunk is a passage of text with the headings it sits under.
type Chunk struct {
	HeadingPath []string
	Text        string
	Position    int
}

// ExtractChunks walks the page body in document order, tracking the active
// H1-H3 path, and emits every p, div or section whose own text exceeds 50
// characters. Scripts, styles and page chrome are removed from doc.
func ExtractChunks(doc *goquery.Document) []Chunk {
	doc.Find("script, style, nav, header, footer, aside").Remove()

	var (
		chunks   []Chunk
		headings []string
	)

	doc.Find("body").Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		tag := goquery.NodeName(el)

		switch tag {
		case "h1", "h2", "h3":
			level := int(tag[1] - '0')
			if len(headings) > level-1 {
				headings = headings[:level-1]
			}
			for len(headings) < level-1 {
				headings = append(headings, "")
			}
			headings = append(headings, strings.TrimSpace(el.Text()))

		case "p", "div", "section":
			text := strings.TrimSpace(ownText(el))
			if utf8.RuneCountInString(text) > minChunkLength {
				chunks = append(chunks, Chunk{
					HeadingPath: nonEmpty(headings),
					Text:        text,
					Position:    len(chunks),
				})
			}
		}

		return len(chunks) < MaxChunksPerPage
	})

	return chunks
}

// ownText concatenates the element's direct text nodes, ignoring child elements.
func ownText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
