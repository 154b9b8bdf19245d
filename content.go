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
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Headings holds the trimmed text of a page's h1, h2 and h3 elements in
// document order.
type Headings struct {
	H1 []string `json:"h1"`
	H2 []string `json:"h2"`
	H3 []string `json:"h3"`
}

// PageMetadata is the structured part of a page kept alongside its text.
type PageMetadata struct {
	Headings Headings      `json:"headings"`
	JSONLD   []interface{} `json:"jsonLd"`
	Author   string        `json:"author,omitempty"`
	Language string        `json:"language,omitempty"`
}

// PageContent is everything extracted from one HTML document.
type PageContent struct {
	Title           string
	MetaDescription string
	CanonicalURL    string
	Text            string
	Metadata        PageMetadata
	Links           []Link
}

// ExtractContent parses html fetched from pageURL. Malformed JSON-LD blocks
// are skipped and reported through the returned slice of non-fatal errors;
// when no readable article text is found the chrome-stripped body text is
// used instead.
func ExtractContent(rawHTML, pageURL, baseDomain string) (*PageContent, []error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return &PageContent{}, []error{&ExtractionError{Stage: "parse", Cause: err}}
	}

	var warnings []error
	content := &PageContent{
		Title:           strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: attrTrim(doc.Find(`meta[name="description"]`), "content"),
		CanonicalURL:    attrTrim(doc.Find(`link[rel="canonical"]`), "href"),
	}

	content.Metadata.Headings = Headings{
		H1: headingTexts(doc, "h1"),
		H2: headingTexts(doc, "h2"),
		H3: headingTexts(doc, "h3"),
	}

	content.Metadata.JSONLD, warnings = jsonLDBlocks(doc)
	content.Metadata.Author = attrTrim(doc.Find(`meta[name="author"]`), "content")
	content.Metadata.Language = attrTrim(doc.Find("html"), "lang")
	if content.Metadata.Language == "" {
		content.Metadata.Language = attrTrim(doc.Find(`meta[http-equiv="content-language"]`), "content")
	}

	if baseDomain != "" {
		content.Links = ExtractLinks(doc, pageURL, baseDomain)
	}

	// The remaining passes mutate their documents.
	if readableDoc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML)); err == nil {
		content.Text = readableText(readableDoc)
	}
	if content.Text == "" {
		content.Text = fallbackText(doc)
	}

	return content, warnings
}

func attrTrim(sel *goquery.Selection, name string) string {
	v, _ := sel.First().Attr(name)
	return strings.TrimSpace(v)
}

func headingTexts(doc *goquery.Document, tag string) []string {
	out := []string{}
	doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// jsonLDBlocks decodes every application/ld+json script. Blocks that fail to
// parse are skipped.
func jsonLDBlocks(doc *goquery.Document) ([]interface{}, []error) {
	blocks := []interface{}{}
	var errs []error
	if len(doc.Nodes) == 0 {
		return blocks, nil
	}
	for _, node := range htmlquery.Find(doc.Nodes[0], `//script[@type='application/ld+json']`) {
		raw := strings.TrimSpace(htmlquery.InnerText(node))
		if raw == "" {
			continue
		}
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			errs = append(errs, &ExtractionError{Stage: "json-ld", Cause: err})
			continue
		}
		blocks = append(blocks, v)
	}
	return blocks, errs
}

// ResolveCanonical resolves a canonical href against pageURL and normalizes
// it. An empty href yields "".
func ResolveCanonical(pageURL, href string) string {
	if href == "" {
		return ""
	}
	return NormalizeURL(ResolveURL(pageURL, href))
}
