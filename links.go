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

// Link is an in-domain hyperlink found on a page.
type Link struct {
	URL      string
	Text     string
	Position LinkPosition
}

var skippedHrefPrefixes = []string{"mailto:", "tel:", "javascript:", "#"}

// ExtractLinks returns the unique, normalized in-domain links of doc in
// document order. Non-navigational hrefs (mailto, tel, javascript, bare
// fragments) and links to other hosts are dropped.
func ExtractLinks(doc *goquery.Document, baseURL, baseDomain string) []Link {
	seen := make(map[string]bool)
	var links []Link

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		for _, prefix := range skippedHrefPrefixes {
			if strings.HasPrefix(href, prefix) {
				return
			}
		}

		absolute := ResolveURL(baseURL, href)
		if !IsValidURL(absolute) || !isInternalHost(ExtractDomain(absolute), baseDomain) {
			return
		}

		normalized := NormalizeURL(absolute)
		if seen[normalized] {
			return
		}
		seen[normalized] = true
		links = append(links, Link{
			URL:      normalized,
			Text:     strings.TrimSpace(a.Text()),
			Position: ClassifyLinkPosition(a),
		})
	})
	return links
}

// LinkURLs returns just the URLs of links.
func LinkURLs(links []Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.URL
	}
	return out
}
