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

// Noise filters applied before the readable-text pass. The patterns follow
// GoOse's cleaner heuristics.

package sitegraph

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ContentFilter removes non-content nodes from root in place.
type ContentFilter interface {
	Filter(root *goquery.Selection)
	Name() string
}

// FilterChain runs filters in order.
type FilterChain []ContentFilter

func (fc FilterChain) Apply(root *goquery.Selection) {
	for _, f := range fc {
		f.Filter(root)
	}
}

var noiseAttrPattern = regexp.MustCompile(`(?i)` +
	`comentario|footer|^side$|^side_|^widget$|[_-]ads?[_-]?|^ad[s]?[ _-]|^banner|` +
	`breadcrumbs|byline|^caption$|carousel|comment|cookie|^date$|facebook|figcaption|` +
	`footnote|header|hidden|menu|navigation|navbar|^nav[_-]|popup|recommend|related|` +
	`retweet|rss|search[_-]|share[_-]|sidebar|social|sponsor|subscribe|subscription|` +
	`tags|teaser|timestamp|tooltip|twitter|newsletter|signin|sign-in|settings`)

var keepAttrPattern = regexp.MustCompile(`(?i)\b(article|content|story|post|entry|main|body)\b`)

// NoisePatternFilter drops elements whose class or id names a known
// boilerplate widget, unless the same attribute also names content.
type NoisePatternFilter struct{}

func (NoisePatternFilter) Name() string { return "noise-pattern" }

func (NoisePatternFilter) Filter(root *goquery.Selection) {
	root.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"class", "id"} {
			v, ok := s.Attr(attr)
			if !ok || v == "" {
				continue
			}
			if keepAttrPattern.MatchString(v) {
				return
			}
			if noiseAttrPattern.MatchString(v) {
				s.Remove()
				return
			}
		}
	})
}

var navPhrases = []string{
	"sign in", "sign out", "subscribe", "newsletter", "my account",
	"terms of use", "privacy policy", "cookie settings", "help center",
	"link copied", "see all", "min read", "share this",
}

// NavigationTextFilter drops short containers whose text is a utility phrase.
type NavigationTextFilter struct {
	MaxTextLength int
}

func (NavigationTextFilter) Name() string { return "navigation-text" }

func (f NavigationTextFilter) Filter(root *goquery.Selection) {
	limit := f.MaxTextLength
	if limit <= 0 {
		limit = 100
	}
	root.Find("div, span, li, ul").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if text == "" || len(text) >= limit {
			return
		}
		for _, phrase := range navPhrases {
			if strings.Contains(text, phrase) {
				s.Remove()
				return
			}
		}
	})
}

// LinkDensityFilter drops link farms: containers whose words are mostly link text.
type LinkDensityFilter struct {
	MaxLinkRatio float64
	MinLinks     int
}

func NewLinkDensityFilter() LinkDensityFilter {
	return LinkDensityFilter{MaxLinkRatio: 0.5, MinLinks: 3}
}

func (LinkDensityFilter) Name() string { return "link-density" }

func (f LinkDensityFilter) Filter(root *goquery.Selection) {
	root.Find("div, section, aside, ul, ol").Each(func(_ int, s *goquery.Selection) {
		if f.isHighLinkDensity(s) {
			s.Remove()
		}
	})
}

func (f LinkDensityFilter) isHighLinkDensity(s *goquery.Selection) bool {
	links := s.Find("a")
	if links.Length() < f.MinLinks {
		return false
	}
	words := len(strings.Fields(s.Text()))
	if words == 0 {
		return true
	}
	linkWords := 0
	links.Each(func(_ int, a *goquery.Selection) {
		linkWords += len(strings.Fields(a.Text()))
	})
	ratio := float64(linkWords) / float64(words)
	return ratio > f.MaxLinkRatio || (links.Length() > 5 && ratio > 0.3)
}

var stopwords = func() map[string]bool {
	m := make(map[string]bool)
	for _, w := range strings.Fields(`a about above after again against all also am an and another any are as at
		be because been before being below between both but by can could did do does doing down during
		each even few for from further get had has have having he her here hers him his how i if in into
		is it its just like make many me might more most much must my never no nor not now of off on once
		only or other our ours out over own said same she should so some still such than that the their
		them then there these they this those through to too under until up upon us very was we were what
		when where which while who whom why will with would you your yours`) {
		m[w] = true
	}
	return m
}()

// countStopwords counts common English function words in text. Prose scores
// high, menus and labels score low.
func countStopwords(text string) int {
	n := 0
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if stopwords[strings.Trim(w, ".,!?;:\"'()[]{}-")] {
			n++
		}
	}
	return n
}

func scoreText(text string) int {
	score := countStopwords(text)
	if len(text) > 100 {
		score += len(text) / 100
	}
	return score
}

var defaultContentFilters = FilterChain{
	NoisePatternFilter{},
	NavigationTextFilter{},
	NewLinkDensityFilter(),
}
