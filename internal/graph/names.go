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
	"regexp"
	"strings"
)

// MergeThreshold is the word-Jaccard similarity at which two names are merged.
const MergeThreshold = 0.8

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nameNoise     = regexp.MustCompile(`[^\w\s&'-]`)
)

// NormalizeEntityName trims, collapses whitespace, drops punctuation other
// than & ' and -, and lowercases.
func NormalizeEntityName(name string) string {
	name = strings.TrimSpace(name)
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = nameNoise.ReplaceAllString(name, "")
	return strings.ToLower(name)
}

// WordJaccard is |A∩B| / |A∪B| over the space-separated words of a and b.
func WordJaccard(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 1
	}

	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

// ShouldMerge reports whether two names refer to the same entity: equal or
// one containing the other once normalized, or word-Jaccard >= MergeThreshold.
func ShouldMerge(a, b string) bool {
	na := NormalizeEntityName(a)
	nb := NormalizeEntityName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return WordJaccard(na, nb) >= MergeThreshold
}

// uniqueNames dedupes names by normalized form, keeping the first spelling seen.
func uniqueNames(names ...string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := NormalizeEntityName(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// longestName returns the longest name; the earliest wins ties.
func longestName(names []string) string {
	best := ""
	for _, n := range names {
		if len(n) > len(best) {
			best = n
		}
	}
	return best
}
