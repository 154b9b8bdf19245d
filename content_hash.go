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
	"fmt"
	"regexp"

	"github.com/cespare/xxhash/v2"
)

// Volatile fragments that change between otherwise identical renders.
var volatileTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})`),
	regexp.MustCompile(`\d+\s+(?:second|minute|hour|day|week|month|year)s?\s+ago`),
	regexp.MustCompile(`(?i)(?:just\s+now|moments?\s+ago)`),
}

// NormalizeForHash collapses whitespace and strips timestamps and relative
// times so that cosmetic differences do not register as content changes.
func NormalizeForHash(text string) string {
	for _, p := range volatileTextPatterns {
		text = p.ReplaceAllString(text, "")
	}
	return collapseWhitespace(text)
}

// HashText returns the content hash stored on a page: xxhash64 of the
// normalized text as 16 hex digits.
func HashText(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(NormalizeForHash(text)))
}
