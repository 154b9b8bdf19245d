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

package questions

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format is an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" or "csv", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or csv)", s)
	}
}

var csvHeader = []string{
	"ID",
	"Question",
	"Type",
	"Level",
	"Confidence",
	"Entity IDs",
	"Source Chunk IDs",
	"Source Page IDs",
}

// Export writes set to w in the given format.
func Export(w io.Writer, set *QuestionSet, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, set)
	case FormatCSV:
		return WriteCSV(w, set)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteJSON writes the whole set, indented.
func WriteJSON(w io.Writer, set *QuestionSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}
	return nil
}

// WriteCSV writes one row per question. Multi-valued columns are joined
// with "; " and fields are quoted per RFC 4180 when needed.
func WriteCSV(w io.Writer, set *QuestionSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, q := range set.Questions {
		row := []string{
			q.ID,
			q.QuestionText,
			string(q.QuestionType),
			string(q.Level),
			strconv.FormatFloat(q.AnswerConfidence, 'f', 2, 64),
			strings.Join(q.EntityIDs, "; "),
			strings.Join(q.SourceChunkIDs, "; "),
			strings.Join(q.SourcePageIDs, "; "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", q.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// GroupByType buckets questions by type, preserving order within a bucket.
func GroupByType(questions []Question) map[Type][]Question {
	grouped := make(map[Type][]Question)
	for _, q := range questions {
		grouped[q.QuestionType] = append(grouped[q.QuestionType], q)
	}
	return grouped
}

// GroupByLevel buckets questions by level, preserving order within a bucket.
func GroupByLevel(questions []Question) map[Level][]Question {
	grouped := make(map[Level][]Question)
	for _, q := range questions {
		grouped[q.Level] = append(grouped[q.Level], q)
	}
	return grouped
}
