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

// Package questions derives natural-language questions from a site report.
// Every question names the chunks, pages or entities it can be answered
// from; nothing outside the report is assumed.
package questions

import "time"

// Type is the kind of question.
type Type string

const (
	TypeDefinition   Type = "DEFINITION"
	TypeHowTo        Type = "HOW_TO"
	TypeCapability   Type = "CAPABILITY"
	TypeRelationship Type = "RELATIONSHIP"
	TypeCoverage     Type = "COVERAGE"
	TypeComparison   Type = "COMPARISON"
	TypeGap          Type = "GAP"
)

// Level is the granularity of the data a question is drawn from.
type Level string

const (
	LevelChunk  Level = "CHUNK"
	LevelPage   Level = "PAGE"
	LevelEntity Level = "ENTITY"
	LevelGraph  Level = "GRAPH"
)

// Levels lists the levels in generation order.
var Levels = []Level{LevelChunk, LevelPage, LevelEntity, LevelGraph}

type Question struct {
	ID               string   `json:"id"`
	QuestionText     string   `json:"questionText"`
	QuestionType     Type     `json:"questionType"`
	Level            Level    `json:"level"`
	EntityIDs        []string `json:"entityIds"`
	SourceChunkIDs   []string `json:"sourceChunkIds"`
	SourcePageIDs    []string `json:"sourcePageIds"`
	AnswerConfidence float64  `json:"answerConfidence"`
}

// Traceable reports whether q points at data it can be answered from.
// Graph-level questions are answered from the whole report.
func (q *Question) Traceable() bool {
	return len(q.SourceChunkIDs) > 0 ||
		len(q.SourcePageIDs) > 0 ||
		len(q.EntityIDs) > 0 ||
		q.Level == LevelGraph
}

// QuestionSet is the exported envelope: the questions plus what an answerer
// may and may not rely on.
type QuestionSet struct {
	Site           SiteRef        `json:"site"`
	ReportMetadata ReportMetadata `json:"reportMetadata"`
	Questions      []Question     `json:"questions"`
	Guidance       Guidance       `json:"guidance"`
}

type SiteRef struct {
	URL    string `json:"url"`
	Domain string `json:"domain"`
}

type ReportMetadata struct {
	GeneratedAt    time.Time `json:"generatedAt"`
	TotalPages     int       `json:"totalPages"`
	TotalEntities  int       `json:"totalEntities"`
	TotalQuestions int       `json:"totalQuestions"`
}

type Guidance struct {
	HowToAnswer    string   `json:"howToAnswer"`
	AllowedSources []string `json:"allowedSources"`
	Forbidden      []string `json:"forbidden"`
}

// DefaultGuidance is attached to every QuestionSet.
func DefaultGuidance() Guidance {
	return Guidance{
		HowToAnswer:    "Answer only from provided data in the site report. Do not use external knowledge or make assumptions.",
		AllowedSources: []string{"pages", "chunks", "entities", "relationships"},
		Forbidden:      []string{"external knowledge", "assumptions", "speculation"},
	}
}
