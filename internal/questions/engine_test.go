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
	"testing"
	"time"

	"github.com/agentberlin/sitegraph/internal/report"
	"github.com/agentberlin/sitegraph/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *report.SiteReport {
	return &report.SiteReport{
		Site: report.SiteInfo{ID: "s1", URL: "https://example.com/", Domain: "example.com"},
		Pages: []report.PageInfo{
			{ID: "p1", URL: "https://example.com/", Title: "Acme Home", EntityCount: 2},
			{ID: "p2", URL: "https://example.com/contact", Title: "Contact"},
			{ID: "p3", URL: "https://example.com/x", Title: "X"},
		},
		Chunks: []report.ChunkInfo{
			{
				ID: "c1", PageID: "p1", PageURL: "https://example.com/",
				HeadingPath: []string{"Acme", "Launch Services"},
				Text:        "First we inspect your payload, then we integrate it with the launch vehicle.",
			},
			{ID: "c2", PageID: "p1", HeadingPath: []string{"Acme"}, Text: "Too short to ask about."},
			{ID: "c3", PageID: "unknown", HeadingPath: []string{"Orphan heading"}, Text: "This chunk belongs to a page that is not part of the report at all."},
			{ID: "c4", PageID: "p2", HeadingPath: []string{"Opening Hours"}, Text: "Our office is open on weekdays and closed during public holidays."},
		},
		Entities: []report.EntityInfo{
			{ID: "e1", Name: "Acme Corp", Type: store.EntityOrganization, RelationsCount: 2,
				PagesMentioned: []string{"https://example.com/", "https://example.com/contact"}},
			{ID: "e2", Name: "Beta Industries", Type: store.EntityOrganization},
			{ID: "e3", Name: "Orbital Launch", Type: store.EntityService, RelationsCount: 1,
				PagesMentioned: []string{"https://example.com/"}},
			{ID: "e4", Name: "Pricing", Type: store.EntityTopic},
		},
		Relationships: []report.RelationshipInfo{{ID: "r1", FromEntityID: "e3", ToEntityID: "e1", RelationType: "offered_by"}},
	}
}

func find(t *testing.T, set *QuestionSet, text string) Question {
	t.Helper()
	for _, q := range set.Questions {
		if q.QuestionText == text {
			return q
		}
	}
	t.Fatalf("question %q not generated", text)
	return Question{}
}

func TestGenerate(t *testing.T) {
	engine := NewEngine(sampleReport(), nil, nil)
	engine.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	set := engine.Generate()

	assert.Equal(t, SiteRef{URL: "https://example.com/", Domain: "example.com"}, set.Site)
	assert.Equal(t, 3, set.ReportMetadata.TotalPages)
	assert.Equal(t, 4, set.ReportMetadata.TotalEntities)
	assert.Equal(t, len(set.Questions), set.ReportMetadata.TotalQuestions)
	assert.Equal(t, DefaultGuidance(), set.Guidance)

	chunkDef := find(t, set, `What does this section explain about "Launch Services"?`)
	assert.Equal(t, LevelChunk, chunkDef.Level)
	assert.Equal(t, []string{"c1"}, chunkDef.SourceChunkIDs)
	assert.Equal(t, []string{"p1"}, chunkDef.SourcePageIDs)
	assert.InDelta(t, 0.8, chunkDef.AnswerConfidence, 1e-9)

	howTo := find(t, set, "How does this process work according to the content?")
	assert.Equal(t, TypeHowTo, howTo.QuestionType)
	assert.Equal(t, []string{"c1"}, howTo.SourceChunkIDs)

	find(t, set, `What does this section explain about "Opening Hours"?`)
	for _, q := range set.Questions {
		assert.NotContains(t, q.SourceChunkIDs, "c2", "short chunks are skipped")
		assert.NotContains(t, q.SourceChunkIDs, "c3", "chunks of unknown pages are skipped")
		assert.NotContains(t, q.QuestionText, `"X"`, "titles under 3 characters are skipped")
	}

	purpose := find(t, set, `What is the purpose of the page titled "Acme Home"?`)
	assert.Equal(t, TypeDefinition, purpose.QuestionType)
	find(t, set, `What is the purpose of the page titled "Contact"?`)
	find(t, set, `What topics are covered on "Acme Home"?`)

	acmeDef := find(t, set, "What is Acme Corp?")
	assert.Equal(t, []string{"e1"}, acmeDef.EntityIDs)
	assert.Equal(t, []string{"p1", "p2"}, acmeDef.SourcePageIDs)
	assert.InDelta(t, 1.0, acmeDef.AnswerConfidence, 1e-9, "boosts are capped")

	capability := find(t, set, "What does Acme Corp offer or provide?")
	assert.InDelta(t, 0.95, capability.AnswerConfidence, 1e-9)
	find(t, set, "How is Acme Corp related to other entities on the site?")
	find(t, set, "What does Orbital Launch offer or provide?")

	for _, q := range set.Questions {
		assert.NotEqual(t, "What is Pricing?", q.QuestionText, "topics get no definition question")
	}

	orgs := find(t, set, "What organizations are mentioned on this website?")
	assert.Equal(t, []string{"e1", "e2"}, orgs.EntityIDs)
	assert.InDelta(t, 1.0, orgs.AnswerConfidence, 1e-9)
	find(t, set, "What are the key relationships between entities on this site?")
	gap := find(t, set, "What pages have limited structured information?")
	assert.Equal(t, []string{"p2", "p3"}, gap.SourcePageIDs)
	assert.InDelta(t, 0.95, gap.AnswerConfidence, 1e-9)
	comparison := find(t, set, "What organizations are mentioned and how do they differ?")
	assert.Equal(t, TypeComparison, comparison.QuestionType)

	seen := map[string]bool{}
	for i, q := range set.Questions {
		assert.True(t, q.Traceable(), q.QuestionText)
		assert.False(t, seen[q.ID], "ids are unique")
		seen[q.ID] = true
		assert.LessOrEqual(t, q.AnswerConfidence, 1.0)
		for _, other := range set.Questions[i+1:] {
			assert.LessOrEqual(t, Similarity(q.QuestionText, other.QuestionText), similarityThreshold,
				"%q vs %q", q.QuestionText, other.QuestionText)
		}
	}
}

func TestGenerateEmptyReport(t *testing.T) {
	set := NewEngine(&report.SiteReport{}, nil, nil).Generate()
	assert.NotNil(t, set.Questions)
	assert.Empty(t, set.Questions)
	assert.Zero(t, set.ReportMetadata.TotalQuestions)
}

func TestDeduplicate(t *testing.T) {
	e := NewEngine(&report.SiteReport{}, nil, nil)
	e.add(Question{QuestionText: "what is the acme rocket launch service", Level: LevelGraph, AnswerConfidence: 0.8})
	e.add(Question{QuestionText: "what is the acme rocket launch service today", Level: LevelGraph, AnswerConfidence: 0.9})
	e.add(Question{QuestionText: "Who founded the company?", Level: LevelGraph, AnswerConfidence: 0.7})
	e.add(Question{QuestionText: "Who founded the company?", Level: LevelGraph, AnswerConfidence: 0.7})

	removed := e.deduplicate()
	assert.Equal(t, 2, removed)

	var ids []string
	for _, q := range e.questions {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"q-2", "q-3"}, ids, "lower confidence loses, the later one loses ties")
}

func TestTraceabilityGate(t *testing.T) {
	e := NewEngine(&report.SiteReport{}, nil, nil)
	e.add(Question{QuestionText: "Untraceable page question", Level: LevelPage, AnswerConfidence: 0.9})
	e.add(Question{QuestionText: "Graph question", Level: LevelGraph, AnswerConfidence: 0.9})
	e.add(Question{QuestionText: "Entity question", Level: LevelEntity, EntityIDs: []string{"e1"}, AnswerConfidence: 0.9})

	require.Len(t, e.questions, 2)
	assert.Equal(t, "q-2", e.questions[0].ID, "ids are consumed by rejected questions too")
	assert.Equal(t, []string{}, e.questions[0].SourcePageIDs)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("What is Acme?", "what  IS acme?"))
	assert.Equal(t, 0.0, Similarity("alpha beta", "gamma delta"))
	assert.InDelta(t, 0.5, Similarity("a b c", "a b d"), 1e-9)
	assert.Equal(t, 1.0, Similarity("", ""))
}

func TestHasProcessIndicators(t *testing.T) {
	assert.True(t, hasProcessIndicators("Follow these steps to get started"))
	assert.True(t, hasProcessIndicators("In order to launch, fuel up."))
	assert.False(t, hasProcessIndicators("Rockets are tall."))
}
