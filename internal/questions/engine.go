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
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agentberlin/sitegraph/internal/logger"
	"github.com/agentberlin/sitegraph/internal/metrics"
	"github.com/agentberlin/sitegraph/internal/report"
	"github.com/agentberlin/sitegraph/internal/store"
)

const (
	minChunkLength = 50
	minTopicLength = 4
	minTitleLength = 3

	// similarityThreshold is the word overlap above which two questions
	// are considered duplicates.
	similarityThreshold = 0.7
	sourceBoost         = 0.05
)

// processIndicators mark text that describes a procedure.
var processIndicators = []string{
	"how to",
	"step",
	"first",
	"then",
	"next",
	"finally",
	"process",
	"procedure",
	"follow these",
	"in order to",
}

// Engine generates questions from one report. An Engine is single use.
type Engine struct {
	report    *report.SiteReport
	log       *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	questions []Question
	counter   int

	pagesByID  map[string]*report.PageInfo
	pageIDsURL map[string]string
}

func NewEngine(r *report.SiteReport, log *logger.Logger, m *metrics.Metrics) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{
		report:     r,
		log:        log.WithComponent("questions"),
		metrics:    m,
		now:        time.Now,
		pagesByID:  make(map[string]*report.PageInfo, len(r.Pages)),
		pageIDsURL: make(map[string]string, len(r.Pages)),
	}
	for i := range r.Pages {
		p := &r.Pages[i]
		e.pagesByID[p.ID] = p
		if _, ok := e.pageIDsURL[p.URL]; !ok {
			e.pageIDsURL[p.URL] = p.ID
		}
	}
	return e
}

// Generate produces the question set: chunk, page, entity and graph
// questions in that order, near-duplicates removed, confidences boosted by
// source breadth.
func (e *Engine) Generate() *QuestionSet {
	e.log.Info("Generating questions")

	e.chunkQuestions()
	e.pageQuestions()
	e.entityQuestions()
	e.graphQuestions()

	removed := e.deduplicate()
	e.score()

	for level, qs := range GroupByLevel(e.questions) {
		e.metrics.QuestionsGenerated(string(level), len(qs))
	}
	e.log.StatsEvent("Question generation complete", map[string]interface{}{
		"questions":          len(e.questions),
		"duplicates_removed": removed,
	})

	questions := e.questions
	if questions == nil {
		questions = []Question{}
	}
	return &QuestionSet{
		Site: SiteRef{URL: e.report.Site.URL, Domain: e.report.Site.Domain},
		ReportMetadata: ReportMetadata{
			GeneratedAt:    e.now().UTC(),
			TotalPages:     len(e.report.Pages),
			TotalEntities:  len(e.report.Entities),
			TotalQuestions: len(questions),
		},
		Questions: questions,
		Guidance:  DefaultGuidance(),
	}
}

func (e *Engine) chunkQuestions() {
	for _, chunk := range e.report.Chunks {
		if utf8.RuneCountInString(chunk.Text) < minChunkLength {
			continue
		}
		page, ok := e.pagesByID[chunk.PageID]
		if !ok {
			continue
		}

		if n := len(chunk.HeadingPath); n > 0 {
			topic := chunk.HeadingPath[n-1]
			if utf8.RuneCountInString(topic) >= minTopicLength {
				e.add(Question{
					QuestionText:     fmt.Sprintf(`What does this section explain about "%s"?`, topic),
					QuestionType:     TypeDefinition,
					Level:            LevelChunk,
					SourceChunkIDs:   []string{chunk.ID},
					SourcePageIDs:    []string{page.ID},
					AnswerConfidence: 0.8,
				})
			}
		}

		if hasProcessIndicators(chunk.Text) {
			e.add(Question{
				QuestionText:     "How does this process work according to the content?",
				QuestionType:     TypeHowTo,
				Level:            LevelChunk,
				SourceChunkIDs:   []string{chunk.ID},
				SourcePageIDs:    []string{page.ID},
				AnswerConfidence: 0.7,
			})
		}
	}
}

func (e *Engine) pageQuestions() {
	for _, page := range e.report.Pages {
		if utf8.RuneCountInString(page.Title) < minTitleLength {
			continue
		}

		e.add(Question{
			QuestionText:     fmt.Sprintf(`What is the purpose of the page titled "%s"?`, page.Title),
			QuestionType:     TypeDefinition,
			Level:            LevelPage,
			SourcePageIDs:    []string{page.ID},
			AnswerConfidence: 0.9,
		})

		if page.EntityCount > 0 {
			e.add(Question{
				QuestionText:     fmt.Sprintf(`What topics are covered on "%s"?`, page.Title),
				QuestionType:     TypeCoverage,
				Level:            LevelPage,
				SourcePageIDs:    []string{page.ID},
				AnswerConfidence: 0.85,
			})
		}
	}
}

func (e *Engine) entityQuestions() {
	for _, entity := range e.report.Entities {
		pageIDs := e.pageIDs(entity.PagesMentioned)
		ids := []string{entity.ID}

		switch entity.Type {
		case store.EntityOrganization, store.EntityService, store.EntityProduct:
			e.add(Question{
				QuestionText:     fmt.Sprintf("What is %s?", entity.Name),
				QuestionType:     TypeDefinition,
				Level:            LevelEntity,
				EntityIDs:        ids,
				SourcePageIDs:    pageIDs,
				AnswerConfidence: 0.9,
			})
		}

		switch entity.Type {
		case store.EntityOrganization, store.EntityService:
			e.add(Question{
				QuestionText:     fmt.Sprintf("What does %s offer or provide?", entity.Name),
				QuestionType:     TypeCapability,
				Level:            LevelEntity,
				EntityIDs:        ids,
				SourcePageIDs:    pageIDs,
				AnswerConfidence: 0.85,
			})
		}

		if entity.RelationsCount > 0 {
			e.add(Question{
				QuestionText:     fmt.Sprintf("How is %s related to other entities on the site?", entity.Name),
				QuestionType:     TypeRelationship,
				Level:            LevelEntity,
				EntityIDs:        ids,
				SourcePageIDs:    pageIDs,
				AnswerConfidence: 0.8,
			})
		}
	}
}

func (e *Engine) graphQuestions() {
	var types []string
	byType := make(map[string][]string)
	for _, entity := range e.report.Entities {
		if _, ok := byType[entity.Type]; !ok {
			types = append(types, entity.Type)
		}
		byType[entity.Type] = append(byType[entity.Type], entity.ID)
	}

	for _, typ := range types {
		if ids := byType[typ]; len(ids) > 1 {
			e.add(Question{
				QuestionText:     fmt.Sprintf("What %ss are mentioned on this website?", strings.ToLower(typ)),
				QuestionType:     TypeCoverage,
				Level:            LevelGraph,
				EntityIDs:        ids,
				AnswerConfidence: 0.95,
			})
		}
	}

	if len(e.report.Relationships) > 0 {
		e.add(Question{
			QuestionText:     "What are the key relationships between entities on this site?",
			QuestionType:     TypeRelationship,
			Level:            LevelGraph,
			AnswerConfidence: 0.85,
		})
	}

	var bare []string
	for _, page := range e.report.Pages {
		if page.EntityCount == 0 {
			bare = append(bare, page.ID)
		}
	}
	if len(bare) > 0 {
		e.add(Question{
			QuestionText:     "What pages have limited structured information?",
			QuestionType:     TypeGap,
			Level:            LevelGraph,
			SourcePageIDs:    bare,
			AnswerConfidence: 0.9,
		})
	}

	if orgs := byType[store.EntityOrganization]; len(orgs) > 1 {
		e.add(Question{
			QuestionText:     "What organizations are mentioned and how do they differ?",
			QuestionType:     TypeComparison,
			Level:            LevelGraph,
			EntityIDs:        orgs,
			AnswerConfidence: 0.75,
		})
	}
}

// add assigns the next id and keeps q if it is traceable.
func (e *Engine) add(q Question) {
	e.counter++
	q.ID = fmt.Sprintf("q-%d", e.counter)
	if q.EntityIDs == nil {
		q.EntityIDs = []string{}
	}
	if q.SourceChunkIDs == nil {
		q.SourceChunkIDs = []string{}
	}
	if q.SourcePageIDs == nil {
		q.SourcePageIDs = []string{}
	}

	if !q.Traceable() {
		e.log.WithField("question", q.QuestionText).Warn("Question failed traceability check, skipping")
		return
	}
	e.questions = append(e.questions, q)
}

// deduplicate drops the lower-confidence question of every similar pair,
// the later one on ties, and returns how many were dropped.
func (e *Engine) deduplicate() int {
	removed := make([]bool, len(e.questions))
	count := 0
	for i := range e.questions {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(e.questions); j++ {
			if removed[j] {
				continue
			}
			if Similarity(e.questions[i].QuestionText, e.questions[j].QuestionText) <= similarityThreshold {
				continue
			}
			count++
			if e.questions[i].AnswerConfidence >= e.questions[j].AnswerConfidence {
				removed[j] = true
			} else {
				removed[i] = true
				break
			}
		}
	}

	kept := e.questions[:0]
	for i, q := range e.questions {
		if !removed[i] {
			kept = append(kept, q)
		}
	}
	e.questions = kept
	return count
}

func (e *Engine) score() {
	for i := range e.questions {
		q := &e.questions[i]
		confidence := q.AnswerConfidence
		if len(q.SourceChunkIDs) > 1 {
			confidence += sourceBoost
		}
		if len(q.SourcePageIDs) > 1 {
			confidence += sourceBoost
		}
		if len(q.EntityIDs) > 0 {
			confidence += sourceBoost
		}
		if confidence > 1.0 {
			confidence = 1.0
		}
		q.AnswerConfidence = confidence
	}
}

func (e *Engine) pageIDs(urls []string) []string {
	ids := make([]string, 0, len(urls))
	for _, u := range urls {
		if id, ok := e.pageIDsURL[u]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Similarity is the Jaccard index of the lowercased, whitespace-separated
// word sets of a and b.
func Similarity(a, b string) float64 {
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
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

func hasProcessIndicators(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range processIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
