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
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet() *QuestionSet {
	return &QuestionSet{
		Site: SiteRef{URL: "https://example.com/", Domain: "example.com"},
		ReportMetadata: ReportMetadata{
			GeneratedAt:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			TotalPages:     2,
			TotalEntities:  2,
			TotalQuestions: 2,
		},
		Questions: []Question{
			{
				ID: "q-1", QuestionText: `What is "Acme, Inc"?`, QuestionType: TypeDefinition, Level: LevelEntity,
				EntityIDs: []string{"e1", "e2"}, SourceChunkIDs: []string{}, SourcePageIDs: []string{"p1"},
				AnswerConfidence: 0.95,
			},
			{
				ID: "q-2", QuestionText: "What pages have limited structured information?", QuestionType: TypeGap, Level: LevelGraph,
				EntityIDs: []string{}, SourceChunkIDs: []string{}, SourcePageIDs: []string{"p1", "p2"},
				AnswerConfidence: 1,
			},
		},
		Guidance: DefaultGuidance(),
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSet()))

	expected := "ID,Question,Type,Level,Confidence,Entity IDs,Source Chunk IDs,Source Page IDs\n" +
		`q-1,"What is ""Acme, Inc""?",DEFINITION,ENTITY,0.95,e1; e2,,p1` + "\n" +
		"q-2,What pages have limited structured information?,GAP,GRAPH,1.00,,,p1; p2\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleSet()))
	assert.Contains(t, buf.String(), "\n  \"site\": {")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	questions := decoded["questions"].([]interface{})
	require.Len(t, questions, 2)
	first := questions[0].(map[string]interface{})
	assert.Equal(t, "DEFINITION", first["questionType"])
	assert.Equal(t, []interface{}{}, first["sourceChunkIds"])
	guidance := decoded["guidance"].(map[string]interface{})
	assert.Equal(t, []interface{}{"pages", "chunks", "entities", "relationships"}, guidance["allowedSources"])
	meta := decoded["reportMetadata"].(map[string]interface{})
	assert.Equal(t, "2025-01-02T03:04:05Z", meta["generatedAt"])
}

func TestExportDispatch(t *testing.T) {
	var jsonBuf, csvBuf bytes.Buffer
	require.NoError(t, Export(&jsonBuf, sampleSet(), FormatJSON))
	require.NoError(t, Export(&csvBuf, sampleSet(), FormatCSV))
	assert.True(t, json.Valid(jsonBuf.Bytes()))
	assert.Contains(t, csvBuf.String(), "ID,Question")
	assert.Error(t, Export(&bytes.Buffer{}, sampleSet(), Format("xml")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestGrouping(t *testing.T) {
	qs := sampleSet().Questions
	byType := GroupByType(qs)
	assert.Len(t, byType[TypeDefinition], 1)
	assert.Len(t, byType[TypeGap], 1)

	byLevel := GroupByLevel(qs)
	assert.Equal(t, "q-1", byLevel[LevelEntity][0].ID)
	assert.Equal(t, "q-2", byLevel[LevelGraph][0].ID)
	assert.Empty(t, byLevel[LevelChunk])
}
