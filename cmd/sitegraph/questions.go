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

package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/agentberlin/sitegraph/internal/questions"
	"github.com/spf13/cobra"
)

func newQuestionsCmd(root *rootOptions) *cobra.Command {
	var siteRef, output, format string
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate questions answerable from a site's content",
		Long: `Questions derives chunk, page, entity and graph level questions from the
site report. Every question is traceable to the chunks, pages or entities
it was generated from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := questions.ParseFormat(format)
			if err != nil {
				return err
			}
			e, err := setup(cmd.Context(), root, noBrowser)
			if err != nil {
				return err
			}
			defer e.close()

			rep, err := e.siteReport(cmd, siteRef)
			if err != nil {
				return err
			}
			set := questions.NewEngine(rep, e.log, e.metrics).Generate()
			if err := writeOutput(cmd, output, func(w io.Writer) error {
				return questions.Export(w, set, f)
			}); err != nil {
				return err
			}
			if output != "" {
				printQuestionSummary(cmd.OutOrStdout(), set, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&siteRef, "site", "s", "", "Site id or domain")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("site")
	return cmd
}

func printQuestionSummary(w io.Writer, set *questions.QuestionSet, path string) {
	fmt.Fprintf(w, "Wrote %d questions to %s\n", len(set.Questions), path)

	byLevel := questions.GroupByLevel(set.Questions)
	fmt.Fprintln(w, "\nBy level:")
	for _, level := range questions.Levels {
		fmt.Fprintf(w, "  %-8s %d\n", level, len(byLevel[level]))
	}

	byType := questions.GroupByType(set.Questions)
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	fmt.Fprintln(w, "\nBy type:")
	for _, t := range types {
		fmt.Fprintf(w, "  %-13s %d\n", t, len(byType[questions.Type(t)]))
	}
}
