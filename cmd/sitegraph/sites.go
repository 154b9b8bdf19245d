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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newSitesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List crawled sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), root, noBrowser)
			if err != nil {
				return err
			}
			defer e.close()

			sites, err := e.store.ListSites()
			if err != nil {
				return err
			}
			if len(sites) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sites crawled yet")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDOMAIN\tSTATUS\tLAST CRAWLED\tLAST JOB")
			for _, s := range sites {
				last := "never"
				if s.LastCrawledAt > 0 {
					last = time.Unix(s.LastCrawledAt, 0).Format(time.RFC3339)
				}
				lastJob := "-"
				job, err := e.store.GetLatestCrawlJob(s.ID)
				if err != nil {
					return err
				}
				if job != nil {
					lastJob = fmt.Sprintf("%s (%d pages)", job.Status, job.PagesProcessed)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Domain, s.Status, last, lastJob)
			}
			return tw.Flush()
		},
	}
}
