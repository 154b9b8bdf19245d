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

	"github.com/agentberlin/sitegraph/internal/config"
	"github.com/agentberlin/sitegraph/internal/graph"
	"github.com/spf13/cobra"
)

// noBrowser keeps commands that never fetch from launching Chrome.
func noBrowser(c *config.Config) { c.Render.Enabled = false }

func newGraphCmd(root *rootOptions) *cobra.Command {
	var siteRef string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the entity graph of a crawled site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), root, noBrowser)
			if err != nil {
				return err
			}
			defer e.close()

			site, err := e.resolveSite(siteRef)
			if err != nil {
				return fmt.Errorf("site %q: %w", siteRef, err)
			}
			stats, err := e.app.BuildGraph(cmd.Context(), site.ID)
			if err != nil {
				return err
			}
			printBuildStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&siteRef, "site", "s", "", "Site id or domain")
	_ = cmd.MarkFlagRequired("site")
	return cmd
}

func printBuildStats(w io.Writer, s *graph.BuildStats) {
	fmt.Fprintln(w, "\nGraph built")
	fmt.Fprintf(w, "  Pages:     %d\n", s.PagesProcessed)
	fmt.Fprintf(w, "  Chunks:    %d\n", s.ChunksCreated)
	fmt.Fprintf(w, "  Entities:  %d\n", s.EntitiesCreated)
	fmt.Fprintf(w, "  Mentions:  %d\n", s.MentionsCreated)
	fmt.Fprintf(w, "  Relations: %d\n", s.RelationsCreated)
}
