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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/agentberlin/sitegraph/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd(root *rootOptions) *cobra.Command {
	var siteRef, output string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the site report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), root, noBrowser)
			if err != nil {
				return err
			}
			defer e.close()

			rep, err := e.siteReport(cmd, siteRef)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			})
		},
	}
	cmd.Flags().StringVarP(&siteRef, "site", "s", "", "Site id or domain")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("site")
	return cmd
}

func (e *env) siteReport(cmd *cobra.Command, siteRef string) (*report.SiteReport, error) {
	site, err := e.resolveSite(siteRef)
	if err != nil {
		return nil, fmt.Errorf("site %q: %w", siteRef, err)
	}
	return report.NewAssembler(e.store, e.log).Build(cmd.Context(), site.ID)
}

// writeOutput writes to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
