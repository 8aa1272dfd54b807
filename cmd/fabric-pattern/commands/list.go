// Copyright 2025 walteh LLC
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

// Package commands implements the fabric-pattern subcommands
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fabric-pattern/cmd/fabric-pattern/opts"
	"github.com/walteh/fabric-pattern/pkg/log"
	"github.com/walteh/fabric-pattern/pkg/pattern"
	"gitlab.com/tozd/go/errors"
)

// NewListCmd creates the list command
func NewListCmd(o *opts.RootOpts) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the installed patterns",
		Long: `List prints every pattern in the patterns directory, sorted by name,
with the first paragraph of its system prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			patterns, err := listPatterns(cmd, o)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(patterns)
			}

			console := log.NewWithZerolog(cmd.OutOrStdout(), *zerolog.Ctx(ctx))
			console.Header(fmt.Sprintf("%d patterns in %s", len(patterns), o.Patterns().Dir()))
			for _, p := range patterns {
				console.LogPattern(ctx, log.PatternLine{
					Name:           p.Name,
					Summary:        p.Summary,
					HasDescription: p.Description != "",
				})
			}
			console.LogNewline()

			zerolog.Ctx(ctx).Debug().Int("count", console.Count()).Msg("patterns listed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

// listPatterns lists and sorts the patterns. A missing directory is reported
// as a warning and yields an empty list.
func listPatterns(cmd *cobra.Command, o *opts.RootOpts) ([]pattern.Pattern, error) {
	patterns, err := o.Patterns().List(cmd.Context())
	if err != nil {
		if !errors.Is(err, pattern.ErrDirectoryNotFound) {
			return nil, errors.Errorf("listing patterns: %w", err)
		}
		o.UserLogger.Warning("Patterns directory not found", o.Config.PatternsDir)
		return []pattern.Pattern{}, nil
	}

	pattern.SortByName(patterns)
	return patterns, nil
}
