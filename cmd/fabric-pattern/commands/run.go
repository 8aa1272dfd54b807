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

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fabric-pattern/cmd/fabric-pattern/opts"
	"github.com/walteh/fabric-pattern/pkg/input"
	"github.com/walteh/fabric-pattern/pkg/log"
	"github.com/walteh/fabric-pattern/pkg/operation"
	"github.com/walteh/fabric-pattern/pkg/pattern"
	"github.com/walteh/fabric-pattern/pkg/proc"
	"gitlab.com/tozd/go/errors"
)

// wrapWidth is the word wrap used when rendering markdown output
const wrapWidth = 100

// the interactive parts are variables so tests can replace them
var (
	findPattern = func(patterns []pattern.Pattern) (int, error) {
		return fuzzyfinder.Find(
			patterns,
			func(i int) string {
				return patterns[i].Name
			},
			fuzzyfinder.WithPromptString("pattern> "),
			fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
				if i < 0 {
					return ""
				}
				return patterns[i].Description
			}),
		)
	}

	promptText = func(label string) (string, error) {
		return pterm.DefaultInteractiveTextInput.Show(label)
	}
)

type runFlags struct {
	url     string
	command string
	saveAs  string
	copy    bool
	raw     bool
	dryRun  bool
	form    bool
}

// NewRunCmd creates the run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [pattern]",
		Short: "Run a pattern over the clipboard or a URL",
		Long: `Run pipes input into fabric with the chosen pattern.
It will:
1. Pick a pattern (fuzzy finder when no name is given)
2. Read the URL flag, or the clipboard when it is empty
3. Run fabric, fetching single line input through the readability proxy
4. Optionally pipe the result into save and verify the note exists`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := choosePattern(cmd, o, args)
			if err != nil {
				return err
			}
			if p == nil {
				return nil
			}
			if len(args) == 0 {
				f.form = true
			}

			if f.form {
				if err := fillForm(f); err != nil {
					return err
				}
			}

			mode, raw, err := gatherInput(ctx, o, f)
			if err != nil {
				return errors.Errorf("reading input: %w", err)
			}

			runner, err := o.Runner()
			if err != nil {
				return errors.Errorf("creating runner: %w", err)
			}

			req := operation.NewRequest(p.Name, mode, raw, f.saveAs)

			if f.dryRun {
				plan, err := runner.DryRun(ctx, req)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), plan)
				return err
			}

			for _, s := range proc.Doctor(o.Config, o.Env) {
				if !s.OK() {
					o.UserLogger.Warning(s.Name+" command not found", s.Err.Error())
				}
			}

			o.UserLogger.Info("Processing", fmt.Sprintf("%s with %s input", p.Name, mode))
			progress := o.UserLogger.Start("Running " + p.Name)
			res, err := runner.Process(ctx, req)
			progress.Done()
			if err != nil {
				return err
			}

			if err := render(cmd.OutOrStdout(), res.Output, f.raw); err != nil {
				return err
			}

			if res.Saved {
				if res.SavedPath != "" {
					o.UserLogger.Success("File saved to", res.SavedPath)
				} else {
					o.UserLogger.Success("File saved as", f.saveAs)
				}
			}

			if f.copy {
				if err := o.Clipboard.WriteText(res.Output); err != nil {
					return errors.Errorf("copying output: %w", err)
				}
				o.UserLogger.Success("Copied", "output is on the clipboard")
			}

			o.UserLogger.Success("Processing complete", p.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.url, "url", "u", "", "URL or text to process instead of the clipboard")
	cmd.Flags().StringVar(&f.command, "command", "", "command whose output is processed, e.g. \"yt --transcript <url>\"")
	cmd.Flags().StringVarP(&f.saveAs, "save", "s", "", "pipe the output into save under this name")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "copy the output to the clipboard")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "print the output without markdown rendering")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the commands instead of running them")
	cmd.Flags().BoolVar(&f.form, "form", false, "prompt for the URL and save name")
	cmd.MarkFlagsMutuallyExclusive("url", "command")

	return cmd
}

// choosePattern returns the named pattern, or asks for one. A nil pattern
// with a nil error means the user backed out.
func choosePattern(cmd *cobra.Command, o *opts.RootOpts, args []string) (*pattern.Pattern, error) {
	ctx := cmd.Context()

	if len(args) == 1 {
		p, err := o.Patterns().Get(ctx, args[0])
		if err != nil {
			return nil, errors.Errorf("finding pattern: %w", err)
		}
		return p, nil
	}

	patterns, err := listPatterns(cmd, o)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		o.UserLogger.Warning("No patterns", "nothing to pick from in "+o.Config.PatternsDir)
		return nil, nil
	}

	idx, err := findPattern(patterns)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			zerolog.Ctx(ctx).Debug().Msg("pattern selection aborted")
			return nil, nil
		}
		return nil, errors.Errorf("selecting pattern: %w", err)
	}

	return &patterns[idx], nil
}

// fillForm prompts for the fields not already given as flags
func fillForm(f *runFlags) error {
	if f.url == "" && f.command == "" {
		url, err := promptText("URL or text (empty for clipboard)")
		if err != nil {
			return errors.Errorf("reading URL: %w", err)
		}
		f.url = url
	}

	if f.saveAs == "" {
		name, err := promptText("Save as (empty to skip)")
		if err != nil {
			return errors.Errorf("reading save name: %w", err)
		}
		f.saveAs = name
	}

	return nil
}

func gatherInput(ctx context.Context, o *opts.RootOpts, f *runFlags) (input.Mode, string, error) {
	if f.command != "" {
		return input.ModeCommand, f.command, nil
	}
	return input.Gather(ctx, f.url, o.Clipboard)
}

// render writes the processor output, as markdown unless raw is set
func render(out io.Writer, text string, raw bool) error {
	if raw {
		log.NewWithZerolog(out, zerolog.Nop()).Raw(text)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return errors.Errorf("creating markdown renderer: %w", err)
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		return errors.Errorf("rendering output: %w", err)
	}

	_, err = fmt.Fprint(out, rendered)
	return err
}
