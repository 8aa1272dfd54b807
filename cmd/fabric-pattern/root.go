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

package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fabric-pattern/cmd/fabric-pattern/commands"
	"github.com/walteh/fabric-pattern/cmd/fabric-pattern/opts"
	"github.com/walteh/fabric-pattern/pkg/config"
	"github.com/walteh/fabric-pattern/pkg/input"
	"github.com/walteh/fabric-pattern/pkg/log"
	"github.com/walteh/fabric-pattern/pkg/proc"
	"gitlab.com/tozd/go/errors"
)

// rootFlags are the persistent flags shared by every command
type rootFlags struct {
	configFile string
	debug      bool

	patterns string
	fabric   string
	saveBin  string
	saveDir  string
	model    string
}

// NewCommand creates the fabric-pattern root command
func NewCommand() *cobra.Command {
	flags := &rootFlags{}
	o := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "fabric-pattern",
		Short: "Run fabric patterns on clipboard text or a URL",
		Long: `fabric-pattern lists the patterns installed for fabric, runs one over the
clipboard or a URL, and can hand the result to the save utility.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), flags.debug)
			cmd.SetContext(ctx)

			built, err := newRootOpts(ctx, flags)
			if err != nil {
				return err
			}
			*o = *built
			return nil
		},
	}

	addRootFlags(cmd, flags)

	cmd.AddCommand(
		commands.NewListCmd(o),
		commands.NewRunCmd(o),
		commands.NewDoctorCmd(o),
		newVersionCmd(),
	)

	return cmd
}

// newRootOpts creates a new RootOpts with initialized dependencies
func newRootOpts(ctx context.Context, flags *rootFlags) (*opts.RootOpts, error) {
	var cfg *config.Config
	var err error
	if flags.configFile != "" {
		cfg, err = config.Load(ctx, flags.configFile)
	} else {
		cfg, err = config.LoadOrDefault(ctx, config.DefaultPath)
	}
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	cfg = cfg.Merge(&config.Config{
		PatternsDir:   flags.patterns,
		ProcessorPath: flags.fabric,
		SavePath:      flags.saveBin,
		SaveTargetDir: flags.saveDir,
		Model:         flags.model,
	})
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating flags: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Msg("configuration resolved")

	return &opts.RootOpts{
		Config:     cfg,
		Env:        proc.NewEnv(cfg.ExtraPath),
		UserLogger: log.NewUserLogger(ctx),
		Clipboard:  input.SystemClipboard{},
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default "+config.DefaultPath+")")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.patterns, "patterns", "", "patterns directory")
	cmd.PersistentFlags().StringVar(&flags.fabric, "fabric", "", "fabric binary")
	cmd.PersistentFlags().StringVar(&flags.saveBin, "save-bin", "", "save binary")
	cmd.PersistentFlags().StringVar(&flags.saveDir, "save-dir", "", "directory save writes notes to, enables verification")
	cmd.PersistentFlags().StringVarP(&flags.model, "model", "m", "", "model passed to fabric")
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.Ctx(ctx).Level(level)
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(ctx)
}
