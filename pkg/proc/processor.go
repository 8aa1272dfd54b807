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

package proc

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/fabric-pattern/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Source produces the first stage of a processing pipeline
type Source interface {
	// Open returns the stage feeding the processor. release is called once
	// the pipeline has exited, successfully or not.
	Open(ctx context.Context) (stage Stage, release func(), err error)
}

// 📜 Invocation is the outcome of one processor run
type Invocation struct {
	Command string // rendered pipeline
	Output  string // processor stdout
}

// ⚙️ Processor runs fabric patterns
type Processor struct {
	binary string
	model  string
	env    *Env
}

// 🏭 NewProcessor creates a processor for cfg
func NewProcessor(cfg *config.Config, env *Env) *Processor {
	return &Processor{
		binary: cfg.ProcessorPath,
		model:  cfg.Model,
		env:    env,
	}
}

// Stage returns the processor stage for pattern
func (p *Processor) Stage(pattern string) Stage {
	args := []string{"--pattern", pattern}
	if p.model != "" {
		args = append(args, "-m", p.model)
	}
	return Command(p.binary, args...)
}

// 🔄 Transform runs `<source> | fabric --pattern <pattern> [-m <model>]`
func (p *Processor) Transform(ctx context.Context, src Source, pattern string) (*Invocation, error) {
	if pattern == "" {
		return nil, errors.New("pattern is required")
	}

	stage, release, err := src.Open(ctx)
	if err != nil {
		return nil, errors.Errorf("opening input: %w", err)
	}
	defer release()

	pipeline := Pipeline{stage, p.Stage(pattern)}
	zerolog.Ctx(ctx).Info().Str("command", pipeline.String()).Msg("running pattern")

	output, err := pipeline.Run(ctx, p.env)
	if err != nil {
		return &Invocation{Command: pipeline.String()}, err
	}

	return &Invocation{Command: pipeline.String(), Output: output}, nil
}

// 📝 Plan renders the pipeline Transform would run without running it
func (p *Processor) Plan(ctx context.Context, src Source, pattern string) (string, error) {
	stage, release, err := src.Open(ctx)
	if err != nil {
		return "", errors.Errorf("opening input: %w", err)
	}
	defer release()

	return Pipeline{stage, p.Stage(pattern)}.String(), nil
}
