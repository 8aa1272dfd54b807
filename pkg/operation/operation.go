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

package operation

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/fabric-pattern/pkg/config"
	"github.com/walteh/fabric-pattern/pkg/input"
	"github.com/walteh/fabric-pattern/pkg/proc"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Transformer runs a pattern over a source
type Transformer interface {
	Transform(ctx context.Context, src proc.Source, pattern string) (*proc.Invocation, error)
	Plan(ctx context.Context, src proc.Source, pattern string) (string, error)
}

// 💾 Persister stores processor output under a name
type Persister interface {
	Save(ctx context.Context, content, name string) (string, error)
	Stage(name string) proc.Stage
}

// 📨 Request is one processing request
type Request struct {
	ID      string     `json:"id"`
	Pattern string     `json:"pattern"`
	Mode    input.Mode `json:"mode"`
	Input   string     `json:"input"`
	SaveAs  string     `json:"save_as,omitempty"`
}

// NewRequest creates a request with a fresh id
func NewRequest(pattern string, mode input.Mode, raw, saveAs string) Request {
	return Request{
		ID:      uuid.NewString(),
		Pattern: pattern,
		Mode:    mode,
		Input:   raw,
		SaveAs:  saveAs,
	}
}

// 📬 Result is what a successful request produced
type Result struct {
	ID        string `json:"id"`
	Output    string `json:"output"`
	SavedPath string `json:"saved_path,omitempty"`
	Saved     bool   `json:"saved"`
	Command   string `json:"command"`
}

// 🔧 Options contains the collaborators of a Runner
type Options struct {
	// Config is the resolved configuration
	Config *config.Config
	// Processor runs fabric
	Processor Transformer
	// Saver runs save, only needed for requests with SaveAs
	Saver Persister
}

// 🏃 Runner executes processing requests
type Runner struct {
	cfg       *config.Config
	processor Transformer
	saver     Persister
}

// 🏭 New creates a runner with the given options
func New(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Processor == nil {
		return nil, errors.Errorf("processor is required")
	}
	return &Runner{
		cfg:       opts.Config,
		processor: opts.Processor,
		saver:     opts.Saver,
	}, nil
}

// withRequest returns ctx carrying a logger tagged with the request
func withRequest(ctx context.Context, req *Request) context.Context {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	logger := zerolog.Ctx(ctx).With().
		Str("request_id", req.ID).
		Str("pattern", req.Pattern).
		Logger()
	return logger.WithContext(ctx)
}

func (r *Runner) check(req Request) error {
	if req.Pattern == "" {
		return errors.New("pattern is required")
	}
	if req.SaveAs != "" && r.saver == nil {
		return errors.New("save requested but no saver is configured")
	}
	return nil
}

// ▶️ Process resolves the input, runs the pattern and saves the output when
// req.SaveAs is set. The first error ends the request.
func (r *Runner) Process(ctx context.Context, req Request) (*Result, error) {
	ctx = withRequest(ctx, &req)
	logger := zerolog.Ctx(ctx)

	if err := r.check(req); err != nil {
		return nil, err
	}

	src, err := input.ResolveMode(req.Mode, req.Input, r.cfg)
	if err != nil {
		return nil, errors.Errorf("resolving input: %w", err)
	}
	logger.Debug().Stringer("mode", req.Mode).Stringer("kind", src.Kind).Msg("input resolved")

	inv, err := r.processor.Transform(ctx, src, req.Pattern)
	if err != nil {
		return nil, errors.Errorf("running pattern %s: %w", req.Pattern, err)
	}

	res := &Result{
		ID:      req.ID,
		Output:  inv.Output,
		Command: inv.Command,
	}

	if req.SaveAs == "" {
		logger.Info().Int("output_bytes", len(res.Output)).Msg("pattern finished")
		return res, nil
	}

	path, err := r.saver.Save(ctx, inv.Output, req.SaveAs)
	if err != nil {
		return nil, errors.Errorf("saving output as %s: %w", req.SaveAs, err)
	}
	res.Saved = true
	res.SavedPath = path

	logger.Info().Str("saved_path", path).Msg("pattern finished and saved")
	return res, nil
}

// 📝 DryRun renders the commands Process would run without running them
func (r *Runner) DryRun(ctx context.Context, req Request) (string, error) {
	ctx = withRequest(ctx, &req)

	if err := r.check(req); err != nil {
		return "", err
	}

	src, err := input.ResolveMode(req.Mode, req.Input, r.cfg)
	if err != nil {
		return "", errors.Errorf("resolving input: %w", err)
	}

	plan, err := r.processor.Plan(ctx, src, req.Pattern)
	if err != nil {
		return "", errors.Errorf("planning pattern %s: %w", req.Pattern, err)
	}

	if req.SaveAs != "" {
		plan += " | " + r.saver.Stage(req.SaveAs).String()
	}
	return plan, nil
}
