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

// Package proc runs the external fabric and save binaries
package proc

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔗 Stage is one process of a pipeline, or a file feeding the next process
type Stage struct {
	Binary string   // name or path, resolved against the augmented PATH
	Args   []string // passed as argv, never through a shell
	File   string   // when set the stage only feeds this file to the next stage
}

// FileStage returns a stage that feeds path to the next stage's stdin
func FileStage(path string) Stage {
	return Stage{File: path}
}

// Command returns a process stage
func Command(binary string, args ...string) Stage {
	return Stage{Binary: binary, Args: args}
}

// IsFile reports whether the stage is a file source
func (s Stage) IsFile() bool {
	return s.File != ""
}

func (s Stage) String() string {
	if s.IsFile() {
		return "cat " + quote(s.File)
	}
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Binary)
	for _, arg := range s.Args {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " ")
}

// 🔗 Pipeline is a sequence of stages, each stdout connected to the next stdin
type Pipeline []Stage

// String renders the pipeline the way a shell user would type it
func (p Pipeline) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, " | ")
}

func (p Pipeline) validate() error {
	if len(p) == 0 {
		return errors.New("empty pipeline")
	}
	for i, s := range p {
		if s.IsFile() && i != 0 {
			return errors.Errorf("file stage %q must be first", s.File)
		}
		if !s.IsFile() && s.Binary == "" {
			return errors.Errorf("stage %d has no binary", i)
		}
	}
	if p[len(p)-1].IsFile() {
		return errors.New("pipeline has no process stage")
	}
	return nil
}

// ▶️ Run executes the pipeline and returns the last stage's stdout.
// Any output on stderr from any stage is a *ProcessorError, whatever the exit
// codes. A non-zero exit is a failure only for the last stage.
func (p Pipeline) Run(ctx context.Context, env *Env) (string, error) {
	logger := zerolog.Ctx(ctx)

	if err := p.validate(); err != nil {
		return "", errors.Errorf("validating pipeline: %w", err)
	}

	stages := []Stage(p)
	var stdin io.Reader
	if stages[0].IsFile() {
		f, err := os.Open(stages[0].File)
		if err != nil {
			return "", errors.Errorf("opening input file: %w", err)
		}
		defer f.Close()
		stdin = f
		stages = stages[1:]
	}

	stderr := &lockedBuffer{}
	var stdout bytes.Buffer

	cmds := make([]*exec.Cmd, len(stages))
	for i, s := range stages {
		bin, err := env.LookPath(s.Binary)
		if err != nil {
			return "", errors.Errorf("resolving %s: %w", s.Binary, err)
		}
		cmd := exec.CommandContext(ctx, bin, s.Args...)
		cmd.Env = env.Environ()
		cmd.Stderr = stderr
		cmds[i] = cmd
	}

	cmds[0].Stdin = stdin
	cmds[len(cmds)-1].Stdout = &stdout

	var pipes []*os.File
	closePipes := func() {
		for _, f := range pipes {
			f.Close()
		}
		pipes = nil
	}

	for i := 0; i < len(cmds)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			closePipes()
			return "", errors.Errorf("creating pipe: %w", err)
		}
		cmds[i].Stdout = w
		cmds[i+1].Stdin = r
		pipes = append(pipes, r, w)
	}

	logger.Debug().Str("command", p.String()).Msg("running pipeline")

	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			closePipes()
			for _, started := range cmds[:i] {
				_ = started.Process.Kill()
				_ = started.Wait()
			}
			return "", errors.Errorf("starting %s: %w", stages[i].Binary, err)
		}
	}

	// children hold their own copies of the pipe ends
	closePipes()

	// only the last stage's exit status counts; upstream stages fail through stderr
	exitCode := 0
	var waitErr error
	for i, cmd := range cmds {
		err := cmd.Wait()
		if err == nil {
			continue
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if i == len(cmds)-1 {
				exitCode = exitErr.ExitCode()
			} else {
				logger.Debug().Str("stage", stages[i].Binary).Int("exit_code", exitErr.ExitCode()).Msg("upstream stage exited non-zero")
			}
			continue
		}
		if waitErr == nil {
			waitErr = err
		}
	}

	if ctx.Err() != nil {
		return "", errors.Errorf("running %s: %w", p.tool(), ctx.Err())
	}
	if waitErr != nil {
		return "", errors.Errorf("waiting for %s: %w", p.tool(), waitErr)
	}

	logger.Debug().
		Int("stdout_bytes", stdout.Len()).
		Int("stderr_bytes", stderr.Len()).
		Int("exit_code", exitCode).
		Msg("pipeline finished")

	if stderr.Len() > 0 || exitCode != 0 {
		return "", &ProcessorError{
			Tool:     p.tool(),
			Command:  p.String(),
			Stderr:   stderr.String(),
			ExitCode: exitCode,
		}
	}

	return stdout.String(), nil
}

// tool names the last process of the pipeline, used in error messages
func (p Pipeline) tool() string {
	if len(p) == 0 {
		return "pipeline"
	}
	bin := p[len(p)-1].Binary
	if i := strings.LastIndex(bin, string(os.PathSeparator)); i >= 0 {
		bin = bin[i+1:]
	}
	return bin
}

// lockedBuffer collects stderr from several processes at once
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// quote wraps arguments a shell would split or interpret
func quote(arg string) string {
	if arg == "" {
		return `""`
	}
	if strings.ContainsAny(arg, " \t\n\"'$`\\|&;<>()*?[]{}!#~") {
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`").Replace(arg) + `"`
	}
	return arg
}
