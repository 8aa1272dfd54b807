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

// Package save pipes processor output into the save utility and checks the
// resulting note landed where expected
package save

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/fabric-pattern/pkg/config"
	"github.com/walteh/fabric-pattern/pkg/proc"
	"gitlab.com/tozd/go/errors"
)

// ErrSaveVerificationFailed is returned when the save utility ran but the
// expected note is not on disk
var ErrSaveVerificationFailed = errors.Base("file not saved")

// dateLayout is the ISO calendar date the save utility prefixes notes with
const dateLayout = "2006-01-02"

// 💾 Saver runs the save binary
type Saver struct {
	binary    string
	targetDir string
	env       *proc.Env
	now       func() time.Time
}

// 🏭 NewSaver creates a saver for cfg
func NewSaver(cfg *config.Config, env *proc.Env) *Saver {
	return &Saver{
		binary:    cfg.SavePath,
		targetDir: cfg.SaveTargetDir,
		env:       env,
		now:       time.Now,
	}
}

// WithClock replaces the clock used to compute the expected file name
func (s *Saver) WithClock(now func() time.Time) *Saver {
	s.now = now
	return s
}

// Verifies reports whether Save checks for the written note
func (s *Saver) Verifies() bool {
	return s.targetDir != ""
}

// Stage returns `save [-d <dir>] <name>`
func (s *Saver) Stage(name string) proc.Stage {
	var args []string
	if s.targetDir != "" {
		args = append(args, "-d", s.targetDir)
	}
	return proc.Command(s.binary, append(args, name)...)
}

// 💾 Save pipes content into the save binary. With a target directory it
// returns the verified note path; without one verification is skipped and
// the returned path is empty.
func (s *Saver) Save(ctx context.Context, content, name string) (string, error) {
	logger := zerolog.Ctx(ctx)

	if name == "" {
		return "", errors.New("save name is required")
	}

	now := s.now()

	err := proc.WithTempFile(ctx, "fabric-pattern-output-", content, func(path string) error {
		pipeline := proc.Pipeline{proc.FileStage(path), s.Stage(name)}
		logger.Info().Str("command", pipeline.String()).Msg("saving output")

		_, err := pipeline.Run(ctx, s.env)
		return err
	})
	if err != nil {
		return "", errors.Errorf("running save: %w", err)
	}

	if !s.Verifies() {
		logger.Debug().Msg("no save target configured, skipping verification")
		return "", nil
	}

	expected := ExpectedPath(s.targetDir, name, now)
	logger.Debug().Str("path", expected).Msg("looking for saved file")

	if _, err := os.Stat(expected); err != nil {
		return "", errors.Errorf("%w at: %s", ErrSaveVerificationFailed, expected)
	}

	return expected, nil
}

// ExpectedPath returns <dir>/<YYYY-MM-DD>-<name>.md for the UTC date of now
func ExpectedPath(dir, name string, now time.Time) string {
	return filepath.Join(dir, now.UTC().Format(dateLayout)+"-"+name+".md")
}
