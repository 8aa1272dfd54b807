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
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📄 TempFile hands text to a child process through stdin redirection.
// Release must only be called once every process reading it has exited.
type TempFile struct {
	Path string
}

// 🏭 NewTempFile creates the file and writes content synchronously
func NewTempFile(prefix, content string) (*TempFile, error) {
	f, err := os.CreateTemp("", prefix+"*.txt")
	if err != nil {
		return nil, errors.Errorf("creating temp file: %w", err)
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, errors.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, errors.Errorf("closing temp file: %w", err)
	}

	return &TempFile{Path: f.Name()}, nil
}

// 🗑️ Release removes the file; failures are logged and swallowed
func (t *TempFile) Release(ctx context.Context) {
	if t == nil {
		return
	}
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", t.Path).Msg("removing temp file")
	}
}

// WithTempFile writes content to a temp file, calls fn with its path and
// removes the file after fn returns
func WithTempFile(ctx context.Context, prefix, content string, fn func(path string) error) error {
	tmp, err := NewTempFile(prefix, content)
	if err != nil {
		return err
	}
	defer tmp.Release(ctx)

	return fn(tmp.Path)
}
