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

package input

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// clipboardReadAll and clipboardWriteAll are package-level variables to allow mocking in tests.
var (
	clipboardReadAll  = clipboard.ReadAll
	clipboardWriteAll = clipboard.WriteAll
)

// 📋 Clipboard reads and writes the system clipboard
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// SystemClipboard is the OS clipboard
type SystemClipboard struct{}

func (SystemClipboard) ReadText() (string, error) {
	text, err := clipboardReadAll()
	if err != nil {
		return "", errors.Errorf("reading clipboard: %w", err)
	}
	return text, nil
}

func (SystemClipboard) WriteText(text string) error {
	if err := clipboardWriteAll(text); err != nil {
		return errors.Errorf("writing clipboard: %w", err)
	}
	return nil
}

// 📥 Gather picks the raw input: a URL when given, else clipboard text.
// It fails with ErrInputMissing before any process is started.
func Gather(ctx context.Context, url string, cb Clipboard) (Mode, string, error) {
	if u := strings.TrimSpace(url); u != "" {
		return ModeURL, u, nil
	}

	if cb == nil {
		return ModeClipboard, "", ErrInputMissing
	}

	text, err := cb.ReadText()
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("clipboard unavailable")
		return ModeClipboard, "", errors.Errorf("%w: %s", ErrInputMissing, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return ModeClipboard, "", ErrInputMissing
	}

	return ModeClipboard, text, nil
}
