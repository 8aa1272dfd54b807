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

// Package input decides how text reaches the processor
package input

import (
	"context"
	"strings"

	"github.com/caarlos0/go-shellwords"
	"github.com/walteh/fabric-pattern/pkg/config"
	"github.com/walteh/fabric-pattern/pkg/proc"
	"gitlab.com/tozd/go/errors"
)

// ErrInputMissing is returned when there is neither clipboard text nor a URL
var ErrInputMissing = errors.Base("no input: clipboard is empty and no URL was given")

// 🏷️ Kind says which pipeline source an input becomes
type Kind int

const (
	KindText    Kind = iota // literal text piped from a temp file
	KindFetch               // single line fetched through the readability proxy
	KindCommand             // transcript command run as the first stage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindFetch:
		return "fetch"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// 🎛️ Mode is where the raw input came from
type Mode int

const (
	ModeClipboard Mode = iota // clipboard text, always literal unless it is a transcript command
	ModeURL                   // typed URL or query, classified by Resolve
	ModeCommand               // a source command given explicitly
)

func (m Mode) String() string {
	switch m {
	case ModeClipboard:
		return "clipboard"
	case ModeURL:
		return "url"
	case ModeCommand:
		return "command"
	default:
		return "unknown"
	}
}

// 📥 Source is a resolved input. It implements proc.Source.
type Source struct {
	Kind Kind
	Text string   // KindText
	URL  string   // KindFetch, proxy included
	Argv []string // KindCommand
}

var _ proc.Source = (*Source)(nil)

// 🔀 Resolve classifies raw input. In order: the transcript prefix wins, then
// any input without a newline is treated as a URL, otherwise it is text.
// A one-line note is therefore fetched as a URL; that is intended.
func Resolve(raw string, cfg *config.Config) (*Source, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrInputMissing
	}

	if cfg.TranscriptPrefix != "" && strings.HasPrefix(raw, cfg.TranscriptPrefix) {
		return parseCommand(raw)
	}

	if !strings.Contains(raw, "\n") {
		return &Source{Kind: KindFetch, URL: cfg.FetchProxy + strings.TrimSpace(raw)}, nil
	}

	return &Source{Kind: KindText, Text: raw}, nil
}

// 🔀 ResolveMode resolves raw according to where it came from. Typed input
// goes through Resolve; clipboard text is always literal text unless it
// starts with the transcript prefix.
func ResolveMode(mode Mode, raw string, cfg *config.Config) (*Source, error) {
	switch mode {
	case ModeURL:
		return Resolve(raw, cfg)
	case ModeCommand:
		return parseCommand(raw)
	case ModeClipboard:
		if strings.TrimSpace(raw) == "" {
			return nil, ErrInputMissing
		}
		if cfg.TranscriptPrefix != "" && strings.HasPrefix(raw, cfg.TranscriptPrefix) {
			return parseCommand(raw)
		}
		return &Source{Kind: KindText, Text: raw}, nil
	default:
		return nil, errors.Errorf("unknown input mode %d", mode)
	}
}

func parseCommand(raw string) (*Source, error) {
	argv, err := shellwords.Parse(raw)
	if err != nil {
		return nil, errors.Errorf("parsing transcript command: %w", err)
	}
	if len(argv) == 0 {
		return nil, ErrInputMissing
	}
	return &Source{Kind: KindCommand, Argv: argv}, nil
}

// Open materializes the source as the first pipeline stage
func (s *Source) Open(ctx context.Context) (proc.Stage, func(), error) {
	noop := func() {}

	switch s.Kind {
	case KindCommand:
		if len(s.Argv) == 0 {
			return proc.Stage{}, noop, ErrInputMissing
		}
		return proc.Command(s.Argv[0], s.Argv[1:]...), noop, nil
	case KindFetch:
		return proc.Command("curl", "-sL", s.URL), noop, nil
	case KindText:
		tmp, err := proc.NewTempFile("fabric-pattern-input-", s.Text)
		if err != nil {
			return proc.Stage{}, noop, err
		}
		return proc.FileStage(tmp.Path), func() { tmp.Release(ctx) }, nil
	default:
		return proc.Stage{}, noop, errors.Errorf("unknown input kind %d", s.Kind)
	}
}
