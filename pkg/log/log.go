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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	patternIndent = 2  // spaces to indent pattern entries
	nameWidth     = 32 // Base width for pattern name
	summaryWidth  = 80 // Summaries are cut to this many runes
)

// 🎯 PatternLine represents a pattern row in the list view
type PatternLine struct {
	Name           string // Pattern name
	Summary        string // One-line summary, may be empty
	HasDescription bool   // Whether a description file was found
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	count   int
}

// 🏭 NewWithZerolog creates a console logger that mirrors its lines to zlog
func NewWithZerolog(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 formatPattern formats a pattern line for display
func (l *Logger) formatPattern(p PatternLine) string {
	symbol := color.New(color.FgCyan).Sprint("•")
	summary := p.Summary
	if !p.HasDescription {
		symbol = color.New(color.FgYellow).Sprint("-")
		summary = "(no description)"
	}

	runes := []rune(summary)
	if len(runes) > summaryWidth {
		summary = string(runes[:summaryWidth-1]) + "…"
	}

	return fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", patternIndent, ""),
		symbol,
		color.New(color.Bold).Sprint(fmt.Sprintf("%-*s", nameWidth, p.Name)),
		color.New(color.Faint).Sprint(summary))
}

// 📝 LogPattern prints one pattern row
func (l *Logger) LogPattern(ctx context.Context, p PatternLine) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	fmt.Fprintln(l.console, l.formatPattern(p))

	l.zlog.Debug().
		Str("pattern", p.Name).
		Bool("has_description", p.HasDescription).
		Msg("pattern listed")
}

// 📊 Count returns how many pattern rows were printed
func (l *Logger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	appText := color.New(color.Bold, color.FgCyan).Sprint("fabric-pattern")
	fmt.Fprintf(l.console, "\n%s %s\n\n", appText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Raw writes text as-is, used for processor output
func (l *Logger) Raw(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, text)
}
