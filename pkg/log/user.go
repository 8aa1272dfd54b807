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
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger provides user-facing feedback (the CLI's toasts)
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
	out io.Writer
}

// 🎯 NewUserLogger creates a new user logger writing to stderr
func NewUserLogger(ctx context.Context) *UserLogger {
	return NewUserLoggerTo(ctx, os.Stderr)
}

// 🎯 NewUserLoggerTo creates a user logger writing to out
func NewUserLoggerTo(ctx context.Context, out io.Writer) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
		out: out,
	}
}

// ✅ Success shows a success toast
func (u *UserLogger) Success(title, message string) {
	pterm.Success.WithWriter(u.out).WithPrefix(pterm.Prefix{Text: "✅", Style: pterm.Success.Prefix.Style}).Println(title + ": " + message)
	u.log.Info().Str("title", title).Msg(message)
}

// ℹ️ Info shows an informational toast
func (u *UserLogger) Info(title, message string) {
	pterm.Info.WithWriter(u.out).WithPrefix(pterm.Prefix{Text: "📦", Style: pterm.Info.Prefix.Style}).Println(title + ": " + message)
	u.log.Info().Str("title", title).Msg(message)
}

// ⚠️ Warning shows a warning toast
func (u *UserLogger) Warning(title, message string) {
	pterm.Warning.WithWriter(u.out).WithPrefix(pterm.Prefix{Text: "⚠️", Style: pterm.Warning.Prefix.Style}).Println(title + ": " + message)
	u.log.Warn().Str("title", title).Msg(message)
}

// ❌ Failure shows an error toast; err may be nil
func (u *UserLogger) Failure(title string, err error) {
	msg := title
	if err != nil {
		msg += ": " + err.Error()
	}
	pterm.Error.WithWriter(u.out).WithPrefix(pterm.Prefix{Text: "❌", Style: pterm.Error.Prefix.Style}).Println(msg)
	u.log.Error().Err(err).Msg(title)
}

// ⏳ Progress is a running spinner started by Start
type Progress struct {
	spinner *pterm.SpinnerPrinter
	log     zerolog.Logger
}

// ⏳ Start shows an animated toast until Done is called
func (u *UserLogger) Start(message string) *Progress {
	u.log.Debug().Msg(message)
	spinner, err := pterm.DefaultSpinner.WithWriter(u.out).WithRemoveWhenDone(true).Start(message)
	if err != nil {
		u.log.Debug().Err(err).Msg("starting spinner")
		return &Progress{log: u.log}
	}
	return &Progress{spinner: spinner, log: u.log}
}

// Done stops the spinner
func (p *Progress) Done() {
	if p == nil || p.spinner == nil {
		return
	}
	if err := p.spinner.Stop(); err != nil {
		p.log.Debug().Err(err).Msg("stopping spinner")
	}
}
