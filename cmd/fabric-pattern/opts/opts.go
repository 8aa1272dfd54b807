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

// Package opts holds the dependencies shared by every command
package opts

import (
	"github.com/walteh/fabric-pattern/pkg/config"
	"github.com/walteh/fabric-pattern/pkg/input"
	"github.com/walteh/fabric-pattern/pkg/log"
	"github.com/walteh/fabric-pattern/pkg/operation"
	"github.com/walteh/fabric-pattern/pkg/pattern"
	"github.com/walteh/fabric-pattern/pkg/proc"
	"github.com/walteh/fabric-pattern/pkg/save"
)

// 🔧 RootOpts contains shared dependencies for all commands
type RootOpts struct {
	// Config is the resolved configuration
	Config *config.Config
	// Env is the child process environment
	Env *proc.Env
	// UserLogger prints toasts
	UserLogger *log.UserLogger
	// Clipboard is read for input and written by --copy
	Clipboard input.Clipboard
}

// Patterns returns a reader for the configured patterns directory
func (o *RootOpts) Patterns() *pattern.Reader {
	return pattern.NewReader(o.Config)
}

// Runner returns a runner wired to the configured fabric and save binaries
func (o *RootOpts) Runner() (*operation.Runner, error) {
	return operation.New(operation.Options{
		Config:    o.Config,
		Processor: proc.NewProcessor(o.Config, o.Env),
		Saver:     save.NewSaver(o.Config, o.Env),
	})
}
