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
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🌱 Env is the environment handed to child processes: the inherited
// environment with extra directories placed ahead of PATH
type Env struct {
	extra []string
	base  []string
}

// 🏭 NewEnv builds an Env from the current process environment
func NewEnv(extraPath []string) *Env {
	return NewEnvFrom(os.Environ(), extraPath)
}

// 🏭 NewEnvFrom builds an Env from an explicit base environment
func NewEnvFrom(base []string, extraPath []string) *Env {
	return &Env{
		extra: append([]string(nil), extraPath...),
		base:  append([]string(nil), base...),
	}
}

// PATH returns the augmented search path
func (e *Env) PATH() string {
	parts := append([]string(nil), e.extra...)
	if inherited := e.lookup("PATH"); inherited != "" {
		parts = append(parts, inherited)
	}
	return strings.Join(parts, string(os.PathListSeparator))
}

// Environ returns the environment for exec.Cmd.Env
func (e *Env) Environ() []string {
	out := make([]string, 0, len(e.base)+1)
	for _, kv := range e.base {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, "PATH="+e.PATH())
}

func (e *Env) lookup(key string) string {
	prefix := key + "="
	for i := len(e.base) - 1; i >= 0; i-- {
		if strings.HasPrefix(e.base[i], prefix) {
			return strings.TrimPrefix(e.base[i], prefix)
		}
	}
	return ""
}

// 🔍 LookPath resolves name against the augmented PATH. Names containing a
// path separator are checked as-is.
func (e *Env) LookPath(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		if err := executable(name); err != nil {
			return "", err
		}
		return name, nil
	}

	for _, dir := range filepath.SplitList(e.PATH()) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if executable(candidate) == nil {
			return candidate, nil
		}
	}

	return "", errors.Errorf("%q not found in PATH", name)
}

func executable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("checking %s: %w", path, err)
	}
	if info.IsDir() {
		return errors.Errorf("%s is a directory", path)
	}
	if info.Mode()&0111 == 0 {
		return errors.Errorf("%s is not executable", path)
	}
	return nil
}
