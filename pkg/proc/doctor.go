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
	"github.com/walteh/fabric-pattern/pkg/config"
)

// 🩺 BinaryStatus reports whether a required binary is usable
type BinaryStatus struct {
	Name string
	Path string
	Err  error
}

// OK reports whether the binary exists and is executable
func (s BinaryStatus) OK() bool {
	return s.Err == nil
}

// 🩺 Doctor checks the processor and save binaries named by cfg
func Doctor(cfg *config.Config, env *Env) []BinaryStatus {
	check := func(name, path string) BinaryStatus {
		resolved, err := env.LookPath(path)
		if err != nil {
			return BinaryStatus{Name: name, Path: path, Err: err}
		}
		return BinaryStatus{Name: name, Path: resolved}
	}

	return []BinaryStatus{
		check("fabric", cfg.ProcessorPath),
		check("save", cfg.SavePath),
	}
}
