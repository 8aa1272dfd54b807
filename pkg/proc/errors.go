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
	"fmt"
	"strings"
)

// ❌ ProcessorError is returned when an external process wrote to stderr or
// exited non-zero. Stderr output alone is enough; the exit code may be 0.
type ProcessorError struct {
	Tool     string // base name of the last process, e.g. "fabric"
	Command  string // rendered pipeline
	Stderr   string
	ExitCode int
}

func (e *ProcessorError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return fmt.Sprintf("%s error: %s", e.Tool, msg)
	}
	return fmt.Sprintf("%s error: exited with status %d", e.Tool, e.ExitCode)
}
