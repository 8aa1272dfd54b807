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

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/fabric-pattern/cmd/fabric-pattern/opts"
	"github.com/walteh/fabric-pattern/pkg/proc"
	"gitlab.com/tozd/go/errors"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that fabric and save are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			missing := 0
			for _, s := range proc.Doctor(o.Config, o.Env) {
				if s.OK() {
					o.UserLogger.Success(s.Name, s.Path)
					continue
				}
				missing++
				o.UserLogger.Failure(fmt.Sprintf("%s command not found", s.Name), s.Err)
			}

			if info, err := os.Stat(o.Config.PatternsDir); err != nil || !info.IsDir() {
				o.UserLogger.Warning("Patterns directory not found", o.Config.PatternsDir)
			} else {
				o.UserLogger.Success("patterns", o.Config.PatternsDir)
			}

			if o.Config.SaveTargetDir == "" {
				o.UserLogger.Info("save target", "not set, saved notes will not be verified")
			}

			if missing > 0 {
				return errors.Errorf("%d required binaries missing", missing)
			}
			return nil
		},
	}

	return cmd
}
