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

/*
Package operation runs one processing request end to end.

🎯 Purpose:
- Turns a pattern name plus raw input into processor output
- Optionally hands that output to the save utility
- Tags every log line of a request with its request_id

🔄 Flow:
1. Resolve the raw input into a pipeline source (pkg/input)
2. Run `<source> | fabric --pattern <name>` (pkg/proc)
3. When a save name is set, pipe the output into `save` and verify (pkg/save)

⚠️ Every failure is terminal for the request. Nothing is retried.

🔍 Example:

	runner, err := operation.New(operation.Options{
		Config:    cfg,
		Processor: proc.NewProcessor(cfg, env),
		Saver:     save.NewSaver(cfg, env),
	})
	res, err := runner.Process(ctx, operation.NewRequest("summarize", input.ModeClipboard, text, ""))
*/
package operation
