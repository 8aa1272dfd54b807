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
Package config resolves the fabric-pattern configuration.

	+----------+     +---------------+     +-------+
	| Defaults | --> |  config file  | --> | flags |
	+----------+     | yaml/hcl/json |     +-------+
	                 +---------------+

🎯 Purpose:
- Locate the fabric and save binaries and the patterns directory
- Optionally enable save verification and a model override
- Expand "~/" in every path so the rest of the program sees absolute paths

🔄 Flow:
1. Defaults() supplies the conventional locations
2. Load / LoadOrDefault overlays a user file chosen by extension
3. The command layer overlays flags with Merge
4. Validate expands and cleans paths

The resulting *Config is read-only for the lifetime of the process and is
handed explicitly to each component.

🔍 Example:

	cfg, err := config.LoadOrDefault(ctx, config.DefaultPath)
	if err != nil {
		return err
	}
	reader := pattern.NewReader(cfg)
*/
package config
