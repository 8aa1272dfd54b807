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

package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

type HCLParser struct{}

func (p *HCLParser) CanParse(filename string) bool {
	return hasExt(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		Processor        string   `hcl:"processor,optional"`
		Save             string   `hcl:"save,optional"`
		Patterns         string   `hcl:"patterns,optional"`
		SaveTarget       string   `hcl:"save_target,optional"`
		Model            string   `hcl:"model,optional"`
		FetchProxy       string   `hcl:"fetch_proxy,optional"`
		TranscriptPrefix string   `hcl:"transcript_prefix,optional"`
		DescriptionFile  string   `hcl:"description_file,optional"`
		IgnorePatterns   []string `hcl:"ignore_patterns,optional"`
		ExtraPath        []string `hcl:"extra_path,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	return &Config{
		ProcessorPath:    hclCfg.Processor,
		SavePath:         hclCfg.Save,
		PatternsDir:      hclCfg.Patterns,
		SaveTargetDir:    hclCfg.SaveTarget,
		Model:            hclCfg.Model,
		FetchProxy:       hclCfg.FetchProxy,
		TranscriptPrefix: hclCfg.TranscriptPrefix,
		DescriptionFile:  hclCfg.DescriptionFile,
		IgnorePatterns:   hclCfg.IgnorePatterns,
		ExtraPath:        hclCfg.ExtraPath,
	}, nil
}
