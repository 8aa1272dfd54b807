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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultFetchProxy is prepended to single-line inputs
	DefaultFetchProxy = "https://r.jina.ai/"
	// DefaultTranscriptPrefix marks inputs that are already a source command
	DefaultTranscriptPrefix = "yt "
	// DefaultDescriptionFile is read from inside each pattern directory
	DefaultDescriptionFile = "system.md"
)

// DefaultPath is where the user config file is looked up when --config is not given.
var DefaultPath = "~/.config/fabric-pattern/config.yaml"

// 📦 Config is resolved once at startup and passed to every component by pointer
type Config struct {
	ProcessorPath    string   `json:"processor" yaml:"processor"`                               // fabric binary
	SavePath         string   `json:"save" yaml:"save"`                                         // save binary
	PatternsDir      string   `json:"patterns" yaml:"patterns"`                                 // directory with one entry per pattern
	SaveTargetDir    string   `json:"save_target,omitempty" yaml:"save_target,omitempty"`       // optional, enables save verification
	Model            string   `json:"model,omitempty" yaml:"model,omitempty"`                   // optional -m flag for fabric
	FetchProxy       string   `json:"fetch_proxy,omitempty" yaml:"fetch_proxy,omitempty"`       // readability proxy for URL inputs
	TranscriptPrefix string   `json:"transcript_prefix,omitempty" yaml:"transcript_prefix,omitempty"`
	DescriptionFile  string   `json:"description_file,omitempty" yaml:"description_file,omitempty"`
	IgnorePatterns   []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"` // doublestar globs skipped when listing
	ExtraPath        []string `json:"extra_path,omitempty" yaml:"extra_path,omitempty"`           // prepended to PATH for child processes
}

// 🏭 Defaults returns the configuration used when no file or flag overrides a value
func Defaults() *Config {
	return &Config{
		ProcessorPath:    "~/go/bin/fabric",
		SavePath:         "~/.local/bin/save",
		PatternsDir:      "~/.config/fabric/patterns",
		FetchProxy:       DefaultFetchProxy,
		TranscriptPrefix: DefaultTranscriptPrefix,
		DescriptionFile:  DefaultDescriptionFile,
		ExtraPath: []string{
			"/usr/local/bin",
			"/usr/bin",
			"/bin",
			"/usr/sbin",
			"/sbin",
			"~/go/bin",
			"~/.local/bin",
		},
	}
}

// 📥 Load reads the config file at path and overlays it on Defaults
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, errors.Errorf("expanding config path: %w", err)
	}

	logger.Debug().Str("path", expanded).Msg("loading configuration")

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(expanded)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	override, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg := Defaults().Merge(override)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 📥 LoadOrDefault behaves like Load but falls back to Defaults when the file does not exist
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, errors.Errorf("expanding config path: %w", err)
	}

	if _, err := os.Stat(expanded); errors.Is(err, os.ErrNotExist) {
		zerolog.Ctx(ctx).Debug().Str("path", expanded).Msg("no config file, using defaults")
		cfg := Defaults()
		if err := cfg.Validate(); err != nil {
			return nil, errors.Errorf("validating config: %w", err)
		}
		return cfg, nil
	}

	return Load(ctx, path)
}

// 🔀 Merge returns a copy of cfg with every non-empty field of override applied on top
func (cfg *Config) Merge(override *Config) *Config {
	out := *cfg
	out.IgnorePatterns = append([]string(nil), cfg.IgnorePatterns...)
	out.ExtraPath = append([]string(nil), cfg.ExtraPath...)

	if override == nil {
		return &out
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.ProcessorPath, override.ProcessorPath)
	set(&out.SavePath, override.SavePath)
	set(&out.PatternsDir, override.PatternsDir)
	set(&out.SaveTargetDir, override.SaveTargetDir)
	set(&out.Model, override.Model)
	set(&out.FetchProxy, override.FetchProxy)
	set(&out.TranscriptPrefix, override.TranscriptPrefix)
	set(&out.DescriptionFile, override.DescriptionFile)

	if len(override.IgnorePatterns) > 0 {
		out.IgnorePatterns = append(out.IgnorePatterns, override.IgnorePatterns...)
	}
	if len(override.ExtraPath) > 0 {
		out.ExtraPath = append([]string(nil), override.ExtraPath...)
	}

	return &out
}

// ✅ Validate checks required fields and expands every path in place
func (cfg *Config) Validate() error {
	if cfg.ProcessorPath == "" {
		return errors.Errorf("processor is required")
	}
	if cfg.SavePath == "" {
		return errors.Errorf("save is required")
	}
	if cfg.PatternsDir == "" {
		return errors.Errorf("patterns is required")
	}

	for _, p := range []*string{&cfg.ProcessorPath, &cfg.SavePath, &cfg.PatternsDir, &cfg.SaveTargetDir} {
		if *p == "" {
			continue
		}
		expanded, err := ExpandHome(*p)
		if err != nil {
			return errors.Errorf("expanding %q: %w", *p, err)
		}
		*p = filepath.Clean(expanded)
	}

	for i, dir := range cfg.ExtraPath {
		expanded, err := ExpandHome(dir)
		if err != nil {
			return errors.Errorf("expanding %q: %w", dir, err)
		}
		cfg.ExtraPath[i] = expanded
	}

	for _, pattern := range cfg.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	// Set defaults
	if cfg.FetchProxy == "" {
		cfg.FetchProxy = DefaultFetchProxy
	}
	if cfg.TranscriptPrefix == "" {
		cfg.TranscriptPrefix = DefaultTranscriptPrefix
	}
	if cfg.DescriptionFile == "" {
		cfg.DescriptionFile = DefaultDescriptionFile
	}

	return nil
}

// 🏠 ExpandHome replaces a leading "~" or "~/" with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func (cfg *Config) String() string {
	model := cfg.Model
	if model == "" {
		model = "default"
	}
	return fmt.Sprintf("%s (model: %s) patterns=%s", cfg.ProcessorPath, model, cfg.PatternsDir)
}
