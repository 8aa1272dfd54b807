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

// Package pattern lists the fabric patterns directory
package pattern

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/fabric-pattern/pkg/config"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrDirectoryNotFound is returned by List when the patterns directory is absent
	ErrDirectoryNotFound = errors.Base("patterns directory not found")
	// ErrDescriptionUnavailable is never returned to callers; a pattern without a
	// readable description file gets an empty Description
	ErrDescriptionUnavailable = errors.Base("pattern description unavailable")
	// ErrPatternNotFound is returned by Get for unknown names
	ErrPatternNotFound = errors.Base("pattern not found")
)

// reservedEntries are skipped regardless of configuration
var reservedEntries = map[string]bool{
	"raycast":     true,
	"Thumbs.db":   true,
	"desktop.ini": true,
}

// maxConcurrentReads bounds how many description files are read at once
const maxConcurrentReads = 8

// 📄 Pattern is one entry of the patterns directory
type Pattern struct {
	Name        string `json:"name"`                  // file name without extension
	Path        string `json:"path"`                  // absolute path of the entry
	Description string `json:"description,omitempty"` // content of the description file, or ""
	Summary     string `json:"summary,omitempty"`     // first paragraph of Description
}

// 📂 Reader lists patterns from a configured directory
type Reader struct {
	dir             string
	descriptionFile string
	ignore          []string
}

// 🏭 NewReader creates a reader for cfg.PatternsDir
func NewReader(cfg *config.Config) *Reader {
	return &Reader{
		dir:             cfg.PatternsDir,
		descriptionFile: cfg.DescriptionFile,
		ignore:          cfg.IgnorePatterns,
	}
}

// Dir returns the directory being listed
func (r *Reader) Dir() string {
	return r.dir
}

// 📋 List returns the patterns in directory-listing order
func (r *Reader) List(ctx context.Context) ([]Pattern, error) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Errorf("%w: %s", ErrDirectoryNotFound, r.dir)
		}
		return nil, errors.Errorf("checking patterns directory: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, errors.Errorf("reading patterns directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if r.skip(ctx, entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}

	patterns := make([]Pattern, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			patterns[i] = r.load(gctx, name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("loading patterns: %w", err)
	}

	logger.Debug().Str("dir", r.dir).Int("count", len(patterns)).Msg("patterns loaded")

	return patterns, nil
}

// 🔍 Get returns the pattern with the given name
func (r *Reader) Get(ctx context.Context, name string) (*Pattern, error) {
	patterns, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range patterns {
		if patterns[i].Name == name {
			return &patterns[i], nil
		}
	}

	return nil, errors.Errorf("%w: %s", ErrPatternNotFound, name)
}

// 🔍 skip reports whether a directory entry is not a pattern
func (r *Reader) skip(ctx context.Context, name string) bool {
	if strings.HasPrefix(name, ".") || reservedEntries[name] {
		return true
	}

	for _, pattern := range r.ignore {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Str("entry", name).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			zerolog.Ctx(ctx).Debug().Str("entry", name).Str("pattern", pattern).Msg("entry ignored by pattern")
			return true
		}
	}

	return false
}

// 📄 load builds the Pattern for one entry; description failures are swallowed
func (r *Reader) load(ctx context.Context, entry string) Pattern {
	p := Pattern{
		Name: strings.TrimSuffix(entry, filepath.Ext(entry)),
		Path: filepath.Join(r.dir, entry),
	}

	description, err := r.readDescription(p.Path)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("pattern", p.Name).Msg("no description")
		return p
	}

	p.Description = description
	p.Summary = Summarize(ctx, []byte(description))

	return p
}

func (r *Reader) readDescription(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(path, r.descriptionFile))
	if err != nil {
		return "", errors.Errorf("%w: %s", ErrDescriptionUnavailable, err.Error())
	}
	return string(data), nil
}

// SortByName sorts patterns in place by name
func SortByName(patterns []Pattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Name < patterns[j].Name
	})
}
