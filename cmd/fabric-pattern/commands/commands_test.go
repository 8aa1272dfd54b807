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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fabric-pattern/cmd/fabric-pattern/opts"
	"github.com/walteh/fabric-pattern/pkg/config"
	"github.com/walteh/fabric-pattern/pkg/log"
	"github.com/walteh/fabric-pattern/pkg/pattern"
	"github.com/walteh/fabric-pattern/pkg/proc"
	"github.com/walteh/fabric-pattern/pkg/testutils"
)

// fakeClipboard is an in-memory clipboard
type fakeClipboard struct {
	text    string
	written string
}

func (c *fakeClipboard) ReadText() (string, error) {
	return c.text, nil
}

func (c *fakeClipboard) WriteText(text string) error {
	c.written = text
	return nil
}

// lockedBuffer is written by the spinner goroutine while tests read it
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	opts      *opts.RootOpts
	clipboard *fakeClipboard
	toasts    *lockedBuffer
	bin       string
}

func newFixture(t *testing.T, patterns map[string]string) *fixture {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	dir := t.TempDir()
	for name, description := range patterns {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0755), "creating pattern should succeed")
		if description != "" {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name, "system.md"), []byte(description), 0644), "writing description should succeed")
		}
	}

	bin := t.TempDir()
	cfg := config.Defaults()
	cfg.PatternsDir = dir
	cfg.ProcessorPath = filepath.Join(bin, "fabric")
	cfg.SavePath = filepath.Join(bin, "save")
	cfg.ExtraPath = []string{bin}
	require.NoError(t, cfg.Validate(), "config should validate")

	toasts := &lockedBuffer{}
	cb := &fakeClipboard{}

	return &fixture{
		opts: &opts.RootOpts{
			Config:     cfg,
			Env:        proc.NewEnv(cfg.ExtraPath),
			UserLogger: log.NewUserLoggerTo(testutils.Context(t), toasts),
			Clipboard:  cb,
		},
		clipboard: cb,
		toasts:    toasts,
		bin:       bin,
	}
}

func (f *fixture) stub(t *testing.T, name, body string) {
	t.Helper()
	testutils.WriteStub(t, f.bin, name, body)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(testutils.Context(t))
	return out.String(), err
}

func TestListCmd(t *testing.T) {
	f := newFixture(t, map[string]string{
		"summarize":      "# IDENTITY\n\nYou summarize content.\n",
		"extract_wisdom": "You extract wisdom.\n",
		"no_desc":        "",
	})

	t.Run("json_sorted", func(t *testing.T) {
		out, err := execute(t, NewListCmd(f.opts), "--json")
		require.NoError(t, err, "list should succeed")

		var got []pattern.Pattern
		require.NoError(t, json.Unmarshal([]byte(out), &got), "output should be JSON")
		require.Len(t, got, 3, "all patterns should be listed")
		assert.Equal(t, "extract_wisdom", got[0].Name, "patterns should be sorted")
		assert.Equal(t, "no_desc", got[1].Name, "patterns should be sorted")
		assert.Equal(t, "summarize", got[2].Name, "patterns should be sorted")
		assert.Equal(t, "You summarize content.", got[2].Summary, "summary should be the first paragraph")
		assert.Empty(t, got[1].Description, "missing description should be empty")
	})

	t.Run("console", func(t *testing.T) {
		out, err := execute(t, NewListCmd(f.opts))
		require.NoError(t, err, "list should succeed")
		assert.Contains(t, out, "3 patterns in", "header should be printed")
		assert.Contains(t, out, "summarize", "pattern should be printed")
		assert.Contains(t, out, "(no description)", "missing description should be marked")
	})
}

func TestListCmdMissingDirectory(t *testing.T) {
	f := newFixture(t, nil)
	f.opts.Config.PatternsDir = filepath.Join(t.TempDir(), "missing")

	out, err := execute(t, NewListCmd(f.opts), "--json")
	require.NoError(t, err, "missing directory should not fail")
	assert.Equal(t, "[]\n", out, "list should be empty")
	assert.Contains(t, f.toasts.String(), "Patterns directory not found", "warning should be shown")
}

func TestRunCmd(t *testing.T) {
	t.Run("clipboard_raw_copy", func(t *testing.T) {
		f := newFixture(t, map[string]string{"summarize": "Summarize."})
		f.stub(t, "fabric", `printf 'summary: '; cat`)
		f.clipboard.text = "hello world"

		out, err := execute(t, NewRunCmd(f.opts), "summarize", "--raw", "--copy")
		require.NoError(t, err, "run should succeed")
		assert.Equal(t, "summary: hello world", out, "output should be printed raw")
		assert.Equal(t, "summary: hello world", f.clipboard.written, "output should be copied")
		assert.Contains(t, f.toasts.String(), "Processing complete", "success should be shown")
	})

	t.Run("missing_save_warns_and_continues", func(t *testing.T) {
		f := newFixture(t, map[string]string{"summarize": "Summarize."})
		f.stub(t, "fabric", `cat`)
		f.clipboard.text = "hello"

		out, err := execute(t, NewRunCmd(f.opts), "summarize", "--raw")
		require.NoError(t, err, "run should succeed without save")
		assert.Equal(t, "hello", out, "output should be printed")
		assert.Contains(t, f.toasts.String(), "save command not found", "missing save should be warned about")
		assert.Contains(t, f.toasts.String(), "Processing complete", "run should still complete")
	})

	t.Run("dry_run_url", func(t *testing.T) {
		f := newFixture(t, map[string]string{"summarize": "Summarize."})

		out, err := execute(t, NewRunCmd(f.opts), "summarize", "--url", "example.com/article", "--dry-run")
		require.NoError(t, err, "dry run should succeed")
		assert.Equal(t, "curl -sL https://r.jina.ai/example.com/article | "+f.opts.Config.ProcessorPath+" --pattern summarize\n", out, "plan should match")
	})

	t.Run("dry_run_command_with_save", func(t *testing.T) {
		f := newFixture(t, map[string]string{"summarize": "Summarize."})
		f.opts.Config.Model = "gpt-4o"

		out, err := execute(t, NewRunCmd(f.opts), "summarize", "--command", "yt --transcript https://youtu.be/x", "--save", "notes", "--dry-run")
		require.NoError(t, err, "dry run should succeed")
		assert.Equal(t, "yt --transcript https://youtu.be/x | "+f.opts.Config.ProcessorPath+" --pattern summarize -m gpt-4o | "+f.opts.Config.SavePath+" notes\n", out, "plan should match")
	})

	t.Run("empty_clipboard", func(t *testing.T) {
		f := newFixture(t, map[string]string{"summarize": "Summarize."})

		_, err := execute(t, NewRunCmd(f.opts), "summarize")
		require.Error(t, err, "run should fail")
		assert.Contains(t, err.Error(), "no input", "error should explain")
	})

	t.Run("unknown_pattern", func(t *testing.T) {
		f := newFixture(t, map[string]string{"summarize": "Summarize."})

		_, err := execute(t, NewRunCmd(f.opts), "nope")
		require.Error(t, err, "run should fail")
		assert.ErrorIs(t, err, pattern.ErrPatternNotFound, "error should be ErrPatternNotFound")
	})

	t.Run("processor_stderr_fails", func(t *testing.T) {
		f := newFixture(t, map[string]string{"summarize": "Summarize."})
		f.stub(t, "fabric", `cat; echo "model not found" >&2`)
		f.clipboard.text = "hello"

		_, err := execute(t, NewRunCmd(f.opts), "summarize", "--raw")
		require.Error(t, err, "run should fail")
		assert.Contains(t, err.Error(), "fabric error: model not found", "stderr should be reported")
	})
}

func TestRunCmdPicker(t *testing.T) {
	origFind, origPrompt := findPattern, promptText
	t.Cleanup(func() {
		findPattern, promptText = origFind, origPrompt
	})

	t.Run("pick_and_form", func(t *testing.T) {
		f := newFixture(t, map[string]string{"alpha": "A.", "beta": "B."})
		f.clipboard.text = "line one\nline two"

		var offered []string
		findPattern = func(patterns []pattern.Pattern) (int, error) {
			for _, p := range patterns {
				offered = append(offered, p.Name)
			}
			return 1, nil
		}
		var prompts []string
		promptText = func(label string) (string, error) {
			prompts = append(prompts, label)
			return "", nil
		}

		out, err := execute(t, NewRunCmd(f.opts), "--dry-run")
		require.NoError(t, err, "run should succeed")
		assert.Equal(t, []string{"alpha", "beta"}, offered, "picker should get sorted patterns")
		assert.Len(t, prompts, 2, "form should ask for URL and save name")
		assert.True(t, strings.HasPrefix(out, "cat "), "clipboard text should go through a temp file")
		assert.Contains(t, out, "--pattern beta", "picked pattern should run")
	})

	t.Run("abort", func(t *testing.T) {
		f := newFixture(t, map[string]string{"alpha": "A."})
		findPattern = func(patterns []pattern.Pattern) (int, error) {
			return 0, fuzzyfinder.ErrAbort
		}

		out, err := execute(t, NewRunCmd(f.opts))
		require.NoError(t, err, "abort should not fail")
		assert.Empty(t, out, "nothing should be printed")
	})
}

func TestDoctorCmd(t *testing.T) {
	t.Run("all_present", func(t *testing.T) {
		f := newFixture(t, map[string]string{"summarize": ""})
		f.stub(t, "fabric", "true")
		f.stub(t, "save", "true")

		_, err := execute(t, NewDoctorCmd(f.opts))
		require.NoError(t, err, "doctor should succeed")
		assert.Contains(t, f.toasts.String(), f.opts.Config.ProcessorPath, "resolved path should be shown")
	})

	t.Run("save_missing", func(t *testing.T) {
		f := newFixture(t, map[string]string{"summarize": ""})
		f.stub(t, "fabric", "true")

		_, err := execute(t, NewDoctorCmd(f.opts))
		require.Error(t, err, "doctor should fail")
		assert.Contains(t, err.Error(), "1 required binaries missing", "error should count")
		assert.Contains(t, f.toasts.String(), "save command not found", "failure should be shown")
	})
}
