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

package operation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fabric-pattern/pkg/config"
	"github.com/walteh/fabric-pattern/pkg/input"
	"github.com/walteh/fabric-pattern/pkg/proc"
	"github.com/walteh/fabric-pattern/pkg/save"
	"github.com/walteh/fabric-pattern/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

// 🔧 MockTransformer is a mock implementation of the Transformer interface
type MockTransformer struct {
	mock.Mock
}

func (m *MockTransformer) Transform(ctx context.Context, src proc.Source, pattern string) (*proc.Invocation, error) {
	args := m.Called(ctx, src, pattern)
	inv, _ := args.Get(0).(*proc.Invocation)
	return inv, args.Error(1)
}

func (m *MockTransformer) Plan(ctx context.Context, src proc.Source, pattern string) (string, error) {
	args := m.Called(ctx, src, pattern)
	return args.String(0), args.Error(1)
}

// 🔧 MockPersister is a mock implementation of the Persister interface
type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) Save(ctx context.Context, content, name string) (string, error) {
	args := m.Called(ctx, content, name)
	return args.String(0), args.Error(1)
}

func (m *MockPersister) Stage(name string) proc.Stage {
	return proc.Command("save", name)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfg := config.Defaults()
	require.NoError(t, cfg.Validate(), "config should validate")
	return cfg
}

func TestNew(t *testing.T) {
	_, err := New(Options{Processor: &MockTransformer{}})
	require.Error(t, err, "missing config should fail")

	_, err = New(Options{Config: config.Defaults()})
	require.Error(t, err, "missing processor should fail")

	r, err := New(Options{Config: config.Defaults(), Processor: &MockTransformer{}})
	require.NoError(t, err, "saver is optional")
	assert.NotNil(t, r, "runner should be created")
}

func TestNewRequest(t *testing.T) {
	a := NewRequest("summarize", input.ModeClipboard, "hello", "")
	b := NewRequest("summarize", input.ModeClipboard, "hello", "")

	assert.NotEmpty(t, a.ID, "request should get an id")
	assert.NotEqual(t, a.ID, b.ID, "ids should be unique")
	assert.Equal(t, "summarize", a.Pattern, "pattern should match")
}

func TestProcessWithMocks(t *testing.T) {
	tests := []struct {
		name        string
		req         Request
		setup       func(tr *MockTransformer, p *MockPersister)
		want        *Result
		errIs       error
		errContains string
	}{
		{
			name: "output_without_save",
			req:  Request{ID: "r1", Pattern: "summarize", Mode: input.ModeClipboard, Input: "hello world"},
			setup: func(tr *MockTransformer, p *MockPersister) {
				tr.On("Transform", mock.Anything, mock.MatchedBy(func(src *input.Source) bool {
					return src.Kind == input.KindText && src.Text == "hello world"
				}), "summarize").Return(&proc.Invocation{Command: "cmd", Output: "summary"}, nil)
			},
			want: &Result{ID: "r1", Output: "summary", Command: "cmd"},
		},
		{
			name: "output_with_save",
			req:  Request{ID: "r2", Pattern: "summarize", Mode: input.ModeURL, Input: "example.com", SaveAs: "notes"},
			setup: func(tr *MockTransformer, p *MockPersister) {
				tr.On("Transform", mock.Anything, mock.MatchedBy(func(src *input.Source) bool {
					return src.Kind == input.KindFetch
				}), "summarize").Return(&proc.Invocation{Command: "cmd", Output: "summary"}, nil)
				p.On("Save", mock.Anything, "summary", "notes").Return("/tmp/out/2024-01-15-notes.md", nil)
			},
			want: &Result{ID: "r2", Output: "summary", Command: "cmd", Saved: true, SavedPath: "/tmp/out/2024-01-15-notes.md"},
		},
		{
			name: "transform_failure_skips_save",
			req:  Request{ID: "r3", Pattern: "summarize", Mode: input.ModeClipboard, Input: "text", SaveAs: "notes"},
			setup: func(tr *MockTransformer, p *MockPersister) {
				tr.On("Transform", mock.Anything, mock.Anything, "summarize").
					Return(nil, &proc.ProcessorError{Tool: "fabric", Stderr: "warning"})
			},
			errContains: "fabric error: warning",
		},
		{
			name: "save_failure_is_terminal",
			req:  Request{ID: "r4", Pattern: "summarize", Mode: input.ModeClipboard, Input: "text", SaveAs: "notes"},
			setup: func(tr *MockTransformer, p *MockPersister) {
				tr.On("Transform", mock.Anything, mock.Anything, "summarize").
					Return(&proc.Invocation{Command: "cmd", Output: "summary"}, nil)
				p.On("Save", mock.Anything, "summary", "notes").
					Return("", errors.Errorf("%w at: /tmp/x.md", save.ErrSaveVerificationFailed))
			},
			errIs: save.ErrSaveVerificationFailed,
		},
		{
			name:  "empty_input_runs_nothing",
			req:   Request{ID: "r5", Pattern: "summarize", Mode: input.ModeClipboard, Input: "  "},
			errIs: input.ErrInputMissing,
		},
		{
			name:        "missing_pattern",
			req:         Request{ID: "r6", Mode: input.ModeClipboard, Input: "text"},
			errContains: "pattern is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &MockTransformer{}
			p := &MockPersister{}
			if tt.setup != nil {
				tt.setup(tr, p)
			}

			r, err := New(Options{Config: testConfig(t), Processor: tr, Saver: p})
			require.NoError(t, err, "New should succeed")

			got, err := r.Process(testutils.Context(t), tt.req)
			if tt.errIs != nil || tt.errContains != "" {
				require.Error(t, err, "Process should fail")
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs, "error should match")
				}
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				}
				assert.Nil(t, got, "no result on failure")
			} else {
				require.NoError(t, err, "Process should succeed")
				assert.Equal(t, tt.want, got, "result should match")
			}

			tr.AssertExpectations(t)
			p.AssertExpectations(t)
		})
	}
}

func TestProcessAssignsID(t *testing.T) {
	tr := &MockTransformer{}
	tr.On("Transform", mock.Anything, mock.Anything, "summarize").
		Return(&proc.Invocation{Command: "cmd", Output: "out"}, nil)

	r, err := New(Options{Config: testConfig(t), Processor: tr})
	require.NoError(t, err, "New should succeed")

	got, err := r.Process(testutils.Context(t), Request{Pattern: "summarize", Mode: input.ModeClipboard, Input: "text"})
	require.NoError(t, err, "Process should succeed")
	assert.NotEmpty(t, got.ID, "result should carry a generated id")
}

func TestProcessSaveWithoutSaver(t *testing.T) {
	r, err := New(Options{Config: testConfig(t), Processor: &MockTransformer{}})
	require.NoError(t, err, "New should succeed")

	_, err = r.Process(testutils.Context(t), Request{Pattern: "summarize", Mode: input.ModeClipboard, Input: "text", SaveAs: "notes"})
	require.Error(t, err, "Process should fail")
	assert.Contains(t, err.Error(), "no saver", "error should explain")
}

func TestDryRun(t *testing.T) {
	tr := &MockTransformer{}
	tr.On("Plan", mock.Anything, mock.Anything, "summarize").Return("curl -sL https://r.jina.ai/example.com | fabric --pattern summarize", nil)

	r, err := New(Options{Config: testConfig(t), Processor: tr, Saver: &MockPersister{}})
	require.NoError(t, err, "New should succeed")

	got, err := r.DryRun(testutils.Context(t), Request{Pattern: "summarize", Mode: input.ModeURL, Input: "example.com", SaveAs: "notes"})
	require.NoError(t, err, "DryRun should succeed")
	assert.Equal(t, "curl -sL https://r.jina.ai/example.com | fabric --pattern summarize | save notes", got, "plan should match")
	tr.AssertNotCalled(t, "Transform", mock.Anything, mock.Anything, mock.Anything)
}

// the tests below run real pipelines against stub binaries

func stubRunner(t *testing.T, fabricBody, saveBody string, targetDir string, now time.Time) (*Runner, string) {
	t.Helper()
	cfg := testConfig(t)

	bin := t.TempDir()
	cfg.ProcessorPath = testutils.WriteStub(t, bin, "fabric", fabricBody)
	cfg.SavePath = testutils.WriteStub(t, bin, "save", saveBody)
	cfg.SaveTargetDir = targetDir
	cfg.ExtraPath = []string{bin}

	env := proc.NewEnv(cfg.ExtraPath)
	r, err := New(Options{
		Config:    cfg,
		Processor: proc.NewProcessor(cfg, env),
		Saver:     save.NewSaver(cfg, env).WithClock(func() time.Time { return now }),
	})
	require.NoError(t, err, "New should succeed")
	return r, bin
}

func TestProcessPipelines(t *testing.T) {
	day := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	t.Run("clipboard_text_goes_through_temp_file", func(t *testing.T) {
		r, _ := stubRunner(t, `printf 'summary: '; cat`, `cat >/dev/null`, "", day)

		res, err := r.Process(testutils.Context(t), Request{Pattern: "summarize", Mode: input.ModeClipboard, Input: "hello world"})
		require.NoError(t, err, "Process should succeed")

		assert.Equal(t, "summary: hello world", res.Output, "output should match")
		assert.True(t, strings.HasPrefix(res.Command, "cat "), "command should start with the temp file")
		assert.True(t, strings.HasSuffix(res.Command, "fabric --pattern summarize"), "command should end with the processor")

		tmp := strings.Fields(res.Command)[1]
		_, err = os.Stat(tmp)
		assert.True(t, os.IsNotExist(err), "temp file should be removed after the run")
	})

	t.Run("single_line_url_is_fetched_through_proxy", func(t *testing.T) {
		r, bin := stubRunner(t, `cat`, `cat >/dev/null`, "", day)
		testutils.WriteStub(t, bin, "curl", `echo "$2"`)

		res, err := r.Process(testutils.Context(t), Request{Pattern: "extract_wisdom", Mode: input.ModeURL, Input: "example.com/article"})
		require.NoError(t, err, "Process should succeed")

		assert.Equal(t, "https://r.jina.ai/example.com/article\n", res.Output, "processor should receive the fetched page")
		assert.True(t, strings.HasPrefix(res.Command, "curl -sL https://r.jina.ai/example.com/article | "), "command should fetch through the proxy")
		assert.True(t, strings.HasSuffix(res.Command, "fabric --pattern extract_wisdom"), "command should end with the processor")
	})

	t.Run("stderr_with_zero_exit_fails", func(t *testing.T) {
		r, _ := stubRunner(t, `cat >/dev/null; echo out; echo warning >&2`, `cat >/dev/null`, "", day)

		_, err := r.Process(testutils.Context(t), Request{Pattern: "summarize", Mode: input.ModeClipboard, Input: "text"})
		require.Error(t, err, "Process should fail")

		var perr *proc.ProcessorError
		require.True(t, errors.As(err, &perr), "error should be a ProcessorError")
		assert.Equal(t, "warning\n", perr.Stderr, "stderr should be reported")
		assert.Contains(t, err.Error(), "fabric error: warning", "message should name the tool")
	})

	t.Run("save_is_verified", func(t *testing.T) {
		target := t.TempDir()
		r, _ := stubRunner(t, `cat`, `cat >"$2/2024-01-15-$3.md"`, target, day)

		res, err := r.Process(testutils.Context(t), Request{Pattern: "summarize", Mode: input.ModeClipboard, Input: "hello", SaveAs: "meeting-notes"})
		require.NoError(t, err, "Process should succeed")

		want := filepath.Join(target, "2024-01-15-meeting-notes.md")
		assert.True(t, res.Saved, "result should be saved")
		assert.Equal(t, want, res.SavedPath, "saved path should match")

		content, err := os.ReadFile(want)
		require.NoError(t, err, "saved note should exist")
		assert.Equal(t, "hello", string(content), "saved note should hold the output")
	})

	t.Run("save_without_file_fails", func(t *testing.T) {
		target := t.TempDir()
		r, _ := stubRunner(t, `cat`, `cat >/dev/null`, target, day)

		_, err := r.Process(testutils.Context(t), Request{Pattern: "summarize", Mode: input.ModeClipboard, Input: "hello", SaveAs: "meeting-notes"})
		require.Error(t, err, "Process should fail")
		assert.ErrorIs(t, err, save.ErrSaveVerificationFailed, "error should be a verification failure")
		assert.Contains(t, err.Error(), filepath.Join(target, "2024-01-15-meeting-notes.md"), "error should name the expected path")
	})

	t.Run("missing_input_starts_no_process", func(t *testing.T) {
		marker := filepath.Join(t.TempDir(), "called")
		r, _ := stubRunner(t, `touch `+marker+`; cat`, `cat >/dev/null`, "", day)

		_, err := r.Process(testutils.Context(t), Request{Pattern: "summarize", Mode: input.ModeClipboard, Input: ""})
		require.Error(t, err, "Process should fail")
		assert.ErrorIs(t, err, input.ErrInputMissing, "error should be ErrInputMissing")

		_, statErr := os.Stat(marker)
		assert.True(t, os.IsNotExist(statErr), "processor should not run")
	})
}
