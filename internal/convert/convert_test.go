// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/conver/pkg/types"
)

// fakeBridge implements Bridge for testing. It records requests and
// answers with respond, or with success when respond is nil.
type fakeBridge struct {
	requests []types.Request
	respond  func(types.Request) types.Result
}

func (f *fakeBridge) Convert(_ context.Context, req types.Request) types.Result {
	f.requests = append(f.requests, req)
	if f.respond != nil {
		return f.respond(req)
	}
	return types.Result{Status: types.StatusSuccess, Input: req.Input, Output: req.Output, Message: "OK"}
}

func (f *fakeBridge) Platform() string { return "darwin" }

func failWith(code types.ErrorCode, msg string) func(types.Request) types.Result {
	return func(req types.Request) types.Result {
		return types.ErrorResult(req, code, msg)
	}
}

// fakeRecorder collects records and optionally fails.
type fakeRecorder struct {
	records []types.Record
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, rec types.Record) error {
	f.records = append(f.records, rec)
	return f.err
}

// setupDoc creates a document in a temp dir and returns its path.
func setupDoc(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake docx"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalizePaths(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	inDir := filepath.Join(string(filepath.Separator), "docs", "drafts")
	input := filepath.Join(inDir, "report.docx")

	tests := []struct {
		name    string
		input   string
		output  string
		wantIn  string
		wantOut string
	}{
		{
			name:    "bare filename lands beside input",
			input:   input,
			output:  "report.pdf",
			wantIn:  input,
			wantOut: filepath.Join(inDir, "report.pdf"),
		},
		{
			name:    "dot-slash filename lands beside input",
			input:   input,
			output:  "." + string(filepath.Separator) + "report.pdf",
			wantIn:  input,
			wantOut: filepath.Join(inDir, "report.pdf"),
		},
		{
			name:    "absolute output kept",
			input:   input,
			output:  filepath.Join(string(filepath.Separator), "out", "report.pdf"),
			wantIn:  input,
			wantOut: filepath.Join(string(filepath.Separator), "out", "report.pdf"),
		},
		{
			name:    "relative output with directory resolves against cwd",
			input:   input,
			output:  filepath.Join("exports", "report.pdf"),
			wantIn:  input,
			wantOut: filepath.Join(cwd, "exports", "report.pdf"),
		},
		{
			name:    "relative input becomes absolute",
			input:   "report.docx",
			output:  "report.rtf",
			wantIn:  filepath.Join(cwd, "report.docx"),
			wantOut: filepath.Join(cwd, "report.rtf"),
		},
		{
			name:    "home directory expanded",
			input:   "~/Downloads/report.docx",
			output:  "~/Desktop/report.pdf",
			wantIn:  filepath.Join(home, "Downloads", "report.docx"),
			wantOut: filepath.Join(home, "Desktop", "report.pdf"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, err := NormalizePaths(tt.input, tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIn, in)
			assert.Equal(t, tt.wantOut, out)
			assert.True(t, filepath.IsAbs(in))
			assert.True(t, filepath.IsAbs(out))
		})
	}
}

func TestNormalizePaths_Empty(t *testing.T) {
	_, _, err := NormalizePaths("", "out.pdf")
	require.Error(t, err)
	_, _, err = NormalizePaths("in.docx", "  ")
	require.Error(t, err)
}

func TestConvert_Success(t *testing.T) {
	input := setupDoc(t, "report.docx")
	bridge := &fakeBridge{}
	c := New(bridge, Config{})

	got, err := c.Convert(context.Background(), input, "report.pdf", true)
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(input), "report.pdf")
	assert.Equal(t, want, got)
	require.Len(t, bridge.requests, 1)
	assert.Equal(t, types.Request{Input: input, Output: want, KeepOpen: true}, bridge.requests[0])
}

func TestConvert_ReturnsNormalizedPathNotScriptPath(t *testing.T) {
	input := setupDoc(t, "report.docx")
	bridge := &fakeBridge{respond: func(req types.Request) types.Result {
		return types.Result{Status: types.StatusSuccess, Output: "/somewhere/else.pdf"}
	}}

	got, err := New(bridge, Config{}).Convert(context.Background(), input, "report.pdf", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(input), "report.pdf"), got)
}

func TestConvert_MissingInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.docx")
	bridge := &fakeBridge{}

	_, err := New(bridge, Config{}).Convert(context.Background(), missing, "nope.pdf", false)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrInputNotFound)
	assert.ErrorIs(t, err, ErrConversion)
	code, ok := Code(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeInputNotFound, code)
	assert.Equal(t, "Input file does not exist: "+missing, err.Error())
	assert.Empty(t, bridge.requests, "bridge must not be called for a missing input")
}

func TestConvert_ErrorMapping(t *testing.T) {
	tests := []struct {
		code types.ErrorCode
		want error
	}{
		{types.CodeBadRequest, ErrIPC},
		{types.CodeUnsupportedInput, ErrUnsupportedFormat},
		{types.CodeUnsupportedOutput, ErrUnsupportedFormat},
		{types.CodeInputNotFound, ErrInputNotFound},
		{types.CodeAppStartTimeout, ErrAppStart},
		{types.CodeSaveFailed, ErrSave},
		{types.CodeBadScriptOutput, ErrIPC},
		{types.CodeUnsupportedPlatform, ErrPlatformNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			input := setupDoc(t, "report.docx")
			bridge := &fakeBridge{respond: failWith(tt.code, "boom")}

			_, err := New(bridge, Config{}).Convert(context.Background(), input, "report.pdf", false)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrConversion)

			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, "boom", err.Error())
		})
	}
}

func TestConvert_UnknownCodeIsGeneric(t *testing.T) {
	input := setupDoc(t, "report.docx")
	bridge := &fakeBridge{respond: failWith(57, "")}

	_, err := New(bridge, Config{}).Convert(context.Background(), input, "report.pdf", false)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrConversion)
	for _, cat := range []error{ErrIPC, ErrUnsupportedFormat, ErrInputNotFound, ErrAppStart, ErrSave, ErrPlatformNotSupported} {
		assert.NotErrorIs(t, err, cat)
	}
	assert.Equal(t, "Unknown error", err.Error())
}

func TestConvert_ZeroCodeWithErrorStatusSucceeds(t *testing.T) {
	input := setupDoc(t, "report.docx")
	bridge := &fakeBridge{respond: func(req types.Request) types.Result {
		return types.Result{Status: types.StatusError, ErrorCode: types.CodeOK}
	}}

	_, err := New(bridge, Config{}).Convert(context.Background(), input, "report.pdf", false)
	assert.NoError(t, err)
}

func TestConvert_RecordsHistory(t *testing.T) {
	input := setupDoc(t, "report.docx")
	rec := &fakeRecorder{}
	bridge := &fakeBridge{}
	c := New(bridge, Config{Recorder: rec})

	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		clock = clock.Add(2 * time.Second)
		return clock
	}

	_, err := c.Convert(context.Background(), input, "report.pdf", true)
	require.NoError(t, err)

	_, err = c.Convert(context.Background(), filepath.Join(filepath.Dir(input), "missing.doc"), "x.pdf", false)
	require.Error(t, err)

	require.Len(t, rec.records, 2)
	assert.Equal(t, types.CodeOK, rec.records[0].ErrorCode)
	assert.Equal(t, "darwin", rec.records[0].Platform)
	assert.True(t, rec.records[0].KeepOpen)
	assert.Equal(t, 2*time.Second, rec.records[0].Duration)
	assert.Equal(t, types.CodeInputNotFound, rec.records[1].ErrorCode)
}

func TestConvert_RecorderFailureIgnored(t *testing.T) {
	input := setupDoc(t, "report.docx")
	rec := &fakeRecorder{err: errors.New("database is locked")}

	_, err := New(&fakeBridge{}, Config{Recorder: rec}).Convert(context.Background(), input, "report.pdf", false)
	assert.NoError(t, err)
	assert.Len(t, rec.records, 1)
}

func TestCode(t *testing.T) {
	_, ok := Code(errors.New("plain"))
	assert.False(t, ok)

	wrapped := errors.Join(errors.New("context"), &Error{Code: types.CodeSaveFailed, Message: "x"})
	code, ok := Code(wrapped)
	assert.True(t, ok)
	assert.Equal(t, types.CodeSaveFailed, code)
}

func TestConvert_FailureQuietAtWarnLevel(t *testing.T) {
	input := setupDoc(t, "report.odp")
	core, logs := observer.New(zapcore.WarnLevel)
	bridge := &fakeBridge{respond: failWith(types.CodeSaveFailed, "Save failed.")}

	_, err := New(bridge, Config{Logger: zap.New(core)}).Convert(context.Background(), input, "report.pdf", false)
	require.Error(t, err)
	assert.Zero(t, logs.Len(), "failures are reported by the caller, not logged at warn")

	core, logs = observer.New(zapcore.InfoLevel)
	_, err = New(bridge, Config{Logger: zap.New(core)}).Convert(context.Background(), input, "report.pdf", false)
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("conversion failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("unrecognized input format").Len())
}
