// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bridge

import (
	"context"
	"encoding/json"
	"errors"
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

// mockExecutor records the last call and returns a configured response.
type mockExecutor struct {
	out  output
	err  error
	name string
	args []string
	ctx  context.Context
}

func (m *mockExecutor) Run(ctx context.Context, name string, args []string) (output, error) {
	m.ctx = ctx
	m.name = name
	m.args = args
	return m.out, m.err
}

// fakeScripts resolves every script into a fixed directory.
type fakeScripts struct {
	dir string
	err error
}

func (f fakeScripts) Path(name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(f.dir, name), nil
}

var testReq = types.Request{Input: "/docs/report.docx", Output: "/docs/report.pdf"}

func newTestBridge(goos string, exec *mockExecutor) *Bridge {
	b := New(Config{Platform: goos, Scripts: fakeScripts{dir: "/opt/conver"}})
	b.exec = exec
	return b
}

func TestConvert_Commands(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		wantName string
		wantArgs func(payload string) []string
	}{
		{
			name:     "macOS runs JXA through osascript",
			goos:     "darwin",
			wantName: "osascript",
			wantArgs: func(p string) []string {
				return []string{"-l", "JavaScript", "/opt/conver/convert.jxa", p}
			},
		},
		{
			name:     "Windows runs PowerShell with bypass policy",
			goos:     "windows",
			wantName: "powershell",
			wantArgs: func(p string) []string {
				return []string{"-ExecutionPolicy", "Bypass", "-File", "/opt/conver/convert.ps1", "-jsonArgs", p}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{out: output{Stdout: []byte(`{"status":"success","input":"/docs/report.docx","output":"/docs/report.pdf","message":"OK","error_code":0}`)}}
			req := testReq
			req.KeepOpen = true

			res := newTestBridge(tt.goos, exec).Convert(context.Background(), req)

			require.True(t, res.Succeeded(), res.Message)
			assert.Equal(t, tt.wantName, exec.name)
			require.NotEmpty(t, exec.args)
			payload := exec.args[len(exec.args)-1]
			assert.Equal(t, tt.wantArgs(payload), exec.args)
			assert.JSONEq(t, `{"input":"/docs/report.docx","output":"/docs/report.pdf","keepOpen":true}`, payload)
		})
	}
}

func TestConvert_UnsupportedPlatform(t *testing.T) {
	exec := &mockExecutor{}
	res := newTestBridge("linux", exec).Convert(context.Background(), testReq)

	assert.Equal(t, types.Result{
		Status:    types.StatusError,
		Input:     testReq.Input,
		Output:    testReq.Output,
		Message:   "Unsupported platform.",
		ErrorCode: types.CodeUnsupportedPlatform,
	}, res)
	assert.Empty(t, exec.name, "no subprocess should be spawned")
}

func TestConvert_ScriptOutput(t *testing.T) {
	tests := []struct {
		name string
		out  output
		want types.Result
	}{
		{
			name: "success on stdout",
			out:  output{Stdout: []byte(`{"status":"success","input":"/docs/report.docx","output":"/docs/report.pdf","message":"OK","error_code":0}` + "\n")},
			want: types.Result{Status: types.StatusSuccess, Input: "/docs/report.docx", Output: "/docs/report.pdf", Message: "OK"},
		},
		{
			name: "osascript prints to stderr",
			out:  output{Stderr: []byte("  {\"status\":\"error\",\"message\":\"Save failed: disk full\",\"error_code\":31}\n")},
			want: types.Result{Status: types.StatusError, Input: testReq.Input, Output: testReq.Output, Message: "Save failed: disk full", ErrorCode: types.CodeSaveFailed},
		},
		{
			name: "stdout wins over stderr",
			out: output{
				Stdout: []byte(`{"status":"success","error_code":0}`),
				Stderr: []byte(`{"status":"error","error_code":31}`),
			},
			want: types.Result{Status: types.StatusSuccess, Input: testReq.Input, Output: testReq.Output},
		},
		{
			name: "missing fields are normalized",
			out:  output{Stdout: []byte(`{}`), ExitCode: 21},
			want: types.Result{Status: types.StatusError, Input: testReq.Input, Output: testReq.Output, ErrorCode: types.CodeAppStartTimeout},
		},
		{
			name: "null fields count as missing",
			out:  output{Stdout: []byte(`{"status":"error","input":null,"output":null,"message":"Missing required fields.","error_code":1}`), ExitCode: 1},
			want: types.Result{Status: types.StatusError, Input: testReq.Input, Output: testReq.Output, Message: "Missing required fields.", ErrorCode: types.CodeBadRequest},
		},
		{
			name: "explicit code wins over exit code",
			out:  output{Stdout: []byte(`{"status":"error","error_code":3}`), ExitCode: 1},
			want: types.Result{Status: types.StatusError, Input: testReq.Input, Output: testReq.Output, ErrorCode: types.CodeUnsupportedOutput},
		},
		{
			name: "unknown code passes through",
			out:  output{Stdout: []byte(`{"status":"error","message":"odd","error_code":57}`)},
			want: types.Result{Status: types.StatusError, Input: testReq.Input, Output: testReq.Output, Message: "odd", ErrorCode: 57},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{out: tt.out}
			res := newTestBridge("darwin", exec).Convert(context.Background(), testReq)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestConvert_InvalidOutput(t *testing.T) {
	tests := []struct {
		name string
		out  output
	}{
		{name: "empty", out: output{ExitCode: 1}},
		{name: "plain text", out: output{Stderr: []byte("execution error: Microsoft Word got an error (-1728)")}},
		{name: "truncated json", out: output{Stdout: []byte(`{"status":"succ`)}},
		{name: "json array", out: output{Stdout: []byte(`[1,2]`)}},
		{name: "json null", out: output{Stdout: []byte(`null`)}},
		{name: "wrong field type", out: output{Stdout: []byte(`{"status":"error","error_code":"31"}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{out: tt.out}
			res := newTestBridge("windows", exec).Convert(context.Background(), testReq)

			assert.Equal(t, types.CodeBadScriptOutput, res.ErrorCode)
			assert.Equal(t, types.StatusError, res.Status)
			assert.Equal(t, "Invalid JSON output from script.", res.Message)
			assert.Equal(t, testReq.Input, res.Input)
			assert.Equal(t, testReq.Output, res.Output)
		})
	}
}

func TestConvert_ExecutorFailure(t *testing.T) {
	exec := &mockExecutor{err: errors.New(`running osascript: exec: "osascript": executable file not found in $PATH`)}
	res := newTestBridge("darwin", exec).Convert(context.Background(), testReq)

	assert.Equal(t, types.CodeBadScriptOutput, res.ErrorCode)
	assert.Contains(t, res.Message, "executable file not found")
}

func TestConvert_ScriptUnavailable(t *testing.T) {
	exec := &mockExecutor{}
	b := New(Config{Platform: "darwin", Scripts: fakeScripts{err: errors.New("no such file")}})
	b.exec = exec
	res := b.Convert(context.Background(), testReq)

	assert.Equal(t, types.CodeBadScriptOutput, res.ErrorCode)
	assert.Contains(t, res.Message, "no such file")
	assert.Empty(t, exec.name)
}

func TestConvert_Timeout(t *testing.T) {
	exec := &mockExecutor{out: output{Stdout: []byte(`{"status":"success","error_code":0}`)}}
	b := New(Config{Platform: "darwin", Scripts: fakeScripts{dir: "/opt/conver"}, Timeout: time.Minute})
	b.exec = exec
	b.Convert(context.Background(), testReq)

	deadline, ok := exec.ctx.Deadline()
	require.True(t, ok, "context should carry a deadline")
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestConvert_NoTimeoutByDefault(t *testing.T) {
	exec := &mockExecutor{out: output{Stdout: []byte(`{"status":"success","error_code":0}`)}}
	newTestBridge("darwin", exec).Convert(context.Background(), testReq)

	_, ok := exec.ctx.Deadline()
	assert.False(t, ok)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("darwin"))
	assert.True(t, Supported("windows"))
	assert.False(t, Supported("linux"))
	assert.False(t, Supported(""))
}

func TestPlatformDefaultsToRuntime(t *testing.T) {
	assert.NotEmpty(t, New(Config{}).Platform())
	assert.Equal(t, "plan9", New(Config{Platform: "plan9"}).Platform())
}

func TestRequestPayloadEscaping(t *testing.T) {
	exec := &mockExecutor{out: output{Stdout: []byte(`{"status":"success","error_code":0}`)}}
	req := types.Request{Input: `/docs/Q&A "draft".docx`, Output: `/docs/Q&A "draft".pdf`}
	newTestBridge("darwin", exec).Convert(context.Background(), req)

	var got types.Request
	require.NoError(t, json.Unmarshal([]byte(exec.args[len(exec.args)-1]), &got))
	assert.Equal(t, req, got)
}

func TestConvert_FailuresQuietAtWarnLevel(t *testing.T) {
	tests := []struct {
		name string
		goos string
		exec *mockExecutor
	}{
		{name: "unsupported platform", goos: "linux", exec: &mockExecutor{}},
		{name: "invalid output", goos: "darwin", exec: &mockExecutor{out: output{Stderr: []byte("execution error: -1728")}}},
		{name: "executor failure", goos: "windows", exec: &mockExecutor{err: errors.New("executable file not found")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			b := New(Config{Platform: tt.goos, Scripts: fakeScripts{dir: "/opt/conver"}, Logger: zap.New(core)})
			b.exec = tt.exec

			res := b.Convert(context.Background(), testReq)
			assert.False(t, res.Succeeded())
			assert.Zero(t, logs.Len())
		})
	}
}
