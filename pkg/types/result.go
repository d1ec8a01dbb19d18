// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// Status tags a Result as a success or a failure.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorCode is the numeric failure class reported by the automation scripts
// and by the bridge itself. Zero means success.
type ErrorCode int

const (
	CodeOK                  ErrorCode = 0
	CodeBadRequest          ErrorCode = 1
	CodeUnsupportedInput    ErrorCode = 2
	CodeUnsupportedOutput   ErrorCode = 3
	CodeInputNotFound       ErrorCode = 11
	CodeAppStartTimeout     ErrorCode = 21
	CodeSaveFailed          ErrorCode = 31
	CodeBadScriptOutput     ErrorCode = 98
	CodeUnsupportedPlatform ErrorCode = 99
)

var codeNames = map[ErrorCode]string{
	CodeOK:                  "ok",
	CodeBadRequest:          "bad_request",
	CodeUnsupportedInput:    "unsupported_input_format",
	CodeUnsupportedOutput:   "unsupported_output_format",
	CodeInputNotFound:       "input_not_found",
	CodeAppStartTimeout:     "app_start_timeout",
	CodeSaveFailed:          "save_failed",
	CodeBadScriptOutput:     "bad_script_output",
	CodeUnsupportedPlatform: "unsupported_platform",
}

// String returns a stable name for the code. Unknown codes render as
// "code_<n>".
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code_%d", int(c))
}

// Request is the JSON payload handed to a platform script as its single
// argument.
type Request struct {
	Input    string `json:"input" yaml:"input"`
	Output   string `json:"output" yaml:"output"`
	KeepOpen bool   `json:"keepOpen" yaml:"keep_open"`
}

// Result is the outcome of one conversion attempt, as printed by the
// platform script and normalized by the bridge.
type Result struct {
	Status    Status    `json:"status" yaml:"status"`
	Input     string    `json:"input" yaml:"input"`
	Output    string    `json:"output" yaml:"output"`
	Message   string    `json:"message" yaml:"message"`
	ErrorCode ErrorCode `json:"error_code" yaml:"error_code"`
}

// Succeeded reports whether the result carries error code zero. The status
// tag is informational; the code decides.
func (r Result) Succeeded() bool {
	return r.ErrorCode == CodeOK
}

// ErrorResult builds a failed Result for the given request.
func ErrorResult(req Request, code ErrorCode, message string) Result {
	return Result{
		Status:    StatusError,
		Input:     req.Input,
		Output:    req.Output,
		Message:   message,
		ErrorCode: code,
	}
}

// Record is a Result annotated for the history ledger.
type Record struct {
	Result `yaml:",inline"`

	// ID is assigned by the history store.
	ID int64 `json:"id,omitempty" yaml:"id,omitempty"`

	// Platform is the GOOS the conversion ran on.
	Platform string `json:"platform" yaml:"platform"`

	// KeepOpen mirrors the request flag.
	KeepOpen bool `json:"keep_open" yaml:"keep_open"`

	// StartedAt is when the attempt began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Duration is the wall time of the attempt.
	Duration time.Duration `json:"duration" yaml:"duration"`
}
