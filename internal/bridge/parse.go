// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bridge

import (
	"bytes"
	"encoding/json"

	"github.com/pdiddy/conver/pkg/types"
)

// scriptResult mirrors types.Result with pointer fields so that absent
// (or null) keys can be told apart from zero values.
type scriptResult struct {
	Status    *types.Status    `json:"status"`
	Input     *string          `json:"input"`
	Output    *string          `json:"output"`
	Message   *string          `json:"message"`
	ErrorCode *types.ErrorCode `json:"error_code"`
}

// rawOutput picks the text to parse: stdout when it has content, stderr
// otherwise (osascript prints everything to stderr).
func rawOutput(out output) []byte {
	if raw := bytes.TrimSpace(out.Stdout); len(raw) > 0 {
		return raw
	}
	return bytes.TrimSpace(out.Stderr)
}

// parseResult decodes the script's JSON object and fills missing fields
// from the request and the process exit code. It reports false when the
// output is not a JSON object of the expected shape.
func parseResult(out output, req types.Request) (types.Result, bool) {
	raw := rawOutput(out)
	if len(raw) == 0 || raw[0] != '{' {
		return types.Result{}, false
	}

	var sr scriptResult
	if err := json.Unmarshal(raw, &sr); err != nil {
		return types.Result{}, false
	}

	res := types.Result{
		Status:    types.StatusError,
		Input:     req.Input,
		Output:    req.Output,
		ErrorCode: types.ErrorCode(out.ExitCode),
	}
	if sr.Status != nil {
		res.Status = *sr.Status
	}
	if sr.Input != nil {
		res.Input = *sr.Input
	}
	if sr.Output != nil {
		res.Output = *sr.Output
	}
	if sr.Message != nil {
		res.Message = *sr.Message
	}
	if sr.ErrorCode != nil {
		res.ErrorCode = *sr.ErrorCode
	}
	return res, true
}
