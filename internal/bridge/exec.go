// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// output is what a finished subprocess left behind.
type output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// executor abstracts command execution for testing.
type executor interface {
	// Run executes name with args and waits for it. A non-zero exit status
	// is reported in output.ExitCode, not as an error; the error is reserved
	// for processes that could not be started or were cancelled.
	Run(ctx context.Context, name string, args []string) (output, error)
}

// waitDelay bounds how long Run waits for output pipes after the context
// kills the script. Helpers the script spawned may keep the pipes open.
var waitDelay = 2 * time.Second

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) Run(ctx context.Context, name string, args []string) (output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	out := output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("running %s: %w", name, ctxErr)
	}
	if exitErr != nil {
		return out, nil
	}
	return out, fmt.Errorf("running %s: %w", name, err)
}

var defaultExec executor = &osExecutor{}
