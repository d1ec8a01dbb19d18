// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bridge runs the platform automation script for one conversion
// and turns whatever it prints into a normalized types.Result.
//
// The bridge never returns a Go error: every failure, including an
// unsupported platform or unreadable script output, is a Result with a
// non-zero error code. Mapping codes to errors is the convert package's job.
package bridge

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/conver/internal/logging"
	"github.com/pdiddy/conver/internal/scripts"
	"github.com/pdiddy/conver/pkg/types"
)

const (
	msgUnsupportedPlatform = "Unsupported platform."
	msgInvalidOutput       = "Invalid JSON output from script."
)

// platform describes how one operating system runs its script.
type platform struct {
	script  string
	command func(script, payload string) (name string, args []string)
}

var platforms = map[string]platform{
	"darwin": {
		script: scripts.JXA,
		command: func(script, payload string) (string, []string) {
			return "osascript", []string{"-l", "JavaScript", script, payload}
		},
	},
	"windows": {
		script: scripts.PowerShell,
		command: func(script, payload string) (string, []string) {
			return "powershell", []string{"-ExecutionPolicy", "Bypass", "-File", script, "-jsonArgs", payload}
		},
	},
}

// Supported reports whether goos has an automation script.
func Supported(goos string) bool {
	_, ok := platforms[goos]
	return ok
}

// Bridge invokes platform scripts. The zero value is not usable; call New.
type Bridge struct {
	goos    string
	scripts scripts.Locator
	exec    executor
	timeout time.Duration
	log     *zap.Logger
}

// Config configures a Bridge. Zero values select the running platform,
// the embedded scripts, no timeout and a no-op logger.
type Config struct {
	// Platform overrides the detected operating system.
	Platform string

	// Scripts locates the automation scripts.
	Scripts scripts.Locator

	// Timeout bounds each script run. Zero disables the limit.
	Timeout time.Duration

	Logger *zap.Logger
}

// New creates a Bridge from cfg.
func New(cfg Config) *Bridge {
	b := &Bridge{
		goos:    cfg.Platform,
		scripts: cfg.Scripts,
		exec:    defaultExec,
		timeout: cfg.Timeout,
		log:     logging.OrNop(cfg.Logger),
	}
	if b.goos == "" {
		b.goos = runtime.GOOS
	}
	if b.scripts == nil {
		b.scripts = scripts.NewSource("")
	}
	return b
}

// Platform returns the operating system the bridge targets.
func (b *Bridge) Platform() string { return b.goos }

// Convert runs the platform script for req and returns its normalized
// result. It blocks until the script exits.
func (b *Bridge) Convert(ctx context.Context, req types.Request) types.Result {
	p, ok := platforms[b.goos]
	if !ok {
		b.log.Debug("no automation script for platform", zap.String("platform", b.goos))
		return types.ErrorResult(req, types.CodeUnsupportedPlatform, msgUnsupportedPlatform)
	}

	script, err := b.scripts.Path(p.script)
	if err != nil {
		b.log.Info("locating script", zap.String("script", p.script), zap.Error(err))
		return types.ErrorResult(req, types.CodeBadScriptOutput, "Script unavailable: "+err.Error())
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return types.ErrorResult(req, types.CodeBadRequest, "Encoding request: "+err.Error())
	}

	name, args := p.command(script, string(payload))

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	b.log.Debug("running script",
		zap.String("platform", b.goos),
		zap.String("command", name),
		zap.String("script", script),
		zap.String("input", req.Input),
		zap.String("output", req.Output),
		zap.Bool("keep_open", req.KeepOpen),
	)

	start := time.Now()
	out, err := b.exec.Run(ctx, name, args)
	b.log.Debug("script finished",
		zap.Int("exit_code", out.ExitCode),
		zap.Int("stdout_bytes", len(out.Stdout)),
		zap.Int("stderr_bytes", len(out.Stderr)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		b.log.Info("script did not complete", zap.String("command", name), zap.Error(err))
		return types.ErrorResult(req, types.CodeBadScriptOutput, "Script did not complete: "+err.Error())
	}

	res, ok := parseResult(out, req)
	if !ok {
		b.log.Info("invalid script output",
			zap.ByteString("stdout", truncate(out.Stdout)),
			zap.ByteString("stderr", truncate(out.Stderr)),
		)
		return types.ErrorResult(req, types.CodeBadScriptOutput, msgInvalidOutput)
	}
	return res
}

// truncate keeps log entries bounded when a script dumps a stack trace.
func truncate(b []byte) []byte {
	const limit = 512
	if len(b) > limit {
		return b[:limit]
	}
	return b
}
