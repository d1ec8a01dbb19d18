// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert is the high-level document conversion API. It
// normalizes paths, checks the input, hands the request to the platform
// bridge and turns non-zero error codes into categorized errors.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/conver/internal/logging"
	"github.com/pdiddy/conver/pkg/types"
)

// Bridge runs one conversion through the platform automation script.
type Bridge interface {
	Convert(ctx context.Context, req types.Request) types.Result
	Platform() string
}

// Recorder stores conversion attempts. History failures never fail a
// conversion; they are logged.
type Recorder interface {
	Record(ctx context.Context, rec types.Record) error
}

// Converter converts documents through a Bridge.
type Converter struct {
	bridge   Bridge
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time
}

// Config configures a Converter.
type Config struct {
	// Recorder, when set, records every attempt, successful or not.
	Recorder Recorder

	Logger *zap.Logger
}

// New creates a Converter on top of b.
func New(b Bridge, cfg Config) *Converter {
	return &Converter{
		bridge:   b,
		recorder: cfg.Recorder,
		log:      logging.OrNop(cfg.Logger),
		now:      time.Now,
	}
}

// Convert converts input into output, whose extension selects the target
// format, and returns the resolved absolute output path. Failures are
// *Error values matching one of the category errors.
func (c *Converter) Convert(ctx context.Context, input, output string, keepOpen bool) (string, error) {
	in, out, err := NormalizePaths(input, output)
	if err != nil {
		return "", err
	}

	start := c.now()
	res := c.run(ctx, types.Request{Input: in, Output: out, KeepOpen: keepOpen})
	elapsed := c.now().Sub(start)
	c.record(ctx, res, keepOpen, start, elapsed)

	if err := errorFor(res); err != nil {
		c.log.Info("conversion failed",
			zap.String("input", in),
			zap.String("output", out),
			zap.Int("error_code", int(res.ErrorCode)),
			zap.String("category", res.ErrorCode.String()),
			zap.String("message", res.Message),
		)
		return "", err
	}

	c.log.Info("converted",
		zap.String("input", in),
		zap.String("output", out),
		zap.Duration("elapsed", elapsed),
	)
	return out, nil
}

func (c *Converter) run(ctx context.Context, req types.Request) types.Result {
	if _, err := os.Stat(req.Input); err != nil {
		return types.ErrorResult(req, types.CodeInputNotFound, "Input file does not exist: "+req.Input)
	}
	if f := types.FormatOf(req.Input); !f.IsInput() {
		// The script decides; the office application may still open it.
		c.log.Info("unrecognized input format", zap.String("input", req.Input), zap.String("format", string(f)))
	}
	return c.bridge.Convert(ctx, req)
}

func (c *Converter) record(ctx context.Context, res types.Result, keepOpen bool, start time.Time, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}
	rec := types.Record{
		Result:    res,
		Platform:  c.bridge.Platform(),
		KeepOpen:  keepOpen,
		StartedAt: start,
		Duration:  elapsed,
	}
	if err := c.recorder.Record(ctx, rec); err != nil {
		c.log.Warn("recording history", zap.Error(err))
	}
}

// NormalizePaths resolves the input and output paths of a conversion.
//
// A leading "~" expands to the home directory and the input becomes
// absolute. An output without a directory component is placed beside the
// input; any other output is resolved as given. Both results are absolute.
func NormalizePaths(input, output string) (string, string, error) {
	if strings.TrimSpace(input) == "" {
		return "", "", errors.New("input path is empty")
	}
	if strings.TrimSpace(output) == "" {
		return "", "", errors.New("output path is empty")
	}

	expIn, err := expandHome(input)
	if err != nil {
		return "", "", err
	}
	in, err := filepath.Abs(expIn)
	if err != nil {
		return "", "", fmt.Errorf("resolving input %s: %w", input, err)
	}

	out, err := expandHome(output)
	if err != nil {
		return "", "", err
	}
	if filepath.Dir(out) == "." {
		out = filepath.Join(filepath.Dir(in), out)
	}
	out, err = filepath.Abs(out)
	if err != nil {
		return "", "", fmt.Errorf("resolving output %s: %w", output, err)
	}

	return in, out, nil
}

// expandHome replaces a leading "~" or "~/" with the user's home directory.
func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", p, err)
	}
	return filepath.Join(home, p[1:]), nil
}
