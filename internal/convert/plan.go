// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/conver/pkg/types"
)

// ErrUsage marks errors caused by an invalid combination of CLI inputs.
var ErrUsage = errors.New("usage error")

// Job is one input/output pair to convert.
type Job struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// PlanOptions are the CLI's raw choices.
type PlanOptions struct {
	// Inputs are the documents to convert, as given.
	Inputs []string

	// Output is a file (one input) or a directory (several inputs).
	Output string

	// Target is the format picked by a format flag. It cannot be combined
	// with Output.
	Target types.Format

	// DefaultTarget applies when neither Output nor Target is set
	// (default types.DefaultFormat).
	DefaultTarget types.Format
}

// UsageError is an invalid command line. It matches ErrUsage and prints
// its message alone.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// Is reports whether target is ErrUsage.
func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// Usagef returns a *UsageError with a formatted message.
func Usagef(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// Plan turns CLI choices into jobs.
//
// With several inputs the output directory defaults to the inputs' common
// parent and is created if needed; each job writes <dir>/<stem>.<target>.
// Every input must exist. With one input an explicit output is used as given, otherwise the input
// path with its extension swapped for the target.
func Plan(opts PlanOptions) ([]Job, error) {
	if len(opts.Inputs) == 0 {
		return nil, Usagef("no input files specified")
	}
	if opts.Output != "" && opts.Target != "" {
		return nil, Usagef("cannot use both --output and format flags together")
	}
	for _, in := range opts.Inputs {
		if err := checkInput(in); err != nil {
			return nil, err
		}
	}

	target := opts.Target
	if target == "" {
		target = opts.DefaultTarget
	}
	if target == "" {
		target = types.DefaultFormat
	}

	if len(opts.Inputs) == 1 {
		in := opts.Inputs[0]
		if opts.Output != "" {
			return []Job{{Input: in, Output: opts.Output}}, nil
		}
		return []Job{{Input: in, Output: withExt(in, target)}}, nil
	}

	dir := opts.Output
	if dir == "" {
		parent, ok, err := commonParent(opts.Inputs)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, Usagef("input files are in different directories; specify --output DIRECTORY")
		}
		dir = parent
	}

	expanded, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	dir, err = filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory %s: %w", opts.Output, err)
	}

	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return nil, Usagef("--output must be a directory for multiple inputs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	jobs := make([]Job, 0, len(opts.Inputs))
	for _, in := range opts.Inputs {
		jobs = append(jobs, Job{
			Input:  in,
			Output: filepath.Join(dir, stem(in)+target.Ext()),
		})
	}
	return jobs, nil
}

// commonParent returns the single absolute parent directory shared by all
// paths, reporting false when they live in different directories.
func commonParent(paths []string) (string, bool, error) {
	var parent string
	for i, p := range paths {
		expanded, err := expandHome(p)
		if err != nil {
			return "", false, err
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return "", false, fmt.Errorf("resolving %s: %w", p, err)
		}
		dir := filepath.Dir(abs)
		if i == 0 {
			parent = dir
			continue
		}
		if dir != parent {
			return "", false, nil
		}
	}
	return parent, true, nil
}

// checkInput rejects inputs that do not exist before anything is converted.
func checkInput(in string) error {
	expanded, err := expandHome(in)
	if err != nil {
		return err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return Usagef("Input file does not exist: %s", in)
	}
	if info.IsDir() {
		return Usagef("Input is a directory: %s", in)
	}
	return nil
}

func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func withExt(p string, f types.Format) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + f.Ext()
}
