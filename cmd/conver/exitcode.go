// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"github.com/pdiddy/conver/internal/convert"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// reportedError marks an error whose message has already been printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	return &reportedError{err: err}
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// exitCode maps a command error to the process exit status. Conversion
// failures exit with their error code when it fits in a status byte.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, convert.ErrUsage) {
		return exitUsage
	}
	if code, ok := convert.Code(err); ok {
		if c := int(code); c > 0 && c < 256 {
			return c
		}
	}
	return exitFailure
}
