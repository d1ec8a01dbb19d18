// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"

	"github.com/pdiddy/conver/pkg/types"
)

// Failure categories. Every *Error matches ErrConversion and, for known
// codes, exactly one of the more specific categories.
var (
	ErrConversion           = errors.New("conversion failed")
	ErrIPC                  = errors.New("script communication failed")
	ErrUnsupportedFormat    = errors.New("unsupported format")
	ErrInputNotFound        = errors.New("input file not found")
	ErrAppStart             = errors.New("office application did not start")
	ErrSave                 = errors.New("saving document failed")
	ErrPlatformNotSupported = errors.New("platform not supported")
)

var categories = map[types.ErrorCode]error{
	types.CodeBadRequest:          ErrIPC,
	types.CodeUnsupportedInput:    ErrUnsupportedFormat,
	types.CodeUnsupportedOutput:   ErrUnsupportedFormat,
	types.CodeInputNotFound:       ErrInputNotFound,
	types.CodeAppStartTimeout:     ErrAppStart,
	types.CodeSaveFailed:          ErrSave,
	types.CodeBadScriptOutput:     ErrIPC,
	types.CodeUnsupportedPlatform: ErrPlatformNotSupported,
}

// Category returns the failure category for code, or ErrConversion when
// the code is not in the table.
func Category(code types.ErrorCode) error {
	if cat, ok := categories[code]; ok {
		return cat
	}
	return ErrConversion
}

// Error is a failed conversion carrying the numeric code reported by the
// script or the bridge.
type Error struct {
	Code    types.ErrorCode
	Message string
}

// Error returns the message alone; the code travels in Code.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the category and ErrConversion to errors.Is.
func (e *Error) Unwrap() []error {
	cat := Category(e.Code)
	if cat == ErrConversion {
		return []error{ErrConversion}
	}
	return []error{cat, ErrConversion}
}

// errorFor converts a non-successful result to an *Error. It returns nil
// for error code zero.
func errorFor(res types.Result) error {
	if res.Succeeded() {
		return nil
	}
	msg := res.Message
	if msg == "" {
		msg = "Unknown error"
	}
	return &Error{Code: res.ErrorCode, Message: msg}
}

// Code extracts the conversion error code from err, reporting false when
// err is not (and does not wrap) an *Error.
func Code(err error) (types.ErrorCode, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return types.CodeOK, false
}
