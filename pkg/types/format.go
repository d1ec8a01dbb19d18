// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a document file extension without the leading dot.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatDOC  Format = "doc"
	FormatPDF  Format = "pdf"
	FormatRTF  Format = "rtf"
	FormatODT  Format = "odt"
	FormatTXT  Format = "txt"
	FormatHTML Format = "html"
)

// DefaultFormat is the target used when neither an output path nor a format
// flag is given.
const DefaultFormat = FormatPDF

// OutputFormats lists the targets the office application can save to, in
// the order the CLI presents them.
var OutputFormats = []Format{FormatPDF, FormatDOCX, FormatDOC, FormatRTF, FormatODT, FormatTXT, FormatHTML}

// InputFormats lists the formats the office application can open.
var InputFormats = []Format{FormatDOCX, FormatDOC, FormatRTF, FormatODT, FormatTXT, FormatHTML}

// ParseFormat accepts an extension with or without a leading dot, in any
// case, and returns the matching output format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	for _, known := range OutputFormats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// Ext returns the extension with a leading dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// FormatOf returns the format named by path's extension, lower-cased.
func FormatOf(path string) Format {
	return Format(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")))
}

// IsInput reports whether the office application is known to open f.
func (f Format) IsInput() bool {
	for _, known := range InputFormats {
		if f == known {
			return true
		}
	}
	return false
}
