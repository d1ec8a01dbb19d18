// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scripts ships the platform automation scripts inside the binary.
//
// The scripts are embedded at build time and extracted to a temporary
// directory on first use, so the conver binary is self-contained. A
// directory on disk can replace the embedded copies for script development.
package scripts

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	// JXA is the macOS JavaScript for Automation script.
	JXA = "convert.jxa"
	// PowerShell is the Windows COM automation script.
	PowerShell = "convert.ps1"
)

// Names lists every embedded script.
var Names = []string{JXA, PowerShell}

//go:embed convert.jxa convert.ps1
var embedded embed.FS

var (
	extractOnce  sync.Once
	extractedDir string
	extractErr   error
)

// Content returns the embedded bytes of the named script.
func Content(name string) ([]byte, error) {
	data, err := embedded.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("embedded script %s: %w", name, err)
	}
	return data, nil
}

// Checksum returns the SHA256 over all embedded scripts in Names order.
func Checksum() string {
	h := sha256.New()
	for _, name := range Names {
		data, _ := embedded.ReadFile(name)
		h.Write([]byte(name))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ExtractedDir returns the directory holding the extracted scripts.
// Extraction happens once per process; later calls return the cached path.
func ExtractedDir() (string, error) {
	extractOnce.Do(func() {
		extractedDir, extractErr = extract(os.TempDir())
	})
	return extractedDir, extractErr
}

// extract writes the embedded scripts under base in a directory named by
// their checksum, so that different builds never share a directory.
// Files already present with the right size are left alone.
func extract(base string) (string, error) {
	dir := filepath.Join(base, "conver-scripts-"+Checksum()[:16])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating script directory: %w", err)
	}

	for _, name := range Names {
		data, err := Content(name)
		if err != nil {
			return "", err
		}
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Size() == int64(len(data)) {
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("writing script %s: %w", name, err)
		}
	}
	return dir, nil
}

// Locator resolves a script name to a file path.
type Locator interface {
	Path(name string) (string, error)
}

// Source locates scripts either in an override directory or among the
// extracted embedded copies.
type Source struct {
	dir string
}

// NewSource returns a Source. An empty dir selects the embedded scripts.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Path returns the file path of the named script.
func (s *Source) Path(name string) (string, error) {
	if s.dir == "" {
		dir, err := ExtractedDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, name), nil
	}

	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("script %s in %s: %w", name, s.dir, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("script %s in %s: %w", name, s.dir, fs.ErrInvalid)
	}
	return path, nil
}
