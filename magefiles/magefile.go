//go:build mage

// Package main contains Mage build targets for conver developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "conver"
	cmdPkg  = "./cmd/conver"
)

// Default is the target run by a bare `mage`.
var Default = Build

// ldflags stamps the binary with the version from CONVER_VERSION or git.
func ldflags() string {
	v := os.Getenv("CONVER_VERSION")
	if v == "" {
		if out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil {
			v = out
		}
	}
	if v == "" {
		v = "dev"
	}
	return "-X main.version=" + v
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", ldflags(), "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Install installs the CLI into GOBIN.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), cmdPkg)
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Stats prints project metrics: Go production/test lines and automation
// script lines.
func Stats() error {
	counts := map[string]int{}
	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") || d.Name() == binDir || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		var kind string
		switch {
		case strings.HasSuffix(path, "_test.go"):
			kind = "test"
		case filepath.Ext(path) == ".go":
			kind = "prod"
		case filepath.Ext(path) == ".jxa", filepath.Ext(path) == ".ps1":
			kind = "script"
		default:
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		counts[kind] += countLines(data)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", counts["prod"])
	fmt.Printf("Lines of code (Go, tests):      %d\n", counts["test"])
	fmt.Printf("Lines of code (scripts):        %d\n", counts["script"])
	return nil
}

// countLines counts non-blank lines.
func countLines(data []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n
}
