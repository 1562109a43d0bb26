// Package testutil provides common test utilities for the bookbot packages.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnv provides a sandboxed test environment that validates all paths
// stay within a temporary directory. It automatically cleans up when the
// test completes.
type TestEnv struct {
	t       *testing.T
	rootDir string
}

// NewTestEnv creates a new sandboxed test environment.
// The environment is automatically cleaned up when the test completes.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return &TestEnv{
		t:       t,
		rootDir: t.TempDir(),
	}
}

// RootDir returns the root directory of the test environment.
func (e *TestEnv) RootDir() string {
	return e.rootDir
}

// Path returns an absolute path within the test environment.
// It validates that the path does not escape the sandbox.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()

	// Join elements and clean the path
	relPath := filepath.Join(elem...)
	absPath := filepath.Join(e.rootDir, relPath)

	// Clean the path to resolve any .. or . components
	cleanPath := filepath.Clean(absPath)

	// Verify the path stays within the sandbox
	if !e.isWithinSandbox(cleanPath) {
		e.t.Fatalf("path %q escapes test sandbox %q", cleanPath, e.rootDir)
	}

	return cleanPath
}

// isWithinSandbox checks if a path is within the test environment root.
func (e *TestEnv) isWithinSandbox(path string) bool {
	// Ensure both paths are clean
	cleanRoot := filepath.Clean(e.rootDir)
	cleanPath := filepath.Clean(path)

	// Check if the path starts with the root directory
	return strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator)) || cleanPath == cleanRoot
}

// WriteFile writes content to a file within the test environment.
// It creates any necessary parent directories.
func (e *TestEnv) WriteFile(path string, content []byte) {
	e.t.Helper()

	absPath := e.Path(path)

	// Create parent directories
	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("failed to create directory %q: %v", dir, err)
	}

	// Write the file
	if err := os.WriteFile(absPath, content, 0o644); err != nil {
		e.t.Fatalf("failed to write file %q: %v", absPath, err)
	}
}

// WriteFileString writes a string to a file within the test environment.
func (e *TestEnv) WriteFileString(path, content string) {
	e.t.Helper()
	e.WriteFile(path, []byte(content))
}

// ReadFile reads a file from within the test environment.
func (e *TestEnv) ReadFile(path string) []byte {
	e.t.Helper()

	absPath := e.Path(path)

	content, err := os.ReadFile(absPath)
	if err != nil {
		e.t.Fatalf("failed to read file %q: %v", absPath, err)
	}

	return content
}

// ReadFileString reads a file as a string from within the test environment.
func (e *TestEnv) ReadFileString(path string) string {
	e.t.Helper()
	return string(e.ReadFile(path))
}

// MkdirAll creates a directory and all necessary parents within the test environment.
func (e *TestEnv) MkdirAll(path string) {
	e.t.Helper()

	absPath := e.Path(path)

	if err := os.MkdirAll(absPath, 0o755); err != nil {
		e.t.Fatalf("failed to create directory %q: %v", absPath, err)
	}
}

// FileExists checks if a file exists within the test environment.
func (e *TestEnv) FileExists(path string) bool {
	e.t.Helper()

	absPath := e.Path(path)
	_, err := os.Stat(absPath)
	return err == nil
}

// Chdir changes the working directory to a path within the test environment.
// It restores the original working directory when the test completes.
func (e *TestEnv) Chdir(path string) {
	e.t.Helper()

	absPath := e.Path(path)

	// Get the current directory
	origDir, err := os.Getwd()
	if err != nil {
		e.t.Fatalf("failed to get current directory: %v", err)
	}

	// Change to the new directory
	if err := os.Chdir(absPath); err != nil {
		e.t.Fatalf("failed to change directory to %q: %v", absPath, err)
	}

	// Restore on cleanup
	e.t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			e.t.Errorf("failed to restore directory to %q: %v", origDir, err)
		}
	})
}
