package reflecttest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/podhmo/scriptreflect"
	"github.com/podhmo/scriptreflect/classdef"
	"github.com/podhmo/scriptreflect/starbind"
)

// WriteFiles creates a temporary directory and populates it with files.
// It returns the directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll(%q): %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile(%q): %v", path, err)
		}
	}
	return dir
}

// Load writes the declaration files to a temporary directory and builds a
// registry from all of them, in file name order.
func Load(t *testing.T, files map[string]string, options ...classdef.Option) *classdef.Registry {
	t.Helper()
	dir := WriteFiles(t, files)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}

	reg, err := classdef.Load(context.Background(), paths, options...)
	if err != nil {
		t.Fatalf("loading declarations: %+v", err)
	}
	return reg
}

// Build builds a registry from in-memory declarations.
func Build(t *testing.T, f *classdef.File, options ...classdef.Option) *classdef.Registry {
	t.Helper()
	reg, err := classdef.Build(f, options...)
	if err != nil {
		t.Fatalf("building registry: %+v", err)
	}
	return reg
}

// Result holds the outcome of Run.
type Result struct {
	*starbind.Result

	// Stdout is everything the script printed.
	Stdout string
}

// Run executes script against reg and returns its globals and output.
func Run(t *testing.T, reg *classdef.Registry, script string) (*Result, error) {
	t.Helper()
	var stdout bytes.Buffer
	b := starbind.New(scriptreflect.New(reg), starbind.WithStdout(&stdout))
	res, err := b.Exec(context.Background(), starbind.Options{
		Filename: "test.star",
		Source:   []byte(script),
	})
	if err != nil {
		return nil, err
	}
	return &Result{Result: res, Stdout: stdout.String()}, nil
}
