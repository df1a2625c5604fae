package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/bibnow/internal/config"
	"github.com/matsen/bibnow/internal/pipeline"
)

func TestExitCodeFor(t *testing.T) {
	ok := pipeline.Result{}
	bad := pipeline.Result{Err: errors.New("boom")}

	tests := []struct {
		name    string
		mode    pipeline.Mode
		results []pipeline.Result
		want    int
	}{
		{"all ok commit", pipeline.Commit, []pipeline.Result{ok, ok}, ExitSuccess},
		{"partial commit", pipeline.Commit, []pipeline.Result{ok, bad}, ExitPartialFailure},
		{"all failed commit", pipeline.Commit, []pipeline.Result{bad}, ExitPartialFailure},
		{"partial dry run", pipeline.DryRun, []pipeline.Result{ok, bad}, ExitSuccess},
		{"all failed dry run", pipeline.DryRun, []pipeline.Result{bad, bad}, ExitDataError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.mode, tt.results); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer string", 10, "a much ..."},
		{"Ünïcödé wörds", 8, "Ünïcö..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestReadInput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	content := "@book{k, title = {T}}"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	text, source, err := readInput(context.Background(), []string{path}, inputOptions{}, "")
	if err != nil {
		t.Fatalf("readInput() error = %v", err)
	}
	if text != content {
		t.Errorf("text = %q", text)
	}
	if !strings.HasPrefix(source, "file:") {
		t.Errorf("source = %q", source)
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	_, _, err := readInput(context.Background(), []string{filepath.Join(t.TempDir(), "none.bib")}, inputOptions{}, "")
	if err == nil {
		t.Error("readInput() expected error for missing file")
	}
}

func TestReadInput_PDFWithoutFile(t *testing.T) {
	_, _, err := readInput(context.Background(), nil, inputOptions{pdfPath: filepath.Join(t.TempDir(), "x.pdf")}, "")
	if err == nil {
		t.Error("readInput() expected error for missing PDF")
	}
}

func TestClipboardMirror_UsesConfiguredLogDir(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	cfgPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(cfgPath, []byte("log_dir: "+logDir+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvLogDir, "")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := clipboardMirror(cfg.LogDir), filepath.Join(logDir, InputFile); got != want {
		t.Errorf("clipboardMirror() = %q, want %q", got, want)
	}
	if got, want := clipboardMirror(""), filepath.Join(config.DefaultLogDir(), InputFile); got != want {
		t.Errorf("clipboardMirror(\"\") = %q, want %q", got, want)
	}
}

func TestExitCodeError(t *testing.T) {
	var err error = exitCodeError(ExitPartialFailure)
	var code exitCodeError
	if !errors.As(err, &code) || int(code) != 4 {
		t.Errorf("errors.As() = %v, %d", err, code)
	}
}
