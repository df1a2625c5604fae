package clipboard

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name string
		goos string
		env  map[string]string
		want string
	}{
		{"windows", "windows", nil, PlatformWindows},
		{"macos", "darwin", nil, PlatformMacOS},
		{"linux", "linux", map[string]string{"HOME": "/home/me"}, PlatformLinux},
		{"termux", "linux", map[string]string{"HOME": "/data/data/com.termux/files/home"}, PlatformAndroidTermux},
		{"termux on android", "android", map[string]string{"HOME": "/data/data/com.termux/files/home"}, PlatformAndroidTermux},
		{"android storage", "linux", map[string]string{"ANDROID_STORAGE": "/storage"}, PlatformAndroid},
		{"plan9", "plan9", nil, PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			if got := detectPlatform(tt.goos, getenv); got != tt.want {
				t.Errorf("detectPlatform() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_FromClipboard(t *testing.T) {
	mirror := filepath.Join(t.TempDir(), "in", "input.txt")
	read := func() (string, error) { return "@article{k, title={T}}", nil }

	text, src, err := load(read, mirror)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if src != SourceClipboard || text != "@article{k, title={T}}" {
		t.Errorf("load() = %q, %q", text, src)
	}
	data, err := os.ReadFile(mirror)
	if err != nil {
		t.Fatalf("mirror not written: %v", err)
	}
	if string(data) != text {
		t.Errorf("mirror = %q", data)
	}
}

func TestLoad_FallsBackToFile(t *testing.T) {
	mirror := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(mirror, []byte(`{"id":"x"}`), 0644); err != nil {
		t.Fatal(err)
	}

	for name, read := range map[string]func() (string, error){
		"empty":       func() (string, error) { return "  \n", nil },
		"unavailable": func() (string, error) { return "", ErrClipboardUnavailable },
	} {
		t.Run(name, func(t *testing.T) {
			text, src, err := load(read, mirror)
			if err != nil {
				t.Fatalf("load() error = %v", err)
			}
			if src != SourceFile || text != `{"id":"x"}` {
				t.Errorf("load() = %q, %q", text, src)
			}
		})
	}
}

func TestLoad_NothingAvailable(t *testing.T) {
	read := func() (string, error) { return "", ErrClipboardUnavailable }

	if _, _, err := load(read, ""); !errors.Is(err, ErrClipboardUnavailable) {
		t.Errorf("load() error = %v, want ErrClipboardUnavailable", err)
	}
	if _, _, err := load(read, filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("load() expected error for missing fallback file")
	}
}

func TestCopy(t *testing.T) {
	if !IsAvailable() {
		t.Skip("clipboard not available on this system")
	}
	if err := Copy("test clipboard content"); err != nil {
		t.Skipf("clipboard present but not usable: %v", err)
	}
}
