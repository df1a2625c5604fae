// Package clipboard reads and writes the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when clipboard access is not available.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Platforms reported by DetectPlatform.
const (
	PlatformWindows       = "windows"
	PlatformMacOS         = "macos"
	PlatformLinux         = "linux"
	PlatformAndroidTermux = "android-termux"
	PlatformAndroid       = "android"
	PlatformUnknown       = "unknown"
)

// DetectPlatform names the platform the clipboard is accessed on.
func DetectPlatform() string {
	return detectPlatform(runtime.GOOS, os.Getenv)
}

func detectPlatform(goos string, getenv func(string) string) string {
	switch goos {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMacOS
	case "android":
		if strings.Contains(getenv("HOME"), "com.termux") {
			return PlatformAndroidTermux
		}
		return PlatformAndroid
	case "linux":
		if strings.Contains(getenv("HOME"), "com.termux") {
			return PlatformAndroidTermux
		}
		if getenv("ANDROID_STORAGE") != "" {
			return PlatformAndroid
		}
		return PlatformLinux
	}
	return PlatformUnknown
}

// IsAvailable checks if clipboard functionality is available on this system.
func IsAvailable() bool {
	return !clipboard.Unsupported
}

// Read returns the clipboard text.
func Read() (string, error) {
	if !IsAvailable() {
		return "", ErrClipboardUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return text, nil
}

// Copy copies the given text to the system clipboard.
func Copy(text string) error {
	if !IsAvailable() {
		return ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

// Source names where Load found its input.
type Source string

const (
	SourceClipboard Source = "clipboard"
	SourceFile      Source = "file"
)

// Load returns the clipboard text when it holds anything, mirroring it to
// mirrorPath. Otherwise it falls back to the contents of mirrorPath.
func Load(mirrorPath string) (string, Source, error) {
	return load(Read, mirrorPath)
}

func load(read func() (string, error), mirrorPath string) (string, Source, error) {
	if text, err := read(); err == nil && strings.TrimSpace(text) != "" {
		if mirrorPath != "" {
			if err := os.MkdirAll(filepath.Dir(mirrorPath), 0755); err != nil {
				return "", "", fmt.Errorf("creating mirror directory: %w", err)
			}
			if err := os.WriteFile(mirrorPath, []byte(text), 0644); err != nil {
				return "", "", fmt.Errorf("mirroring clipboard: %w", err)
			}
		}
		return text, SourceClipboard, nil
	}

	if mirrorPath == "" {
		return "", "", ErrClipboardUnavailable
	}
	data, err := os.ReadFile(mirrorPath)
	if err != nil {
		return "", "", fmt.Errorf("clipboard empty and reading %s: %w", mirrorPath, err)
	}
	return string(data), SourceFile, nil
}
