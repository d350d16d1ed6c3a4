// Package state persists the small frontend state files (microphone flag
// and current status line) that survive restarts.
package state

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	micFile    = "Mic.data"
	statusFile = "Status.data"
)

// Files reads and writes the transient state files under a fixed directory.
// Writes are best-effort; callers log failures and carry on.
type Files struct {
	dir string
}

func New(dir string) *Files {
	return &Files{dir: dir}
}

// SetMic records the microphone flag as "True"/"False".
func (f *Files) SetMic(on bool) error {
	value := "False"
	if on {
		value = "True"
	}
	return f.write(micFile, value)
}

// Mic reports the stored microphone flag. Missing or unreadable files
// default to false.
func (f *Files) Mic() bool {
	return f.read(micFile) == "True"
}

// SetStatus records the assistant status line.
func (f *Files) SetStatus(status string) error {
	return f.write(statusFile, status)
}

// Status returns the stored status line, or "" when absent.
func (f *Files) Status() string {
	return f.read(statusFile)
}

func (f *Files) write(name, value string) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.dir, name), []byte(value), 0644)
}

func (f *Files) read(name string) string {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
