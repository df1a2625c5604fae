// Package runlog records one JSON line per processed entry and keeps a
// SQLite query cache rebuilt from those lines.
package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/matsen/bibnow/internal/reference"
)

// FileName is the run log file inside the log directory.
const FileName = "runs.jsonl"

// MaxLineCapacity is the maximum buffer size for reading one log line.
const MaxLineCapacity = 4 * 1024 * 1024

// Modes recorded in Entry.Mode.
const (
	ModeDryRun = "dry-run"
	ModeCommit = "commit"
)

// Upload summarizes the upload attempt of one entry.
type Upload struct {
	StatusCode int    `json:"status_code"`
	Body       any    `json:"body,omitempty"`
	Key        string `json:"key,omitempty"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
}

// Entry is one processed record.
type Entry struct {
	ID          string                       `json:"id"`
	Timestamp   time.Time                    `json:"timestamp"`
	Mode        string                       `json:"mode"`
	Citekey     string                       `json:"citekey"`
	Filename    string                       `json:"filename"`
	Input       string                       `json:"input,omitempty"`
	NotePath    string                       `json:"note_path,omitempty"`
	Source      *reference.SourceRecord      `json:"source,omitempty"`
	Destination *reference.DestinationRecord `json:"destination,omitempty"`
	Upload      *Upload                      `json:"upload,omitempty"`
	Error       string                       `json:"error,omitempty"`
}

// Log appends entries to <dir>/runs.jsonl.
type Log struct {
	dir string
	now func() time.Time
}

// New returns a Log writing into dir.
func New(dir string) *Log {
	return &Log{dir: dir, now: time.Now}
}

// Path returns the JSONL file path.
func (l *Log) Path() string {
	return filepath.Join(l.dir, FileName)
}

// Append fills in a missing id and timestamp and appends the entry.
func (l *Log) Append(e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now().UTC()
	}

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return e, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return e, fmt.Errorf("opening run log for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return e, fmt.Errorf("encoding run log entry: %w", err)
	}
	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return e, fmt.Errorf("writing run log entry: %w", err)
	}
	return e, nil
}

// ReadAll reads every entry of a run log. A missing file yields no entries.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), MaxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}
	return entries, nil
}
