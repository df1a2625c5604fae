// Package pipeline runs parsed records through mapping, upload, note
// writing and the run log, one record at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/matsen/bibnow/internal/citekey"
	"github.com/matsen/bibnow/internal/importer"
	"github.com/matsen/bibnow/internal/mapper"
	"github.com/matsen/bibnow/internal/party"
	"github.com/matsen/bibnow/internal/reference"
	"github.com/matsen/bibnow/internal/runlog"
	"github.com/matsen/bibnow/internal/zotero"
)

// Mode selects whether a run has side effects.
type Mode string

const (
	DryRun Mode = runlog.ModeDryRun
	Commit Mode = runlog.ModeCommit
)

// ErrNotConfigured is returned when commit mode lacks a collaborator.
var ErrNotConfigured = errors.New("pipeline collaborator not configured")

// Uploader sends one item to the citation manager.
type Uploader interface {
	Upload(ctx context.Context, dest reference.DestinationRecord) (zotero.Response, error)
}

// Renderer turns an item into note Markdown.
type Renderer interface {
	Render(dest reference.DestinationRecord, keys citekey.Keys, remoteKey string) (string, error)
}

// NoteWriter stores a note and returns its path.
type NoteWriter interface {
	Write(markdown, filename string) (string, error)
}

// RunLogger records processed entries.
type RunLogger interface {
	Append(e runlog.Entry) (runlog.Entry, error)
}

// BibMirror appends items to a BibTeX library.
type BibMirror interface {
	Add(dest reference.DestinationRecord, key string) (bool, error)
}

// Index reports citekeys that already have notes.
type Index interface {
	Has(citekey string) bool
}

// Processor holds the collaborators for a run. Only Uploader, Renderer and
// Writer are required, and only in Commit mode.
type Processor struct {
	Mode         Mode
	Deriver      citekey.Deriver
	Uploader     Uploader
	Renderer     Renderer
	Writer       NoteWriter
	Log          RunLogger
	Mirror       BibMirror
	Index        Index
	SkipExisting bool
	Logger       *slog.Logger

	// Input labels where the records came from in run-log entries.
	Input string
}

// Result is the outcome of one record or parse failure.
type Result struct {
	Index       int                          `json:"index"`
	SourceKey   string                       `json:"source_key,omitempty"`
	SourceType  string                       `json:"source_type,omitempty"`
	Destination *reference.DestinationRecord `json:"destination,omitempty"`
	Keys        citekey.Keys                 `json:"keys"`
	Warnings    []string                     `json:"warnings,omitempty"`
	Upload      *zotero.Outcome              `json:"upload,omitempty"`
	NotePath    string                       `json:"note_path,omitempty"`
	Mirrored    bool                         `json:"mirrored,omitempty"`
	Skipped     bool                         `json:"skipped,omitempty"`
	Error       string                       `json:"error,omitempty"`

	Err error `json:"-"`
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// CountFailed returns how many results failed.
func CountFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Process handles records in order, then reports parse errors. A failing
// record never stops the batch.
func (p *Processor) Process(ctx context.Context, records []reference.SourceRecord, parseErrs []error) []Result {
	results := make([]Result, 0, len(records)+len(parseErrs))

	for i, rec := range records {
		results = append(results, p.processRecord(ctx, i, rec))
	}
	for i, perr := range parseErrs {
		results = append(results, p.parseFailure(len(records)+i, perr))
	}
	return results
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Processor) checkCommit() error {
	var missing []string
	if p.Uploader == nil {
		missing = append(missing, "uploader")
	}
	if p.Renderer == nil {
		missing = append(missing, "renderer")
	}
	if p.Writer == nil {
		missing = append(missing, "note writer")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrNotConfigured, missing)
	}
	return nil
}

func (p *Processor) processRecord(ctx context.Context, idx int, rec reference.SourceRecord) Result {
	log := p.logger().With("index", idx, "source_key", rec.Key)

	rec = rec.Clone()
	party.Enrich(&rec)

	dest, warnings := mapper.Map(rec)
	keys := p.Deriver.FromSource(rec, dest)

	res := Result{
		Index:       idx,
		SourceKey:   rec.Key,
		SourceType:  rec.Type,
		Destination: &dest,
		Keys:        keys,
	}
	for _, w := range warnings {
		log.Debug("field overflow", "field", w.Field, "reason", w.Reason)
		res.Warnings = append(res.Warnings, w.String())
	}

	if p.SkipExisting && p.Index != nil && p.Index.Has(keys.CiteKey) {
		log.Info("note exists, skipping", "citekey", keys.CiteKey)
		res.Skipped = true
		return res
	}

	if p.Mode != Commit {
		return res
	}

	if err := p.checkCommit(); err != nil {
		return p.finish(res, err)
	}

	entry := runlog.Entry{
		Mode:        string(p.Mode),
		Citekey:     keys.CiteKey,
		Filename:    keys.Filename,
		Input:       p.Input,
		Source:      &rec,
		Destination: &dest,
	}

	var errs []error

	resp, uploadErr := p.Uploader.Upload(ctx, dest)
	outcome := zotero.Interpret(resp)
	res.Upload = &outcome
	entry.Upload = &runlog.Upload{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Key:        outcome.Key,
		Success:    outcome.Success,
		Message:    outcome.Message,
	}
	if !outcome.Success {
		err := resp.Err()
		if uploadErr != nil {
			err = uploadErr
		}
		log.Warn("upload failed", "citekey", keys.CiteKey, "status", resp.StatusCode, "message", outcome.Message)
		errs = append(errs, fmt.Errorf("upload: %w", err))
	} else {
		log.Info("uploaded", "citekey", keys.CiteKey, "zotero_key", outcome.Key)
	}

	markdown, err := p.Renderer.Render(dest, keys, outcome.Key)
	if err != nil {
		errs = append(errs, fmt.Errorf("render: %w", err))
	} else {
		path, err := p.Writer.Write(markdown, keys.Filename)
		if err != nil {
			errs = append(errs, fmt.Errorf("write note: %w", err))
		} else {
			res.NotePath = path
			entry.NotePath = path
			log.Info("note written", "path", path)
		}
	}

	// Only items that reached the library go to the .bib file.
	if p.Mirror != nil && outcome.Success {
		written, err := p.Mirror.Add(dest, keys.CiteKey)
		if err != nil {
			errs = append(errs, fmt.Errorf("bib mirror: %w", err))
		}
		res.Mirrored = written
	}

	joined := errors.Join(errs...)
	if joined != nil {
		entry.Error = joined.Error()
	}
	if p.Log != nil {
		if _, err := p.Log.Append(entry); err != nil {
			joined = errors.Join(joined, fmt.Errorf("run log: %w", err))
		}
	}

	return p.finish(res, joined)
}

func (p *Processor) parseFailure(idx int, perr error) Result {
	res := Result{Index: idx}
	var pe *importer.ParseError
	if errors.As(perr, &pe) {
		res.SourceKey = pe.Key
	}
	p.logger().Warn("entry not parsed", "error", perr)

	if p.Mode == Commit && p.Log != nil {
		entry := runlog.Entry{Mode: string(p.Mode), Citekey: res.SourceKey, Input: p.Input, Error: perr.Error()}
		if _, err := p.Log.Append(entry); err != nil {
			perr = errors.Join(perr, fmt.Errorf("run log: %w", err))
		}
	}
	return p.finish(res, perr)
}

func (p *Processor) finish(res Result, err error) Result {
	if err != nil {
		res.Err = err
		res.Error = err.Error()
	}
	return res
}
