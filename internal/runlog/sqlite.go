package runlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB is a SQLite query cache over the run log. It is disposable: rebuild it
// from the JSONL file whenever the file is newer.
type DB struct {
	db *sql.DB
}

const selectEntryFields = `id, timestamp, mode, citekey, filename, note_path,
	remote_key, status_code, success, error, entry_json`

// OpenDB opens or creates a cache database at path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			mode TEXT NOT NULL,
			citekey TEXT NOT NULL,
			filename TEXT,
			note_path TEXT,
			remote_key TEXT,
			status_code INTEGER,
			success INTEGER NOT NULL,
			error TEXT,
			entry_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_citekey ON runs(citekey);
		CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`)
	return err
}

// RebuildFromJSONL clears the cache and reloads it from a run log file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	entries, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM runs"); err != nil {
		return 0, fmt.Errorf("clearing runs table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO runs (
			id, timestamp, mode, citekey, filename, note_path,
			remote_key, status_code, success, error, entry_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("encoding entry %s: %w", e.ID, err)
		}

		var remoteKey string
		var status int
		success := e.Error == ""
		if e.Upload != nil {
			remoteKey = e.Upload.Key
			status = e.Upload.StatusCode
			success = success && e.Upload.Success
		}

		_, err = stmt.Exec(
			e.ID, e.Timestamp.UTC().Format(time.RFC3339Nano), e.Mode, e.Citekey,
			e.Filename, e.NotePath, remoteKey, status, boolToInt(success),
			e.Error, string(data),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return len(entries), nil
}

// Record is a cached run log row.
type Record struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Mode       string    `json:"mode"`
	Citekey    string    `json:"citekey"`
	Filename   string    `json:"filename"`
	NotePath   string    `json:"note_path,omitempty"`
	RemoteKey  string    `json:"remote_key,omitempty"`
	StatusCode int       `json:"status_code"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Entry      Entry     `json:"-"`
}

// FindByCitekey returns every run of a citekey, newest first.
func (d *DB) FindByCitekey(citekey string) ([]Record, error) {
	rows, err := d.db.Query(`SELECT `+selectEntryFields+` FROM runs
		WHERE citekey = ? ORDER BY timestamp DESC, seq DESC`, citekey)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Recent returns the n most recent runs, newest first. n <= 0 returns all.
func (d *DB) Recent(n int) ([]Record, error) {
	query := `SELECT ` + selectEntryFields + ` FROM runs ORDER BY timestamp DESC, seq DESC`
	var args []any
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Count returns the number of cached runs.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var ts, entryJSON string
		var filename, notePath, remoteKey, errText sql.NullString
		var status sql.NullInt64
		var success int

		if err := rows.Scan(&r.ID, &ts, &r.Mode, &r.Citekey, &filename, &notePath,
			&remoteKey, &status, &success, &errText, &entryJSON); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp %q: %w", ts, err)
		}
		r.Timestamp = t
		r.Filename = filename.String
		r.NotePath = notePath.String
		r.RemoteKey = remoteKey.String
		r.StatusCode = int(status.Int64)
		r.Success = success != 0
		r.Error = errText.String

		if err := json.Unmarshal([]byte(entryJSON), &r.Entry); err != nil {
			return nil, fmt.Errorf("decoding entry %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
