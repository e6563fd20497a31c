// Package journal provides an optional SQLite-backed audit journal of
// record lifecycle operations.
//
// The journal is an append-only log: every create, update, and save on a
// model wired with a journal appends one entry naming the model, record id,
// operation, and the attribute names touched. It exists for operators
// ("what happened to tasks:42?") and is deliberately not a source of record
// state - the hash store stays authoritative, and TTL expiry there is the
// only notion of deletion.
//
// Ordering uses a monotonic seq assigned by the journal's own logical
// clock, never wall time. Reopening a journal resumes the clock from the
// highest stored seq. All queries order by seq ASC, id ASC so histories
// read back identically across runs.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Current: entries table with (model, record_id) index
const currentSchemaVersion = 1

// Lifecycle operation names recorded in entries.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpSave   = "save"
)

// Entry is one journal row.
type Entry struct {
	Seq      int64     `json:"seq"`
	Model    string    `json:"model"`
	RecordID int64     `json:"record_id"`
	Op       string    `json:"op"`
	Fields   []string  `json:"fields"`
	LoggedAt time.Time `json:"logged_at"`
}

// Journal is an append-only operation log backed by SQLite.
// Safe for concurrent use; SQLite serializes writers via the connection.
type Journal struct {
	db    *sql.DB
	clock *Clock
}

// Open creates or opens a journal database at path. Use ":memory:" for an
// ephemeral journal in tests.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// Open is idempotent and resumes the seq clock from existing entries.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	var last sql.NullInt64
	if err := db.QueryRow("SELECT MAX(seq) FROM entries").Scan(&last); err != nil {
		db.Close()
		return nil, fmt.Errorf("resume seq: %w", err)
	}

	return &Journal{db: db, clock: NewClockAt(last.Int64)}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append records one lifecycle operation. Seq is assigned by the journal.
func (j *Journal) Append(ctx context.Context, model string, recordID int64, op string, fields []string) error {
	if fields == nil {
		fields = []string{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("append: marshal fields: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO entries (seq, model, record_id, op, fields, logged_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		j.clock.Next(),
		model,
		recordID,
		op,
		string(fieldsJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// History returns the entries for one record in seq order, oldest first.
// limit <= 0 means no limit.
func (j *Journal) History(ctx context.Context, model string, recordID int64, limit int) ([]Entry, error) {
	query := `
		SELECT seq, model, record_id, op, fields, logged_at
		FROM entries
		WHERE model = ? AND record_id = ?
		ORDER BY seq ASC, id ASC
	`
	args := []any{model, recordID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			fieldsJSON string
			loggedAt   string
		)
		if err := rows.Scan(&e.Seq, &e.Model, &e.RecordID, &e.Op, &fieldsJSON, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &e.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
		e.LoggedAt, err = time.Parse(time.RFC3339Nano, loggedAt)
		if err != nil {
			return nil, fmt.Errorf("parse logged_at: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Seq returns the journal's current sequence position.
func (j *Journal) Seq() int64 {
	return j.clock.Current()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates the entries table if needed and stamps user_version.
// Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
