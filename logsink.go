// logsink.go: Concrete sinks for the deferred log queue
//
// Two sinks cover the common host setups: WriterSink for plain text output
// once stderr or a log file is available, and SQLiteSink for a persistent,
// queryable record of configuration reload diagnostics.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/agilira/go-errors"
	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// WriterSink writes messages at or above a minimum level to an io.Writer.
type WriterSink struct {
	w   io.Writer
	min Level
}

// NewWriterSink creates a sink writing to w, dropping messages below min.
func NewWriterSink(w io.Writer, min Level) *WriterSink {
	return &WriterSink{w: w, min: min}
}

func (s *WriterSink) Write(msg Message) error {
	if msg.Level < s.min {
		return nil
	}
	_, err := fmt.Fprintf(s.w, "%s [%s] %s\n", msg.Time.Format(time.RFC3339), msg.Level, msg.Text)
	return err
}

const logSchema = `
CREATE TABLE IF NOT EXISTS config_log (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	level     TEXT    NOT NULL,
	message   TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_config_log_timestamp ON config_log(timestamp);
CREATE INDEX IF NOT EXISTS idx_config_log_level     ON config_log(level);
`

// SQLiteSink persists flushed messages into a SQLite database, giving hosts
// a durable, queryable reload history. WAL mode keeps writes cheap.
type SQLiteSink struct {
	db     *sql.DB
	insert *sql.Stmt
}

// NewSQLiteSink opens (creating if needed) the database at path and prepares
// the log schema.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if path == "" {
		return nil, errors.New(ErrCodeSinkError, "sink database path cannot be empty")
	}

	db, err := sql.Open("sqlite3",
		fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path))
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeSinkError, "failed to open sink database").
			WithContext("path", path)
	}

	if _, err := db.Exec(logSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, ErrCodeSinkError, "failed to initialize sink schema").
			WithContext("path", path)
	}

	insert, err := db.Prepare("INSERT INTO config_log (timestamp, level, message) VALUES (?, ?, ?)")
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, ErrCodeSinkError, "failed to prepare sink statement")
	}

	return &SQLiteSink{db: db, insert: insert}, nil
}

func (s *SQLiteSink) Write(msg Message) error {
	if _, err := s.insert.Exec(msg.Time.UnixNano(), msg.Level.String(), msg.Text); err != nil {
		return errors.Wrap(err, ErrCodeSinkError, "failed to persist log message")
	}
	return nil
}

// Count returns the number of persisted messages at the given level.
func (s *SQLiteSink) Count(level Level) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM config_log WHERE level = ?", level.String()).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, ErrCodeSinkError, "failed to count log messages")
	}
	return n, nil
}

// Query returns up to limit persisted messages at or above min, newest
// first. Rows with a level the current build does not know are skipped.
func (s *SQLiteSink) Query(min Level, limit int) ([]Message, error) {
	rows, err := s.db.Query(
		"SELECT timestamp, level, message FROM config_log ORDER BY timestamp DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeSinkError, "failed to query log messages")
	}
	defer func() { _ = rows.Close() }()

	var out []Message
	for rows.Next() {
		var ts int64
		var lvl, text string
		if err := rows.Scan(&ts, &lvl, &text); err != nil {
			return nil, errors.Wrap(err, ErrCodeSinkError, "failed to scan log row")
		}
		level, err := ParseLevel(lvl)
		if err != nil || level < min {
			continue
		}
		out = append(out, Message{Time: time.Unix(0, ts), Level: level, Text: text})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, ErrCodeSinkError, "failed to iterate log rows")
	}
	return out, nil
}

// Close releases the prepared statement and the database handle.
func (s *SQLiteSink) Close() error {
	if s.insert != nil {
		_ = s.insert.Close()
	}
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, ErrCodeSinkError, "failed to close sink database")
	}
	return nil
}
