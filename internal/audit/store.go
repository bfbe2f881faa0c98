// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package audit keeps a local SQLite log of the mutating operations sent
// to the server.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded operation.
type Entry struct {
	ID       int64          `json:"id"`
	Time     time.Time      `json:"time"`
	Source   string         `json:"source"`
	Method   string         `json:"method"`
	Params   map[string]any `json:"params"`
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Query selects entries for List.
type Query struct {
	// Limit caps the number of entries (default 50).
	Limit int

	// Since drops entries older than this time when set.
	Since time.Time

	// Method restricts the result to one method when set.
	Method string

	// FailedOnly returns only unsuccessful calls.
	FailedOnly bool
}

// Store is a SQLite-backed audit log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. The special path ":memory:"
// creates an in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	connStr := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
		connStr = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time INTEGER NOT NULL,
			source TEXT NOT NULL,
			method TEXT NOT NULL,
			params TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calls_time ON calls(time)`,
		`CREATE INDEX IF NOT EXISTS idx_calls_method ON calls(method)`,
	}
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Record appends an entry. ID is assigned by the store.
func (s *Store) Record(ctx context.Context, e Entry) error {
	params, err := json.Marshal(e.Params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO calls (time, source, method, params, success, error, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Time.UnixMilli(), e.Source, e.Method, string(params), e.Success, e.Error, e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}
	return nil
}

// List returns entries matching q, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Entry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	var (
		where []string
		args  []any
	)
	if !q.Since.IsZero() {
		where = append(where, "time >= ?")
		args = append(args, q.Since.UnixMilli())
	}
	if q.Method != "" {
		where = append(where, "method = ?")
		args = append(args, q.Method)
	}
	if q.FailedOnly {
		where = append(where, "success = 0")
	}

	query := `SELECT id, time, source, method, params, success, error, duration_ms FROM calls`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			millis     int64
			params     string
			durationMs int64
		)
		if err := rows.Scan(&e.ID, &millis, &e.Source, &e.Method, &params, &e.Success, &e.Error, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to read audit entry: %w", err)
		}
		e.Time = time.UnixMilli(millis).UTC()
		e.Duration = time.Duration(durationMs) * time.Millisecond
		if err := json.Unmarshal([]byte(params), &e.Params); err != nil {
			return nil, fmt.Errorf("audit entry %d has malformed params: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
