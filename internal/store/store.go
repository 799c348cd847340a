// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package store keeps an index of processed documents and their annotations
// in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"deduce/internal/observability"
	"deduce/internal/tags"
)

const componentName = "store"

// ErrNotFound is returned when a document ID is not in the index.
var ErrNotFound = errors.New("document not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	mode TEXT NOT NULL,
	created_at TEXT NOT NULL,
	error TEXT
);

CREATE TABLE IF NOT EXISTS annotations (
	document_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	start_ix INTEGER NOT NULL,
	end_ix INTEGER NOT NULL,
	category TEXT NOT NULL,
	text TEXT NOT NULL,
	PRIMARY KEY(document_id, seq),
	FOREIGN KEY(document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_annotations_category ON annotations(category);
`

// Document is one indexed document.
type Document struct {
	ID        string
	Source    string
	Mode      string
	CreatedAt time.Time
	Error     string
}

var _ observability.Observable = (*Store)(nil)

// Store is a SQLite-backed annotation index.
type Store struct {
	db       *sql.DB
	observer *observability.StandardObserver
}

// Open opens or creates the index at path. ":memory:" is accepted.
func Open(ctx context.Context, path string, observer *observability.StandardObserver) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases and writes consistent.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, observer: observer}, nil
}

// GetComponentName returns the component name for observability
func (s *Store) GetComponentName() string { return componentName }

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDocument records a document and its annotations in one transaction.
// An empty id is replaced by a new ULID; the id used is returned.
func (s *Store) SaveDocument(ctx context.Context, id, source, mode string, annotations []tags.Annotation, docErr error) (string, error) {
	finishTiming := s.observer.StartTiming(componentName, "save_document", source)

	if id == "" {
		id = ulid.Make().String()
	}
	err := s.save(ctx, id, source, mode, annotations, docErr)

	finishTiming(err == nil, map[string]interface{}{
		"annotations": len(annotations),
		"document_id": id,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) save(ctx context.Context, id, source, mode string, annotations []tags.Annotation, docErr error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var errText sql.NullString
	if docErr != nil {
		errText = sql.NullString{String: docErr.Error(), Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents(id, source, mode, created_at, error) VALUES(?,?,?,?,?)`,
		id, source, mode, time.Now().UTC().Format(time.RFC3339Nano), errText,
	); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO annotations(document_id, seq, start_ix, end_ix, category, text) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare annotation insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range annotations {
		if _, err := stmt.ExecContext(ctx, id, i, a.StartIx, a.EndIx, a.Category, a.Text); err != nil {
			return fmt.Errorf("insert annotation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Document returns the indexed document with the given id.
func (s *Store) Document(ctx context.Context, id string) (*Document, error) {
	var (
		d       Document
		created string
		errText sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, mode, created_at, error FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Source, &d.Mode, &created, &errText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	d.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	d.Error = errText.String
	return &d, nil
}

// Documents lists indexed documents, oldest first.
func (s *Store) Documents(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		d, err := s.Document(ctx, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, nil
}

// Annotations returns the annotations of a document in the order they were
// saved.
func (s *Store) Annotations(ctx context.Context, documentID string) ([]tags.Annotation, error) {
	if _, err := s.Document(ctx, documentID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_ix, end_ix, category, text FROM annotations WHERE document_id = ? ORDER BY seq`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var out []tags.Annotation
	for rows.Next() {
		var a tags.Annotation
		if err := rows.Scan(&a.StartIx, &a.EndIx, &a.Category, &a.Text); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CategoryCounts returns the number of stored annotations per category.
func (s *Store) CategoryCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM annotations GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

// Delete removes a document and its annotations.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
