package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.NoteStore = (*NoteRepo)(nil)

// NoteRepo is the SQLite implementation of the NoteStore port interface.
// Content columns hold sealed envelopes; this type never decrypts.
type NoteRepo struct {
	db *DB
}

// NewNoteRepo creates a new NoteRepo backed by the given DB.
func NewNoteRepo(db *DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// Upsert inserts the note or overwrites its content and updated_at. created_at
// is only written on insert.
func (r *NoteRepo) Upsert(ctx context.Context, title string, content []byte, now time.Time) error {
	const query = `
		INSERT INTO notes (title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			content    = excluded.content,
			updated_at = excluded.updated_at
	`

	ts := formatTime(now)
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, title, nonNil(content), ts, ts); err != nil {
			return fmt.Errorf("upsert note %q: %w", title, err)
		}
		return nil
	})
}

// Insert adds a new note. Returns driven.ErrNoteExists if the title is taken.
func (r *NoteRepo) Insert(ctx context.Context, title string, content []byte, now time.Time) error {
	const query = `INSERT INTO notes (title, content, created_at, updated_at) VALUES (?, ?, ?, ?)`

	ts := formatTime(now)
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, title, nonNil(content), ts, ts); err != nil {
			if isConstraintErr(err, "UNIQUE constraint") {
				return fmt.Errorf("insert note %q: %w", title, driven.ErrNoteExists)
			}
			return fmt.Errorf("insert note %q: %w", title, err)
		}
		return nil
	})
}

// Get retrieves a note by exact title. Returns nil, nil if it does not exist.
func (r *NoteRepo) Get(ctx context.Context, title string) (*model.Note, error) {
	const query = `SELECT id, title, content, created_at, updated_at FROM notes WHERE title = ?`

	var note model.Note
	var createdAt, updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, title).Scan(
		&note.ID, &note.Title, &note.Content, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note %q: %w", title, err)
	}

	if note.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for note %q: %w", title, err)
	}
	if note.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for note %q: %w", title, err)
	}

	return &note, nil
}

// Exists reports whether a note with the given title is stored.
func (r *NoteRepo) Exists(ctx context.Context, title string) (bool, error) {
	const query = `SELECT COUNT(*) FROM notes WHERE title = ?`
	var count int
	if err := r.db.Reader.QueryRowContext(ctx, query, title).Scan(&count); err != nil {
		return false, fmt.Errorf("check note %q: %w", title, err)
	}
	return count > 0, nil
}

// List returns all note summaries, most recently updated first. Ties on
// updated_at fall back to insertion order, newest first.
func (r *NoteRepo) List(ctx context.Context) ([]model.NoteSummary, error) {
	const query = `SELECT title, created_at, updated_at FROM notes ORDER BY updated_at DESC, id DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.NoteSummary
	for rows.Next() {
		var s model.NoteSummary
		var createdAt, updatedAt string
		if err := rows.Scan(&s.Title, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for note %q: %w", s.Title, err)
		}
		if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at for note %q: %w", s.Title, err)
		}
		notes = append(notes, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

// Delete removes the note with the given title. No-op if absent.
func (r *NoteRepo) Delete(ctx context.Context, title string) error {
	const query = `DELETE FROM notes WHERE title = ?`
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, title); err != nil {
			return fmt.Errorf("delete note %q: %w", title, err)
		}
		return nil
	})
}

// nonNil keeps the NOT NULL content column satisfied for empty blobs.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
