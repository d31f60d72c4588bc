package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
)

// ErrNoteExists indicates Insert found a note with the same title.
var ErrNoteExists = errors.New("note already exists")

// NoteStore defines the driven port for note persistence. Content passed in
// and out is ciphertext; the store never sees plaintext. Title uniqueness is
// enforced by the store itself.
type NoteStore interface {
	// Upsert overwrites the content of the note with the given title and sets
	// updated_at to now, or inserts a new note with created_at = updated_at = now.
	Upsert(ctx context.Context, title string, content []byte, now time.Time) error

	// Insert adds a new note. Returns ErrNoteExists if the title is taken.
	Insert(ctx context.Context, title string, content []byte, now time.Time) error

	// Get returns the note with the given title, or nil, nil if absent.
	Get(ctx context.Context, title string) (*model.Note, error)

	// Exists reports whether a note with the given title is stored.
	Exists(ctx context.Context, title string) (bool, error)

	// List returns summaries ordered by updated_at descending.
	List(ctx context.Context) ([]model.NoteSummary, error)

	// Delete removes the note. Deleting an absent title is not an error.
	Delete(ctx context.Context, title string) error
}
