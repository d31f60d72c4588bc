package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

// MaxTitleLength is the longest accepted note title, in runes.
const MaxTitleLength = 200

// Notes is the unlocked repository handle returned by Session.Unlock. It
// encrypts on write and decrypts on read; callers only ever see plaintext.
//
// Notes does not serialize writes to the same title. Callers editing a note
// from several goroutines should route saves through an AutoSaver.
type Notes struct {
	store  driven.NoteStore
	cipher driven.Cipher
	logger *slog.Logger

	clockMu sync.Mutex
	now     func() time.Time
	last    time.Time

	closed atomic.Bool
	saveMu sync.Mutex
	savers []*AutoSaver
}

func newNotes(store driven.NoteStore, cipher driven.Cipher, now func() time.Time, logger *slog.Logger) *Notes {
	return &Notes{
		store:  store,
		cipher: cipher,
		now:    now,
		logger: logger,
	}
}

// CreateOrUpdate encrypts plaintext and stores it under title, inserting the
// note if needed. Titles match exactly.
func (n *Notes) CreateOrUpdate(ctx context.Context, title, plaintext string) error {
	if n.closed.Load() {
		return ErrSessionClosed
	}
	if err := ValidateTitle(title); err != nil {
		return err
	}

	sealed, err := n.cipher.Encrypt([]byte(plaintext))
	if err != nil {
		return fmt.Errorf("encrypt note %q: %w", title, err)
	}

	if err := n.store.Upsert(ctx, title, sealed, n.stamp()); err != nil {
		return storageErr("save note", err)
	}

	n.logger.Debug("note saved", "title", title, "bytes", len(sealed))
	return nil
}

// Create inserts a new, empty note. Surrounding whitespace is trimmed from the
// title. Returns ErrNoteExists if the title is taken.
func (n *Notes) Create(ctx context.Context, title string) (string, error) {
	if n.closed.Load() {
		return "", ErrSessionClosed
	}
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title); err != nil {
		return "", err
	}

	sealed, err := n.cipher.Encrypt(nil)
	if err != nil {
		return "", fmt.Errorf("encrypt note %q: %w", title, err)
	}

	if err := n.store.Insert(ctx, title, sealed, n.stamp()); err != nil {
		if errors.Is(err, driven.ErrNoteExists) {
			return "", ErrNoteExists
		}
		return "", storageErr("create note", err)
	}

	n.logger.Info("note created", "title", title)
	return title, nil
}

// Read returns the plaintext of the note. A missing note reads as "" with no
// error. A note that fails authentication returns an error wrapping
// ErrDecryption and is left untouched in the store.
func (n *Notes) Read(ctx context.Context, title string) (string, error) {
	if n.closed.Load() {
		return "", ErrSessionClosed
	}

	note, err := n.store.Get(ctx, title)
	if err != nil {
		return "", storageErr("read note", err)
	}
	if note == nil {
		return "", nil
	}

	plaintext, err := n.cipher.Decrypt(note.Content)
	if err != nil {
		n.logger.Warn("note failed authentication", "title", title)
		return "", fmt.Errorf("read note %q: %w", title, err)
	}
	return string(plaintext), nil
}

// Exists reports whether a note with exactly this title is stored. Use it to
// tell a missing note from an empty one.
func (n *Notes) Exists(ctx context.Context, title string) (bool, error) {
	if n.closed.Load() {
		return false, ErrSessionClosed
	}
	ok, err := n.store.Exists(ctx, title)
	if err != nil {
		return false, storageErr("check note", err)
	}
	return ok, nil
}

// ListAll returns every note's title and timestamps, most recently updated
// first. Nothing is decrypted.
func (n *Notes) ListAll(ctx context.Context) ([]model.NoteSummary, error) {
	if n.closed.Load() {
		return nil, ErrSessionClosed
	}
	notes, err := n.store.List(ctx)
	if err != nil {
		return nil, storageErr("list notes", err)
	}
	if notes == nil {
		notes = []model.NoteSummary{}
	}
	return notes, nil
}

// Delete removes the note. Deleting a missing note is not an error.
func (n *Notes) Delete(ctx context.Context, title string) error {
	if n.closed.Load() {
		return ErrSessionClosed
	}
	if err := n.store.Delete(ctx, title); err != nil {
		return storageErr("delete note", err)
	}
	n.logger.Info("note deleted", "title", title)
	return nil
}

// NewAutoSaver returns an AutoSaver bound to this handle. Close flushes it.
func (n *Notes) NewAutoSaver(delay time.Duration) *AutoSaver {
	a := newAutoSaver(n, delay, n.logger)
	n.saveMu.Lock()
	n.savers = append(n.savers, a)
	n.saveMu.Unlock()
	return a
}

// Close flushes every AutoSaver created from this handle and then rejects
// further operations with ErrSessionClosed. The first flush error is returned.
func (n *Notes) Close(ctx context.Context) error {
	n.saveMu.Lock()
	savers := n.savers
	n.savers = nil
	n.saveMu.Unlock()

	var firstErr error
	for _, a := range savers {
		if err := a.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	n.closed.Store(true)
	return firstErr
}

// stamp returns the current time, nudged forward when the clock has not
// advanced since the previous write so that updated_at ordering is strict.
func (n *Notes) stamp() time.Time {
	n.clockMu.Lock()
	defer n.clockMu.Unlock()

	t := n.now().UTC()
	if !t.After(n.last) {
		t = n.last.Add(time.Nanosecond)
	}
	n.last = t
	return t
}

// ValidateTitle rejects titles that are empty, blank, longer than
// MaxTitleLength runes, not valid UTF-8, or contain control characters.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is empty", ErrInvalidTitle)
	}
	if !utf8.ValidString(title) {
		return fmt.Errorf("%w: title is not valid UTF-8", ErrInvalidTitle)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidTitle, MaxTitleLength)
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: title contains control characters", ErrInvalidTitle)
		}
	}
	return nil
}
