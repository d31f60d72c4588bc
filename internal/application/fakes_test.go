package application_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/hiddenote/internal/adapter/driven/aead"
	"github.com/ericfisherdev/hiddenote/internal/adapter/driven/kdf"
	"github.com/ericfisherdev/hiddenote/internal/application"
	"github.com/ericfisherdev/hiddenote/internal/domain/model"
	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

// --- In-memory driven port implementations ---

type memAuthStore struct {
	mu      sync.Mutex
	rec     *model.CredentialRecord
	creates int
	err     error
}

func (m *memAuthStore) Exists(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.rec != nil, nil
}

func (m *memAuthStore) Create(_ context.Context, rec model.CredentialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.rec != nil {
		return driven.ErrAlreadyProvisioned
	}
	m.creates++
	rec.Salt = bytes.Clone(rec.Salt)
	m.rec = &rec
	return nil
}

func (m *memAuthStore) Load(_ context.Context) (*model.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.rec == nil {
		return nil, driven.ErrNotProvisioned
	}
	rec := *m.rec
	rec.Salt = bytes.Clone(rec.Salt)
	return &rec, nil
}

type memNoteStore struct {
	mu     sync.Mutex
	notes  map[string]*model.Note
	nextID int64
	writes int
	err    error
}

func newMemNoteStore() *memNoteStore {
	return &memNoteStore{notes: make(map[string]*model.Note)}
}

func (m *memNoteStore) Upsert(_ context.Context, title string, content []byte, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes++
	if n, ok := m.notes[title]; ok {
		n.Content = bytes.Clone(content)
		n.UpdatedAt = now
		return nil
	}
	m.nextID++
	m.notes[title] = &model.Note{ID: m.nextID, Title: title, Content: bytes.Clone(content), CreatedAt: now, UpdatedAt: now}
	return nil
}

func (m *memNoteStore) Insert(ctx context.Context, title string, content []byte, now time.Time) error {
	m.mu.Lock()
	_, exists := m.notes[title]
	m.mu.Unlock()
	if exists {
		return driven.ErrNoteExists
	}
	return m.Upsert(ctx, title, content, now)
}

func (m *memNoteStore) Get(_ context.Context, title string) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	n, ok := m.notes[title]
	if !ok {
		return nil, nil
	}
	cp := *n
	cp.Content = bytes.Clone(n.Content)
	return &cp, nil
}

func (m *memNoteStore) Exists(_ context.Context, title string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.notes[title]
	return ok, nil
}

func (m *memNoteStore) List(_ context.Context) ([]model.NoteSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	notes := make([]*model.Note, 0, len(m.notes))
	for _, n := range m.notes {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		}
		return notes[i].ID > notes[j].ID
	})
	out := make([]model.NoteSummary, 0, len(notes))
	for _, n := range notes {
		out = append(out, model.NoteSummary{Title: n.Title, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt})
	}
	return out, nil
}

func (m *memNoteStore) Delete(_ context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.notes, title)
	return nil
}

func (m *memNoteStore) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *memNoteStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// flipByte corrupts one byte of a stored envelope.
func (m *memNoteStore) flipByte(title string, i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[title].Content[i] ^= 0xff
}

var errDiskFull = errors.New("disk I/O error: database or disk is full")

// --- Fixtures ---

type fixture struct {
	auth    *memAuthStore
	notes   *memNoteStore
	session *application.Session
}

func newFixture(t *testing.T, opts ...application.SessionOption) *fixture {
	t.Helper()

	deriver, err := kdf.NewPBKDF2(kdf.MinIterations)
	require.NoError(t, err)
	factory, err := aead.NewFactory(model.CipherAES256GCM)
	require.NoError(t, err)

	f := &fixture{auth: &memAuthStore{}, notes: newMemNoteStore()}
	f.session = application.NewSession(f.auth, f.notes, deriver, factory, opts...)
	return f
}

func password(pw string) application.PasswordProvider {
	return application.PasswordFunc(func(context.Context, bool) (string, error) {
		return pw, nil
	})
}

func unlock(t *testing.T, f *fixture, pw string) *application.Notes {
	t.Helper()
	notes, err := f.session.Unlock(context.Background(), password(pw))
	require.NoError(t, err)
	t.Cleanup(func() { _ = notes.Close(context.Background()) })
	return notes
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}
