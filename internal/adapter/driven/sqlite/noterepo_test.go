package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

var baseTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func TestNoteRepo_UpsertInsertsNewNote(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "groceries", []byte{0x01, 0x02}, baseTime))

	note, err := repo.Get(ctx, "groceries")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "groceries", note.Title)
	assert.Equal(t, []byte{0x01, 0x02}, note.Content)
	assert.Equal(t, baseTime, note.CreatedAt)
	assert.Equal(t, baseTime, note.UpdatedAt)
}

func TestNoteRepo_UpsertOverwritesContentAndKeepsCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	later := baseTime.Add(90 * time.Second)
	require.NoError(t, repo.Upsert(ctx, "A", []byte("x"), baseTime))
	require.NoError(t, repo.Upsert(ctx, "A", []byte("y"), later))

	note, err := repo.Get(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, []byte("y"), note.Content)
	assert.Equal(t, baseTime, note.CreatedAt)
	assert.Equal(t, later, note.UpdatedAt)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNoteRepo_TitlesAreCaseSensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "Todo", []byte("1"), baseTime))
	require.NoError(t, repo.Upsert(ctx, "todo", []byte("2"), baseTime))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestNoteRepo_EmptyContentIsStored(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "blank", nil, baseTime))

	note, err := repo.Get(ctx, "blank")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Empty(t, note.Content)
}

func TestNoteRepo_InsertDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, "A", []byte("x"), baseTime))

	err := repo.Insert(ctx, "A", []byte("y"), baseTime)
	require.ErrorIs(t, err, driven.ErrNoteExists)

	note, err := repo.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), note.Content)
}

func TestNoteRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)

	note, err := repo.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestNoteRepo_Exists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, "A")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Upsert(ctx, "A", []byte("x"), baseTime))

	ok, err = repo.Exists(ctx, "A")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNoteRepo_ListOrderedByUpdatedAtDesc(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "A", []byte("1"), baseTime))
	require.NoError(t, repo.Upsert(ctx, "B", []byte("2"), baseTime.Add(time.Millisecond)))
	require.NoError(t, repo.Upsert(ctx, "A", []byte("3"), baseTime.Add(2*time.Millisecond)))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Title)
	assert.Equal(t, "B", all[1].Title)
	assert.Equal(t, baseTime, all[0].CreatedAt)
}

func TestNoteRepo_ListOrdersSubSecondUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	// Nanosecond offsets must survive the round trip for ordering.
	require.NoError(t, repo.Upsert(ctx, "first", []byte("1"), baseTime.Add(1)))
	require.NoError(t, repo.Upsert(ctx, "second", []byte("2"), baseTime.Add(2)))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Title)
}

func TestNoteRepo_ListEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNoteRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "A", []byte("x"), baseTime))
	require.NoError(t, repo.Delete(ctx, "A"))

	note, err := repo.Get(ctx, "A")
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestNoteRepo_DeleteNonexistent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	assert.NoError(t, repo.Delete(ctx, "A"), "deleting nonexistent note should not error")
	assert.NoError(t, repo.Delete(ctx, "A"))
}
