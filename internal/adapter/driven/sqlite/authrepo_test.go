package sqlite

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

func makeCredential(verifier string, saltByte byte) model.CredentialRecord {
	return model.CredentialRecord{
		Verifier:   verifier,
		Salt:       bytes.Repeat([]byte{saltByte}, model.SaltSize),
		Iterations: 100000,
	}
}

func TestAuthRepo_ExistsOnEmptyStore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuthRepo(db)

	exists, err := repo.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAuthRepo_CreateAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuthRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, makeCredential("pbkdf2-sha256$100000$abc", 0x07)))

	exists, err := repo.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	rec, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pbkdf2-sha256$100000$abc", rec.Verifier)
	assert.Equal(t, bytes.Repeat([]byte{0x07}, model.SaltSize), rec.Salt)
	assert.Equal(t, 100000, rec.Iterations)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestAuthRepo_CreateTwiceKeepsOriginal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuthRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, makeCredential("first", 0x01)))

	err := repo.Create(ctx, makeCredential("second", 0x02))
	require.ErrorIs(t, err, driven.ErrAlreadyProvisioned)

	rec, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", rec.Verifier)
	assert.Equal(t, bytes.Repeat([]byte{0x01}, model.SaltSize), rec.Salt)
}

func TestAuthRepo_LoadNotProvisioned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuthRepo(db)

	rec, err := repo.Load(context.Background())
	require.ErrorIs(t, err, driven.ErrNotProvisioned)
	assert.Nil(t, rec)
}

func TestAuthRepo_RejectsWrongSaltLength(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuthRepo(db)
	ctx := context.Background()

	rec := makeCredential("v", 0x01)
	rec.Salt = rec.Salt[:8]

	err := repo.Create(ctx, rec)
	require.Error(t, err)
	assert.NotErrorIs(t, err, driven.ErrAlreadyProvisioned)

	exists, err := repo.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists, "a rejected insert must leave no partial record")
}
