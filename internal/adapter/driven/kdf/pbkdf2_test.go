package kdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testDeriver(t *testing.T) *PBKDF2 {
	t.Helper()
	d, err := NewPBKDF2(MinIterations)
	require.NoError(t, err)
	return d
}

func TestNewPBKDF2_Defaults(t *testing.T) {
	d, err := NewPBKDF2(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultIterations, d.Iterations())
}

func TestNewPBKDF2_RejectsLowIterations(t *testing.T) {
	_, err := NewPBKDF2(1000)
	require.ErrorIs(t, err, ErrLowIterations)
}

func TestDerive_KeyLength(t *testing.T) {
	d := testDeriver(t)
	key, err := d.Derive("pw1", bytes.Repeat([]byte{1}, 16), MinIterations)
	require.NoError(t, err)
	assert.Len(t, key, KeySize)
}

func TestDerive_RejectsEmptySalt(t *testing.T) {
	d := testDeriver(t)
	_, err := d.Derive("pw1", nil, MinIterations)
	require.ErrorIs(t, err, ErrEmptySalt)
}

func TestDerive_RejectsLowIterations(t *testing.T) {
	d := testDeriver(t)
	_, err := d.Derive("pw1", []byte("0123456789abcdef"), 10)
	require.ErrorIs(t, err, ErrLowIterations)
}

func TestDerive_IterationsAffectKey(t *testing.T) {
	d := testDeriver(t)
	salt := []byte("0123456789abcdef")

	k1, err := d.Derive("pw1", salt, MinIterations)
	require.NoError(t, err)
	k2, err := d.Derive("pw1", salt, MinIterations+1)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestDerive_NormalizesUnicode(t *testing.T) {
	d := testDeriver(t)
	salt := []byte("0123456789abcdef")

	composed, err := d.Derive("caf\u00e9", salt, MinIterations)
	require.NoError(t, err)
	decomposed, err := d.Derive("cafe\u0301", salt, MinIterations)
	require.NoError(t, err)

	assert.Equal(t, composed, decomposed)
}

// Each derivation costs MinIterations rounds, so the property runs over a
// fixed set of drawn examples instead of rapid's default 100 cases.
const propertyExamples = 12

func TestDerive_Properties(t *testing.T) {
	d := testDeriver(t)
	passwords := rapid.String()
	salts := rapid.SliceOfN(rapid.Byte(), 16, 16)

	for i := range propertyExamples {
		password := passwords.Example(i)
		salt1 := salts.Example(2 * i)
		salt2 := salts.Example(2*i + 1)

		a, err := d.Derive(password, salt1, MinIterations)
		require.NoError(t, err)
		b, err := d.Derive(password, salt1, MinIterations)
		require.NoError(t, err)
		require.Equal(t, a, b, "derive is not deterministic for %q", password)

		if bytes.Equal(salt1, salt2) {
			continue
		}
		c, err := d.Derive(password, salt2, MinIterations)
		require.NoError(t, err)
		require.NotEqual(t, a, c, "distinct salts produced identical keys")
	}
}
