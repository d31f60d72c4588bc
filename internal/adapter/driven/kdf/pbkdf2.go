// Package kdf derives note-encryption keys from passwords.
package kdf

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"

	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

const (
	// KeySize is the derived key length, matching AES-256 and ChaCha20-Poly1305.
	KeySize = 32

	// MinIterations is the lowest PBKDF2 work factor accepted for a store.
	MinIterations = 100_000

	// DefaultIterations is the work factor for newly provisioned stores.
	DefaultIterations = 600_000
)

var (
	ErrEmptySalt     = errors.New("salt cannot be empty")
	ErrLowIterations = fmt.Errorf("iterations below minimum of %d", MinIterations)
)

// Compile-time interface satisfaction check.
var _ driven.KeyDeriver = (*PBKDF2)(nil)

// PBKDF2 implements driven.KeyDeriver with PBKDF2-HMAC-SHA256.
type PBKDF2 struct {
	iterations int
}

// NewPBKDF2 creates a deriver whose Iterations() is used for new stores. Zero
// selects DefaultIterations.
func NewPBKDF2(iterations int) (*PBKDF2, error) {
	if iterations == 0 {
		iterations = DefaultIterations
	}
	if iterations < MinIterations {
		return nil, fmt.Errorf("new pbkdf2 deriver: %d: %w", iterations, ErrLowIterations)
	}
	return &PBKDF2{iterations: iterations}, nil
}

// Iterations returns the work factor used for newly provisioned stores.
func (p *PBKDF2) Iterations() int {
	return p.iterations
}

// Derive returns a KeySize-byte key. The password is NFC-normalized first so
// composed and decomposed spellings of the same text yield the same key.
func (p *PBKDF2) Derive(password string, salt []byte, iterations int) ([]byte, error) {
	if len(salt) == 0 {
		return nil, ErrEmptySalt
	}
	if iterations < MinIterations {
		return nil, fmt.Errorf("derive key: %d: %w", iterations, ErrLowIterations)
	}

	normalized := norm.NFC.String(password)
	return pbkdf2.Key([]byte(normalized), salt, iterations, KeySize, sha256.New), nil
}
