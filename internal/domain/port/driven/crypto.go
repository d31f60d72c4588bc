package driven

import (
	"errors"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
)

// ErrDecryption is returned when a sealed note body fails authentication or is
// malformed. No plaintext is returned alongside it.
var ErrDecryption = errors.New("decryption failed: wrong key or corrupted data")

// KeyDeriver turns a password and salt into a symmetric key. Derive must be
// deterministic in (password, salt, iterations).
type KeyDeriver interface {
	Derive(password string, salt []byte, iterations int) ([]byte, error)

	// Iterations is the work factor used for newly provisioned stores.
	Iterations() int
}

// Cipher seals and opens note bodies with a key fixed at construction.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// CipherFactory builds a Cipher from a derived key. Implementations take
// ownership of key and may zero the caller's slice.
type CipherFactory interface {
	NewCipher(key []byte) (Cipher, error)

	// Suite reports the construction used for new ciphertexts.
	Suite() model.CipherSuite
}
