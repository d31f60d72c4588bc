package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

// KeySize is the key length required by every supported suite.
const KeySize = 32

var (
	ErrInvalidKey       = fmt.Errorf("key must be %d bytes", KeySize)
	ErrUnsupportedSuite = errors.New("unsupported cipher suite")
)

// Compile-time interface satisfaction checks.
var (
	_ driven.Cipher        = (*Engine)(nil)
	_ driven.CipherFactory = (*Factory)(nil)
)

// Engine implements driven.Cipher. It seals with one suite and opens any
// supported suite, all under the same key. An Engine is immutable once built.
type Engine struct {
	suite model.CipherSuite
	aeads map[model.CipherSuite]cipher.AEAD
	now   func() time.Time
}

// NewEngine builds an engine that seals with suite. The key is copied into the
// AEAD key schedules and the caller's slice is zeroed.
func NewEngine(suite model.CipherSuite, key []byte) (*Engine, error) {
	defer clear(key)

	if len(key) != KeySize {
		return nil, fmt.Errorf("new engine: got %d bytes: %w", len(key), ErrInvalidKey)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	chacha, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305.New: %w", err)
	}

	aeads := map[model.CipherSuite]cipher.AEAD{
		model.CipherAES256GCM:        gcm,
		model.CipherChaCha20Poly1305: chacha,
	}
	if _, ok := aeads[suite]; !ok {
		return nil, fmt.Errorf("new engine: 0x%02x: %w", byte(suite), ErrUnsupportedSuite)
	}

	return &Engine{
		suite: suite,
		aeads: aeads,
		now:   time.Now,
	}, nil
}

// Suite returns the suite used for new envelopes.
func (e *Engine) Suite() model.CipherSuite {
	return e.suite
}

// Encrypt seals plaintext under a fresh random nonce, so equal plaintexts
// never produce equal envelopes.
func (e *Engine) Encrypt(plaintext []byte) ([]byte, error) {
	aead := e.aeads[e.suite]

	header := Header{Version: Version, Suite: e.suite, CreatedAt: e.now()}.marshal()

	out := make([]byte, headerSize+nonceSize, Overhead+len(plaintext))
	copy(out, header)
	nonce := out[headerSize : headerSize+nonceSize]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return aead.Seal(out, nonce, plaintext, header), nil
}

// Decrypt opens an envelope. Any framing or authentication failure returns an
// error wrapping driven.ErrDecryption and a nil plaintext.
func (e *Engine) Decrypt(envelope []byte) ([]byte, error) {
	h, err := Inspect(envelope)
	if err != nil {
		return nil, err
	}

	aead := e.aeads[h.Suite]
	header := envelope[:headerSize]
	nonce := envelope[headerSize : headerSize+nonceSize]
	sealed := envelope[headerSize+nonceSize:]

	plaintext, err := aead.Open(nil, nonce, sealed, header)
	if err != nil {
		return nil, fmt.Errorf("open %s envelope: %w", h.Suite, driven.ErrDecryption)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// Factory implements driven.CipherFactory for a fixed sealing suite.
type Factory struct {
	suite model.CipherSuite
}

// NewFactory returns a factory for engines that seal with suite.
func NewFactory(suite model.CipherSuite) (*Factory, error) {
	switch suite {
	case model.CipherAES256GCM, model.CipherChaCha20Poly1305:
		return &Factory{suite: suite}, nil
	default:
		return nil, fmt.Errorf("new factory: 0x%02x: %w", byte(suite), ErrUnsupportedSuite)
	}
}

// NewCipher builds an Engine from key. The caller's key slice is zeroed.
func (f *Factory) NewCipher(key []byte) (driven.Cipher, error) {
	return NewEngine(f.suite, key)
}

// Suite returns the sealing suite of engines built by this factory.
func (f *Factory) Suite() model.CipherSuite {
	return f.suite
}
