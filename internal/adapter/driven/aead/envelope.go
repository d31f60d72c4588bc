// Package aead seals note bodies in a versioned, self-describing envelope.
//
// Envelope layout (all integers big-endian):
//
//	offset  size  field
//	0       1     version (0x01)
//	1       1     cipher suite (model.CipherSuite)
//	2       8     creation time, unix seconds
//	10      12    nonce
//	22      n+16  ciphertext with authentication tag
//
// Only the first 10 bytes are passed as additional authenticated data. The
// nonce is an AEAD input rather than AAD, so editing the header, the nonce or
// the body all fail decryption.
package aead

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

const (
	// Version is the only envelope format this package writes.
	Version byte = 0x01

	headerSize = 10
	nonceSize  = 12
	tagSize    = 16

	// Overhead is the number of bytes an envelope adds to its plaintext.
	Overhead = headerSize + nonceSize + tagSize
)

// Header is the unencrypted prefix of an envelope.
type Header struct {
	Version   byte
	Suite     model.CipherSuite
	CreatedAt time.Time
}

func (h Header) marshal() []byte {
	buf := make([]byte, headerSize)
	buf[0] = h.Version
	buf[1] = byte(h.Suite)
	binary.BigEndian.PutUint64(buf[2:], uint64(h.CreatedAt.Unix()))
	return buf
}

// Inspect parses the envelope header without decrypting. It validates the
// framing only; a nil error says nothing about authenticity.
func Inspect(envelope []byte) (Header, error) {
	if len(envelope) < Overhead {
		return Header{}, fmt.Errorf("envelope of %d bytes is shorter than %d: %w", len(envelope), Overhead, driven.ErrDecryption)
	}

	h := Header{
		Version:   envelope[0],
		Suite:     model.CipherSuite(envelope[1]),
		CreatedAt: time.Unix(int64(binary.BigEndian.Uint64(envelope[2:headerSize])), 0).UTC(),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("unsupported envelope version 0x%02x: %w", h.Version, driven.ErrDecryption)
	}
	switch h.Suite {
	case model.CipherAES256GCM, model.CipherChaCha20Poly1305:
	default:
		return Header{}, fmt.Errorf("unsupported cipher suite 0x%02x: %w", byte(h.Suite), driven.ErrDecryption)
	}
	return h, nil
}
