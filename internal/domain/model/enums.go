package model

// CipherSuite identifies the AEAD construction that sealed a note body. The
// numeric value is written into every envelope header.
type CipherSuite uint8

const (
	CipherAES256GCM        CipherSuite = 0x01
	CipherChaCha20Poly1305 CipherSuite = 0x02
)

// String returns the configuration name of the suite.
func (s CipherSuite) String() string {
	switch s {
	case CipherAES256GCM:
		return "aes-256-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return "unknown"
	}
}

// ParseCipherSuite maps a configuration name back to its suite. The second
// return value is false for unrecognized names.
func ParseCipherSuite(name string) (CipherSuite, bool) {
	switch name {
	case "aes-256-gcm", "aes":
		return CipherAES256GCM, true
	case "chacha20-poly1305", "chacha20", "chacha":
		return CipherChaCha20Poly1305, true
	default:
		return 0, false
	}
}
