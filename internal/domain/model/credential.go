package model

import "time"

// SaltSize is the length in bytes of the per-store salt.
const SaltSize = 16

// CredentialRecord is the singleton password verifier for a store. It is
// written once at first run and never updated.
type CredentialRecord struct {
	Verifier   string
	Salt       []byte
	Iterations int
	CreatedAt  time.Time
}
