package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
)

// Sentinel errors returned by AuthStore implementations.
var (
	// ErrAlreadyProvisioned indicates a credential record already exists.
	ErrAlreadyProvisioned = errors.New("credential already provisioned")

	// ErrNotProvisioned indicates no credential record exists yet.
	ErrNotProvisioned = errors.New("credential not provisioned")
)

// AuthStore defines the driven port for the singleton credential record.
// Create is the only mutating operation and must be atomic: after a crash the
// record either exists in full or not at all.
type AuthStore interface {
	// Exists reports whether a credential record has been created.
	Exists(ctx context.Context) (bool, error)

	// Create persists the record. Returns ErrAlreadyProvisioned if one exists.
	Create(ctx context.Context, rec model.CredentialRecord) error

	// Load returns the record, or ErrNotProvisioned if none exists.
	Load(ctx context.Context) (*model.CredentialRecord, error)
}
