package application

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

const (
	verifierScheme = "pbkdf2-sha256"
	verifierLabel  = "hiddenote/verifier"
)

// CredentialService owns the store's password verifier. The verifier is an
// HMAC of a label under the slow-derived key, so checking a guess costs a
// full key derivation.
type CredentialService struct {
	store   driven.AuthStore
	deriver driven.KeyDeriver
	random  io.Reader
	now     func() time.Time
	logger  *slog.Logger
}

// NewCredentialService creates a CredentialService over the given store.
func NewCredentialService(store driven.AuthStore, deriver driven.KeyDeriver) *CredentialService {
	return &CredentialService{
		store:   store,
		deriver: deriver,
		random:  rand.Reader,
		now:     time.Now,
		logger:  slog.Default(),
	}
}

// IsFirstTime reports whether no password has been set up yet.
func (s *CredentialService) IsFirstTime(ctx context.Context) (bool, error) {
	exists, err := s.store.Exists(ctx)
	if err != nil {
		return false, storageErr("check credential", err)
	}
	return !exists, nil
}

// Provision creates the credential record for password and returns the new
// salt. Returns ErrAlreadyProvisioned if a record exists.
func (s *CredentialService) Provision(ctx context.Context, password string) ([]byte, error) {
	rec, key, err := s.provision(ctx, password)
	if err != nil {
		return nil, err
	}
	clear(key)
	return rec.Salt, nil
}

// Verify checks password against the stored verifier. The stored salt is
// returned whenever a record exists, whatever the outcome. An unprovisioned
// store yields ok == false.
func (s *CredentialService) Verify(ctx context.Context, password string) ([]byte, bool, error) {
	rec, key, ok, err := s.verify(ctx, password)
	if err != nil {
		return nil, false, err
	}
	clear(key)
	if rec == nil {
		return nil, false, nil
	}
	return rec.Salt, ok, nil
}

// provision returns the record it wrote together with the derived key, so the
// session does not pay for a second derivation.
func (s *CredentialService) provision(ctx context.Context, password string) (*model.CredentialRecord, []byte, error) {
	if password == "" {
		return nil, nil, ErrEmptyPassword
	}

	salt := make([]byte, model.SaltSize)
	if _, err := io.ReadFull(s.random, salt); err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}

	iterations := s.deriver.Iterations()
	key, err := s.deriver.Derive(password, salt, iterations)
	if err != nil {
		return nil, nil, fmt.Errorf("derive key: %w", err)
	}

	rec := model.CredentialRecord{
		Verifier:   computeVerifier(key, iterations),
		Salt:       salt,
		Iterations: iterations,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.Create(ctx, rec); err != nil {
		clear(key)
		if errors.Is(err, driven.ErrAlreadyProvisioned) {
			return nil, nil, ErrAlreadyProvisioned
		}
		return nil, nil, storageErr("create credential", err)
	}

	s.logger.Info("credential provisioned", "kdf_iterations", iterations)
	return &rec, key, nil
}

// verify returns the record, and on success the derived key. rec is nil when
// the store has not been provisioned.
func (s *CredentialService) verify(ctx context.Context, password string) (*model.CredentialRecord, []byte, bool, error) {
	rec, err := s.store.Load(ctx)
	if errors.Is(err, driven.ErrNotProvisioned) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, storageErr("load credential", err)
	}

	if password == "" {
		return rec, nil, false, nil
	}

	key, err := s.deriver.Derive(password, rec.Salt, rec.Iterations)
	if err != nil {
		return nil, nil, false, fmt.Errorf("derive key: %w", err)
	}

	want := []byte(rec.Verifier)
	got := []byte(computeVerifier(key, rec.Iterations))
	if subtle.ConstantTimeCompare(want, got) != 1 {
		clear(key)
		return rec, nil, false, nil
	}
	return rec, key, true, nil
}

func computeVerifier(key []byte, iterations int) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(verifierLabel))
	return fmt.Sprintf("%s$%d$%s", verifierScheme, iterations, base64.RawURLEncoding.EncodeToString(mac.Sum(nil)))
}
