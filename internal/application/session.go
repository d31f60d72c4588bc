package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

// PasswordProvider supplies the user's password. firstRun is true when the
// password being asked for will become the store's password.
type PasswordProvider interface {
	Password(ctx context.Context, firstRun bool) (string, error)
}

// PasswordFunc adapts a function to PasswordProvider.
type PasswordFunc func(ctx context.Context, firstRun bool) (string, error)

// Password calls f.
func (f PasswordFunc) Password(ctx context.Context, firstRun bool) (string, error) {
	return f(ctx, firstRun)
}

// Session composes credential checking, key derivation and the cipher into a
// single unlock flow. The derived key never leaves this package: it goes
// straight into the cipher held by the returned Notes handle.
type Session struct {
	creds   *CredentialService
	store   driven.NoteStore
	ciphers driven.CipherFactory
	now     func() time.Time
	logger  *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock overrides the time source used for note timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
		s.creds.now = now
	}
}

// WithLogger sets the logger used by the session and the handles it returns.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
		s.creds.logger = logger
	}
}

// NewSession creates a Session with all required dependencies.
func NewSession(
	auth driven.AuthStore,
	notes driven.NoteStore,
	deriver driven.KeyDeriver,
	ciphers driven.CipherFactory,
	opts ...SessionOption,
) *Session {
	s := &Session{
		creds:   NewCredentialService(auth, deriver),
		store:   notes,
		ciphers: ciphers,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Credentials returns the credential service backing this session.
func (s *Session) Credentials() *CredentialService {
	return s.creds
}

// IsFirstTime reports whether Unlock will onboard a new password.
func (s *Session) IsFirstTime(ctx context.Context) (bool, error) {
	return s.creds.IsFirstTime(ctx)
}

// Unlock asks pp for a password and returns the unlocked note repository.
//
// On a fresh store the password is provisioned and a welcome note is seeded.
// Otherwise the password is verified and, only on success, the key is
// re-derived from the stored salt. A wrong password returns ErrAuthFailure
// without the note store being touched.
func (s *Session) Unlock(ctx context.Context, pp PasswordProvider) (*Notes, error) {
	firstRun, err := s.creds.IsFirstTime(ctx)
	if err != nil {
		return nil, err
	}

	password, err := pp.Password(ctx, firstRun)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	var key []byte
	if firstRun {
		_, key, err = s.creds.provision(ctx, password)
		if err != nil {
			return nil, err
		}
	} else {
		rec, derived, ok, err := s.creds.verify(ctx, password)
		if err != nil {
			return nil, err
		}
		if rec == nil || !ok {
			s.logger.Warn("unlock rejected")
			return nil, ErrAuthFailure
		}
		key = derived
	}

	cipher, err := s.ciphers.NewCipher(key)
	clear(key)
	if err != nil {
		return nil, fmt.Errorf("initialize cipher: %w", err)
	}

	notes := newNotes(s.store, cipher, s.now, s.logger)

	if firstRun {
		if err := notes.CreateOrUpdate(ctx, WelcomeTitle, WelcomeContent); err != nil {
			return nil, fmt.Errorf("seed welcome note: %w", err)
		}
		s.logger.Info("store onboarded", "cipher", s.ciphers.Suite().String())
	} else {
		s.logger.Info("store unlocked", "cipher", s.ciphers.Suite().String())
	}

	return notes, nil
}
