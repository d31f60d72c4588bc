package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
	"github.com/ericfisherdev/hiddenote/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AuthStore = (*AuthRepo)(nil)

// AuthRepo is the SQLite implementation of the AuthStore port interface. The
// record lives in user_auth under the fixed primary key 1.
type AuthRepo struct {
	db *DB
}

// NewAuthRepo creates a new AuthRepo backed by the given DB.
func NewAuthRepo(db *DB) *AuthRepo {
	return &AuthRepo{db: db}
}

// Exists reports whether the credential record has been written.
func (r *AuthRepo) Exists(ctx context.Context) (bool, error) {
	const query = `SELECT COUNT(*) FROM user_auth`
	var count int
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return false, fmt.Errorf("count credentials: %w", err)
	}
	return count > 0, nil
}

// Create inserts the credential record. The row is keyed on id = 1, so a
// second call hits the primary key constraint and no existing value changes.
func (r *AuthRepo) Create(ctx context.Context, rec model.CredentialRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		const query = `INSERT INTO user_auth (id, password_hash, salt, kdf_iterations, created_at) VALUES (1, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query, rec.Verifier, rec.Salt, rec.Iterations, formatTime(createdAt))
		if err != nil {
			if isConstraintErr(err, "UNIQUE constraint", "PRIMARY KEY") {
				return fmt.Errorf("create credential: %w", driven.ErrAlreadyProvisioned)
			}
			return fmt.Errorf("create credential: %w", err)
		}
		return nil
	})
}

// Load returns the credential record or driven.ErrNotProvisioned.
func (r *AuthRepo) Load(ctx context.Context) (*model.CredentialRecord, error) {
	const query = `SELECT password_hash, salt, kdf_iterations, created_at FROM user_auth WHERE id = 1`

	var rec model.CredentialRecord
	var createdAt string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&rec.Verifier, &rec.Salt, &rec.Iterations, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrNotProvisioned
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &rec, nil
}

func isConstraintErr(err error, markers ...string) bool {
	msg := err.Error()
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
