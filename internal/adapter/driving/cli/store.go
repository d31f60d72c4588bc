package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/hiddenote/internal/adapter/driven/aead"
	"github.com/ericfisherdev/hiddenote/internal/adapter/driven/kdf"
	sqliteadapter "github.com/ericfisherdev/hiddenote/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/hiddenote/internal/application"
)

// openStore opens the database and applies pending migrations. Failures are
// reported as *application.StorageError: an unreadable or corrupt file is a
// storage fault, never an authentication one.
func openStore(ctx context.Context, opts *RootOptions) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.NewDB(ctx, opts.DBPath)
	if err != nil {
		return nil, storageFailure("open store", err)
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, storageFailure("migrate store", err)
	}
	opts.logger.Debug("store opened", "path", db.Path())
	return db, nil
}

// newSession wires the driven adapters into an application.Session.
func newSession(db *sqliteadapter.DB, opts *RootOptions) (*application.Session, error) {
	deriver, err := kdf.NewPBKDF2(opts.cfg.KDFIterations)
	if err != nil {
		return nil, err
	}
	ciphers, err := aead.NewFactory(opts.cfg.Cipher)
	if err != nil {
		return nil, err
	}
	return application.NewSession(
		sqliteadapter.NewAuthRepo(db),
		sqliteadapter.NewNoteRepo(db),
		deriver,
		ciphers,
		application.WithLogger(opts.logger),
	), nil
}

// withNotes unlocks the store and runs fn with the note repository. The
// repository and database are closed afterwards, flushing any autosaves.
func withNotes(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, notes *application.Notes) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			opts.logger.Error("error closing database", "error", closeErr)
		}
	}()

	session, err := newSession(db, opts)
	if err != nil {
		return fmt.Errorf("configure session: %w", err)
	}

	notes, err := session.Unlock(ctx, opts.prompter(cmd))
	if err != nil {
		return err
	}
	defer func() {
		// Close must run even when ctx was cancelled so pending edits land.
		if closeErr := notes.Close(context.WithoutCancel(ctx)); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(ctx, notes)
}

func storageFailure(op string, err error) error {
	return &application.StorageError{Op: op, Err: err}
}
