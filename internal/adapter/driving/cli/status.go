package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/hiddenote/internal/adapter/driven/sqlite"
)

// StatusResult is the data payload of the status command.
type StatusResult struct {
	Path          string `json:"path"`
	Initialized   bool   `json:"initialized"`
	SchemaVersion uint   `json:"schema_version"`
	Cipher        string `json:"cipher"`
}

// NewStatusCommand creates the status command. It never asks for a password.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the store lives and whether a password is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := openStore(ctx, opts)
	if err != nil {
		return out.Fail(err)
	}
	defer db.Close()

	initialized, err := sqliteadapter.NewAuthRepo(db).Exists(ctx)
	if err != nil {
		return out.Fail(storageFailure("check credential", err))
	}
	version, _, err := sqliteadapter.SchemaVersion(db.Writer)
	if err != nil {
		return out.Fail(storageFailure("read schema version", err))
	}

	result := StatusResult{
		Path:          db.Path(),
		Initialized:   initialized,
		SchemaVersion: version,
		Cipher:        opts.cfg.Cipher.String(),
	}
	state := "not initialized (the next command will ask you to create a password)"
	if initialized {
		state = "initialized"
	}
	text := fmt.Sprintf("store:  %s\nstate:  %s\nschema: v%d\ncipher: %s", result.Path, state, result.SchemaVersion, result.Cipher)
	return out.Success(result, text)
}
