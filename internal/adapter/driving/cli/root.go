// Package cli is the command-line driving adapter for hiddenote.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/hiddenote/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose       bool
	Format        string // "json" | "text"
	DBPath        string
	PasswordStdin bool

	cfg    *config.Config
	logger *slog.Logger
	stdin  *inputReader
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hiddenote CLI.
func NewRootCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	if logger == nil {
		logger = slog.Default()
	}
	opts := &RootOptions{cfg: cfg, logger: logger}

	cmd := &cobra.Command{
		Use:   "hiddenote",
		Short: "hiddenote - encrypted local notes",
		Long: "A password-protected note store. Every note body is encrypted with a key\n" +
			"derived from your password and kept in a single local SQLite file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return opts.formatter(cmd).Fail(WrapExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil))
			}
			if opts.DBPath == "" {
				opts.DBPath = cfg.DBPath
			}
			if opts.Verbose {
				opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			opts.stdin = newInputReader(cmd.InOrStdin())
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the note store (default from HIDDENOTE_DB_PATH)")
	cmd.PersistentFlags().BoolVar(&opts.PasswordStdin, "password-stdin", false, "read the password from the first line of stdin")

	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}

func (o *RootOptions) prompter(cmd *cobra.Command) *passwordPrompter {
	return &passwordPrompter{
		in:        o.stdin,
		terminal:  os.Stdin,
		prompt:    cmd.ErrOrStderr(),
		fromStdin: o.PasswordStdin,
	}
}
