package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/hiddenote/internal/adapter/driving/render"
	"github.com/ericfisherdev/hiddenote/internal/application"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	File   string
	Append bool
	Follow bool
}

// NewSaveCommand creates the save command. Content comes from --file or the
// remainder of stdin (after the password line when --password-stdin is set).
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <title>",
		Short: "Encrypt and store note content, creating the note if needed",
		Long: "Encrypt and store note content, creating the note if needed.\n\n" +
			"With --follow every line read from stdin is appended and the note is\n" +
			"saved after a quiet period (HIDDENOTE_AUTOSAVE_DELAY); the last edit is\n" +
			"always written before the command exits.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read content from this file instead of stdin")
	cmd.Flags().BoolVar(&opts.Append, "append", false, "append to the existing content")
	cmd.Flags().BoolVar(&opts.Follow, "follow", false, "stream stdin line by line with autosave")
	cmd.MarkFlagsMutuallyExclusive("file", "follow")

	return cmd
}

func runSave(opts *SaveOptions, title string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	if err := application.ValidateTitle(title); err != nil {
		return out.Fail(err)
	}

	err := withNotes(cmd, opts.RootOptions, func(ctx context.Context, notes *application.Notes) error {
		var existing string
		if opts.Append {
			var err error
			existing, err = notes.Read(ctx, title)
			if err != nil {
				return err
			}
		}

		if opts.Follow {
			return follow(ctx, opts, notes, title, existing, out)
		}

		content, err := opts.readContent(ctx)
		if err != nil {
			return err
		}
		if err := notes.CreateOrUpdate(ctx, title, existing+content); err != nil {
			return err
		}
		return out.Success(NoteResult{Title: title, Exists: true}, fmt.Sprintf("saved %q", title))
	})
	if err != nil {
		return out.Fail(err)
	}
	return nil
}

func (o *SaveOptions) readContent(ctx context.Context) (string, error) {
	if o.File != "" {
		b, err := os.ReadFile(o.File)
		if err != nil {
			return "", WrapExitError(ExitCommandError, "read content file", err)
		}
		return string(b), nil
	}
	content, err := o.stdin.ReadAll(ctx)
	if err != nil {
		return "", fmt.Errorf("read content from stdin: %w", err)
	}
	return content, nil
}

// follow feeds stdin into an AutoSaver one line at a time. An interrupt stops
// reading at once; lines already received are still saved.
func follow(ctx context.Context, opts *SaveOptions, notes *application.Notes, title, content string, out *OutputFormatter) error {
	saver := notes.NewAutoSaver(opts.cfg.AutoSaveDelay)
	lines := 0

	var readErr error
	for {
		line, err := opts.stdin.ReadLine(ctx)
		if line != "" {
			content += line
			lines++
			if editErr := saver.Edit(title, content); editErr != nil {
				return editErr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = err
			break
		}
	}

	flushCtx := context.WithoutCancel(ctx)
	if err := saver.Close(flushCtx); err != nil {
		return errors.Join(readErr, err)
	}
	if lines == 0 && readErr == nil {
		if err := notes.CreateOrUpdate(flushCtx, title, content); err != nil {
			return err
		}
	}
	opts.logger.Debug("follow finished", "title", title, "lines", lines)
	if readErr != nil {
		return fmt.Errorf("read stdin after %d lines: %w", lines, readErr)
	}
	return out.Success(NoteResult{Title: title, Exists: true}, fmt.Sprintf("saved %q (%d lines)", title, lines))
}

func renderHTML(title, content string, document bool) string {
	if document {
		return render.Document(title, content)
	}
	return render.Markdown(content)
}
