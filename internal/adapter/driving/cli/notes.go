package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/hiddenote/internal/application"
	"github.com/ericfisherdev/hiddenote/internal/domain/model"
)

const listTimeLayout = "01/02/2006 15:04"

// NoteEntry is one row of list and search output.
type NoteEntry struct {
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteResult is the data payload of commands that act on a single note.
type NoteResult struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	HTML    string `json:"html,omitempty"`
	Exists  bool   `json:"exists"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			err := withNotes(cmd, rootOpts, func(ctx context.Context, notes *application.Notes) error {
				summaries, err := notes.ListAll(ctx)
				if err != nil {
					return err
				}
				return writeSummaries(out, summaries)
			})
			if err != nil {
				return out.Fail(err)
			}
			return nil
		},
	}
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-match note titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			err := withNotes(cmd, rootOpts, func(ctx context.Context, notes *application.Notes) error {
				summaries, err := notes.Search(ctx, args[0])
				if err != nil {
					return err
				}
				return writeSummaries(out, summaries)
			})
			if err != nil {
				return out.Fail(err)
			}
			return nil
		},
	}
}

func writeSummaries(out *OutputFormatter, summaries []model.NoteSummary) error {
	entries := make([]NoteEntry, 0, len(summaries))
	for _, s := range summaries {
		entries = append(entries, NoteEntry(s))
	}
	if out.JSON() {
		return out.Success(entries, "")
	}

	if len(entries) == 0 {
		out.Notice("no notes")
		return nil
	}
	tw := tabwriter.NewWriter(out.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tUPDATED\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Title,
			e.UpdatedAt.Local().Format(listTimeLayout),
			e.CreatedAt.Local().Format(listTimeLayout))
	}
	return tw.Flush()
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new <title>",
		Short: "Create an empty note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			err := withNotes(cmd, rootOpts, func(ctx context.Context, notes *application.Notes) error {
				title, err := notes.Create(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(NoteResult{Title: title, Exists: true}, fmt.Sprintf("created %q", title))
			})
			if err != nil {
				return out.Fail(err)
			}
			return nil
		},
	}
}

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	HTML     bool
	Document bool
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "show <title>",
		Aliases: []string{"cat"},
		Short:   "Decrypt and print a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.HTML, "html", false, "render markdown to sanitized HTML")
	cmd.Flags().BoolVar(&opts.Document, "document", false, "with --html, emit a standalone HTML page")

	return cmd
}

func runShow(opts *ShowOptions, title string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	err := withNotes(cmd, opts.RootOptions, func(ctx context.Context, notes *application.Notes) error {
		exists, err := notes.Exists(ctx, title)
		if err != nil {
			return err
		}
		content, err := notes.Read(ctx, title)
		if err != nil {
			return err
		}
		if !exists {
			out.Notice("no note titled %q", title)
		}

		result := NoteResult{Title: title, Content: content, Exists: exists}
		text := content
		if opts.HTML {
			result.HTML = renderHTML(title, content, opts.Document)
			result.Content = ""
			text = result.HTML
		}
		if out.JSON() {
			return out.Success(result, "")
		}
		_, err = fmt.Fprint(out.Writer, text)
		return err
	})
	if err != nil {
		return out.Fail(err)
	}
	return nil
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <title>",
		Aliases: []string{"rm"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			title := args[0]
			err := withNotes(cmd, rootOpts, func(ctx context.Context, notes *application.Notes) error {
				exists, err := notes.Exists(ctx, title)
				if err != nil {
					return err
				}
				if err := notes.Delete(ctx, title); err != nil {
					return err
				}
				msg := fmt.Sprintf("deleted %q", title)
				if !exists {
					msg = fmt.Sprintf("no note titled %q", title)
				}
				return out.Success(NoteResult{Title: title, Exists: false}, msg)
			})
			if err != nil {
				return out.Fail(err)
			}
			return nil
		},
	}
}
