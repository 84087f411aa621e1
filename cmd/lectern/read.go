package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"lectern/internal/bootstrap"
	sessiondto "lectern/internal/modules/session/dto"
	apperrors "lectern/internal/platform/errors"
)

func newReadCmd(dataDir *string) *cobra.Command {
	var noText bool
	read := &cobra.Command{
		Use:   "read",
		Short: "Read a book page by page and keep progress in sync",
	}
	read.PersistentFlags().BoolVar(&noText, "no-text", false, "print only the position, not the page text")

	var reload bool
	open := &cobra.Command{
		Use:   "open <book-id>",
		Short: "Open or resume a reading session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				w := cmd.OutOrStdout()
				session, err := app.SessionCLI.Open(ctx, bookID)
				var initErr *apperrors.SessionInitError
				switch {
				case err == nil:
				case errors.As(err, &initErr):
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", initErr)
				default:
					return err
				}

				doc, docErr := app.ReaderCLI.Load(ctx, bookID, reload)
				if docErr == nil && !doc.Simulated && doc.TotalPages > 0 {
					if session, err = app.SessionCLI.ResolveTotalPages(ctx, bookID, doc.TotalPages); err != nil {
						return err
					}
				}
				verb := "opened"
				if session.Resumed {
					verb = "resumed"
				}
				_, _ = fmt.Fprintf(w, "%s %q\n", verb, session.BookTitle)
				printPosition(w, session)
				if docErr != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "document unavailable: %v\n", docErr)
					return nil
				}
				return printPage(cmd, app, session, noText)
			})
		},
	}
	open.Flags().BoolVar(&reload, "reload", false, "download the document again")

	next := navCmd(dataDir, &noText, "next", "Turn to the next page", func(ctx context.Context, app *bootstrap.App, _ []string) (sessiondto.SessionOutput, error) {
		return app.SessionCLI.Next(ctx)
	})
	prev := navCmd(dataDir, &noText, "prev", "Turn to the previous page", func(ctx context.Context, app *bootstrap.App, _ []string) (sessiondto.SessionOutput, error) {
		return app.SessionCLI.Prev(ctx)
	})
	gotoCmd := navCmd(dataDir, &noText, "goto <page>", "Jump to a page", func(ctx context.Context, app *bootstrap.App, args []string) (sessiondto.SessionOutput, error) {
		page, err := strconv.Atoi(args[0])
		if err != nil {
			return sessiondto.SessionOutput{}, fmt.Errorf("%w: page %q", apperrors.ErrInvalidInput, args[0])
		}
		return app.SessionCLI.Goto(ctx, page)
	})
	gotoCmd.Args = cobra.ExactArgs(1)

	page := &cobra.Command{
		Use:   "page",
		Short: "Print the current page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				session, err := app.SessionCLI.GetActive(ctx)
				if err != nil {
					return err
				}
				printPosition(cmd.OutOrStdout(), session)
				return printPage(cmd, app, session, false)
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the active reading session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				session, err := app.SessionCLI.GetActive(ctx)
				if errors.Is(err, apperrors.ErrNoActiveSession) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active reading session")
					return nil
				}
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "book: %s (%d)\n", session.BookTitle, session.BookID)
				printPosition(w, session)
				_, _ = fmt.Fprintf(w, "opened: %s\n", session.OpenedAt.Local().Format("2006-01-02 15:04"))
				if session.Offline {
					_, _ = fmt.Fprintln(w, "offline: progress is kept locally until the store is reachable")
				}
				if session.Dirty {
					_, _ = fmt.Fprintln(w, "unsaved: run `lectern read flush` or close the session")
				}
				return nil
			})
		},
	}

	flush := &cobra.Command{
		Use:   "flush",
		Short: "Save the current page to the progress store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Flush(ctx)
				if err != nil {
					return err
				}
				if out.Warning != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", out.Warning)
				}
				if out.Persisted {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved page %d (%s)\n", out.Page, out.Status)
				} else {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing to save")
				}
				return nil
			})
		},
	}

	closeCmd := &cobra.Command{
		Use:   "close",
		Short: "Close the reading session and save progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Close(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "closed at page %d (%s) after %d min\n", out.EndPage, out.Status, out.DurationMin)
				if out.Warning != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: progress not saved: %s\n", out.Warning)
				}
				if out.JournalPath != "" {
					_, _ = fmt.Fprintf(w, "journal: %s\n", out.JournalPath)
				}
				return nil
			})
		},
	}

	external := &cobra.Command{
		Use:   "external",
		Short: "Open the active book in the system PDF viewer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				session, err := app.SessionCLI.GetActive(ctx)
				if err != nil {
					return err
				}
				out, err := app.ReaderCLI.OpenExternal(ctx, session.BookID)
				if err != nil {
					return err
				}
				if out.Launched {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "opened %s\n", out.Path)
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "document saved at %s\n", out.Path)
				}
				return nil
			})
		},
	}

	read.AddCommand(open, next, prev, gotoCmd, page, status, flush, closeCmd, external)
	return read
}

type navigateFunc func(ctx context.Context, app *bootstrap.App, args []string) (sessiondto.SessionOutput, error)

func navCmd(dataDir *string, noText *bool, use, short string, move navigateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				session, err := move(ctx, app, args)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if !session.Changed {
					_, _ = fmt.Fprintln(w, "page unchanged")
				}
				printPosition(w, session)
				return printPage(cmd, app, session, *noText)
			})
		},
	}
}

func printPosition(w io.Writer, session sessiondto.SessionOutput) {
	if session.TotalPages > 0 {
		_, _ = fmt.Fprintf(w, "page %d of %d (%s)\n", session.CurrentPage, session.TotalPages, session.Status)
		return
	}
	_, _ = fmt.Fprintf(w, "page %d (%s)\n", session.CurrentPage, session.Status)
}

func printPage(cmd *cobra.Command, app *bootstrap.App, session sessiondto.SessionOutput, noText bool) error {
	if noText {
		return nil
	}
	page, err := app.ReaderCLI.Page(cmd.Context(), session.BookID, session.CurrentPage)
	var unavailable *apperrors.DocumentUnavailableError
	if errors.As(err, &unavailable) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "document unavailable: %v\n", unavailable)
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", page.Text)
	return nil
}
