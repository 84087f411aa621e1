package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"lectern/internal/bootstrap"
	progressdto "lectern/internal/modules/progress/dto"
)

func newStatsCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show reading statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				st, err := app.ProgressCLI.Stats(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "completed: %d\nin progress: %d\npages read: %d\n", st.Completed, st.InProgress, st.PagesRead)
				return nil
			})
		},
	}
}

func newReadingCmd(dataDir *string) *cobra.Command {
	var completed bool
	reading := &cobra.Command{
		Use:   "reading",
		Short: "List books in progress (or completed with --completed)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				var (
					records []progressdto.RecordOutput
					err     error
				)
				if completed {
					records, err = app.ProgressCLI.Completed(ctx)
				} else {
					records, err = app.ProgressCLI.InProgress(ctx)
				}
				if err != nil {
					return err
				}
				if len(records) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing here yet")
					return nil
				}
				for _, r := range records {
					total := "?"
					if r.BookTotalPages > 0 {
						total = fmt.Sprint(r.BookTotalPages)
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%5d  %s  page %d/%s  %.0f%%\n", r.BookID, r.BookTitle, r.Page, total, r.Percent)
				}
				return nil
			})
		},
	}
	reading.Flags().BoolVar(&completed, "completed", false, "list completed books instead")
	return reading
}
