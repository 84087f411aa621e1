package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lectern/internal/bootstrap"
	catalogdto "lectern/internal/modules/catalog/dto"
)

func newBooksCmd(dataDir *string) *cobra.Command {
	books := &cobra.Command{
		Use:   "books",
		Short: "Browse the library catalog",
	}

	var page, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog books one page at a time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.CatalogCLI.ListBooks(ctx, page, limit)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, book := range out.Books {
					printBookLine(w, book)
				}
				_, _ = fmt.Fprintf(w, "page %d of %d (%d books)\n", out.Page, out.TotalPages, out.Count)
				return nil
			})
		},
	}
	list.Flags().IntVar(&page, "page", 1, "catalog page")
	list.Flags().IntVar(&limit, "limit", 20, "books per page")

	show := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show book details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				book, err := app.CatalogCLI.GetBook(ctx, id)
				if err != nil {
					return err
				}
				printBookDetail(cmd.OutOrStdout(), book)
				return nil
			})
		},
	}

	var authorLimit int
	author := &cobra.Command{
		Use:   "author <author-id>",
		Short: "List books by an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.CatalogCLI.BooksByAuthor(ctx, id, authorLimit)
				if err != nil {
					return err
				}
				for _, book := range out {
					printBookLine(cmd.OutOrStdout(), book)
				}
				return nil
			})
		},
	}
	author.Flags().IntVar(&authorLimit, "limit", 10, "maximum books")

	var recommendLimit int
	recommend := &cobra.Command{
		Use:   "recommend",
		Short: "List recommended books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.CatalogCLI.Recommendations(ctx, recommendLimit)
				if err != nil {
					return err
				}
				for _, book := range out {
					printBookLine(cmd.OutOrStdout(), book)
				}
				return nil
			})
		},
	}
	recommend.Flags().IntVar(&recommendLimit, "limit", 10, "maximum books")

	cacheClear := &cobra.Command{
		Use:   "cache-clear",
		Short: "Drop the offline catalog cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.CatalogCLI.ClearCache(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "catalog cache cleared")
				return nil
			})
		},
	}

	books.AddCommand(list, show, author, recommend, cacheClear)
	return books
}

func printBookLine(w io.Writer, book catalogdto.BookOutput) {
	marker := " "
	if book.HasDocument {
		marker = "*"
	}
	pages := "?"
	if book.TotalPages > 0 {
		pages = strconv.Itoa(book.TotalPages)
	}
	_, _ = fmt.Fprintf(w, "%s %5d  %s  [%s p]  %s\n", marker, book.ID, book.Title, pages, authorNames(book.Authors))
}

func printBookDetail(w io.Writer, book catalogdto.BookOutput) {
	_, _ = fmt.Fprintf(w, "id: %d\ntitle: %s\n", book.ID, book.Title)
	if names := authorNames(book.Authors); names != "" {
		_, _ = fmt.Fprintf(w, "authors: %s\n", names)
	}
	if book.Publisher != "" {
		_, _ = fmt.Fprintf(w, "publisher: %s\n", book.Publisher)
	}
	if book.TotalPages > 0 {
		_, _ = fmt.Fprintf(w, "pages: %d\n", book.TotalPages)
	}
	if len(book.Categories) > 0 {
		_, _ = fmt.Fprintf(w, "categories: %s\n", strings.Join(book.Categories, ", "))
	}
	if len(book.Languages) > 0 {
		_, _ = fmt.Fprintf(w, "languages: %s\n", strings.Join(book.Languages, ", "))
	}
	_, _ = fmt.Fprintf(w, "document: %t\n", book.HasDocument)
	if book.FromCache {
		_, _ = fmt.Fprintln(w, "(offline: served from local cache)")
	}
	if book.Synopsis != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", book.Synopsis)
	}
}

func authorNames(authors []catalogdto.AuthorOutput) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
