package commands

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"bookshelf/cmd/bookshelf/output"
	"bookshelf/pkg/models"
)

var (
	bookQuery  string
	bookStatus string
	bookGenre  string
	bookInput  models.Book
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List, add, show and delete books",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List books, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if bookQuery != "" {
			q.Set("q", bookQuery)
		}
		if bookStatus != "" {
			q.Set("status", bookStatus)
		}
		if bookGenre != "" {
			q.Set("genre", bookGenre)
		}
		path := "/books"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}

		var items []models.Book
		if _, err := newClient().do(cmd.Context(), http.MethodGet, path, nil, &items); err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		if jsonOut {
			return printJSON(items)
		}
		if len(items) == 0 {
			output.Muted("no books")
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, b := range items {
			rows = append(rows, []string{b.ID, b.Title, b.Author, b.Genre, b.Status})
		}
		return output.Table(os.Stdout, []string{"id", "title", "author", "genre", "status"}, rows)
	},
}

var booksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book",
	RunE: func(cmd *cobra.Command, args []string) error {
		var b models.Book
		if _, err := newClient().do(cmd.Context(), http.MethodPost, "/books", bookInput, &b); err != nil {
			return fmt.Errorf("add book: %w", err)
		}
		if jsonOut {
			return printJSON(b)
		}
		output.Success("added %q by %s (%s)", b.Title, b.Author, b.ID)
		return nil
	},
}

var booksShowCmd = &cobra.Command{
	Use:   "show <bookId>",
	Short: "Show one book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var b models.Book
		if _, err := newClient().do(cmd.Context(), http.MethodGet, "/books/"+url.PathEscape(args[0]), nil, &b); err != nil {
			return fmt.Errorf("show book: %w", err)
		}
		if jsonOut {
			return printJSON(b)
		}

		output.Field("Title", b.Title)
		output.Field("Author", b.Author)
		output.Field("Original", joinNonEmpty(b.OriginalTitle, b.OriginalAuthor))
		output.Field("Genre", b.Genre)
		output.Field("ISBN", b.ISBN)
		output.Field("Tags", b.Tags)
		output.Field("Status", b.Status)
		output.Field("Lent to", b.LentTo)
		if b.LentDate != nil {
			output.Field("Lent on", b.LentDate.Format("2006-01-02"))
		}
		output.Field("Description", b.Description)
		return nil
	},
}

var booksDeleteCmd = &cobra.Command{
	Use:   "delete <bookId>",
	Short: "Delete a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClient().do(cmd.Context(), http.MethodDelete, "/books/"+url.PathEscape(args[0]), nil, nil)
		if err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		output.Success("%s", env.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(booksCmd)
	booksCmd.AddCommand(booksListCmd, booksAddCmd, booksShowCmd, booksDeleteCmd)

	booksListCmd.Flags().StringVarP(&bookQuery, "query", "q", "", "match title, author, isbn or tags")
	booksListCmd.Flags().StringVar(&bookStatus, "status", "", "available or lent")
	booksListCmd.Flags().StringVar(&bookGenre, "genre", "", "exact genre, case-insensitive")

	f := booksAddCmd.Flags()
	f.StringVar(&bookInput.Title, "title", "", "title")
	f.StringVar(&bookInput.Author, "author", "", "author")
	f.StringVar(&bookInput.OriginalTitle, "original-title", "", "title in the original language")
	f.StringVar(&bookInput.OriginalAuthor, "original-author", "", "author name in the original language")
	f.StringVar(&bookInput.Genre, "genre", "", "genre")
	f.StringVar(&bookInput.ISBN, "isbn", "", "ISBN")
	f.StringVar(&bookInput.Description, "description", "", "description")
	f.StringVar(&bookInput.CoverURL, "cover-url", "", "cover image URL")
	f.StringVar(&bookInput.Tags, "tags", "", "comma-separated tags")
	_ = booksAddCmd.MarkFlagRequired("title")
	_ = booksAddCmd.MarkFlagRequired("author")
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " / " + b
	}
}
