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
	lendBook      string
	lendFriend    string
	lendDue       string
	lendNotes     string
	lendCondition string

	returnDate      string
	returnCondition string

	lendingsStatus string
)

var lendCmd = &cobra.Command{
	Use:   "lend",
	Short: "Lend a book to a friend",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]string{
			"bookId":             lendBook,
			"friendId":           lendFriend,
			"expectedReturnDate": lendDue,
			"notes":              lendNotes,
			"condition":          lendCondition,
		}

		var v models.LendingView
		if _, err := newClient().do(cmd.Context(), http.MethodPost, "/lendings", payload, &v); err != nil {
			return fmt.Errorf("lend: %w", err)
		}
		if jsonOut {
			return printJSON(v)
		}
		output.Success("lent %s to %s (lending %s)", bookTitle(v), friendName(v), v.ID)
		return nil
	},
}

var returnCmd = &cobra.Command{
	Use:   "return <lendingId>",
	Short: "Mark a lending returned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]string{"status": models.LendingReturned}
		if returnDate != "" {
			payload["actualReturnDate"] = returnDate
		}
		if returnCondition != "" {
			payload["returnCondition"] = returnCondition
		}

		var v models.LendingView
		if _, err := newClient().do(cmd.Context(), http.MethodPut, "/lendings/"+url.PathEscape(args[0]), payload, &v); err != nil {
			return fmt.Errorf("return: %w", err)
		}
		if jsonOut {
			return printJSON(v)
		}
		output.Success("%s is back from %s", bookTitle(v), friendName(v))
		return nil
	},
}

var lendingsCmd = &cobra.Command{
	Use:   "lendings",
	Short: "Inspect lendings",
}

var lendingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lendings, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/lendings"
		if lendingsStatus != "" {
			path += "?" + url.Values{"status": {lendingsStatus}}.Encode()
		}

		var items []models.LendingView
		if _, err := newClient().do(cmd.Context(), http.MethodGet, path, nil, &items); err != nil {
			return fmt.Errorf("list lendings: %w", err)
		}
		if jsonOut {
			return printJSON(items)
		}
		if len(items) == 0 {
			output.Muted("no lendings")
			return nil
		}

		overdue := 0
		rows := make([][]string, 0, len(items))
		for _, v := range items {
			due := ""
			if v.ExpectedReturnDate != nil {
				due = v.ExpectedReturnDate.Format("2006-01-02")
			}
			status := v.Status
			if v.Overdue {
				status = "overdue"
				overdue++
			}
			rows = append(rows, []string{v.ID, bookTitle(v), friendName(v), v.LendDate.Format("2006-01-02"), due, status})
		}
		if err := output.Table(os.Stdout, []string{"id", "book", "friend", "lent", "due", "status"}, rows); err != nil {
			return err
		}
		if overdue > 0 {
			output.Warning("%d overdue", overdue)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lendCmd, returnCmd, lendingsCmd)
	lendingsCmd.AddCommand(lendingsListCmd)

	lendCmd.Flags().StringVar(&lendBook, "book", "", "book id")
	lendCmd.Flags().StringVar(&lendFriend, "friend", "", "friend id")
	lendCmd.Flags().StringVar(&lendDue, "due", "", "expected return date (YYYY-MM-DD)")
	lendCmd.Flags().StringVar(&lendNotes, "notes", "", "notes")
	lendCmd.Flags().StringVar(&lendCondition, "condition", "", "condition when lent (default good)")
	_ = lendCmd.MarkFlagRequired("book")
	_ = lendCmd.MarkFlagRequired("friend")

	returnCmd.Flags().StringVar(&returnDate, "date", "", "actual return date (default now)")
	returnCmd.Flags().StringVar(&returnCondition, "condition", "", "condition on return")

	lendingsListCmd.Flags().StringVar(&lendingsStatus, "status", "", "active, returned or overdue")
}

func bookTitle(v models.LendingView) string {
	if v.Book == nil {
		return "(deleted book)"
	}
	return v.Book.Title
}

func friendName(v models.LendingView) string {
	if v.Friend == nil {
		return "(deleted friend)"
	}
	return v.Friend.Name
}
