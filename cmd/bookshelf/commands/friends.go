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
	friendQuery string
	friendInput models.Friend
)

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List, add and delete friends",
}

var friendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List friends, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/friends"
		if friendQuery != "" {
			path += "?" + url.Values{"q": {friendQuery}}.Encode()
		}

		var items []models.Friend
		if _, err := newClient().do(cmd.Context(), http.MethodGet, path, nil, &items); err != nil {
			return fmt.Errorf("list friends: %w", err)
		}
		if jsonOut {
			return printJSON(items)
		}
		if len(items) == 0 {
			output.Muted("no friends yet")
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, f := range items {
			rows = append(rows, []string{f.ID, f.Name, f.Email, f.Phone})
		}
		return output.Table(os.Stdout, []string{"id", "name", "email", "phone"}, rows)
	},
}

var friendsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a friend",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f models.Friend
		if _, err := newClient().do(cmd.Context(), http.MethodPost, "/friends", friendInput, &f); err != nil {
			return fmt.Errorf("add friend: %w", err)
		}
		if jsonOut {
			return printJSON(f)
		}
		output.Success("added %s (%s)", f.Name, f.ID)
		return nil
	},
}

var friendsDeleteCmd = &cobra.Command{
	Use:   "delete <friendId>",
	Short: "Delete a friend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newClient().do(cmd.Context(), http.MethodDelete, "/friends/"+url.PathEscape(args[0]), nil, nil)
		if err != nil {
			return fmt.Errorf("delete friend: %w", err)
		}
		output.Success("%s", env.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(friendsCmd)
	friendsCmd.AddCommand(friendsListCmd, friendsAddCmd, friendsDeleteCmd)

	friendsListCmd.Flags().StringVarP(&friendQuery, "query", "q", "", "match name or email")

	f := friendsAddCmd.Flags()
	f.StringVar(&friendInput.Name, "name", "", "name")
	f.StringVar(&friendInput.Email, "email", "", "email")
	f.StringVar(&friendInput.Phone, "phone", "", "phone")
	f.StringVar(&friendInput.Address, "address", "", "address")
	f.StringVar(&friendInput.Notes, "notes", "", "notes")
	_ = friendsAddCmd.MarkFlagRequired("name")
}
