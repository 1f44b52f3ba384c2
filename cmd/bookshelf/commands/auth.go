package commands

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bookshelf/cmd/bookshelf/output"
)

var (
	authUsername string
	authPassword string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Register, log in and manage the saved token",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentials()
		if err != nil {
			return err
		}

		var resp struct {
			User struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"user"`
		}
		if _, err := newClient().do(cmd.Context(), http.MethodPost, "/auth/register", creds, &resp); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		output.Success("registered %s; run `bookshelf auth login` next", resp.User.Username)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentials()
		if err != nil {
			return err
		}

		var resp struct {
			Token     string `json:"token"`
			ExpiresAt string `json:"expiresAt"`
		}
		if _, err := newClient().do(cmd.Context(), http.MethodPost, "/auth/login", creds, &resp); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		output.Success("logged in as %s", creds["username"])
		output.Muted("token saved to %s, expires %s", tokenPath, resp.ExpiresAt)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clearToken(tokenPath); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		output.Success("logged out")
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the saved token is still valid",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		if c.token == "" {
			return errors.New("not logged in")
		}

		var resp struct {
			User struct {
				UserID   string `json:"userId"`
				Username string `json:"username"`
			} `json:"user"`
		}
		if _, err := c.do(cmd.Context(), http.MethodGet, "/auth/verify", nil, &resp); err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		output.Success("token valid for %s (%s)", resp.User.Username, resp.User.UserID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd, verifyCmd)

	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVarP(&authUsername, "username", "u", "", "username")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "password (prompted when omitted)")
		_ = c.MarkFlagRequired("username")
	}
}

func credentials() (map[string]string, error) {
	password := authPassword
	if password == "" {
		p, err := readPassword("Password: ")
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		password = p
	}
	return map[string]string{
		"username": strings.TrimSpace(authUsername),
		"password": password,
	}, nil
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	fmt.Print(prompt)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
