package auth

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/crucial707/groupchat/cmd/cli/client"
	"github.com/crucial707/groupchat/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers register, login and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(registerCmd(), loginCmd(), logoutCmd())
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			username = prompt(cmd.OutOrStdout(), in, "Username", username)
			email = prompt(cmd.OutOrStdout(), in, "Email", email)
			password = prompt(cmd.OutOrStdout(), in, "Password", password)

			var resp struct {
				ID       int    `json:"id"`
				Username string `json:"username"`
				Token    string `json:"token"`
			}
			payload := map[string]string{"username": username, "email": email, "password": password}
			if err := client.Do("POST", "/auth/register/", "", payload, &resp); err != nil {
				return fmt.Errorf("register: %w", err)
			}
			if err := config.SaveToken(resp.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (id %d). Token stored locally.\n", resp.Username, resp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to register")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			username = prompt(cmd.OutOrStdout(), in, "Username", username)
			password = prompt(cmd.OutOrStdout(), in, "Password", password)

			var resp struct {
				Token string `json:"token"`
				User  struct {
					Username string `json:"username"`
				} `json:"user"`
			}
			payload := map[string]string{"username": username, "password": password}
			if err := client.Do("POST", "/auth/login/", "", payload, &resp); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if resp.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}
			if err := config.SaveToken(resp.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. Token stored locally.\n", resp.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}

			apiErr := client.Do("POST", "/auth/logout/", token, nil, nil)
			// the local token is useless either way
			if err := config.ClearToken(); err != nil {
				return err
			}
			if apiErr != nil {
				return fmt.Errorf("logout: %w", apiErr)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			return nil
		},
	}
}

// prompt returns current when set, otherwise reads one line from in.
func prompt(w io.Writer, in *bufio.Reader, label, current string) string {
	if current != "" {
		return current
	}
	fmt.Fprintf(w, "%s: ", label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
