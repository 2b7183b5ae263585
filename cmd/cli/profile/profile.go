package profile

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/crucial707/groupchat/cmd/cli/client"
	"github.com/crucial707/groupchat/cmd/cli/config"
	"github.com/crucial707/groupchat/cmd/cli/output"
	"github.com/spf13/cobra"
)

type profile struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// InitProfile registers the profile command group.
func InitProfile(rootCmd *cobra.Command) {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
	}
	profileCmd.AddCommand(showCmd(), updateCmd(), activityCmd())
	rootCmd.AddCommand(profileCmd)
}

func showCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}
			var p profile
			if err := client.Do("GET", "/profile/", token, nil, &p); err != nil {
				return err
			}
			render(cmd, p, asJSON)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON")
	return cmd
}

func updateCmd() *cobra.Command {
	var username, email string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your username and/or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{}
			if cmd.Flags().Changed("username") {
				payload["username"] = username
			}
			if cmd.Flags().Changed("email") {
				payload["email"] = email
			}
			if len(payload) == 0 {
				return fmt.Errorf("nothing to update: pass --username and/or --email")
			}

			token, err := config.LoadToken()
			if err != nil {
				return err
			}
			var p profile
			if err := client.Do("PUT", "/profile/", token, payload, &p); err != nil {
				return err
			}
			render(cmd, p, asJSON)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON")
	return cmd
}

func render(cmd *cobra.Command, p profile, asJSON bool) {
	if asJSON {
		output.RenderJSON(cmd.OutOrStdout(), p)
		return
	}
	output.RenderTable(cmd.OutOrStdout(),
		[]string{"ID", "Username", "Email", "Joined"},
		[][]interface{}{{p.ID, p.Username, p.Email, p.CreatedAt.Local().Format(time.DateTime)}},
	)
}

type event struct {
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func activityCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent account activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			var page struct {
				Count   int     `json:"count"`
				Results []event `json:"results"`
			}
			if err := client.Do("GET", "/profile/activity/?"+q.Encode(), token, nil, &page); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(page.Results))
			for _, e := range page.Results {
				rows = append(rows, []interface{}{e.CreatedAt.Local().Format(time.DateTime), e.Action, e.Details})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"When", "Action", "Details"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Events to show (1-100)")
	return cmd
}
