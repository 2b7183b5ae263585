package messages

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crucial707/groupchat/cmd/cli/client"
	"github.com/crucial707/groupchat/cmd/cli/config"
	"github.com/crucial707/groupchat/cmd/cli/output"
	"github.com/spf13/cobra"
)

type message struct {
	ID     int `json:"id"`
	Author struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	} `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type page struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []message `json:"results"`
}

// InitMessages registers the messages command group.
func InitMessages(rootCmd *cobra.Command) {
	messagesCmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Read and post messages",
	}
	messagesCmd.AddCommand(listCmd(), postCmd())
	rootCmd.AddCommand(messagesCmd)
}

// ==========================
// LIST
// ==========================
func listCmd() *cobra.Command {
	var limit, offset int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}

			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			var p page
			if err := client.Do("GET", "/messages/?"+q.Encode(), token, nil, &p); err != nil {
				return err
			}

			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), p)
			}
			rows := make([][]interface{}, 0, len(p.Results))
			for _, m := range p.Results {
				rows = append(rows, []interface{}{m.ID, m.Author.Username, m.CreatedAt.Local().Format(time.DateTime), m.Content})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Author", "Posted", "Content"}, rows)
			fmt.Fprintf(cmd.OutOrStdout(), "Showing %d of %d messages", len(p.Results), p.Count)
			if p.Next != nil {
				fmt.Fprintf(cmd.OutOrStdout(), " (next: --offset %d)", offset+limit)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Messages per page (1-100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Messages to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON")
	return cmd
}

// ==========================
// POST
// ==========================
func postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post <text...>",
		Short: "Post a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}

			var m message
			payload := map[string]string{"content": strings.Join(args, " ")}
			if err := client.Do("POST", "/messages/", token, payload, &m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted message %d as %s.\n", m.ID, m.Author.Username)
			return nil
		},
	}
}
