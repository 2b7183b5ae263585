package main

import (
	"os"

	"github.com/crucial707/groupchat/cmd/cli/auth"
	"github.com/crucial707/groupchat/cmd/cli/messages"
	"github.com/crucial707/groupchat/cmd/cli/profile"
	"github.com/crucial707/groupchat/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	profile.InitProfile(rootCmd)
	messages.InitMessages(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
