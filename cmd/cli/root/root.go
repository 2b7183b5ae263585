package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:          "chat",
	Short:        "Group chat CLI",
	Long:         "Command line interface for the group chat API: register, log in, read and post messages.",
	SilenceUsage: true,
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
