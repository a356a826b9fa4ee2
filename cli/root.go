package cli

import (
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "toolforge",
		Short: "Toolforge compiles third-party actions into agent-callable tools",
	}

	root.AddCommand(
		ServeCmd(),
		MigrateCmd(),
	)

	return root
}
