package cli

import (
	"fmt"

	"github.com/bsolutions/shes/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTypesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Show the item type catalog and its nesting rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTypes(app.Registry))
			return nil
		},
	}
}
