package cli

import (
	"fmt"

	"github.com/bsolutions/shes/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a project from a JSON structure file",
		Long: `Create a project from a JSON structure file:

  {
    "project": {"name": "Office Park"},
    "items": [
      {"ref": "b", "type": "Building", "name": "Block A"},
      {"ref": "f", "parent_ref": "b", "type": "Floor", "name": "Ground"}
    ]
  }

The whole file is validated against the type registry before anything is
written, and the project is created in a single transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Import.ImportProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectCreated(result.Project, result.ItemCount))
			return nil
		},
	}
}
