package cli

import (
	"github.com/bsolutions/shes/internal/cli/formatter"
	"github.com/bsolutions/shes/internal/config"
	"github.com/bsolutions/shes/internal/registry"
	"github.com/bsolutions/shes/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds references to all services used by CLI commands.
type App struct {
	Projects  service.ProjectService
	Import    service.ImportService
	Hierarchy service.HierarchyService
	Registry  *registry.Registry

	// IsInteractive reports whether stdin is a terminal; prompts and the
	// browser are only offered when it is.
	IsInteractive func() bool
	// IsTerminal reports whether stdout is a terminal; colour is only
	// rendered when it is.
	IsTerminal func() bool

	// Setup wires the services from the parsed global flags. Tests leave it
	// nil and fill the fields directly.
	Setup    func(fs *pflag.FlagSet) error
	Teardown func() error
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "shes" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "shes",
		Short:         "Project item hierarchy for building installations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			formatter.SetColorEnabled(app.IsTerminal != nil && app.IsTerminal())
			if app.Setup == nil {
				return nil
			}
			return app.Setup(cmd.Root().PersistentFlags())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.Teardown == nil {
				return nil
			}
			return app.Teardown()
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newProjectCmd(app),
		newItemCmd(app),
		newTypesCmd(app),
		newImportCmd(app),
		newBrowseCmd(app),
	)
	return root
}
