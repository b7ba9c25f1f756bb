package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse PROJECT",
		Short: "Browse and edit a project's item tree interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("browse needs an interactive terminal; use 'shes item tree' instead")
			}
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			project, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := app.Hierarchy.Load(ctx, id); err != nil {
				return fmt.Errorf("opening project: %w", err)
			}
			defer app.Hierarchy.Close()

			model := newBrowseModel(ctx, app.Hierarchy, project.Name)
			p := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running browser: %w", err)
			}
			model.quit()
			return nil
		},
	}
}
