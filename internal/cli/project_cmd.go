package cli

import (
	"fmt"
	"time"

	"github.com/bsolutions/shes/internal/cli/formatter"
	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/service"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectCreateCmd(app),
		newProjectListCmd(app),
		newProjectDeleteCmd(app),
	)
	return cmd
}

func newProjectCreateCmd(app *App) *cobra.Command {
	var name, description, rootType, rootName string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project with its root item",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Projects.Create(cmd.Context(), service.CreateProjectRequest{
				Name:        name,
				Description: description,
				RootType:    domain.ItemType(rootType),
				RootName:    rootName,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectCreated(p, 1))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&rootType, "root-type", string(domain.TypeBuilding), "Item type of the root item")
	cmd.Flags().StringVar(&rootName, "root-name", "", "Root item name (default: project name)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects, time.Now()))
			return nil
		},
	}
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete PROJECT",
		Aliases: []string{"rm"},
		Short:   "Delete a project and all of its items",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := app.Projects.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", p.Name)
			return nil
		},
	}
}
