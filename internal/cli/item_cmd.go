package cli

import (
	"fmt"
	"strings"

	"github.com/bsolutions/shes/internal/cli/formatter"
	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/tree"
	"github.com/spf13/cobra"
)

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Inspect and edit a project's item tree",
	}

	cmd.AddCommand(
		newItemTreeCmd(app),
		newItemAddCmd(app),
		newItemRemoveCmd(app),
		newItemRenameCmd(app),
	)
	return cmd
}

func newItemTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree PROJECT",
		Short: "Print the item tree of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openProject(cmd.Context(), app, args[0]); err != nil {
				return err
			}
			defer app.Hierarchy.Close()

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHierarchy(app.Hierarchy.Root(), ""))
			return nil
		},
	}
}

func newItemAddCmd(app *App) *cobra.Command {
	var parentID, itemType, name string

	cmd := &cobra.Command{
		Use:   "add PROJECT",
		Short: "Add a child item",
		Long: `Add a child item under --parent (default: the root item).

When --type or --name is missing and the terminal is interactive, a prompt
offers the types the parent accepts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := openProject(ctx, app, args[0]); err != nil {
				return err
			}
			defer app.Hierarchy.Close()

			parent := app.Hierarchy.Root()
			if parentID != "" {
				var err error
				if parent, err = resolveItem(app.Hierarchy, parentID); err != nil {
					return err
				}
			}

			if itemType == "" || name == "" {
				allowed := app.Hierarchy.AllowedChildTypesFor(parent)
				if len(allowed) == 0 {
					return fmt.Errorf("%s %q accepts no children", parent.Type(), parent.Name())
				}
				if !app.interactive() {
					return fmt.Errorf("--type and --name are required (allowed under %s: %s)",
						parent.Type(), joinTypes(allowed))
				}
				if err := addItemForm(allowed, &itemType, &name).Run(); err != nil {
					return err
				}
			}

			node, err := app.Hierarchy.AddChild(ctx, parent, domain.ItemType(itemType), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s under %s\n",
				formatter.TypeBadge(node.Type()), formatter.Bold(node.Name()),
				formatter.TruncID(node.ID()), parent.Name())
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Parent item ID or ID prefix (default: root)")
	cmd.Flags().StringVar(&itemType, "type", "", "Item type")
	cmd.Flags().StringVar(&name, "name", "", "Item name")

	return cmd
}

func newItemRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm PROJECT ITEM",
		Aliases: []string{"delete"},
		Short:   "Delete an item and everything below it",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := openProject(ctx, app, args[0]); err != nil {
				return err
			}
			defer app.Hierarchy.Close()

			node, err := resolveItem(app.Hierarchy, args[1])
			if err != nil {
				return err
			}
			size := node.Size()
			if err := app.Hierarchy.DeleteSubtree(ctx, node); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s (%d %s)\n",
				formatter.TypeBadge(node.Type()), formatter.Bold(node.Name()), size, plural(size, "item"))
			return nil
		},
	}
}

func newItemRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename PROJECT ITEM NAME",
		Short: "Rename an item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := openProject(ctx, app, args[0]); err != nil {
				return err
			}
			defer app.Hierarchy.Close()

			node, err := resolveItem(app.Hierarchy, args[1])
			if err != nil {
				return err
			}
			old := node.Name()
			renamed, err := app.Hierarchy.Rename(ctx, node, args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s %q to %q\n",
				formatter.TypeBadge(renamed.Type()), old, renamed.Name())
			return nil
		},
	}
}

func joinTypes(types []domain.ItemType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}

// nodeLabel is "Type Name" for status lines.
func nodeLabel(n *tree.Node) string {
	return fmt.Sprintf("%s %q", n.Type(), n.Name())
}
