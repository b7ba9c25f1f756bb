package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/bsolutions/shes/internal/service"
	"github.com/bsolutions/shes/internal/tree"
)

// resolveProjectID accepts a full project ID, a unique ID prefix, or an
// exact (case-insensitive) project name.
func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project ID is required")
	}

	projects, err := app.Projects.List(ctx)
	if err != nil {
		return "", err
	}

	// 1. Exact UUID match
	for _, p := range projects {
		if p.ID == input {
			return p.ID, nil
		}
	}

	// 2. Exact name match
	var named []string
	for _, p := range projects {
		if strings.EqualFold(p.Name, input) {
			named = append(named, p.ID)
		}
	}
	if len(named) == 1 {
		return named[0], nil
	}
	if len(named) > 1 {
		return "", fmt.Errorf("project name %q is ambiguous (%d matches), use the ID", input, len(named))
	}

	// 3. UUID prefix match
	var matches []string
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// openProject resolves input and loads it into the hierarchy engine.
func openProject(ctx context.Context, app *App, input string) error {
	id, err := resolveProjectID(ctx, app, input)
	if err != nil {
		return err
	}
	if err := app.Hierarchy.Load(ctx, id); err != nil {
		return fmt.Errorf("opening project: %w", err)
	}
	return nil
}

// resolveItem finds an item of the loaded project by full ID or unique ID
// prefix.
func resolveItem(engine service.HierarchyService, input string) (*tree.Node, error) {
	if input == "" {
		return nil, fmt.Errorf("item ID is required")
	}
	if n := engine.Find(input); n != nil {
		return n, nil
	}

	var matches []*tree.Node
	engine.Root().Walk(func(n *tree.Node) bool {
		if strings.HasPrefix(n.ID(), input) {
			matches = append(matches, n)
		}
		return true
	})
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("item not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("item ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
