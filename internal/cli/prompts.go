package cli

import (
	"github.com/bsolutions/shes/internal/cli/formatter"
	"github.com/bsolutions/shes/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// shesHuhTheme returns a huh theme matching the CLI palette.
func shesHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// addItemForm asks for whichever of type and name is still empty. The type
// choice is limited to allowed.
func addItemForm(allowed []domain.ItemType, itemType, name *string) *huh.Form {
	var fields []huh.Field
	if *itemType == "" {
		opts := make([]huh.Option[string], len(allowed))
		for i, t := range allowed {
			opts[i] = huh.NewOption(string(t), string(t))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Type").
			Options(opts...).
			Value(itemType))
	}
	if *name == "" {
		fields = append(fields, huh.NewInput().
			Title("Name").
			Value(name).
			Validate(domain.ValidateName))
	}
	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(shesHuhTheme()).
		WithShowHelp(false)
}
