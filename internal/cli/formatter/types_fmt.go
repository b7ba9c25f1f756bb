package formatter

import (
	"strings"

	"github.com/bsolutions/shes/internal/registry"
)

// FormatTypes renders the registry catalog: each type with the child types
// it accepts and the attributes new items of that type start with.
func FormatTypes(reg *registry.Registry) string {
	headers := []string{"TYPE", "LABEL", "CHILDREN", "DEFAULTS"}
	var rows [][]string
	for _, t := range reg.Types() {
		entry, err := reg.Lookup(t)
		if err != nil {
			continue
		}
		children, _ := reg.AllowedChildren(t)
		names := make([]string, len(children))
		for i, c := range children {
			names[i] = TypeStyle(c).Render(string(c))
		}
		childCol := Dim("(leaf)")
		if len(names) > 0 {
			childCol = strings.Join(names, ", ")
		}
		defaults := FormatAttributes(entry.Defaults)
		if defaults == "" {
			defaults = Dim("--")
		}
		rows = append(rows, []string{TypeBadge(t), entry.Label, childCol, defaults})
	}
	return RenderBox("Item types", RenderTable(headers, rows))
}
