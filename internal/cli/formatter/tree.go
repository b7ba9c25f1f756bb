package formatter

import (
	"fmt"
	"strings"

	"github.com/bsolutions/shes/internal/tree"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title    string
	Badge    string // item type badge, rendered before the title
	Level    int
	IsLast   bool
	Guides   []bool // per ancestor level below the root: draw a continuing pipe
	Selected bool
	Detail   string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. The selected item gets an amber
// ▶ marker and detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		detail  string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// Pass 1: build each line's content and track max visible width.
	for idx, item := range items {
		var prefix strings.Builder
		if item.Level > 0 {
			for i := 0; i < item.Level-1; i++ {
				if i < len(item.Guides) && item.Guides[i] {
					prefix.WriteString(treePipe)
				} else {
					prefix.WriteString(treeBlank)
				}
			}
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}

		title := item.Title
		if item.Badge != "" {
			title = item.Badge + " " + title
		}
		marker := ""
		if item.Selected {
			marker = StyleYellowBold.Render("▶ ")
		}

		content := StyleDim.Render(prefix.String()) + marker + title
		lines[idx].content = content
		if item.Detail != "" {
			lines[idx].detail = StyleDim.Render(item.Detail)
		}

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	// Pass 2: render with right-aligned details.
	var b strings.Builder
	for _, li := range lines {
		if li.detail == "" {
			b.WriteString(li.content + "\n")
			continue
		}
		pad := maxContentWidth - lipgloss.Width(li.content)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.detail + "\n")
	}
	return b.String()
}

// HierarchyItems flattens a materialized tree into display rows in
// pre-order. selectedID marks one row; pass "" for none.
func HierarchyItems(root *tree.Node, selectedID string) []TreeItem {
	if root == nil {
		return nil
	}
	var items []TreeItem
	var visit func(n *tree.Node, level int, isLast bool, guides []bool)
	visit = func(n *tree.Node, level int, isLast bool, guides []bool) {
		items = append(items, TreeItem{
			Title:    n.Name(),
			Badge:    TypeBadge(n.Type()),
			Level:    level,
			IsLast:   isLast,
			Guides:   guides,
			Selected: selectedID != "" && n.ID() == selectedID,
			Detail:   itemDetail(n),
		})
		children := n.Children()
		var childGuides []bool
		if level > 0 {
			childGuides = append(append([]bool(nil), guides...), !isLast)
		}
		for i, c := range children {
			visit(c, level+1, i == len(children)-1, childGuides)
		}
	}
	visit(root, 0, true, nil)
	return items
}

func itemDetail(n *tree.Node) string {
	id := n.ID()
	if len(id) > 8 {
		id = id[:8]
	}
	if attrs := FormatAttributes(n.Item().Attributes); attrs != "" {
		return fmt.Sprintf("%s  %s", attrs, id)
	}
	return id
}

// FormatHierarchy renders a project's item tree.
func FormatHierarchy(root *tree.Node, selectedID string) string {
	return RenderTree(HierarchyItems(root, selectedID))
}
