package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/bsolutions/shes/internal/domain"
)

// FormatProjectList renders a styled project list inside a bordered box.
func FormatProjectList(projects []*domain.Project, now time.Time) string {
	headers := []string{"ID", "NAME", "DESCRIPTION", "CREATED"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		desc := Dim("--")
		if strings.TrimSpace(p.Description) != "" {
			desc = StyleFg.Render(p.Description)
		}
		rows = append(rows, []string{
			TruncID(p.ID),
			Bold(p.Name),
			desc,
			Dim(HumanDate(p.CreatedAt, now)),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatProjectCreated is the one-line confirmation after create or import.
func FormatProjectCreated(p *domain.Project, items int) string {
	noun := "items"
	if items == 1 {
		noun = "item"
	}
	return fmt.Sprintf("%s %s %s (%d %s)",
		StyleGreen.Render("✔"), Bold(p.Name), TruncID(p.ID), items, noun)
}
