package formatter

import (
	"testing"
	"time"

	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/registry"
	"github.com/stretchr/testify/assert"
)

func TestFormatProjectList(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	projects := []*domain.Project{
		{ID: "0123456789abcdef", Name: "Office Park", Description: "Phase 1", CreatedAt: now},
		{ID: "fedcba9876543210", Name: "Depot", CreatedAt: time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC)},
	}

	out := stripANSI(FormatProjectList(projects, now))
	assert.Contains(t, out, "PROJECTS")
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "Office Park")
	assert.Contains(t, out, "Phase 1")
	assert.Contains(t, out, "Today")
	assert.Contains(t, out, "Sep 30, 2022")
}

func TestFormatProjectCreated(t *testing.T) {
	p := &domain.Project{ID: "0123456789abcdef", Name: "Depot"}
	assert.Equal(t, "✔ Depot 01234567 (1 item)", stripANSI(FormatProjectCreated(p, 1)))
	assert.Contains(t, stripANSI(FormatProjectCreated(p, 5)), "(5 items)")
}

func TestFormatTypes(t *testing.T) {
	out := stripANSI(FormatTypes(registry.Default()))
	assert.Contains(t, out, "[Building]")
	assert.Contains(t, out, "Cabinet, Device, Room")
	assert.Contains(t, out, "rows=1")
	assert.Contains(t, out, "(leaf)")
}

func TestHumanDate(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Today", HumanDate(now.Add(-time.Hour), now))
	assert.Equal(t, "Yesterday", HumanDate(now.AddDate(0, 0, -1), now))
	assert.Equal(t, "Sep 30, 2022", HumanDate(time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC), now))
}
