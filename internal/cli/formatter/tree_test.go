package formatter

import (
	"regexp"
	"strings"
	"testing"

	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/testutil"
	"github.com/bsolutions/shes/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ansiPattern matches ANSI escape sequences so assertions are terminal-independent.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func buildTree(t *testing.T) *tree.Tree {
	t.Helper()
	items := []*domain.ProjectItem{
		testutil.NewTestItem("p", domain.TypeBuilding, "HQ", testutil.WithItemID("b")),
		testutil.NewTestItem("p", domain.TypeFloor, "Ground", testutil.WithItemID("f0"), testutil.WithParent("b")),
		testutil.NewTestItem("p", domain.TypeCabinet, "Panel", testutil.WithItemID("c"), testutil.WithParent("f0"),
			testutil.WithAttribute("rows", "2")),
		testutil.NewTestItem("p", domain.TypeDevice, "Meter", testutil.WithItemID("d"), testutil.WithParent("f0")),
		testutil.NewTestItem("p", domain.TypeFloor, "First", testutil.WithItemID("f1"), testutil.WithParent("b"), testutil.WithOrder(1)),
		testutil.NewTestItem("p", domain.TypeRoom, "Lab", testutil.WithItemID("r"), testutil.WithParent("f1")),
	}
	tr, err := tree.Build(items)
	require.NoError(t, err)
	return tr
}

func TestFormatHierarchy(t *testing.T) {
	tr := buildTree(t)

	out := stripANSI(FormatHierarchy(tr.Root(), "c"))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)

	assert.True(t, strings.HasPrefix(lines[0], "[Building] HQ"))
	assert.True(t, strings.HasPrefix(lines[1], "├─ [Floor] Ground"))
	assert.True(t, strings.HasPrefix(lines[2], "│  ├─ ▶ [Cabinet] Panel"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "│  └─ [Device] Meter"))
	assert.True(t, strings.HasPrefix(lines[4], "└─ [Floor] First"))
	assert.True(t, strings.HasPrefix(lines[5], "   └─ [Room] Lab"), lines[5])

	assert.Contains(t, lines[2], "rows=2")
	assert.True(t, strings.HasSuffix(lines[5], "r"))
}

func TestHierarchyItems(t *testing.T) {
	tr := buildTree(t)
	items := HierarchyItems(tr.Root(), "")

	require.Len(t, items, 6)
	assert.Equal(t, 0, items[0].Level)
	assert.Equal(t, 2, items[5].Level)
	assert.Equal(t, []bool{false}, items[5].Guides)
	for _, it := range items {
		assert.False(t, it.Selected)
	}

	assert.Nil(t, HierarchyItems(nil, ""))
	assert.Empty(t, RenderTree(nil))
}

func TestFormatAttributes(t *testing.T) {
	assert.Equal(t, "", FormatAttributes(nil))
	assert.Equal(t, "a=1 b=x", FormatAttributes(map[string]string{"b": "x", "a": "1"}))
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := stripANSI(RenderTable(
		[]string{"A", "B"},
		[][]string{{Bold("long value"), "x"}, {"s", "y"}},
	))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[0], "B"), strings.Index(lines[2], "x"))
	assert.Equal(t, strings.Index(lines[2], "x"), strings.Index(lines[3], "y"))
}
