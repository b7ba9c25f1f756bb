package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bsolutions/shes/internal/db"
	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/registry"
	"github.com/bsolutions/shes/internal/repository"
	"github.com/bsolutions/shes/internal/service"
	"github.com/bsolutions/shes/internal/testutil"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	reg := registry.Default()
	uow := testutil.NewTestUoW(database)
	repos := repository.SQLTxRepos(db.DialectSQLite)

	return &App{
		Projects:  service.NewProjectService(repository.NewSQLiteProjectRepo(database), reg, uow, repos),
		Import:    service.NewImportService(reg, uow, repos),
		Hierarchy: service.NewHierarchyService(repository.NewSQLiteProjectItemRepo(database), reg),
		Registry:  reg,
	}
}

// seedProject creates a project with a Building root named after it.
func seedProject(t *testing.T, app *App, name string) *domain.Project {
	t.Helper()
	p, err := app.Projects.Create(context.Background(), service.CreateProjectRequest{
		Name:     name,
		RootType: domain.TypeBuilding,
	})
	require.NoError(t, err)
	return p
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, output, "shes")
	assert.Contains(t, output, "browse")
}

func TestRootCmd_SetupAndTeardown(t *testing.T) {
	app := testApp(t)
	var setupDB, tornDown string
	app.Setup = func(fs *pflag.FlagSet) error {
		v, err := fs.GetString("db")
		setupDB = v
		return err
	}
	app.Teardown = func() error {
		tornDown = "yes"
		return nil
	}

	_, err := executeCmd(t, app, "--db", "/tmp/shes-test.db", "types")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shes-test.db", setupDB)
	assert.Equal(t, "yes", tornDown)
}

// --- project ---

func TestProjectCmd_CreateListDelete(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "project", "create", "--name", "Office Park",
		"--description", "Phase 1", "--root-name", "Block A")
	require.NoError(t, err)
	assert.Contains(t, out, "Office Park")
	assert.Contains(t, out, "(1 item)")

	out, err = executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Office Park")
	assert.Contains(t, out, "Phase 1")

	out, err = executeCmd(t, app, "item", "tree", "office park")
	require.NoError(t, err)
	assert.Contains(t, out, "[Building] Block A")

	out, err = executeCmd(t, app, "project", "delete", "Office Park")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted project Office Park")

	out, err = executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found.")
}

func TestProjectCmd_CreateRequiresName(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestProjectCmd_CreateUnknownRootType(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "create", "--name", "X", "--root-type", "Campus")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownType)
}

// --- item ---

func TestItemCmd_AddTreeRenameRemove(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app, "HQ")

	out, err := executeCmd(t, app, "item", "add", p.ID, "--type", "Floor", "--name", "Ground")
	require.NoError(t, err)
	assert.Contains(t, out, "Added [Floor] Ground")
	assert.Contains(t, out, "under HQ")

	floorID := onlyChildID(t, app, p.ID)

	_, err = executeCmd(t, app, "item", "add", p.ID, "--parent", floorID[:8], "--type", "Cabinet", "--name", "Panel")
	require.NoError(t, err)

	out, err = executeCmd(t, app, "item", "tree", p.ID[:8])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[Building] HQ")
	assert.Contains(t, lines[1], "└─ [Floor] Ground")
	assert.Contains(t, lines[2], "└─ [Cabinet] Panel")
	assert.Contains(t, lines[2], "rows=1")

	out, err = executeCmd(t, app, "item", "rename", p.ID, floorID, "Level 0")
	require.NoError(t, err)
	assert.Contains(t, out, `Renamed [Floor] "Ground" to "Level 0"`)

	out, err = executeCmd(t, app, "item", "rm", p.ID, floorID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted [Floor] Level 0 (2 items)")

	out, err = executeCmd(t, app, "item", "tree", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestItemCmd_AddRejectsInvalidChildType(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app, "HQ")

	_, err := executeCmd(t, app, "item", "add", p.ID, "--type", "Device", "--name", "Meter")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidChildType)
}

func TestItemCmd_AddNonInteractiveNeedsFlags(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app, "HQ")

	_, err := executeCmd(t, app, "item", "add", p.ID, "--type", "Floor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--type and --name are required")
	assert.Contains(t, err.Error(), "allowed under Building: Floor")
}

func TestItemCmd_RemoveRoot(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app, "HQ")

	root := rootID(t, app, p.ID)
	_, err := executeCmd(t, app, "item", "rm", p.ID, root)
	assert.ErrorIs(t, err, domain.ErrCannotDeleteRoot)
}

func TestItemCmd_UnknownItem(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app, "HQ")

	_, err := executeCmd(t, app, "item", "rename", p.ID, "zzzz", "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `item not found: "zzzz"`)
}

// --- types / import / browse ---

func TestTypesCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "[Cabinet]")
	assert.Contains(t, out, "rows=1")
}

func TestImportCmd(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "site.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "project": {"name": "Depot"},
  "items": [
    {"ref": "b", "type": "Building", "name": "Depot"},
    {"ref": "f", "parent_ref": "b", "type": "Floor", "name": "Ground"}
  ]
}`), 0o600))

	out, err := executeCmd(t, app, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 items)")

	out, err = executeCmd(t, app, "item", "tree", "Depot")
	require.NoError(t, err)
	assert.Contains(t, out, "└─ [Floor] Ground")
}

func TestBrowseCmd_NeedsTerminal(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, "HQ")

	_, err := executeCmd(t, app, "browse", "HQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

// --- resolution ---

func TestResolveProjectID(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()
	a := seedProject(t, app, "Alpha")
	seedProject(t, app, "Twin")
	seedProject(t, app, "twin")

	id, err := resolveProjectID(ctx, app, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	id, err = resolveProjectID(ctx, app, "ALPHA")
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	id, err = resolveProjectID(ctx, app, a.ID[:6])
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	_, err = resolveProjectID(ctx, app, "Twin")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = resolveProjectID(ctx, app, "nope")
	assert.ErrorContains(t, err, "project not found")

	_, err = resolveProjectID(ctx, app, "")
	assert.ErrorContains(t, err, "required")
}

func onlyChildID(t *testing.T, app *App, projectID string) string {
	t.Helper()
	require.NoError(t, app.Hierarchy.Load(context.Background(), projectID))
	defer app.Hierarchy.Close()
	children := app.Hierarchy.Root().Children()
	require.Len(t, children, 1)
	return children[0].ID()
}

func rootID(t *testing.T, app *App, projectID string) string {
	t.Helper()
	require.NoError(t, app.Hierarchy.Load(context.Background(), projectID))
	defer app.Hierarchy.Close()
	return app.Hierarchy.Root().ID()
}
