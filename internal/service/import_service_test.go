package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bsolutions/shes/internal/db"
	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/importer"
	"github.com/bsolutions/shes/internal/registry"
	"github.com/bsolutions/shes/internal/repository"
	"github.com/bsolutions/shes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importJSON = `{
  "project": {"name": "Office Park", "description": "Phase 1"},
  "items": [
    {"ref": "b",  "type": "Building", "name": "Block A"},
    {"ref": "f0", "parent_ref": "b",  "type": "Floor",   "name": "Ground"},
    {"ref": "f1", "parent_ref": "b",  "type": "Floor",   "name": "First"},
    {"ref": "c",  "parent_ref": "f0", "type": "Cabinet", "name": "Main panel", "attributes": {"rows": "3"}},
    {"ref": "d",  "parent_ref": "c",  "type": "Device",  "name": "Breaker 1"}
  ]
}`

func writeImportFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportService_ImportProject(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewImportService(registry.Default(), testutil.NewTestUoW(database), repository.SQLTxRepos(db.DialectSQLite))

	result, err := svc.ImportProject(ctx, writeImportFile(t, importJSON))
	require.NoError(t, err)
	assert.Equal(t, "Office Park", result.Project.Name)
	assert.Equal(t, 5, result.ItemCount)
	assert.Equal(t, "Block A", result.Root.Name)

	engine := NewHierarchyService(repository.NewSQLiteProjectItemRepo(database), registry.Default())
	require.NoError(t, engine.Load(ctx, result.Project.ID))

	root := engine.Root()
	require.Equal(t, 2, root.ChildCount())
	assert.Equal(t, "Ground", root.Children()[0].Name())
	assert.Equal(t, "First", root.Children()[1].Name())

	cabinet := root.Children()[0].Children()[0]
	rows, _ := cabinet.Attribute("rows")
	assert.Equal(t, "3", rows)
	assert.Equal(t, "Breaker 1", cabinet.Children()[0].Name())
}

func TestImportService_ValidationFailsBeforeWriting(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewImportService(registry.Default(), testutil.NewTestUoW(database), repository.SQLTxRepos(db.DialectSQLite))

	schema := &importer.ImportSchema{
		Project: importer.ProjectImport{Name: "Bad"},
		Items: []importer.ItemImport{
			{Ref: "b", Type: "Building", Name: "B"},
			{Ref: "d", ParentRef: strPtr("b"), Type: "Device", Name: "D"},
			{Ref: "x", ParentRef: strPtr("b"), Type: "Floor", Name: ""},
		},
	}
	_, err := svc.ImportProjectFromSchema(ctx, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import validation failed (2 errors)")

	projects, err := repository.NewSQLiteProjectRepo(database).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestImportService_RollbackOnItemFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	// Exec #1 = project, #2 = root, #3 = first floor.
	failUoW := &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: fmt.Errorf("injected item failure")}
	svc := NewImportService(registry.Default(), failUoW, repository.SQLTxRepos(db.DialectSQLite))

	_, err := svc.ImportProject(ctx, writeImportFile(t, importJSON))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected item failure")
	assert.Contains(t, err.Error(), `creating item "Ground"`)

	projects, err := repository.NewSQLiteProjectRepo(database).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects, "nothing is left behind")
}

func TestImportService_MissingFile(t *testing.T) {
	svc := NewImportService(registry.Default(), nil, repository.TxRepos{})
	_, err := svc.ImportProject(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "loading import file")
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func strPtr(s string) *string { return &s }
