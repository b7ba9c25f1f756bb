package db_test

import (
	"path/filepath"
	"testing"

	"github.com/bsolutions/shes/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shes.db")

	first, err := db.OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.OpenDB(path)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, db.Migrate(second))
}

func TestMigrate_SingleRootPerProject(t *testing.T) {
	database := openTestDB(t)

	_, err := database.Exec(`INSERT INTO projects (id, name, created_at, updated_at) VALUES ('p', 'P', 'x', 'x')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO project_items (id, project_id, parent_id, type, name, created_at, updated_at)
		VALUES ('r1', 'p', NULL, 'Building', 'A', 'x', 'x')`)
	require.NoError(t, err)

	_, err = database.Exec(`INSERT INTO project_items (id, project_id, parent_id, type, name, created_at, updated_at)
		VALUES ('r2', 'p', NULL, 'Building', 'B', 'x', 'x')`)
	assert.Error(t, err, "a second root in the same project must be rejected")
}

func TestMigrate_ProjectDeleteCascadesToItems(t *testing.T) {
	database := openTestDB(t)

	_, err := database.Exec(`INSERT INTO projects (id, name, created_at, updated_at) VALUES ('p', 'P', 'x', 'x')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO project_items (id, project_id, parent_id, type, name, created_at, updated_at)
		VALUES ('r', 'p', NULL, 'Building', 'A', 'x', 'x')`)
	require.NoError(t, err)

	_, err = database.Exec(`DELETE FROM projects WHERE id = 'p'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM project_items`).Scan(&n))
	assert.Zero(t, n)
}
