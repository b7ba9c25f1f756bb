package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepo_CRUD(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	items := NewSQLiteProjectItemRepo(database)
	ctx := context.Background()

	b := testutil.NewTestProject("Beta")
	a := testutil.NewTestProject("Alpha")
	a.Description = "first"
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, "first", got.Description)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, "Beta", list[1].Name)

	for _, item := range testutil.ScenarioItems(a.ID) {
		_, err := items.Add(ctx, item)
		require.NoError(t, err)
	}
	require.NoError(t, repo.Delete(ctx, a.ID))

	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	left, err := items.GetAll(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, left, "items go with their project")

	assert.ErrorIs(t, repo.Delete(ctx, a.ID), domain.ErrNotFound)
}

func TestProjectItemRepo_GetAll_SiblingOrder(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := testutil.NewTestProject("Order")
	require.NoError(t, NewSQLiteProjectRepo(database).Create(ctx, proj))
	repo := NewSQLiteProjectItemRepo(database)

	root := testutil.NewTestItem(proj.ID, domain.TypeBuilding, "HQ")
	second := testutil.NewTestItem(proj.ID, domain.TypeFloor, "Second", testutil.WithParent(root.ID), testutil.WithOrder(2))
	first := testutil.NewTestItem(proj.ID, domain.TypeFloor, "First", testutil.WithParent(root.ID), testutil.WithOrder(1))
	for _, item := range []*domain.ProjectItem{root, second, first} {
		_, err := repo.Add(ctx, item)
		require.NoError(t, err)
	}

	items, err := repo.GetAll(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "HQ", items[0].Name)
	assert.Equal(t, "First", items[1].Name)
	assert.Equal(t, "Second", items[2].Name)
}

func TestProjectItemRepo_GetAll_CreatedAtBreaksTies(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := testutil.NewTestProject("Ties")
	require.NoError(t, NewSQLiteProjectRepo(database).Create(ctx, proj))
	repo := NewSQLiteProjectItemRepo(database)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	root := testutil.NewTestItem(proj.ID, domain.TypeBuilding, "HQ", testutil.WithItemID("r"))
	root.CreatedAt = base
	// Written as .12 and .1 seconds; the later one goes in first and has
	// the smaller id, so only created_at can order them.
	later := testutil.NewTestItem(proj.ID, domain.TypeFloor, "Later", testutil.WithItemID("a"), testutil.WithParent("r"))
	later.CreatedAt = base.Add(120 * time.Millisecond)
	earlier := testutil.NewTestItem(proj.ID, domain.TypeFloor, "Earlier", testutil.WithItemID("b"), testutil.WithParent("r"))
	earlier.CreatedAt = base.Add(100 * time.Millisecond)
	for _, item := range []*domain.ProjectItem{root, later, earlier} {
		_, err := repo.Add(ctx, item)
		require.NoError(t, err)
	}

	items, err := repo.GetAll(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"HQ", "Earlier", "Later"}, []string{items[0].Name, items[1].Name, items[2].Name})
	assert.True(t, earlier.CreatedAt.Equal(items[1].CreatedAt))

	var raw string
	require.NoError(t, database.QueryRow(`SELECT created_at FROM project_items WHERE id = 'b'`).Scan(&raw))
	assert.Equal(t, "2026-03-01T09:00:00.100000000Z", raw)
}

func TestProjectItemRepo_RejectsSecondRoot(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	proj := testutil.NewTestProject("Roots")
	require.NoError(t, NewSQLiteProjectRepo(database).Create(ctx, proj))
	repo := NewSQLiteProjectItemRepo(database)

	_, err := repo.Add(ctx, testutil.NewTestItem(proj.ID, domain.TypeBuilding, "A"))
	require.NoError(t, err)
	_, err = repo.Add(ctx, testutil.NewTestItem(proj.ID, domain.TypeBuilding, "B"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDuplicateIdentity)
}
