package repository

import (
	"context"
	"testing"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupChecklist(t *testing.T) (context.Context, *SQLiteChecklistRepo, string) {
	t.Helper()
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	changes := NewSQLiteChangeRepo(database)
	docs := NewSQLiteDocumentRepo(database)
	items := NewSQLiteChecklistRepo(database)

	c := testutil.NewTestChange("Checklist host")
	require.NoError(t, changes.Create(ctx, c))
	require.NoError(t, docs.Create(ctx, testutil.NewTestDocument(c.ID)))
	return ctx, items, c.ID
}

func TestChecklistRepo_CreateAndGet(t *testing.T) {
	ctx, items, changeID := setupChecklist(t)

	item := testutil.NewTestChecklistItem(changeID, domain.PhaseImplSpec, "Wire repository layer")
	require.NoError(t, items.Create(ctx, item))

	got, err := items.GetByID(ctx, changeID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wire repository layer", got.Description)
	assert.False(t, got.Done)
	assert.Nil(t, got.ParentID)
}

func TestChecklistRepo_Find_MatchesParentIdentity(t *testing.T) {
	ctx, items, changeID := setupChecklist(t)

	parent := testutil.NewTestChecklistItem(changeID, domain.PhaseImplSpec, "Storage")
	require.NoError(t, items.Create(ctx, parent))

	child := testutil.NewTestChecklistItem(changeID, domain.PhaseImplSpec, "Migrations")
	child.ParentID = &parent.ID
	require.NoError(t, items.Create(ctx, child))

	// Same description at top level is a distinct item.
	top := testutil.NewTestChecklistItem(changeID, domain.PhaseImplSpec, "Migrations")
	require.NoError(t, items.Create(ctx, top))

	found, err := items.Find(ctx, changeID, domain.PhaseImplSpec, "Migrations", &parent.ID)
	require.NoError(t, err)
	assert.Equal(t, child.ID, found.ID)

	found, err = items.Find(ctx, changeID, domain.PhaseImplSpec, "Migrations", nil)
	require.NoError(t, err)
	assert.Equal(t, top.ID, found.ID)

	_, err = items.Find(ctx, changeID, domain.PhaseTestSpec, "Migrations", nil)
	require.ErrorIs(t, err, domain.ErrChecklistItemNotFound)
}

func TestChecklistRepo_ListByPhase(t *testing.T) {
	ctx, items, changeID := setupChecklist(t)

	require.NoError(t, items.Create(ctx, testutil.NewTestChecklistItem(changeID, domain.PhaseAnalysis, "Outline steps")))
	require.NoError(t, items.Create(ctx, testutil.NewTestChecklistItem(changeID, domain.PhaseImplSpec, "Write design blocks")))

	analysis, err := items.ListByPhase(ctx, changeID, domain.PhaseAnalysis)
	require.NoError(t, err)
	require.Len(t, analysis, 1)
	assert.Equal(t, "Outline steps", analysis[0].Description)

	all, err := items.ListByChange(ctx, changeID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestChecklistRepo_SetDoneAndChildren(t *testing.T) {
	ctx, items, changeID := setupChecklist(t)

	parent := testutil.NewTestChecklistItem(changeID, domain.PhaseImplSpec, "Parent")
	require.NoError(t, items.Create(ctx, parent))

	child := testutil.NewTestChecklistItem(changeID, domain.PhaseImplSpec, "Child")
	child.ParentID = &parent.ID
	require.NoError(t, items.Create(ctx, child))

	children, err := items.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)

	require.NoError(t, items.SetDone(ctx, changeID, child.ID, true))
	got, err := items.GetByID(ctx, changeID, child.ID)
	require.NoError(t, err)
	assert.True(t, got.Done)
}

func TestChecklistRepo_SetDone_NotFound(t *testing.T) {
	ctx, items, changeID := setupChecklist(t)

	err := items.SetDone(ctx, changeID, "nonexistent", true)
	require.ErrorIs(t, err, domain.ErrChecklistItemNotFound)
}
