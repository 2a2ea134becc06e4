package service

import (
	"context"
	"testing"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem_ReusesExistingItemOnReRun(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	first, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "List affected endpoints", nil)
	require.NoError(t, err)

	second, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "List affected endpoints", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "re-adding the same item must not duplicate it")

	items, err := env.checklistSvc.ListByPhase(ctx, change.ID, domain.PhaseAnalysis)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAddItem_ParentMustShareThePhase(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	parent, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "Survey integrations", nil)
	require.NoError(t, err)

	_, err = env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseTestSpec, "Check webhook docs", &parent.ID)
	assert.Error(t, err)
}

func TestMarkDone_ParentBlockedByOpenChildren(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	parent, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "Survey integrations", nil)
	require.NoError(t, err)
	childA, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "Check S3 lifecycle", &parent.ID)
	require.NoError(t, err)
	childB, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "Check CDN caching", &parent.ID)
	require.NoError(t, err)

	err = env.checklistSvc.MarkDone(ctx, change.ID, parent.ID)
	require.ErrorIs(t, err, domain.ErrChildrenIncomplete)

	require.NoError(t, env.checklistSvc.MarkDone(ctx, change.ID, childA.ID))
	err = env.checklistSvc.MarkDone(ctx, change.ID, parent.ID)
	require.ErrorIs(t, err, domain.ErrChildrenIncomplete, "one open child still blocks")

	require.NoError(t, env.checklistSvc.MarkDone(ctx, change.ID, childB.ID))
	require.NoError(t, env.checklistSvc.MarkDone(ctx, change.ID, parent.ID))

	ready, err := env.checklistSvc.PhaseReady(ctx, change.ID, domain.PhaseAnalysis)
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestMarkDone_IsIdempotent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	item, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "Write overview", nil)
	require.NoError(t, err)

	require.NoError(t, env.checklistSvc.MarkDone(ctx, change.ID, item.ID))
	require.NoError(t, env.checklistSvc.MarkDone(ctx, change.ID, item.ID))

	incomplete, err := env.checklistSvc.ListIncomplete(ctx, change.ID, domain.PhaseAnalysis)
	require.NoError(t, err)
	assert.Empty(t, incomplete)
}

func TestReopen_MakesPhaseUnreadyAgain(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	item, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "Write overview", nil)
	require.NoError(t, err)
	require.NoError(t, env.checklistSvc.MarkDone(ctx, change.ID, item.ID))

	ready, err := env.checklistSvc.PhaseReady(ctx, change.ID, domain.PhaseAnalysis)
	require.NoError(t, err)
	require.True(t, ready)

	require.NoError(t, env.checklistSvc.Reopen(ctx, change.ID, item.ID))
	ready, err = env.checklistSvc.PhaseReady(ctx, change.ID, domain.PhaseAnalysis)
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestMarkDone_UnknownItem(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	err := env.checklistSvc.MarkDone(ctx, change.ID, "no-such-item")
	assert.ErrorIs(t, err, domain.ErrChecklistItemNotFound)
}

func TestList_SpansEveryPhase(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	_, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "Write overview", nil)
	require.NoError(t, err)
	_, err = env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseTestSpec, "Name scenarios", nil)
	require.NoError(t, err)

	all, err := env.checklistSvc.List(ctx, change.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.checklistSvc.List(ctx, "feature-9999")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestPhaseReady_EmptyPhaseIsReady(t *testing.T) {
	env := setupEnv(t)
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	ready, err := env.checklistSvc.PhaseReady(context.Background(), change.ID, domain.PhaseChangelog)
	require.NoError(t, err)
	assert.True(t, ready, "a phase with no items has nothing left to do")
}
