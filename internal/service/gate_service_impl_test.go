package service

import (
	"context"
	"testing"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance_StepsThroughSuccessorPhase(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	report, err := env.gateSvc.Advance(ctx, change.ID, domain.PhaseAnalysis)
	require.NoError(t, err)
	assert.True(t, report.Advanced)
	assert.Equal(t, domain.PhaseAnalysis, report.CurrentPhase)

	doc, err := env.documentSvc.Get(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAnalysis, doc.CurrentPhase)
}

func TestAdvance_SkippingAPhaseIsAViolation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	_, err := env.gateSvc.Advance(ctx, change.ID, domain.PhaseTestSpec)
	require.ErrorIs(t, err, domain.ErrPhaseGateViolation)

	var violation *domain.GateViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, domain.PhaseSkeleton, violation.From)
	assert.Equal(t, domain.PhaseTestSpec, violation.To)
	assert.NotEmpty(t, violation.Conditions)

	doc, err := env.documentSvc.Get(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSkeleton, doc.CurrentPhase, "a refused advance changes nothing")
}

func TestAdvance_ReInvokingAReachedPhaseIsANoOp(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	_, err := env.gateSvc.Advance(ctx, change.ID, domain.PhaseAnalysis)
	require.NoError(t, err)

	report, err := env.gateSvc.Advance(ctx, change.ID, domain.PhaseAnalysis)
	require.NoError(t, err)
	assert.False(t, report.Advanced)
	assert.Equal(t, domain.PhaseAnalysis, report.CurrentPhase)

	// Re-invoking an earlier phase never moves the document back.
	report, err = env.gateSvc.Advance(ctx, change.ID, domain.PhaseSkeleton)
	require.NoError(t, err)
	assert.False(t, report.Advanced)
	assert.Equal(t, domain.PhaseAnalysis, report.CurrentPhase)
}

func TestAdvance_OpenChecklistItemsBlockWithNamedConditions(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")
	require.NoError(t, advanceTo(env, change.ID, domain.PhaseAnalysis))

	itemA, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "Write overview", nil)
	require.NoError(t, err)
	itemB, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "List open questions", nil)
	require.NoError(t, err)

	_, err = env.gateSvc.Advance(ctx, change.ID, domain.PhaseTestSpec)
	require.ErrorIs(t, err, domain.ErrPhaseGateViolation)

	var violation *domain.GateViolationError
	require.ErrorAs(t, err, &violation)
	assert.Len(t, violation.Conditions, 2, "every unmet condition is named, not just the first")

	require.NoError(t, env.checklistSvc.MarkDone(ctx, change.ID, itemA.ID))
	require.NoError(t, env.checklistSvc.MarkDone(ctx, change.ID, itemB.ID))

	report, err := env.gateSvc.Advance(ctx, change.ID, domain.PhaseTestSpec)
	require.NoError(t, err)
	assert.True(t, report.Advanced)
}

func TestAdvance_PendingConsiderationsOnlyBlockRealization(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	c, err := env.considerSvc.Propose(ctx, change.ID, "Do we need EXIF stripping?")
	require.NoError(t, err)

	// Intermediate gates pass with the question still open.
	require.NoError(t, advanceTo(env, change.ID, domain.PhaseVerification))

	_, err = env.gateSvc.Advance(ctx, change.ID, domain.PhaseRealized)
	require.ErrorIs(t, err, domain.ErrPhaseGateViolation)

	require.NoError(t, env.considerSvc.AttachAnswer(ctx, change.ID, c.Seq, "Yes, strip on upload."))
	_, err = env.gateSvc.Advance(ctx, change.ID, domain.PhaseRealized)
	require.ErrorIs(t, err, domain.ErrPhaseGateViolation,
		"an answered but unresolved consideration still blocks realization")

	require.NoError(t, env.considerSvc.Resolve(ctx, change.ID, c.Seq))
	report, err := env.gateSvc.Advance(ctx, change.ID, domain.PhaseRealized)
	require.NoError(t, err)
	assert.True(t, report.Advanced)
}

func TestAdvance_RealizationClosesChangeAndArchivesDocument(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	require.NoError(t, advanceTo(env, change.ID, domain.PhaseRealized))

	closed, err := env.changeSvc.GetByID(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeComplete, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	doc, err := env.documentSvc.Get(ctx, change.ID)
	require.NoError(t, err)
	assert.True(t, doc.Archived())
	assert.Equal(t, domain.PhaseRealized, doc.CurrentPhase)
}

func TestAdvance_MovesStatusToInProgressPastAnalysis(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")

	require.NoError(t, advanceTo(env, change.ID, domain.PhaseAnalysis))
	got, err := env.changeSvc.GetByID(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChangePlanning, got.Status, "analysis is still planning")

	require.NoError(t, advanceTo(env, change.ID, domain.PhaseTestSpec))
	got, err = env.changeSvc.GetByID(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeInProgress, got.Status)
}

func TestStatus_ReportsWithoutAdvancing(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	change := mustAllocate(t, env, domain.ChangeFeature, "Avatar upload")
	require.NoError(t, advanceTo(env, change.ID, domain.PhaseAnalysis))

	_, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "Write overview", nil)
	require.NoError(t, err)
	_, err = env.considerSvc.Propose(ctx, change.ID, "Do we need EXIF stripping?")
	require.NoError(t, err)

	report, err := env.gateSvc.Status(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAnalysis, report.CurrentPhase)
	assert.False(t, report.Advanced)
	assert.Len(t, report.IncompleteItems, 1)
	assert.Len(t, report.PendingConsiderations, 1)
	assert.True(t, report.Blocked())

	doc, err := env.documentSvc.Get(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAnalysis, doc.CurrentPhase)
}

func TestAdvance_UnknownChange(t *testing.T) {
	env := setupEnv(t)

	_, err := env.gateSvc.Advance(context.Background(), "feature-9999", domain.PhaseAnalysis)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

// advanceTo walks the gate phase by phase up to target.
func advanceTo(env *testEnv, changeID string, target domain.Phase) error {
	ctx := context.Background()
	for _, phase := range domain.PhaseOrder[1:] {
		if phase.Index() > target.Index() {
			return nil
		}
		if _, err := env.gateSvc.Advance(ctx, changeID, phase); err != nil {
			return err
		}
	}
	return nil
}
