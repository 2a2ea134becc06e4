package service

import (
	"context"
	"testing"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullChangeLifecycle walks one feature change from allocation to
// realization: register, analyze with an open question, fill each
// specification section under its owning phase, close the checklist,
// resolve the question, and realize.
func TestFullChangeLifecycle(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	change := mustAllocate(t, env, domain.ChangeFeature, "User avatar upload")
	require.Equal(t, "feature-0001", change.ID)
	require.Equal(t, domain.ChangePlanning, change.Status)

	// Skeleton is complete at allocation; step into analysis.
	report, err := env.gateSvc.Advance(ctx, change.ID, domain.PhaseAnalysis)
	require.NoError(t, err)
	require.True(t, report.Advanced)

	require.NoError(t, env.documentSvc.WriteSection(ctx, change.ID,
		"overview", "Let users upload an avatar image to their profile.", domain.PhaseAnalysis))
	require.NoError(t, env.documentSvc.WriteSection(ctx, change.ID,
		"outline", "Upload endpoint, resize worker, CDN path.", domain.PhaseAnalysis))

	question, err := env.considerSvc.Propose(ctx, change.ID, "Strip EXIF metadata before storing?")
	require.NoError(t, err)

	item, err := env.checklistSvc.AddItem(ctx, change.ID, domain.PhaseAnalysis, "Confirm storage quota impact", nil)
	require.NoError(t, err)

	// The open checklist item blocks the next gate; the open question
	// does not.
	_, err = env.gateSvc.Advance(ctx, change.ID, domain.PhaseTestSpec)
	require.ErrorIs(t, err, domain.ErrPhaseGateViolation)

	require.NoError(t, env.checklistSvc.MarkDone(ctx, change.ID, item.ID))
	report, err = env.gateSvc.Advance(ctx, change.ID, domain.PhaseTestSpec)
	require.NoError(t, err)
	require.True(t, report.Advanced)

	got, err := env.changeSvc.GetByID(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeInProgress, got.Status)

	// Each specification phase writes its own sections.
	require.NoError(t, env.documentSvc.WriteSection(ctx, change.ID,
		"test_scenarios", "Upload happy path, oversized file, unsupported format.", domain.PhaseTestSpec))
	require.NoError(t, advanceTo(env, change.ID, domain.PhaseImplSpec))

	require.NoError(t, env.documentSvc.WriteSection(ctx, change.ID,
		"implementation", "POST /profile/avatar, async resize via queue.", domain.PhaseImplSpec))
	require.NoError(t, env.documentSvc.WriteSection(ctx, change.ID,
		"work_breakdown", "1. endpoint 2. worker 3. CDN invalidation", domain.PhaseImplSpec))
	require.NoError(t, advanceTo(env, change.ID, domain.PhaseDocSpec))

	require.NoError(t, env.documentSvc.WriteSection(ctx, change.ID,
		"documentation", "Profile settings page gains an upload control.", domain.PhaseDocSpec))
	require.NoError(t, env.documentSvc.WriteSection(ctx, change.ID,
		"success_criteria", "Avatar visible within 5s of upload.", domain.PhaseDocSpec))
	require.NoError(t, advanceTo(env, change.ID, domain.PhaseChangelog))

	require.NoError(t, env.documentSvc.WriteSection(ctx, change.ID,
		"release_notes", "Profiles now support avatar images.", domain.PhaseChangelog))
	require.NoError(t, advanceTo(env, change.ID, domain.PhaseVerification))

	require.NoError(t, env.documentSvc.WriteSection(ctx, change.ID,
		"verification_report", "All scenarios pass on staging.", domain.PhaseVerification))

	// The terminal gate still refuses while the question is open.
	_, err = env.gateSvc.Advance(ctx, change.ID, domain.PhaseRealized)
	require.ErrorIs(t, err, domain.ErrPhaseGateViolation)

	require.NoError(t, env.considerSvc.AttachAnswer(ctx, change.ID, question.Seq, "Yes, strip on upload."))
	require.NoError(t, env.considerSvc.Resolve(ctx, change.ID, question.Seq))

	report, err = env.gateSvc.Advance(ctx, change.ID, domain.PhaseRealized)
	require.NoError(t, err)
	require.True(t, report.Advanced)

	closed, err := env.changeSvc.GetByID(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeComplete, closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	doc, err := env.documentSvc.Get(ctx, change.ID)
	require.NoError(t, err)
	assert.True(t, doc.Archived())

	// The realized change still reads back; nothing is deleted.
	sections, err := env.documentSvc.ListSections(ctx, change.ID)
	require.NoError(t, err)
	for _, s := range sections {
		if s.Name == "identifiers" || s.Name == "scaffolding" || s.Name == "considerations" {
			continue
		}
		assert.False(t, s.IsPlaceholder, "section %s should have content", s.Name)
	}
}
