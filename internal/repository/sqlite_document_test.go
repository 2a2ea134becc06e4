package repository

import (
	"context"
	"testing"
	"time"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDocument(t *testing.T) (context.Context, *SQLiteChangeRepo, *SQLiteDocumentRepo, *domain.Change) {
	t.Helper()
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	changes := NewSQLiteChangeRepo(database)
	docs := NewSQLiteDocumentRepo(database)

	c := testutil.NewTestChange("Document host")
	require.NoError(t, changes.Create(ctx, c))
	require.NoError(t, docs.Create(ctx, testutil.NewTestDocument(c.ID)))
	return ctx, changes, docs, c
}

func TestDocumentRepo_CreateAndGet(t *testing.T) {
	ctx, _, docs, c := setupDocument(t)

	got, err := docs.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ChangeID)
	assert.Equal(t, domain.PhaseSkeleton, got.CurrentPhase)
	assert.False(t, got.Archived())
}

func TestDocumentRepo_Get_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	docs := NewSQLiteDocumentRepo(database)

	_, err := docs.Get(context.Background(), "feature-0404")
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentRepo_SetPhase(t *testing.T) {
	ctx, _, docs, c := setupDocument(t)

	require.NoError(t, docs.SetPhase(ctx, c.ID, domain.PhaseAnalysis))

	got, err := docs.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAnalysis, got.CurrentPhase)
}

func TestDocumentRepo_Archive_Idempotent(t *testing.T) {
	ctx, _, docs, c := setupDocument(t)

	require.NoError(t, docs.Archive(ctx, c.ID))
	got, err := docs.Get(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, got.Archived())
	first := *got.ArchivedAt

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, docs.Archive(ctx, c.ID))
	got, err = docs.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *got.ArchivedAt, "second archive must not move the timestamp")
}

func TestDocumentRepo_Sections_RoundTrip(t *testing.T) {
	ctx, _, docs, c := setupDocument(t)

	tmpl := domain.DefaultSectionTemplate()
	for i, spec := range tmpl.Specs() {
		section := testutil.NewTestSection(c.ID, spec.Name, spec.Owner)
		require.NoError(t, docs.CreateSection(ctx, section, i))
	}

	sections, err := docs.ListSections(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, sections, len(tmpl.Names()))
	assert.Equal(t, tmpl.Names()[0], sections[0].Name)
	for _, s := range sections {
		assert.True(t, s.IsPlaceholder)
	}

	overview, err := docs.GetSection(ctx, c.ID, "overview")
	require.NoError(t, err)
	overview.Body = "The change replaces the ad hoc importer."
	overview.IsPlaceholder = false
	overview.LastModifiedPhase = domain.PhaseAnalysis
	overview.UpdatedAt = time.Now().UTC()
	require.NoError(t, docs.UpdateSection(ctx, overview))

	got, err := docs.GetSection(ctx, c.ID, "overview")
	require.NoError(t, err)
	assert.False(t, got.IsPlaceholder)
	assert.Equal(t, domain.PhaseAnalysis, got.LastModifiedPhase)
	assert.Contains(t, got.Body, "importer")
}

func TestDocumentRepo_GetSection_Unknown(t *testing.T) {
	ctx, _, docs, c := setupDocument(t)

	_, err := docs.GetSection(ctx, c.ID, "appendix")
	require.ErrorIs(t, err, domain.ErrUnknownSection)
	assert.Contains(t, err.Error(), "appendix")
}
