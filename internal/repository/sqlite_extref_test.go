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

func setupExtRefs(t *testing.T) (context.Context, *SQLiteExternalRefRepo, string) {
	t.Helper()
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	changes := NewSQLiteChangeRepo(database)
	docs := NewSQLiteDocumentRepo(database)
	refs := NewSQLiteExternalRefRepo(database)

	c := testutil.NewTestChange("Ref host")
	require.NoError(t, changes.Create(ctx, c))
	require.NoError(t, docs.Create(ctx, testutil.NewTestDocument(c.ID)))
	return ctx, refs, c.ID
}

func newPostedRef(changeID, anchor string) *domain.ExternalReference {
	now := time.Now().UTC()
	return &domain.ExternalReference{
		ChangeID:     changeID,
		LocalAnchor:  anchor,
		ExternalID:   "comment-101",
		URL:          "https://tracker.example/c/101",
		SyncState:    domain.SyncPosted,
		LastPostedAt: &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestExternalRefRepo_CreateAndGet(t *testing.T) {
	ctx, refs, changeID := setupExtRefs(t)

	require.NoError(t, refs.Create(ctx, newPostedRef(changeID, "overview")))

	got, err := refs.Get(ctx, changeID, "overview")
	require.NoError(t, err)
	assert.Equal(t, "comment-101", got.ExternalID)
	assert.Equal(t, domain.SyncPosted, got.SyncState)
	assert.NotNil(t, got.LastPostedAt)
}

func TestExternalRefRepo_Get_NotFound(t *testing.T) {
	ctx, refs, changeID := setupExtRefs(t)

	_, err := refs.Get(ctx, changeID, "outline")
	require.ErrorIs(t, err, domain.ErrReferenceNotFound)
}

func TestExternalRefRepo_MarkStaleIfPosted(t *testing.T) {
	ctx, refs, changeID := setupExtRefs(t)

	require.NoError(t, refs.Create(ctx, newPostedRef(changeID, "overview")))
	require.NoError(t, refs.MarkStaleIfPosted(ctx, changeID, "overview"))

	got, err := refs.Get(ctx, changeID, "overview")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStale, got.SyncState)

	// A second call and calls for absent anchors are no-ops.
	require.NoError(t, refs.MarkStaleIfPosted(ctx, changeID, "overview"))
	require.NoError(t, refs.MarkStaleIfPosted(ctx, changeID, "missing"))
}

func TestExternalRefRepo_SetState_PreservesPostedAtWhenNil(t *testing.T) {
	ctx, refs, changeID := setupExtRefs(t)

	ref := newPostedRef(changeID, "overview")
	require.NoError(t, refs.Create(ctx, ref))

	require.NoError(t, refs.SetState(ctx, changeID, "overview", domain.SyncStale, nil))
	got, err := refs.Get(ctx, changeID, "overview")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStale, got.SyncState)
	require.NotNil(t, got.LastPostedAt)
	assert.Equal(t, ref.LastPostedAt.Format(time.RFC3339), got.LastPostedAt.Format(time.RFC3339))

	reposted := time.Now().UTC().Add(time.Minute)
	require.NoError(t, refs.SetState(ctx, changeID, "overview", domain.SyncPosted, &reposted))
	got, err = refs.Get(ctx, changeID, "overview")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncPosted, got.SyncState)
	assert.Equal(t, reposted.Format(time.RFC3339), got.LastPostedAt.Format(time.RFC3339))
}
