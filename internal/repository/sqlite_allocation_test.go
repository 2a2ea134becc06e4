package repository

import (
	"context"
	"testing"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationRepo_IssuedSeqs_EmptyForNewType(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteAllocationRepo(database)

	seqs, err := repo.IssuedSeqs(context.Background(), domain.ChangeFeature)
	require.NoError(t, err)
	assert.Empty(t, seqs)
}

func TestAllocationRepo_RecordAndRead(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteAllocationRepo(database)

	require.NoError(t, repo.Record(ctx, "feature-0001", domain.ChangeFeature, 1))
	require.NoError(t, repo.Record(ctx, "feature-0003", domain.ChangeFeature, 3))
	require.NoError(t, repo.Record(ctx, "fix-0001", domain.ChangeFix, 1))

	seqs, err := repo.IssuedSeqs(ctx, domain.ChangeFeature)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, seqs)
}

func TestAllocationRepo_Record_ConflictOnClaimedSeq(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteAllocationRepo(database)

	require.NoError(t, repo.Record(ctx, "feature-0001", domain.ChangeFeature, 1))

	err := repo.Record(ctx, "feature-0001", domain.ChangeFeature, 1)
	require.ErrorIs(t, err, domain.ErrAllocationConflict)
}

func TestAllocationRepo_Record_ConflictAcrossIDFormats(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteAllocationRepo(database)

	// Two different renderings of the same (type, seq) pair still collide:
	// uniqueness is on the sequence, not the formatted string.
	require.NoError(t, repo.Record(ctx, "feature-0002", domain.ChangeFeature, 2))
	err := repo.Record(ctx, "feature-02", domain.ChangeFeature, 2)
	require.ErrorIs(t, err, domain.ErrAllocationConflict)
}

func TestAllocationRepo_SurvivesChangeDeletion(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	allocations := NewSQLiteAllocationRepo(database)
	changes := NewSQLiteChangeRepo(database)

	c := testutil.NewTestChange("Retired")
	typ, seq, err := domain.DefaultIDFormat.ParseID(c.ID)
	require.NoError(t, err)
	require.NoError(t, allocations.Record(ctx, c.ID, typ, seq))
	require.NoError(t, changes.Create(ctx, c))

	require.NoError(t, changes.Delete(ctx, c.ID))

	// The sequence stays issued: the identifier can never be reallocated.
	seqs, err := allocations.IssuedSeqs(ctx, typ)
	require.NoError(t, err)
	assert.Contains(t, seqs, seq)
}
