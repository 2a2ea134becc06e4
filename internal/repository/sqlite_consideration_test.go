package repository

import (
	"context"
	"testing"
	"time"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConsiderations(t *testing.T) (context.Context, *SQLiteConsiderationRepo, string) {
	t.Helper()
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	changes := NewSQLiteChangeRepo(database)
	docs := NewSQLiteDocumentRepo(database)
	repo := NewSQLiteConsiderationRepo(database)

	c := testutil.NewTestChange("Consideration host")
	require.NoError(t, changes.Create(ctx, c))
	require.NoError(t, docs.Create(ctx, testutil.NewTestDocument(c.ID)))
	return ctx, repo, c.ID
}

func TestConsiderationRepo_NextSeq_SequentialPerDocument(t *testing.T) {
	ctx, repo, changeID := setupConsiderations(t)

	seq, err := repo.NextSeq(ctx, changeID)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	require.NoError(t, repo.Create(ctx, testutil.NewTestConsideration(changeID, seq, "Approach A or B?")))

	seq, err = repo.NextSeq(ctx, changeID)
	require.NoError(t, err)
	assert.Equal(t, 2, seq)
}

func TestConsiderationRepo_ListPending(t *testing.T) {
	ctx, repo, changeID := setupConsiderations(t)

	pending := testutil.NewTestConsideration(changeID, 1, "Pending one")
	require.NoError(t, repo.Create(ctx, pending))

	resolved := testutil.NewTestConsideration(changeID, 2, "Settled one")
	resolved.Answer = "Yes"
	resolved.Status = domain.ConsiderationResolved
	require.NoError(t, repo.Create(ctx, resolved))

	got, err := repo.ListPending(ctx, changeID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Seq)

	all, err := repo.List(ctx, changeID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestConsiderationRepo_Update(t *testing.T) {
	ctx, repo, changeID := setupConsiderations(t)

	c := testutil.NewTestConsideration(changeID, 1, "Keep the cache?")
	require.NoError(t, repo.Create(ctx, c))

	c.Answer = "Drop it; hit rate is under 2%."
	c.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.Get(ctx, changeID, 1)
	require.NoError(t, err)
	assert.True(t, got.Answered())
	assert.Equal(t, domain.ConsiderationPending, got.Status, "answer alone must not resolve")
}

func TestConsiderationRepo_Get_NotFound(t *testing.T) {
	ctx, repo, changeID := setupConsiderations(t)

	_, err := repo.Get(ctx, changeID, 7)
	require.ErrorIs(t, err, domain.ErrConsiderationNotFound)
}

func TestConsiderationRepo_EventLog_AppendOnlyOrdered(t *testing.T) {
	ctx, repo, changeID := setupConsiderations(t)

	require.NoError(t, repo.Create(ctx, testutil.NewTestConsideration(changeID, 1, "Audited?")))

	// Identical timestamps: the log must still read back in append
	// order, not in UUID order.
	at := time.Now().UTC()
	kinds := []domain.ConsiderationEventKind{
		domain.EventProposed, domain.EventAnswered, domain.EventResolved, domain.EventReopened,
	}
	for _, kind := range kinds {
		require.NoError(t, repo.AppendEvent(ctx, &domain.ConsiderationEvent{
			ID:       uuid.New().String(),
			ChangeID: changeID,
			Seq:      1,
			Kind:     kind,
			Detail:   string(kind),
			At:       at,
		}))
	}

	events, err := repo.ListEvents(ctx, changeID, 1)
	require.NoError(t, err)
	require.Len(t, events, 4)
	for i, kind := range kinds {
		assert.Equal(t, kind, events[i].Kind)
	}
}
