package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/AdamBeresnev/op-league/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteWindowLifecycle(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewVoteStore(database)
	data := seedCompetition(t, database)
	ctx := context.Background()

	endsAt := time.Date(2025, 4, 9, 10, 0, 0, 0, time.UTC)
	participants := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	window := &league.VoteWindow{
		MatchID:        data.match.ID,
		Status:         league.VotingOpen,
		OpensWithMatch: true,
		EndsAt:         utils.Ptr(endsAt),
	}

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateWindowTx(ctx, tx, window, participants))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetWindow(ctx, data.match.ID)
	require.NoError(t, err)
	assert.Equal(t, league.VotingOpen, fetched.Status)
	assert.True(t, fetched.OpensWithMatch)
	require.NotNil(t, fetched.EndsAt)
	assert.True(t, endsAt.Equal(*fetched.EndsAt))
	assert.Nil(t, fetched.ClosedAt)

	stored, err := store.GetParticipants(ctx, data.match.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, participants, stored)

	open, err := store.ListOpenWindows(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	tx, err = database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	locked, err := store.LockOpenWindowTx(ctx, tx, data.match.ID)
	require.NoError(t, err)
	assert.True(t, locked)

	ballot := league.Ballot{
		{CandidateID: participants[0], Points: 3},
		{CandidateID: participants[1], Points: 2},
		{CandidateID: participants[2], Points: 1},
	}
	require.NoError(t, store.InsertBallotTx(ctx, tx, data.match.ID, participants[0], ballot))

	voted, err := store.HasVotedTx(ctx, tx, data.match.ID, participants[0])
	require.NoError(t, err)
	assert.True(t, voted)

	voted, err = store.HasVotedTx(ctx, tx, data.match.ID, participants[1])
	require.NoError(t, err)
	assert.False(t, voted)

	voters, err := store.CountVotersTx(ctx, tx, data.match.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, voters)
	require.NoError(t, tx.Commit())

	// Only the first close wins
	closedAt := endsAt.Add(time.Hour)
	closed, err := store.CloseWindow(ctx, data.match.ID, closedAt)
	require.NoError(t, err)
	assert.True(t, closed)

	closed, err = store.CloseWindow(ctx, data.match.ID, closedAt)
	require.NoError(t, err)
	assert.False(t, closed)

	fetched, err = store.GetWindow(ctx, data.match.ID)
	require.NoError(t, err)
	assert.Equal(t, league.VotingClosed, fetched.Status)
	require.NotNil(t, fetched.ClosedAt)
	assert.True(t, closedAt.Equal(*fetched.ClosedAt))

	tx, err = database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	locked, err = store.LockOpenWindowTx(ctx, tx, data.match.ID)
	require.NoError(t, err)
	assert.False(t, locked)
	require.NoError(t, tx.Rollback())

	votes, err := store.GetVotes(ctx, data.match.ID)
	require.NoError(t, err)
	require.Len(t, votes, 3)
	assert.Equal(t, 3, votes[0].Points)

	_, err = store.GetWindow(ctx, uuid.New())
	assert.ErrorIs(t, err, league.ErrWindowNotFound)
}

func TestDeleteCompetitionWindows(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewVoteStore(database)
	data := seedCompetition(t, database)
	ctx := context.Background()

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	window := &league.VoteWindow{MatchID: data.match.ID, Status: league.VotingOpen}
	require.NoError(t, store.CreateWindowTx(ctx, tx, window, []uuid.UUID{uuid.New()}))
	require.NoError(t, store.DeleteCompetitionWindowsTx(ctx, tx, data.competition.ID))
	require.NoError(t, tx.Commit())

	_, err = store.GetWindow(ctx, data.match.ID)
	assert.ErrorIs(t, err, league.ErrWindowNotFound)

	participants, err := store.GetParticipants(ctx, data.match.ID)
	require.NoError(t, err)
	assert.Empty(t, participants)
}
