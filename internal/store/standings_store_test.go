package store

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandingsRecords(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewStandingsStore(database)
	data := seedCompetition(t, database)
	ctx := context.Background()

	record, err := store.GetRecord(ctx, data.home.ID, data.competition.ID)
	require.NoError(t, err)
	assert.Equal(t, league.TeamCompetitionRecord{TeamID: data.home.ID, CompetitionID: data.competition.ID}, record)

	// Unknown pairs read back as zero records
	stranger := uuid.New()
	record, err = store.GetRecord(ctx, stranger, data.competition.ID)
	require.NoError(t, err)
	assert.Equal(t, stranger, record.TeamID)
	assert.Equal(t, 0, record.Points)

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	updated := league.TeamCompetitionRecord{
		TeamID:        data.home.ID,
		CompetitionID: data.competition.ID,
		Points:        4,
		Wins:          1,
		Draws:         1,
		GoalsFor:      3,
		GoalsAgainst:  2,
	}
	require.NoError(t, store.UpdateRecordTx(ctx, tx, updated))
	require.NoError(t, tx.Commit())

	record, err = store.GetRecord(ctx, data.home.ID, data.competition.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, record)

	records, err := store.GetRecords(ctx, data.competition.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	tx, err = database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.ResetRecordsTx(ctx, tx, data.competition.ID))
	require.NoError(t, tx.Commit())

	record, err = store.GetRecord(ctx, data.home.ID, data.competition.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Points)
	assert.Equal(t, 0, record.Wins)
	assert.Equal(t, 0, record.GoalsFor)
}

func TestStandingsRecords_ConstraintsHold(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewStandingsStore(database)
	data := seedCompetition(t, database)
	ctx := context.Background()

	testCases := []struct {
		name   string
		record league.TeamCompetitionRecord
	}{
		{
			name:   "Negative losses",
			record: league.TeamCompetitionRecord{Losses: -1},
		},
		{
			name:   "Points out of line with results",
			record: league.TeamCompetitionRecord{Points: 2, Wins: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.record.TeamID = data.home.ID
			tc.record.CompetitionID = data.competition.ID

			tx, err := database.BeginTxx(ctx, nil)
			require.NoError(t, err)
			defer tx.Rollback()

			assert.Error(t, store.UpdateRecordTx(ctx, tx, tc.record))
		})
	}
}

func TestDeleteRecord(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewStandingsStore(database)
	data := seedCompetition(t, database)
	ctx := context.Background()

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	deleted, err := store.DeleteRecordTx(ctx, tx, data.away.ID, data.competition.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteRecordTx(ctx, tx, data.away.ID, data.competition.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// Ensuring twice is harmless
	require.NoError(t, store.EnsureRecordTx(ctx, tx, data.away.ID, data.competition.ID))
	require.NoError(t, store.EnsureRecordTx(ctx, tx, data.away.ID, data.competition.ID))
	record, err := store.GetRecordTx(ctx, tx, data.away.ID, data.competition.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Played())
}
