package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-league/internal/db"
	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.OpenInMemory()
	require.NoError(t, err, "Failed to open in-memory DB")

	return database
}

type fixtureData struct {
	competition league.Competition
	home        league.Team
	away        league.Team
	match       league.Match
}

// seedCompetition inserts a competition with two teams and one scheduled match
func seedCompetition(t *testing.T, database *sqlx.DB) fixtureData {
	t.Helper()
	ctx := context.Background()
	competitionStore := NewCompetitionStore(database)
	standingsStore := NewStandingsStore(database)

	competition := league.Competition{
		ID:               uuid.New(),
		Name:             "Sunday League",
		Status:           league.CompetitionStarted,
		VotingEnabled:    true,
		VotingPeriodDays: 3,
	}
	home := league.Team{ID: uuid.New(), Name: "Red Lions"}
	away := league.Team{ID: uuid.New(), Name: "Blue Harts"}
	match := league.Match{
		ID:            uuid.New(),
		CompetitionID: competition.ID,
		RoundNumber:   1,
		MatchOrder:    1,
		HomeTeamID:    &home.ID,
		AwayTeamID:    &away.ID,
	}

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, competitionStore.CreateCompetition(ctx, tx, &competition))
	require.NoError(t, competitionStore.CreateTeams(ctx, tx, []league.Team{home, away}))
	require.NoError(t, standingsStore.EnsureRecordTx(ctx, tx, home.ID, competition.ID))
	require.NoError(t, standingsStore.EnsureRecordTx(ctx, tx, away.ID, competition.ID))
	require.NoError(t, competitionStore.CreateMatches(ctx, tx, []league.Match{match}))
	require.NoError(t, tx.Commit())

	return fixtureData{competition: competition, home: home, away: away, match: match}
}

func TestCreateCompetition(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewCompetitionStore(database)
	data := seedCompetition(t, database)

	fetched, err := store.GetCompetition(context.Background(), data.competition.ID)
	require.NoError(t, err)
	assert.Equal(t, data.competition.ID, fetched.ID)
	assert.Equal(t, data.competition.Name, fetched.Name)
	assert.Equal(t, league.CompetitionStarted, fetched.Status)
	assert.True(t, fetched.VotingEnabled)
	assert.Equal(t, 3, fetched.VotingPeriodDays)
	assert.False(t, fetched.DoubleRound)
	assert.WithinDuration(t, time.Now().UTC(), fetched.CreatedAt, time.Minute)

	teams, err := store.GetTeams(context.Background(), data.competition.ID)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Blue Harts", teams[0].Name)
	assert.Equal(t, "Red Lions", teams[1].Name)
}

func TestGetMatch(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewCompetitionStore(database)
	data := seedCompetition(t, database)
	ctx := context.Background()

	match, err := store.GetMatch(ctx, data.match.ID)
	require.NoError(t, err)
	assert.Equal(t, data.home.ID, *match.HomeTeamID)
	assert.Equal(t, data.away.ID, *match.AwayTeamID)
	assert.Nil(t, match.MatchDate)
	assert.False(t, match.IsCompleted)
	assert.Equal(t, 0, match.HomeScore)
	assert.Equal(t, 0, match.AwayScore)

	_, err = store.GetMatch(ctx, uuid.New())
	assert.ErrorIs(t, err, league.ErrMatchNotFound)

	matches, err := store.GetMatches(ctx, data.competition.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMatchDateAndPlayers(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewCompetitionStore(database)
	data := seedCompetition(t, database)
	ctx := context.Background()

	kickoff := time.Date(2025, 4, 6, 10, 30, 0, 0, time.UTC)
	require.NoError(t, store.SetMatchDate(ctx, data.match.ID, kickoff))
	assert.ErrorIs(t, store.SetMatchDate(ctx, uuid.New(), kickoff), league.ErrMatchNotFound)

	player := league.MatchPlayer{MatchID: data.match.ID, PlayerID: uuid.New(), TeamID: data.home.ID}
	require.NoError(t, store.AddMatchPlayer(ctx, player))
	// Re-adding the same player moves them instead of failing
	player.TeamID = data.away.ID
	require.NoError(t, store.AddMatchPlayer(ctx, player))

	players, err := store.GetMatchPlayers(ctx, data.match.ID)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, data.away.ID, players[0].TeamID)

	match, err := store.GetMatch(ctx, data.match.ID)
	require.NoError(t, err)
	require.NotNil(t, match.MatchDate)
	assert.True(t, kickoff.Equal(*match.MatchDate))
}

func TestMarkCompletedAndCorrect(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewCompetitionStore(database)
	data := seedCompetition(t, database)
	ctx := context.Background()

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	ok, err := store.SetScoreTx(ctx, tx, data.match.ID, 2, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.MarkCompletedTx(ctx, tx, data.match.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.MarkCompletedTx(ctx, tx, data.match.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second completion must not match any row")

	ok, err = store.SetScoreTx(ctx, tx, data.match.ID, 5, 5)
	require.NoError(t, err)
	assert.False(t, ok, "completed matches only change through corrections")

	ok, err = store.CorrectScoreTx(ctx, tx, data.match.ID, 0, 0, 3, 3)
	require.NoError(t, err)
	assert.False(t, ok, "stale old score must not match")

	ok, err = store.CorrectScoreTx(ctx, tx, data.match.ID, 2, 1, 1, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := store.CountCompletedMatchesTx(ctx, tx, data.competition.ID, data.home.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	match, err := store.GetMatchTx(ctx, tx, data.match.ID)
	require.NoError(t, err)
	assert.True(t, match.IsCompleted)
	assert.Equal(t, 1, match.HomeScore)
	assert.Equal(t, 1, match.AwayScore)

	require.NoError(t, store.ResetMatchesTx(ctx, tx, data.competition.ID))
	match, err = store.GetMatchTx(ctx, tx, data.match.ID)
	require.NoError(t, err)
	assert.False(t, match.IsCompleted)
	assert.Equal(t, 0, match.HomeScore)

	require.NoError(t, tx.Commit())
}

func TestSelfFixtureRejected(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewCompetitionStore(database)
	data := seedCompetition(t, database)
	ctx := context.Background()

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = store.CreateMatches(ctx, tx, []league.Match{{
		ID:            uuid.New(),
		CompetitionID: data.competition.ID,
		RoundNumber:   2,
		MatchOrder:    1,
		HomeTeamID:    &data.home.ID,
		AwayTeamID:    &data.home.ID,
	}})
	assert.Error(t, err)
}
