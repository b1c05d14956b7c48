package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/AdamBeresnev/op-league/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// StandingsLedger keeps the per team, per competition aggregates. Writes run
// inside the caller's transaction so both sides of a match land together.
type StandingsLedger struct {
	store        *store.StandingsStore
	competitions *store.CompetitionStore
}

func NewStandingsLedger(standingsStore *store.StandingsStore, competitionStore *store.CompetitionStore) *StandingsLedger {
	return &StandingsLedger{store: standingsStore, competitions: competitionStore}
}

type StandingRow struct {
	Position int
	Team     league.Team
	Record   league.TeamCompetitionRecord
}

// RecordDrift is a record whose stored aggregate differs from the one rebuilt
// from completed matches.
type RecordDrift struct {
	TeamID   uuid.UUID
	Stored   league.TeamCompetitionRecord
	Expected league.TeamCompetitionRecord
}

func (l *StandingsLedger) CurrentRecord(ctx context.Context, teamID, competitionID uuid.UUID) (league.TeamCompetitionRecord, error) {
	return l.store.GetRecord(ctx, teamID, competitionID)
}

// ApplyDelta adds the delta to the team's record. Results that would leave a
// negative stat, or points out of line with wins and draws, are refused.
func (l *StandingsLedger) ApplyDelta(ctx context.Context, tx *sqlx.Tx, teamID, competitionID uuid.UUID, delta league.StatsDelta) error {
	if delta.IsZero() {
		return nil
	}

	if err := l.store.EnsureRecordTx(ctx, tx, teamID, competitionID); err != nil {
		return err
	}

	current, err := l.store.GetRecordTx(ctx, tx, teamID, competitionID)
	if err != nil {
		return err
	}

	next := current.Apply(delta)
	if err := next.Validate(); err != nil {
		slog.Error("refusing standings update",
			"team_id", teamID,
			"competition_id", competitionID,
			"current", current,
			"delta", delta,
			"error", err,
		)
		return err
	}

	return l.store.UpdateRecordTx(ctx, tx, next)
}

// OpenRecordsTx gives each team a zeroed record in the competition.
func (l *StandingsLedger) OpenRecordsTx(ctx context.Context, tx *sqlx.Tx, competitionID uuid.UUID, teamIDs []uuid.UUID) error {
	for _, id := range teamIDs {
		if err := l.store.EnsureRecordTx(ctx, tx, id, competitionID); err != nil {
			return err
		}
	}
	return nil
}

// DropRecordTx destroys the team's record. Returns false when it had none.
func (l *StandingsLedger) DropRecordTx(ctx context.Context, tx *sqlx.Tx, teamID, competitionID uuid.UUID) (bool, error) {
	return l.store.DeleteRecordTx(ctx, tx, teamID, competitionID)
}

func (l *StandingsLedger) ResetAll(ctx context.Context, tx *sqlx.Tx, competitionID uuid.UUID) error {
	return l.store.ResetRecordsTx(ctx, tx, competitionID)
}

// Standings returns the league table: points, goal difference, goals scored, then name.
func (l *StandingsLedger) Standings(ctx context.Context, competitionID uuid.UUID) ([]StandingRow, error) {
	teams, err := l.competitions.GetTeams(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	records, err := l.store.GetRecords(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	byTeam := make(map[uuid.UUID]league.TeamCompetitionRecord, len(records))
	for _, r := range records {
		byTeam[r.TeamID] = r
	}

	rows := make([]StandingRow, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, StandingRow{Team: t, Record: byTeam[t.ID]})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Record, rows[j].Record
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return rows[i].Team.Name < rows[j].Team.Name
	})

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows, nil
}

// Audit rebuilds every record from the completed matches and reports the ones
// that disagree with what is stored.
func (l *StandingsLedger) Audit(ctx context.Context, competitionID uuid.UUID) ([]RecordDrift, error) {
	matches, err := l.competitions.GetMatches(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	records, err := l.store.GetRecords(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	expected := make(map[uuid.UUID]league.TeamCompetitionRecord, len(records))
	for _, r := range records {
		expected[r.TeamID] = league.TeamCompetitionRecord{TeamID: r.TeamID, CompetitionID: competitionID}
	}

	for _, m := range matches {
		if !m.IsCompleted || m.HomeTeamID == nil || m.AwayTeamID == nil {
			continue
		}
		homeDelta, awayDelta := league.ResultDeltas(m.HomeScore, m.AwayScore)
		expected[*m.HomeTeamID] = expected[*m.HomeTeamID].Apply(homeDelta)
		expected[*m.AwayTeamID] = expected[*m.AwayTeamID].Apply(awayDelta)
	}

	var drift []RecordDrift
	for _, stored := range records {
		want := expected[stored.TeamID]
		if stored != want {
			slog.Warn("standings drift", "team_id", stored.TeamID, "competition_id", competitionID, "stored", stored, "expected", want)
			drift = append(drift, RecordDrift{TeamID: stored.TeamID, Stored: stored, Expected: want})
		}
	}
	return drift, nil
}
