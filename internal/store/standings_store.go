package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type StandingsStore struct {
	db *sqlx.DB
}

func NewStandingsStore(db *sqlx.DB) *StandingsStore {
	return &StandingsStore{db: db}
}

const (
	ensureRecordQuery = `
		INSERT INTO team_competition_records (team_id, competition_id)
		VALUES (?, ?)
		ON CONFLICT (team_id, competition_id) DO NOTHING
	`
	updateRecordQuery = `
		UPDATE team_competition_records SET
		points = :points,
		wins = :wins,
		draws = :draws,
		losses = :losses,
		goals_for = :goals_for,
		goals_against = :goals_against
		WHERE team_id = :team_id AND competition_id = :competition_id
	`
	resetRecordsQuery = `
		UPDATE team_competition_records SET
		points = 0, wins = 0, draws = 0, losses = 0, goals_for = 0, goals_against = 0
		WHERE competition_id = ?
	`
)

// GetRecord returns the stored record or a zeroed one when the team has none.
func (s *StandingsStore) GetRecord(ctx context.Context, teamID, competitionID uuid.UUID) (league.TeamCompetitionRecord, error) {
	return s.getRecord(ctx, s.db, teamID, competitionID)
}

func (s *StandingsStore) GetRecordTx(ctx context.Context, tx *sqlx.Tx, teamID, competitionID uuid.UUID) (league.TeamCompetitionRecord, error) {
	return s.getRecord(ctx, tx, teamID, competitionID)
}

func (s *StandingsStore) getRecord(ctx context.Context, q sqlx.QueryerContext, teamID, competitionID uuid.UUID) (league.TeamCompetitionRecord, error) {
	var record league.TeamCompetitionRecord
	err := sqlx.GetContext(ctx, q, &record, "SELECT * FROM team_competition_records WHERE team_id = ? AND competition_id = ?", teamID, competitionID)
	if errors.Is(err, sql.ErrNoRows) {
		return league.TeamCompetitionRecord{TeamID: teamID, CompetitionID: competitionID}, nil
	}
	return record, err
}

func (s *StandingsStore) GetRecords(ctx context.Context, competitionID uuid.UUID) ([]league.TeamCompetitionRecord, error) {
	var records []league.TeamCompetitionRecord
	err := s.db.SelectContext(ctx, &records, "SELECT * FROM team_competition_records WHERE competition_id = ?", competitionID)
	return records, err
}

// EnsureRecordTx creates a zeroed record for the team if it has none yet.
func (s *StandingsStore) EnsureRecordTx(ctx context.Context, tx *sqlx.Tx, teamID, competitionID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, ensureRecordQuery, teamID, competitionID)
	return err
}

func (s *StandingsStore) UpdateRecordTx(ctx context.Context, tx *sqlx.Tx, record league.TeamCompetitionRecord) error {
	_, err := tx.NamedExecContext(ctx, updateRecordQuery, record)
	return err
}

func (s *StandingsStore) ResetRecordsTx(ctx context.Context, tx *sqlx.Tx, competitionID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, resetRecordsQuery, competitionID)
	return err
}

func (s *StandingsStore) DeleteRecordTx(ctx context.Context, tx *sqlx.Tx, teamID, competitionID uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM team_competition_records WHERE team_id = ? AND competition_id = ?", teamID, competitionID)
	if err != nil {
		return false, err
	}
	return affected(res)
}
