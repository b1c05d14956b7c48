package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CompetitionStore struct {
	db *sqlx.DB
}

func NewCompetitionStore(db *sqlx.DB) *CompetitionStore {
	return &CompetitionStore{db: db}
}

const (
	completeMatchQuery = `
		UPDATE matches SET is_completed = 1
		WHERE id = ? AND is_completed = 0
	`
	correctScoreQuery = `
		UPDATE matches SET home_score = ?, away_score = ?
		WHERE id = ? AND is_completed = 1 AND home_score = ? AND away_score = ?
	`
	resetMatchesQuery = `
		UPDATE matches SET home_score = 0, away_score = 0, is_completed = 0
		WHERE competition_id = ?
	`
	completedMatchesForTeamQuery = `
		SELECT COUNT(*) FROM matches
		WHERE competition_id = ? AND is_completed = 1 AND (home_team_id = ? OR away_team_id = ?)
	`
)

func (s *CompetitionStore) CreateCompetition(ctx context.Context, tx *sqlx.Tx, competition *league.Competition) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO competitions (id, name, status, double_round, voting_enabled, voting_period_days)
		VALUES (:id, :name, :status, :double_round, :voting_enabled, :voting_period_days)`, competition)
	return err
}

func (s *CompetitionStore) CreateTeams(ctx context.Context, tx *sqlx.Tx, teams []league.Team) error {
	if len(teams) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO teams (id, name) VALUES (:id, :name)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name`, teams)
	return err
}

func (s *CompetitionStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []league.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, competition_id, round_number, match_order, home_team_id, away_team_id, match_date, home_score, away_score, is_completed)
		VALUES (:id, :competition_id, :round_number, :match_order, :home_team_id, :away_team_id, :match_date, :home_score, :away_score, :is_completed)`, matches)
	return err
}

func (s *CompetitionStore) GetCompetition(ctx context.Context, id uuid.UUID) (*league.Competition, error) {
	return s.getCompetition(ctx, s.db, id)
}

func (s *CompetitionStore) GetCompetitionTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*league.Competition, error) {
	return s.getCompetition(ctx, tx, id)
}

func (s *CompetitionStore) getCompetition(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*league.Competition, error) {
	var competition league.Competition
	if err := sqlx.GetContext(ctx, q, &competition, "SELECT * FROM competitions WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &competition, nil
}

func (s *CompetitionStore) ListCompetitions(ctx context.Context) ([]league.Competition, error) {
	var competitions []league.Competition
	err := s.db.SelectContext(ctx, &competitions, "SELECT * FROM competitions ORDER BY created_at DESC")
	return competitions, err
}

func (s *CompetitionStore) UpdateCompetitionStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status league.CompetitionStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE competitions SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *CompetitionStore) DeleteCompetitionTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM competitions WHERE id = ?", id)
	return err
}

// GetTeams returns the teams taking part in the competition, i.e. the ones
// holding a standings record.
func (s *CompetitionStore) GetTeams(ctx context.Context, competitionID uuid.UUID) ([]league.Team, error) {
	var teams []league.Team
	err := s.db.SelectContext(ctx, &teams, `
		SELECT t.* FROM teams t
		JOIN team_competition_records r ON r.team_id = t.id
		WHERE r.competition_id = ?
		ORDER BY t.name ASC`, competitionID)
	return teams, err
}

func (s *CompetitionStore) GetMatch(ctx context.Context, id uuid.UUID) (*league.Match, error) {
	return s.getMatch(ctx, s.db, id)
}

func (s *CompetitionStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*league.Match, error) {
	return s.getMatch(ctx, tx, id)
}

func (s *CompetitionStore) getMatch(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*league.Match, error) {
	var match league.Match
	err := sqlx.GetContext(ctx, q, &match, "SELECT * FROM matches WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", league.ErrMatchNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *CompetitionStore) GetMatches(ctx context.Context, competitionID uuid.UUID) ([]league.Match, error) {
	return s.getMatches(ctx, s.db, competitionID)
}

func (s *CompetitionStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, competitionID uuid.UUID) ([]league.Match, error) {
	return s.getMatches(ctx, tx, competitionID)
}

func (s *CompetitionStore) getMatches(ctx context.Context, q sqlx.QueryerContext, competitionID uuid.UUID) ([]league.Match, error) {
	var matches []league.Match
	err := sqlx.SelectContext(ctx, q, &matches, "SELECT * FROM matches WHERE competition_id = ? ORDER BY round_number ASC, match_order ASC", competitionID)
	return matches, err
}

func (s *CompetitionStore) SetMatchDate(ctx context.Context, id uuid.UUID, date time.Time) error {
	res, err := s.db.ExecContext(ctx, "UPDATE matches SET match_date = ? WHERE id = ?", date.UTC(), id)
	if err != nil {
		return err
	}
	return expectOneRow(res, fmt.Errorf("%w: %s", league.ErrMatchNotFound, id))
}

// SetScoreTx writes the score of a match that has not been completed yet.
// Returns false when the match is already completed.
func (s *CompetitionStore) SetScoreTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, home, away int) (bool, error) {
	res, err := tx.ExecContext(ctx, "UPDATE matches SET home_score = ?, away_score = ? WHERE id = ? AND is_completed = 0", home, away, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// MarkCompletedTx flips is_completed from false to true. Returns false if some
// other call already completed the match.
func (s *CompetitionStore) MarkCompletedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, completeMatchQuery, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// CorrectScoreTx rewrites the score of a completed match, provided it still
// holds the old score.
func (s *CompetitionStore) CorrectScoreTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, oldHome, oldAway, newHome, newAway int) (bool, error) {
	res, err := tx.ExecContext(ctx, correctScoreQuery, newHome, newAway, id, oldHome, oldAway)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (s *CompetitionStore) ResetMatchesTx(ctx context.Context, tx *sqlx.Tx, competitionID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, resetMatchesQuery, competitionID)
	return err
}

func (s *CompetitionStore) CountCompletedMatchesTx(ctx context.Context, tx *sqlx.Tx, competitionID, teamID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, completedMatchesForTeamQuery, competitionID, teamID, teamID)
	return count, err
}

// DeletePendingTeamMatchesTx drops the unplayed fixtures of a team leaving the competition.
func (s *CompetitionStore) DeletePendingTeamMatchesTx(ctx context.Context, tx *sqlx.Tx, competitionID, teamID uuid.UUID) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM matches
		WHERE competition_id = ? AND is_completed = 0 AND (home_team_id = ? OR away_team_id = ?)`, competitionID, teamID, teamID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *CompetitionStore) AddMatchPlayer(ctx context.Context, player league.MatchPlayer) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO match_players (match_id, player_id, team_id)
		VALUES (:match_id, :player_id, :team_id)
		ON CONFLICT (match_id, player_id) DO UPDATE SET team_id = excluded.team_id`, player)
	return err
}

func (s *CompetitionStore) GetMatchPlayers(ctx context.Context, matchID uuid.UUID) ([]league.MatchPlayer, error) {
	return s.getMatchPlayers(ctx, s.db, matchID)
}

func (s *CompetitionStore) GetMatchPlayersTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) ([]league.MatchPlayer, error) {
	return s.getMatchPlayers(ctx, tx, matchID)
}

func (s *CompetitionStore) getMatchPlayers(ctx context.Context, q sqlx.QueryerContext, matchID uuid.UUID) ([]league.MatchPlayer, error) {
	var players []league.MatchPlayer
	err := sqlx.SelectContext(ctx, q, &players, "SELECT match_id, player_id, team_id FROM match_players WHERE match_id = ? ORDER BY team_id, player_id", matchID)
	return players, err
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func expectOneRow(res sql.Result, notFound error) error {
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}
