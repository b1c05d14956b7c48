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

type VoteStore struct {
	db *sqlx.DB
}

func NewVoteStore(db *sqlx.DB) *VoteStore {
	return &VoteStore{db: db}
}

const (
	createWindowQuery = `
		INSERT INTO vote_windows (match_id, status, opens_with_match, ends_at)
		VALUES (:match_id, :status, :opens_with_match, :ends_at)
	`
	// Touching the row takes the write lock on it, so whatever is read
	// afterwards in the same transaction cannot be closed underneath us.
	lockOpenWindowQuery = `
		UPDATE vote_windows SET status = status
		WHERE match_id = ? AND status = 'open'
	`
	closeWindowQuery = `
		UPDATE vote_windows SET status = 'closed', closed_at = ?
		WHERE match_id = ? AND status = 'open'
	`
	countVotersQuery = `
		SELECT COUNT(DISTINCT voter_id) FROM votes WHERE match_id = ?
	`
	deleteCompetitionWindowsQuery = `
		DELETE FROM vote_windows
		WHERE match_id IN (SELECT id FROM matches WHERE competition_id = ?)
	`
)

type participantRow struct {
	MatchID  uuid.UUID `db:"match_id"`
	PlayerID uuid.UUID `db:"player_id"`
}

func (s *VoteStore) CreateWindowTx(ctx context.Context, tx *sqlx.Tx, window *league.VoteWindow, participantIDs []uuid.UUID) error {
	if _, err := tx.NamedExecContext(ctx, createWindowQuery, window); err != nil {
		return err
	}
	if len(participantIDs) == 0 {
		return nil
	}

	rows := make([]participantRow, 0, len(participantIDs))
	for _, id := range participantIDs {
		rows = append(rows, participantRow{MatchID: window.MatchID, PlayerID: id})
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO vote_participants (match_id, player_id) VALUES (:match_id, :player_id)`, rows)
	return err
}

func (s *VoteStore) GetWindow(ctx context.Context, matchID uuid.UUID) (*league.VoteWindow, error) {
	return s.getWindow(ctx, s.db, matchID)
}

func (s *VoteStore) GetWindowTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) (*league.VoteWindow, error) {
	return s.getWindow(ctx, tx, matchID)
}

func (s *VoteStore) getWindow(ctx context.Context, q sqlx.QueryerContext, matchID uuid.UUID) (*league.VoteWindow, error) {
	var window league.VoteWindow
	err := sqlx.GetContext(ctx, q, &window, "SELECT * FROM vote_windows WHERE match_id = ?", matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %s", league.ErrWindowNotFound, matchID)
	}
	if err != nil {
		return nil, err
	}
	return &window, nil
}

// LockOpenWindowTx reports whether the window is open, holding the row for
// the rest of the transaction when it is.
func (s *VoteStore) LockOpenWindowTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, lockOpenWindowQuery, matchID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// CloseWindow moves an open window to closed. It returns false when the
// window was already closed, so concurrent closers only count once.
func (s *VoteStore) CloseWindow(ctx context.Context, matchID uuid.UUID, closedAt time.Time) (bool, error) {
	return s.closeWindow(ctx, s.db, matchID, closedAt)
}

func (s *VoteStore) CloseWindowTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID, closedAt time.Time) (bool, error) {
	return s.closeWindow(ctx, tx, matchID, closedAt)
}

func (s *VoteStore) closeWindow(ctx context.Context, e sqlx.ExecerContext, matchID uuid.UUID, closedAt time.Time) (bool, error) {
	res, err := e.ExecContext(ctx, closeWindowQuery, closedAt.UTC(), matchID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (s *VoteStore) ListOpenWindows(ctx context.Context) ([]league.VoteWindow, error) {
	var windows []league.VoteWindow
	err := s.db.SelectContext(ctx, &windows, "SELECT * FROM vote_windows WHERE status = 'open' ORDER BY match_id")
	return windows, err
}

func (s *VoteStore) GetParticipants(ctx context.Context, matchID uuid.UUID) ([]uuid.UUID, error) {
	return s.getParticipants(ctx, s.db, matchID)
}

func (s *VoteStore) GetParticipantsTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) ([]uuid.UUID, error) {
	return s.getParticipants(ctx, tx, matchID)
}

func (s *VoteStore) getParticipants(ctx context.Context, q sqlx.QueryerContext, matchID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := sqlx.SelectContext(ctx, q, &ids, "SELECT player_id FROM vote_participants WHERE match_id = ? ORDER BY player_id", matchID)
	return ids, err
}

func (s *VoteStore) HasVotedTx(ctx context.Context, tx *sqlx.Tx, matchID, voterID uuid.UUID) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM votes WHERE match_id = ? AND voter_id = ?", matchID, voterID)
	return count > 0, err
}

func (s *VoteStore) InsertBallotTx(ctx context.Context, tx *sqlx.Tx, matchID, voterID uuid.UUID, ballot league.Ballot) error {
	votes := make([]league.Vote, 0, len(ballot))
	for _, e := range ballot {
		votes = append(votes, league.Vote{
			MatchID:     matchID,
			VoterID:     voterID,
			CandidateID: e.CandidateID,
			Points:      e.Points,
		})
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO votes (match_id, voter_id, candidate_id, points)
		VALUES (:match_id, :voter_id, :candidate_id, :points)`, votes)
	return err
}

func (s *VoteStore) CountVotersTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, countVotersQuery, matchID)
	return count, err
}

func (s *VoteStore) CountVoters(ctx context.Context, matchID uuid.UUID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, countVotersQuery, matchID)
	return count, err
}

func (s *VoteStore) GetVotes(ctx context.Context, matchID uuid.UUID) ([]league.Vote, error) {
	var votes []league.Vote
	err := s.db.SelectContext(ctx, &votes, "SELECT * FROM votes WHERE match_id = ? ORDER BY voter_id, points DESC", matchID)
	return votes, err
}

func (s *VoteStore) DeleteCompetitionWindowsTx(ctx context.Context, tx *sqlx.Tx, competitionID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, deleteCompetitionWindowsQuery, competitionID)
	return err
}
