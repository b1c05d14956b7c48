package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/AdamBeresnev/op-league/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MatchService moves matches through result entry, completion and correction,
// keeping the standings ledger in step.
type MatchService struct {
	db     *sqlx.DB
	store  *store.CompetitionStore
	ledger *StandingsLedger
}

func NewMatchService(db *sqlx.DB, store *store.CompetitionStore, ledger *StandingsLedger) *MatchService {
	return &MatchService{db: db, store: store, ledger: ledger}
}

type MatchData struct {
	Match   *league.Match
	Players []league.MatchPlayer
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*MatchData, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	players, err := s.store.GetMatchPlayers(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match players: %w", err)
	}

	return &MatchData{Match: match, Players: players}, nil
}

func (s *MatchService) ListMatches(ctx context.Context, competitionID uuid.UUID) ([]league.Match, error) {
	return s.store.GetMatches(ctx, competitionID)
}

func (s *MatchService) ScheduleMatch(ctx context.Context, matchID uuid.UUID, date time.Time) error {
	return s.store.SetMatchDate(ctx, matchID, date)
}

func (s *MatchService) AddMatchPlayer(ctx context.Context, matchID, teamID, playerID uuid.UUID) error {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if !match.Involves(teamID) {
		return fmt.Errorf("%w: team %s, match %s", league.ErrTeamNotInMatch, teamID, matchID)
	}

	return s.store.AddMatchPlayer(ctx, league.MatchPlayer{MatchID: matchID, PlayerID: playerID, TeamID: teamID})
}

// RecordScore sets the score of a match that has not been completed. Once a
// match is completed its score only changes through CorrectCompletedMatch.
func (s *MatchService) RecordScore(ctx context.Context, matchID uuid.UUID, homeScore, awayScore int) error {
	if homeScore < 0 || awayScore < 0 {
		return fmt.Errorf("%w: got %d-%d", league.ErrInvalidScore, homeScore, awayScore)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.store.GetMatchTx(ctx, tx, matchID); err != nil {
		return err
	}

	ok, err := s.store.SetScoreTx(ctx, tx, matchID, homeScore, awayScore)
	if err != nil {
		return fmt.Errorf("failed to record score: %w", err)
	}
	if !ok {
		return league.ErrMatchAlreadyCompleted
	}

	return tx.Commit()
}

// CompleteMatch marks the match completed and books the result into both
// teams' records. Either all of it lands or none of it does.
func (s *MatchService) CompleteMatch(ctx context.Context, matchID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return err
	}
	if match.IsCompleted {
		return league.ErrMatchAlreadyCompleted
	}

	players, err := s.store.GetMatchPlayersTx(ctx, tx, matchID)
	if err != nil {
		return fmt.Errorf("failed to get match players: %w", err)
	}
	if err := match.CheckReady(players); err != nil {
		return err
	}

	ok, err := s.store.MarkCompletedTx(ctx, tx, matchID)
	if err != nil {
		return fmt.Errorf("failed to complete match: %w", err)
	}
	if !ok {
		return league.ErrMatchAlreadyCompleted
	}

	homeDelta, awayDelta := league.ResultDeltas(match.HomeScore, match.AwayScore)
	if err := s.applyBoth(ctx, tx, match, homeDelta, awayDelta); err != nil {
		return err
	}

	if err := s.finishCompetitionIfDone(ctx, tx, match.CompetitionID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("match completed",
		"match_id", matchID,
		"competition_id", match.CompetitionID,
		"score", fmt.Sprintf("%d-%d", match.HomeScore, match.AwayScore),
	)
	return nil
}

// CorrectCompletedMatch changes the score of a completed match. Only the
// difference between the old and the new result is booked, so nothing has to
// be replayed.
func (s *MatchService) CorrectCompletedMatch(ctx context.Context, matchID uuid.UUID, homeScore, awayScore int) error {
	if homeScore < 0 || awayScore < 0 {
		return fmt.Errorf("%w: got %d-%d", league.ErrInvalidScore, homeScore, awayScore)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return err
	}
	if !match.IsCompleted {
		return league.ErrMatchNotCompleted
	}
	if match.HomeScore == homeScore && match.AwayScore == awayScore {
		return nil
	}

	homeDelta, awayDelta := league.CorrectionDeltas(match.HomeScore, match.AwayScore, homeScore, awayScore)
	if err := s.applyBoth(ctx, tx, match, homeDelta, awayDelta); err != nil {
		return err
	}

	ok, err := s.store.CorrectScoreTx(ctx, tx, matchID, match.HomeScore, match.AwayScore, homeScore, awayScore)
	if err != nil {
		return fmt.Errorf("failed to correct score: %w", err)
	}
	if !ok {
		return league.ErrStaleMatch
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("match corrected",
		"match_id", matchID,
		"competition_id", match.CompetitionID,
		"old_score", fmt.Sprintf("%d-%d", match.HomeScore, match.AwayScore),
		"new_score", fmt.Sprintf("%d-%d", homeScore, awayScore),
	)
	return nil
}

func (s *MatchService) applyBoth(ctx context.Context, tx *sqlx.Tx, match *league.Match, homeDelta, awayDelta league.StatsDelta) error {
	if match.HomeTeamID == nil || match.AwayTeamID == nil {
		return fmt.Errorf("%w: teams not assigned", league.ErrMatchNotReady)
	}
	if err := s.ledger.ApplyDelta(ctx, tx, *match.HomeTeamID, match.CompetitionID, homeDelta); err != nil {
		return fmt.Errorf("failed to update home standings: %w", err)
	}
	if err := s.ledger.ApplyDelta(ctx, tx, *match.AwayTeamID, match.CompetitionID, awayDelta); err != nil {
		return fmt.Errorf("failed to update away standings: %w", err)
	}
	return nil
}

// finishCompetitionIfDone marks the competition completed once no match is left to play
func (s *MatchService) finishCompetitionIfDone(ctx context.Context, tx *sqlx.Tx, competitionID uuid.UUID) error {
	matches, err := s.store.GetMatchesTx(ctx, tx, competitionID)
	if err != nil {
		return fmt.Errorf("failed to get matches: %w", err)
	}
	for _, m := range matches {
		if !m.IsCompleted {
			return nil
		}
	}

	if err := s.store.UpdateCompetitionStatusTx(ctx, tx, competitionID, league.CompetitionCompleted); err != nil {
		return fmt.Errorf("failed to update competition status: %w", err)
	}
	return nil
}
