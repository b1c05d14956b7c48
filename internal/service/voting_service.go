package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/AdamBeresnev/op-league/internal/store"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/jmoiron/sqlx"
)

type VotingService struct {
	db      *sqlx.DB
	store   *store.VoteStore
	matches *store.CompetitionStore
	clock   clock.Clock
}

func NewVotingService(db *sqlx.DB, voteStore *store.VoteStore, competitionStore *store.CompetitionStore, clock clock.Clock) *VotingService {
	return &VotingService{db: db, store: voteStore, matches: competitionStore, clock: clock}
}

type VotingSettings struct {
	Enabled    bool
	PeriodDays int
}

type OpenWindowInput struct {
	MatchID        uuid.UUID
	ParticipantIDs []uuid.UUID
	Settings       VotingSettings
	OpensWithMatch bool
}

type PlayerScore struct {
	PlayerID uuid.UUID
	Rating   float64
}

// OpenWindow starts voting on a completed, dated match. Opening a window that
// is already open hands back the existing one.
func (s *VotingService) OpenWindow(ctx context.Context, input OpenWindowInput) (*league.VoteWindow, error) {
	if !input.Settings.Enabled {
		return nil, league.ErrVotingDisabled
	}
	if input.Settings.PeriodDays < 1 {
		return nil, fmt.Errorf("%w: period must be at least one day, got %d", league.ErrInvalidVotingSettings, input.Settings.PeriodDays)
	}

	participants := dedupe(input.ParticipantIDs)
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: no participants", league.ErrInvalidVotingSettings)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	existing, err := s.store.GetWindowTx(ctx, tx, input.MatchID)
	switch {
	case err == nil:
		if existing.Status == league.VotingOpen {
			return existing, nil
		}
		return nil, league.ErrWindowAlreadyClosed
	case !errors.Is(err, league.ErrWindowNotFound):
		return nil, err
	}

	match, err := s.matches.GetMatchTx(ctx, tx, input.MatchID)
	if err != nil {
		return nil, err
	}
	if match.MatchDate == nil {
		return nil, fmt.Errorf("%w: match has no date", league.ErrMatchNotReady)
	}
	if !match.IsCompleted {
		return nil, fmt.Errorf("%w: match is not completed", league.ErrMatchNotReady)
	}

	endsAt := s.clock.Now().UTC().Add(time.Duration(input.Settings.PeriodDays) * 24 * time.Hour)
	window := &league.VoteWindow{
		MatchID:        input.MatchID,
		Status:         league.VotingOpen,
		OpensWithMatch: input.OpensWithMatch,
		EndsAt:         &endsAt,
	}
	if err := s.store.CreateWindowTx(ctx, tx, window, participants); err != nil {
		return nil, fmt.Errorf("failed to create voting window: %w", err)
	}

	created, err := s.store.GetWindowTx(ctx, tx, input.MatchID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("voting window opened",
		"match_id", input.MatchID,
		"participants", len(participants),
		"ends_at", endsAt,
	)
	return created, nil
}

// CastVote records one voter's ballot and returns the window status after
// it. The window closes as soon as every participant has voted.
func (s *VotingService) CastVote(ctx context.Context, matchID, voterID uuid.UUID, ballot league.Ballot) (league.VoteStatus, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	open, err := s.store.LockOpenWindowTx(ctx, tx, matchID)
	if err != nil {
		return "", fmt.Errorf("failed to lock voting window: %w", err)
	}

	window, err := s.store.GetWindowTx(ctx, tx, matchID)
	if err != nil {
		return "", err
	}

	now := s.clock.Now().UTC()
	if !open || !window.AcceptsVotesAt(now) {
		return window.Status, league.ErrWindowClosed
	}

	participantIDs, err := s.store.GetParticipantsTx(ctx, tx, matchID)
	if err != nil {
		return "", fmt.Errorf("failed to get participants: %w", err)
	}
	participants := make(map[uuid.UUID]bool, len(participantIDs))
	for _, id := range participantIDs {
		participants[id] = true
	}
	if !participants[voterID] {
		return window.Status, league.ErrNotAParticipant
	}

	voted, err := s.store.HasVotedTx(ctx, tx, matchID, voterID)
	if err != nil {
		return "", err
	}
	if voted {
		return window.Status, league.ErrAlreadyVoted
	}

	if err := ballot.Validate(participants); err != nil {
		return window.Status, err
	}

	if err := s.store.InsertBallotTx(ctx, tx, matchID, voterID, ballot); err != nil {
		return "", fmt.Errorf("failed to record ballot: %w", err)
	}

	voters, err := s.store.CountVotersTx(ctx, tx, matchID)
	if err != nil {
		return "", err
	}

	status := league.VotingOpen
	if voters >= len(participants) {
		closed, err := s.store.CloseWindowTx(ctx, tx, matchID, now)
		if err != nil {
			return "", fmt.Errorf("failed to close voting window: %w", err)
		}
		if closed {
			status = league.VotingClosed
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	if status == league.VotingClosed {
		slog.Info("voting window closed on quorum", "match_id", matchID, "voters", voters)
	}
	return status, nil
}

// SweepExpired closes every open window whose deadline is at or before now
// and reports how many it closed. A window closed by someone else in the
// meantime is not counted.
func (s *VotingService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	windows, err := s.store.ListOpenWindows(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list open windows: %w", err)
	}

	var (
		closed int
		errs   []error
	)
	for _, w := range windows {
		if !w.ExpiredAt(now) {
			continue
		}

		ok, err := s.store.CloseWindow(ctx, w.MatchID, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("match %s: %w", w.MatchID, err))
			continue
		}
		if ok {
			closed++
		}
	}

	if closed > 0 {
		slog.Info("swept expired voting windows", "closed", closed)
	}
	return closed, errors.Join(errs...)
}

// SweepDue runs SweepExpired at the service clock's current time.
func (s *VotingService) SweepDue(ctx context.Context) (int, error) {
	return s.SweepExpired(ctx, s.clock.Now().UTC())
}

// RunPeriodicSweep sweeps on every tick until ctx is cancelled.
func (s *VotingService) RunPeriodicSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if _, err := s.SweepDue(sweepCtx); err != nil {
				slog.Error("voting sweep failed", "error", err)
			}
			cancel()
		}
	}
}

func (s *VotingService) GetWindow(ctx context.Context, matchID uuid.UUID) (*league.VoteWindow, error) {
	return s.store.GetWindow(ctx, matchID)
}

// PlayerRating is the points a player received, averaged over the ballots
// cast and scaled by the ballot size. Zero until somebody votes.
func (s *VotingService) PlayerRating(ctx context.Context, matchID, playerID uuid.UUID) (float64, error) {
	ratings, err := s.ratings(ctx, matchID)
	if err != nil {
		return 0, err
	}
	return ratings[playerID], nil
}

// MatchRatings lists every player who received points, best first.
func (s *VotingService) MatchRatings(ctx context.Context, matchID uuid.UUID) ([]PlayerScore, error) {
	ratings, err := s.ratings(ctx, matchID)
	if err != nil {
		return nil, err
	}

	scores := make([]PlayerScore, 0, len(ratings))
	for id, r := range ratings {
		scores = append(scores, PlayerScore{PlayerID: id, Rating: r})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Rating != scores[j].Rating {
			return scores[i].Rating > scores[j].Rating
		}
		return scores[i].PlayerID.String() < scores[j].PlayerID.String()
	})
	return scores, nil
}

func (s *VotingService) ratings(ctx context.Context, matchID uuid.UUID) (map[uuid.UUID]float64, error) {
	votes, err := s.store.GetVotes(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}

	voters := make(map[uuid.UUID]bool)
	received := make(map[uuid.UUID]int)
	for _, v := range votes {
		voters[v.VoterID] = true
		received[v.CandidateID] += v.Points
	}

	ratings := make(map[uuid.UUID]float64, len(received))
	if len(voters) == 0 {
		return ratings, nil
	}
	for id, sum := range received {
		ratings[id] = float64(sum) / float64(len(voters)) * league.BallotSize
	}
	return ratings, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
