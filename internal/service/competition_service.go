package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/AdamBeresnev/op-league/internal/schedule"
	"github.com/AdamBeresnev/op-league/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CompetitionService struct {
	db     *sqlx.DB
	store  *store.CompetitionStore
	votes  *store.VoteStore
	ledger *StandingsLedger
}

func NewCompetitionService(db *sqlx.DB, store *store.CompetitionStore, votes *store.VoteStore, ledger *StandingsLedger) *CompetitionService {
	return &CompetitionService{db: db, store: store, votes: votes, ledger: ledger}
}

type TeamInput struct {
	// ID is optional; a fresh one is assigned when nil.
	ID   uuid.UUID
	Name string
}

type CompetitionInput struct {
	Name             string
	Teams            []TeamInput
	DoubleRound      bool
	VotingEnabled    bool
	VotingPeriodDays int
}

type CompetitionData struct {
	Competition *league.Competition
	Teams       []league.Team
	Matches     []league.Match
	NextMatchID *uuid.UUID
}

func (s *CompetitionService) GetCompetitionData(ctx context.Context, id uuid.UUID) (*CompetitionData, error) {
	competition, err := s.store.GetCompetition(ctx, id)
	if err != nil {
		return nil, err
	}

	teams, err := s.store.GetTeams(ctx, id)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.GetMatches(ctx, id)
	if err != nil {
		return nil, err
	}

	var nextMatchID *uuid.UUID
	for _, m := range matches {
		if !m.IsCompleted {
			id := m.ID
			nextMatchID = &id
			break
		}
	}

	return &CompetitionData{
		Competition: competition,
		Teams:       teams,
		Matches:     matches,
		NextMatchID: nextMatchID,
	}, nil
}

func (s *CompetitionService) ListCompetitions(ctx context.Context) ([]league.Competition, error) {
	return s.store.ListCompetitions(ctx)
}

// CreateCompetition stores the competition, its teams with zeroed records
// and the full round robin schedule in one go.
func (s *CompetitionService) CreateCompetition(ctx context.Context, input CompetitionInput) (uuid.UUID, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("%w: competition needs a name", league.ErrInvalidTeamSet)
	}
	if input.VotingEnabled && input.VotingPeriodDays < 1 {
		return uuid.Nil, fmt.Errorf("%w: period must be at least one day, got %d", league.ErrInvalidVotingSettings, input.VotingPeriodDays)
	}

	teams := make([]league.Team, 0, len(input.Teams))
	for _, t := range input.Teams {
		teamName := strings.TrimSpace(t.Name)
		if teamName == "" {
			return uuid.Nil, fmt.Errorf("%w: team without a name", league.ErrInvalidTeamSet)
		}
		id := t.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		teams = append(teams, league.Team{ID: id, Name: teamName})
	}

	rounds, err := schedule.Generate(teams, input.DoubleRound, nil)
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	competitionID := uuid.New()
	competition := league.Competition{
		ID:               competitionID,
		Name:             name,
		Status:           league.CompetitionStarted,
		DoubleRound:      input.DoubleRound,
		VotingEnabled:    input.VotingEnabled,
		VotingPeriodDays: input.VotingPeriodDays,
	}
	if err := s.store.CreateCompetition(ctx, tx, &competition); err != nil {
		return uuid.Nil, err
	}

	if err := s.store.CreateTeams(ctx, tx, teams); err != nil {
		return uuid.Nil, err
	}

	teamIDs := make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		teamIDs = append(teamIDs, t.ID)
	}
	if err := s.ledger.OpenRecordsTx(ctx, tx, competitionID, teamIDs); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create standings records: %w", err)
	}

	var matches []league.Match
	for _, round := range rounds {
		for i, f := range round {
			home, away := f.HomeTeam.ID, f.AwayTeam.ID
			matches = append(matches, league.Match{
				ID:            uuid.New(),
				CompetitionID: competitionID,
				RoundNumber:   f.Round,
				MatchOrder:    i + 1,
				HomeTeamID:    &home,
				AwayTeamID:    &away,
			})
		}
	}

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	slog.Info("competition created",
		"competition_id", competitionID,
		"teams", len(teams),
		"rounds", len(rounds),
		"matches", len(matches),
	)
	return competitionID, nil
}

// ResetCompetition puts every match back to unplayed and zeroes the table.
// Dates and players stay, votes are thrown away.
func (s *CompetitionService) ResetCompetition(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.store.GetCompetitionTx(ctx, tx, id); err != nil {
		return err
	}

	if err := s.votes.DeleteCompetitionWindowsTx(ctx, tx, id); err != nil {
		return fmt.Errorf("failed to delete voting windows: %w", err)
	}
	if err := s.store.ResetMatchesTx(ctx, tx, id); err != nil {
		return fmt.Errorf("failed to reset matches: %w", err)
	}
	if err := s.ledger.ResetAll(ctx, tx, id); err != nil {
		return fmt.Errorf("failed to reset standings: %w", err)
	}
	if err := s.store.UpdateCompetitionStatusTx(ctx, tx, id, league.CompetitionStarted); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("competition reset", "competition_id", id)
	return nil
}

// RemoveTeam takes a team out of the competition together with its record and
// unplayed fixtures. Teams that already have results cannot leave.
func (s *CompetitionService) RemoveTeam(ctx context.Context, competitionID, teamID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	played, err := s.store.CountCompletedMatchesTx(ctx, tx, competitionID, teamID)
	if err != nil {
		return err
	}
	if played > 0 {
		return fmt.Errorf("%w: %d completed", league.ErrTeamHasResults, played)
	}

	removed, err := s.store.DeletePendingTeamMatchesTx(ctx, tx, competitionID, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete fixtures: %w", err)
	}

	ok, err := s.ledger.DropRecordTx(ctx, tx, teamID, competitionID)
	if err != nil {
		return fmt.Errorf("failed to delete standings record: %w", err)
	}
	if !ok {
		return fmt.Errorf("team %s in competition %s: %w", teamID, competitionID, sql.ErrNoRows)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("team removed", "competition_id", competitionID, "team_id", teamID, "fixtures_dropped", removed)
	return nil
}

func (s *CompetitionService) DeleteCompetition(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.store.GetCompetitionTx(ctx, tx, id); err != nil {
		return err
	}
	if err := s.store.DeleteCompetitionTx(ctx, tx, id); err != nil {
		return err
	}

	return tx.Commit()
}
