package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/AdamBeresnev/op-league/internal/service"
)

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Enter and correct match results",
	}
	cmd.AddCommand(matchDateCmd())
	cmd.AddCommand(matchPlayerCmd())
	cmd.AddCommand(matchScoreCmd())
	cmd.AddCommand(matchCompleteCmd())
	cmd.AddCommand(matchCorrectCmd())
	return cmd
}

func matchDateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "date <match-id> <RFC3339 time>",
		Short: "Set when a match is played",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("match", args[0])
			if err != nil {
				return err
			}
			date, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", args[1], err)
			}
			return run(func(ctx context.Context, a *app) error {
				return a.matches.ScheduleMatch(ctx, id, date)
			})
		},
	}
}

func matchPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <match-id> <team-id> <player-id>",
		Short: "Put a player on a team's sheet for the match",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			matchID, err := parseID("match", args[0])
			if err != nil {
				return err
			}
			teamID, err := parseID("team", args[1])
			if err != nil {
				return err
			}
			playerID, err := parseID("player", args[2])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app) error {
				return a.matches.AddMatchPlayer(ctx, matchID, teamID, playerID)
			})
		},
	}
}

func matchScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <match-id> <home> <away>",
		Short: "Record the score of a match that is still open",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, home, away, err := parseScoreArgs(args)
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app) error {
				return a.matches.RecordScore(ctx, id, home, away)
			})
		},
	}
}

func matchCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <match-id>",
		Short: "Complete a match and book its result into the standings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("match", args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app) error {
				if err := a.matches.CompleteMatch(ctx, id); err != nil {
					return err
				}
				return openVoting(ctx, a, id)
			})
		},
	}
}

// openVoting starts the man of the match vote when the competition asks for
// one and hands the participants over for notification.
func openVoting(ctx context.Context, a *app, matchID uuid.UUID) error {
	data, err := a.matches.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}

	competition, err := a.competitions.GetCompetitionData(ctx, data.Match.CompetitionID)
	if err != nil {
		return err
	}
	if !competition.Competition.VotingEnabled {
		return nil
	}

	participants := make([]uuid.UUID, 0, len(data.Players))
	for _, p := range data.Players {
		participants = append(participants, p.PlayerID)
	}

	window, err := a.voting.OpenWindow(ctx, service.OpenWindowInput{
		MatchID:        matchID,
		ParticipantIDs: participants,
		Settings: service.VotingSettings{
			Enabled:    true,
			PeriodDays: competition.Competition.VotingPeriodDays,
		},
		OpensWithMatch: true,
	})
	if errors.Is(err, league.ErrMatchNotReady) {
		slog.Warn("voting not opened", "match_id", matchID, "error", err)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("notify participants",
		"match_id", matchID,
		"participants", len(participants),
		"ends_at", window.EndsAt,
	)
	return nil
}

func matchCorrectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "correct <match-id> <home> <away>",
		Short: "Change the result of a completed match",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, home, away, err := parseScoreArgs(args)
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app) error {
				return a.matches.CorrectCompletedMatch(ctx, id, home, away)
			})
		},
	}
}

func parseScoreArgs(args []string) (uuid.UUID, int, int, error) {
	id, err := parseID("match", args[0])
	if err != nil {
		return uuid.Nil, 0, 0, err
	}
	home, err := strconv.Atoi(args[1])
	if err != nil {
		return uuid.Nil, 0, 0, fmt.Errorf("invalid home score %q: %w", args[1], err)
	}
	away, err := strconv.Atoi(args[2])
	if err != nil {
		return uuid.Nil, 0, 0, fmt.Errorf("invalid away score %q: %w", args[2], err)
	}
	return id, home, away, nil
}
