package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/AdamBeresnev/op-league/internal/league"
)

func voteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Man of the match voting",
	}
	cmd.AddCommand(voteCastCmd())
	cmd.AddCommand(voteRatingsCmd())
	cmd.AddCommand(voteSweepCmd())
	cmd.AddCommand(voteDaemonCmd())
	return cmd
}

func voteCastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cast <match-id> <voter-id> <player-id>:<points> x3",
		Short: "Cast a 3-2-1 ballot",
		Args:  cobra.ExactArgs(2 + league.BallotSize),
		RunE: func(cmd *cobra.Command, args []string) error {
			matchID, err := parseID("match", args[0])
			if err != nil {
				return err
			}
			voterID, err := parseID("voter", args[1])
			if err != nil {
				return err
			}
			ballot, err := parseBallot(args[2:])
			if err != nil {
				return err
			}

			return run(func(ctx context.Context, a *app) error {
				status, err := a.voting.CastVote(ctx, matchID, voterID, ballot)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ballot recorded, voting is %s\n", status)
				return nil
			})
		},
	}
}

func parseBallot(picks []string) (league.Ballot, error) {
	ballot := make(league.Ballot, 0, len(picks))
	for _, pick := range picks {
		rawID, rawPoints, ok := strings.Cut(pick, ":")
		if !ok {
			return nil, fmt.Errorf("invalid pick %q, want <player-id>:<points>", pick)
		}
		id, err := parseID("player", rawID)
		if err != nil {
			return nil, err
		}
		points, err := strconv.Atoi(rawPoints)
		if err != nil {
			return nil, fmt.Errorf("invalid points in %q: %w", pick, err)
		}
		ballot = append(ballot, league.BallotEntry{CandidateID: id, Points: points})
	}
	return ballot, nil
}

func voteRatingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratings <match-id>",
		Short: "Show the voting table for a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matchID, err := parseID("match", args[0])
			if err != nil {
				return err
			}

			return run(func(ctx context.Context, a *app) error {
				window, err := a.voting.GetWindow(ctx, matchID)
				if err != nil {
					return err
				}
				ratings, err := a.voting.MatchRatings(ctx, matchID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "voting %s", window.Status)
				if window.EndsAt != nil {
					fmt.Fprintf(out, ", deadline %s", window.EndsAt.Local().Format(time.DateTime))
				}
				fmt.Fprint(out, "\n\n")

				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "#\tPLAYER\tRATING")
				for i, r := range ratings {
					fmt.Fprintf(w, "%d\t%s\t%.2f\n", i+1, r.PlayerID, r.Rating)
				}
				return w.Flush()
			})
		},
	}
}

func voteSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Close every voting window past its deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				closed, err := a.voting.SweepDue(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "closed %d voting window(s)\n", closed)
				return nil
			})
		},
	}
}

func voteDaemonCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Sweep expired voting windows on a schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				every := interval
				if every <= 0 {
					every = a.cfg.SweepInterval
				}

				if _, err := a.voting.SweepDue(ctx); err != nil {
					slog.Error("voting sweep failed", "error", err)
				}

				slog.Info("voting sweep daemon started", "interval", every)
				a.voting.RunPeriodicSweep(ctx, every)
				slog.Info("voting sweep daemon stopped")
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between sweeps, defaults to LEAGUE_SWEEP_INTERVAL")
	return cmd
}
