package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AdamBeresnev/op-league/internal/service"
	"github.com/AdamBeresnev/op-league/internal/utils"
)

func competitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "competition",
		Short: "Create and manage competitions",
	}
	cmd.AddCommand(competitionCreateCmd())
	cmd.AddCommand(competitionListCmd())
	cmd.AddCommand(competitionShowCmd())
	cmd.AddCommand(competitionStandingsCmd())
	cmd.AddCommand(competitionResetCmd())
	cmd.AddCommand(competitionRemoveTeamCmd())
	cmd.AddCommand(competitionDeleteCmd())
	return cmd
}

func competitionCreateCmd() *cobra.Command {
	var (
		name        string
		teams       []string
		doubleRound bool
		voting      bool
		votingDays  int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a competition and schedule its round robin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				inputs := make([]service.TeamInput, 0, len(teams))
				for _, t := range teams {
					inputs = append(inputs, service.TeamInput{Name: t})
				}

				id, err := a.competitions.CreateCompetition(ctx, service.CompetitionInput{
					Name:             name,
					Teams:            inputs,
					DoubleRound:      doubleRound,
					VotingEnabled:    voting,
					VotingPeriodDays: votingDays,
				})
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Competition name")
	cmd.Flags().StringArrayVar(&teams, "team", nil, "Team name, repeat for every team")
	cmd.Flags().BoolVar(&doubleRound, "double", false, "Play every pairing home and away")
	cmd.Flags().BoolVar(&voting, "voting", false, "Open man of the match voting after each match")
	cmd.Flags().IntVar(&votingDays, "voting-days", 3, "Days a voting window stays open")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func competitionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List competitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				competitions, err := a.competitions.ListCompetitions(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tSTATUS\tVOTING")
				for _, c := range competitions {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", c.ID, c.Name, c.Status, c.VotingEnabled)
				}
				return w.Flush()
			})
		},
	}
}

func competitionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <competition-id>",
		Short: "Show the schedule and results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("competition", args[0])
			if err != nil {
				return err
			}

			return run(func(ctx context.Context, a *app) error {
				data, err := a.competitions.GetCompetitionData(ctx, id)
				if err != nil {
					return err
				}

				names := make(map[uuid.UUID]string, len(data.Teams))
				for _, t := range data.Teams {
					names[t.ID] = t.Name
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n\n", data.Competition.Name, data.Competition.Status)

				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ROUND\tMATCH\tHOME\tAWAY\tSCORE\tDATE")
				for _, m := range data.Matches {
					score := "-"
					if m.IsCompleted {
						score = fmt.Sprintf("%d-%d", m.HomeScore, m.AwayScore)
					}
					date := "tbd"
					if d := utils.OrZero(m.MatchDate); !d.IsZero() {
						date = d.Format("2006-01-02 15:04")
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
						m.RoundNumber, m.ID,
						names[utils.OrZero(m.HomeTeamID)], names[utils.OrZero(m.AwayTeamID)],
						score, date)
				}
				return w.Flush()
			})
		},
	}
}

func competitionStandingsCmd() *cobra.Command {
	var audit bool
	cmd := &cobra.Command{
		Use:   "standings <competition-id>",
		Short: "Print the league table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("competition", args[0])
			if err != nil {
				return err
			}

			return run(func(ctx context.Context, a *app) error {
				rows, err := a.ledger.Standings(ctx, id)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(w, "#\tTEAM\tP\tW\tD\tL\tGF\tGA\tGD\tPTS\t")
				for _, r := range rows {
					rec := r.Record
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\t\n",
						r.Position, r.Team.Name, rec.Played(), rec.Wins, rec.Draws, rec.Losses,
						rec.GoalsFor, rec.GoalsAgainst, rec.GoalDifference(), rec.Points)
				}
				if err := w.Flush(); err != nil {
					return err
				}

				if !audit {
					return nil
				}
				drift, err := a.ledger.Audit(ctx, id)
				if err != nil {
					return err
				}
				if len(drift) > 0 {
					return fmt.Errorf("standings drift on %d team(s)", len(drift))
				}
				fmt.Fprintln(cmd.OutOrStdout(), "\naudit: standings match the results")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&audit, "audit", false, "Rebuild the table from results and compare")
	return cmd
}

func competitionResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <competition-id>",
		Short: "Clear every result and vote, keeping the schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("competition", args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app) error {
				return a.competitions.ResetCompetition(ctx, id)
			})
		},
	}
}

func competitionRemoveTeamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-team <competition-id> <team-id>",
		Short: "Withdraw a team that has not played yet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			competitionID, err := parseID("competition", args[0])
			if err != nil {
				return err
			}
			teamID, err := parseID("team", args[1])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app) error {
				return a.competitions.RemoveTeam(ctx, competitionID, teamID)
			})
		},
	}
}

func competitionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <competition-id>",
		Short: "Delete a competition with its matches, standings and votes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("competition", args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app) error {
				return a.competitions.DeleteCompetition(ctx, id)
			})
		},
	}
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, raw, err)
	}
	return id, nil
}
