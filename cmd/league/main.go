// Command league runs an amateur league from the command line.
//
// Usage:
//
//	league migrate
//	league competition create --name "Sunday League" --team Lions --team Harts --team Rovers
//	league match complete <match-id>
//	league vote cast <match-id> <voter-id> <player>:3 <player>:2 <player>:1
//	league vote daemon --interval 1h
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/itbasis/go-clock"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AdamBeresnev/op-league/internal/config"
	"github.com/AdamBeresnev/op-league/internal/db"
	"github.com/AdamBeresnev/op-league/internal/service"
	"github.com/AdamBeresnev/op-league/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	root := &cobra.Command{
		Use:           "league",
		Short:         "Fixtures, standings and man of the match voting for amateur leagues",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(competitionCmd())
	root.AddCommand(matchCmd())
	root.AddCommand(voteCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

type app struct {
	cfg          *config.Config
	db           *sqlx.DB
	competitions *service.CompetitionService
	matches      *service.MatchService
	voting       *service.VotingService
	ledger       *service.StandingsLedger
}

// run loads the config, opens the migrated database and hands the wired
// services to fn. Interrupts cancel the context.
func run(fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		return err
	}

	competitionStore := store.NewCompetitionStore(database)
	standingsStore := store.NewStandingsStore(database)
	voteStore := store.NewVoteStore(database)
	ledger := service.NewStandingsLedger(standingsStore, competitionStore)

	return fn(ctx, &app{
		cfg:          cfg,
		db:           database,
		competitions: service.NewCompetitionService(database, competitionStore, voteStore, ledger),
		matches:      service.NewMatchService(database, competitionStore, ledger),
		voting:       service.NewVotingService(database, voteStore, competitionStore, clock.New()),
		ledger:       ledger,
	})
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				fmt.Fprintf(cmd.OutOrStdout(), "database %s is up to date\n", a.cfg.DBPath)
				return nil
			})
		},
	}
}
