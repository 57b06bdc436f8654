// Command seed creates the demo account from DEMO_USER_EMAIL and
// DEMO_USER_PASSWORD and, when ROSTER_FILE is set, gives it a starting roster.
// Running it again changes nothing.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/daap14/nextup/internal/auth"
	"github.com/daap14/nextup/internal/config"
	"github.com/daap14/nextup/internal/database"
	"github.com/daap14/nextup/internal/team"
)

func main() {
	cfg, err := config.LoadSeed()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if cfg.DemoUserEmail == "" || cfg.DemoUserPassword == "" {
		slog.Info("DEMO_USER_EMAIL and DEMO_USER_PASSWORD not set; skipping seed")
		return
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, db); err != nil {
		slog.Error("seed failed", "error", err)
		db.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Seed, db *database.DB) error {
	authService := auth.NewService(auth.NewRepository(db.Pool()), nil, cfg.BcryptCost)

	account, created, err := authService.BootstrapDemoAccount(ctx, cfg.DemoUserEmail, cfg.DemoUserPassword)
	if err != nil {
		return err
	}
	if !created {
		slog.Info("demo account already exists", "email", account.Email)
	}

	if cfg.RosterFile == "" {
		return nil
	}

	entries, err := team.LoadRoster(cfg.RosterFile)
	if err != nil {
		return err
	}

	return seedRoster(ctx, team.NewRepository(db.Pool()), account, entries)
}

// seedRoster adds the roster only to an account without teams.
func seedRoster(ctx context.Context, repo team.Repository, account *auth.Account, entries []team.RosterEntry) error {
	existing, err := repo.ListIDs(ctx, account.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("account already has teams; skipping roster", "email", account.Email, "teams", len(existing))
		return nil
	}

	for _, e := range entries {
		t := &team.Team{
			AccountID: account.ID,
			Name:      e.Name,
			Topic:     e.Topic,
			Members:   e.Members,
		}
		if err := repo.Create(ctx, t); err != nil {
			return err
		}
	}

	slog.Info("seeded roster", "email", account.Email, "teams", len(entries))
	return nil
}
