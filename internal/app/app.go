// Package app wires the game services together for the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/fantasy/config"
	"github.com/DhavalSuthar-24/fantasy/internal/gameweek"
	"github.com/DhavalSuthar-24/fantasy/internal/leaderboard"
	"github.com/DhavalSuthar-24/fantasy/internal/market"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
	"github.com/DhavalSuthar-24/fantasy/internal/scoring"
	"github.com/DhavalSuthar-24/fantasy/internal/squad"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
	"github.com/DhavalSuthar-24/fantasy/internal/storage/gormstore"
	"github.com/DhavalSuthar-24/fantasy/internal/storage/memory"
	"github.com/DhavalSuthar-24/fantasy/internal/transfer"
)

type App struct {
	Config *config.Config
	Log    *logrus.Logger
	Rules  rules.Rules
	Store  storage.Store

	Scoring     *scoring.Service
	Gameweeks   *gameweek.Service
	Squads      *squad.Service
	Transfers   *transfer.Ledger
	Market      *market.Service
	Leaderboard *leaderboard.Service

	db *gorm.DB
}

// Open picks the store for the configured driver. db is used only with postgres.
func Open(cfg *config.Config, db *gorm.DB) (storage.Store, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres driver selected but no database connection")
		}
		return gormstore.New(db), nil
	}
	return nil, fmt.Errorf("unknown DB driver %q", cfg.DB.Driver)
}

// New loads the rules file and builds every service over store.
func New(cfg *config.Config, store storage.Store, db *gorm.DB, log *logrus.Logger) (*App, error) {
	r, err := rules.Load(cfg.Game.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return Build(cfg, store, db, r, log), nil
}

// Build wires services with an explicit rule set.
func Build(cfg *config.Config, store storage.Store, db *gorm.DB, r rules.Rules, log *logrus.Logger) *App {
	retries := cfg.Game.TxMaxRetries
	sc := scoring.NewService(store, r, log, scoring.Options{
		Workers: cfg.Game.RecomputeWorkers,
		Retries: retries,
	})
	return &App{
		Config:      cfg,
		Log:         log,
		Rules:       r,
		Store:       store,
		Scoring:     sc,
		Gameweeks:   gameweek.NewService(store, r, sc, log, gameweek.Options{Retries: retries}),
		Squads:      squad.NewService(store, r, sc, log, retries),
		Transfers:   transfer.NewLedger(store, r, sc, log, retries),
		Market:      market.NewService(store, log, retries),
		Leaderboard: leaderboard.NewService(store),
		db:          db,
	}
}

// Migrate creates the schema on postgres and seeds positions and scoring rules.
func (a *App) Migrate(ctx context.Context) error {
	if a.db != nil {
		if err := gormstore.Migrate(a.db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := a.Store.EnsurePositions(ctx); err != nil {
		return fmt.Errorf("seed positions: %w", err)
	}
	seeded, err := a.Scoring.SeedRules(ctx)
	if err != nil {
		return err
	}
	a.Log.WithField("scoring_rules", seeded).Info("schema ready")
	return nil
}
