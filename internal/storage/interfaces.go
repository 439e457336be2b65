package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

// ErrConflict reports that a transaction lost a race and may be retried.
var ErrConflict = errors.New("storage: concurrent update conflict")

// ErrDuplicate reports a unique key violation.
var ErrDuplicate = errors.New("storage: duplicate key")

// Lookups return (nil, nil) when the row does not exist.

// GameweekStore persists gameweeks and their fixtures.
type GameweekStore interface {
	CreateGameweek(ctx context.Context, gw *models.Gameweek) error
	GetGameweek(ctx context.Context, id uint) (*models.Gameweek, error)
	GetGameweekByNumber(ctx context.Context, number int) (*models.Gameweek, error)
	ListGameweeks(ctx context.Context) ([]models.Gameweek, error)
	// LatestGameweek returns the highest-numbered gameweek in any of the phases.
	LatestGameweek(ctx context.Context, phases ...models.Phase) (*models.Gameweek, error)
	// OldestGameweek returns the lowest-numbered gameweek in the phase.
	OldestGameweek(ctx context.Context, phase models.Phase) (*models.Gameweek, error)
	// NextGameweek returns the lowest-numbered gameweek after number.
	NextGameweek(ctx context.Context, number int) (*models.Gameweek, error)
	// LockGameweeks takes row locks on every gameweek until the transaction ends.
	LockGameweeks(ctx context.Context) error
	UpdateGameweekPhase(ctx context.Context, id uint, phase models.Phase, at time.Time) error

	CreateFixture(ctx context.Context, f *models.Fixture) error
	GetFixture(ctx context.Context, id uint) (*models.Fixture, error)
	ListFixtures(ctx context.Context, gameweekID uint) ([]models.Fixture, error)
	UpdateFixtureScore(ctx context.Context, id uint, home, away int, at time.Time) error
	// KickoffWindow returns the first and last kickoff of a gameweek; ok is false without fixtures.
	KickoffWindow(ctx context.Context, gameweekID uint) (first, last time.Time, ok bool, err error)
}

// PlayerFilter narrows ListPlayers.
type PlayerFilter struct {
	TeamID     uint
	PositionID models.PositionID
	Page       int
	Limit      int
}

// RosterStore persists teams, players and managers.
type RosterStore interface {
	EnsurePositions(ctx context.Context) error
	CreateTeam(ctx context.Context, team *models.Team) error
	GetTeam(ctx context.Context, id uint) (*models.Team, error)
	ListTeamsByIDs(ctx context.Context, ids []uint) ([]models.Team, error)
	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayer(ctx context.Context, id uint) (*models.Player, error)
	ListPlayersByIDs(ctx context.Context, ids []uint) ([]models.Player, error)
	ListPlayers(ctx context.Context, filter PlayerFilter) ([]models.Player, int64, error)
	CreateManager(ctx context.Context, m *models.Manager) error
	GetManager(ctx context.Context, id uint) (*models.Manager, error)
	ListManagersByIDs(ctx context.Context, ids []uint) ([]models.Manager, error)
	// LockManager reads the manager under a row lock held until the transaction ends.
	LockManager(ctx context.Context, id uint) (*models.Manager, error)
	UpdateManagerWallet(ctx context.Context, id uint, wallet decimal.Decimal) error
	ListManagerIDs(ctx context.Context) ([]uint, error)
}

// SquadStore persists squads and per-gameweek manager state.
type SquadStore interface {
	ListSquad(ctx context.Context, managerID, gameweekID uint) ([]models.SquadEntry, error)
	ReplaceSquad(ctx context.Context, managerID, gameweekID uint, entries []models.SquadEntry) error
	UpdateSquadEntry(ctx context.Context, entry models.SquadEntry) error
	SwapSquadPlayer(ctx context.Context, managerID, gameweekID, outID, inID uint) error
	ListGameweekSquads(ctx context.Context, gameweekID uint) ([]models.SquadEntry, error)
	ListManagersHoldingPlayer(ctx context.Context, playerID, gameweekID uint) ([]uint, error)
	ListManagersWithSquad(ctx context.Context, gameweekID uint) ([]uint, error)

	GetManagerState(ctx context.Context, managerID, gameweekID uint) (*models.ManagerGameweekState, error)
	SaveManagerState(ctx context.Context, state *models.ManagerGameweekState) error
	ListManagerStates(ctx context.Context, gameweekID uint) ([]models.ManagerGameweekState, error)
	// SumManagerPoints totals total_gw_points per manager over gameweeks numbered <= maxNumber.
	SumManagerPoints(ctx context.Context, maxNumber int) (map[uint]int, error)
}

// LedgerStore persists transfers and per-gameweek prices.
type LedgerStore interface {
	CreateTransfer(ctx context.Context, t *models.Transfer) error
	// ListTransfers returns a manager's transfers, newest first; gameweekID 0 means all.
	ListTransfers(ctx context.Context, managerID, gameweekID uint) ([]models.Transfer, error)
	ListGameweekTransfers(ctx context.Context, gameweekID uint) ([]models.Transfer, error)
	GetPlayerPrice(ctx context.Context, playerID, gameweekID uint) (*models.PlayerPrice, error)
	SavePlayerPrice(ctx context.Context, price *models.PlayerPrice) error
}

// StatStore persists player statistics and the scoring table.
type StatStore interface {
	GetPlayerStat(ctx context.Context, playerID, gameweekID uint) (*models.PlayerStat, error)
	SavePlayerStat(ctx context.Context, stat *models.PlayerStat) error
	// ListPlayerStats returns stats for the gameweek; nil playerIDs means every player.
	ListPlayerStats(ctx context.Context, gameweekID uint, playerIDs []uint) ([]models.PlayerStat, error)
	ListScoringRules(ctx context.Context) ([]models.ScoringRule, error)
	SaveScoringRule(ctx context.Context, rule *models.ScoringRule) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	GameweekStore
	RosterStore
	SquadStore
	LedgerStore
	StatStore

	// WithTransaction runs fn against a transaction-scoped Store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}
