package scoring

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/metrics"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

const (
	TriggerManager  = "manager"
	TriggerStat     = "stat"
	TriggerGameweek = "gameweek"
)

type Options struct {
	Workers int
	Retries int
}

type Service struct {
	store   storage.Store
	rules   rules.Rules
	log     logrus.FieldLogger
	workers int
	retries int
}

func NewService(store storage.Store, r rules.Rules, log logrus.FieldLogger, opts Options) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	return &Service{
		store:   store,
		rules:   r,
		log:     log.WithField("component", "scoring"),
		workers: opts.Workers,
		retries: opts.Retries,
	}
}

// StatUpdate is a partial write to a player's gameweek stat line. Nil fields
// keep their stored value.
type StatUpdate struct {
	PlayerID      uint
	GameweekID    uint
	Goals         *int
	Assists       *int
	CleanSheets   *int
	YellowCards   *int
	RedCards      *int
	BonusPoints   *int
	MinutesPlayed *int
	Started       *bool
}

type StatResult struct {
	Stat     models.PlayerStat `json:"stat"`
	Affected []uint            `json:"affected_managers"`
	Summary  *RecomputeSummary `json:"recompute,omitempty"`
}

type RecomputeSummary struct {
	GameweekID uint          `json:"gameweek_id"`
	Managers   int           `json:"managers"`
	Updated    int           `json:"updated"`
	Failed     []uint        `json:"failed,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// RuleBook reads the scoring table, falling back to the configured defaults
// while the table is empty.
func (s *Service) RuleBook(ctx context.Context, tx storage.StatStore) (RuleBook, error) {
	stored, err := tx.ListScoringRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scoring rules: %w", err)
	}
	if len(stored) == 0 {
		return NewRuleBook(s.rules.ScoringRules()), nil
	}
	return NewRuleBook(stored), nil
}

// ScoringRules returns the rule rows currently in force.
func (s *Service) ScoringRules(ctx context.Context) ([]models.ScoringRule, error) {
	stored, err := s.store.ListScoringRules(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to load scoring rules", err)
	}
	if len(stored) == 0 {
		return s.rules.ScoringRules(), nil
	}
	return stored, nil
}

// SeedRules writes the configured scoring table when none is stored yet and
// reports how many rows it wrote.
func (s *Service) SeedRules(ctx context.Context) (int, error) {
	written := 0
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		written = 0
		stored, err := tx.ListScoringRules(ctx)
		if err != nil {
			return err
		}
		if len(stored) > 0 {
			return nil
		}
		for _, rule := range s.rules.ScoringRules() {
			rule := rule
			if err := tx.SaveScoringRule(ctx, &rule); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed scoring rules: %w", err)
	}
	return written, nil
}

// RecomputeInTx rebuilds a manager's gameweek aggregate inside tx. It returns
// nil when the manager has neither a squad nor a state for the gameweek.
func (s *Service) RecomputeInTx(ctx context.Context, tx storage.Store, managerID, gameweekID uint) (*models.ManagerGameweekState, error) {
	entries, err := tx.ListSquad(ctx, managerID, gameweekID)
	if err != nil {
		return nil, fmt.Errorf("list squad: %w", err)
	}
	state, err := tx.GetManagerState(ctx, managerID, gameweekID)
	if err != nil {
		return nil, fmt.Errorf("load gameweek state: %w", err)
	}
	if state == nil {
		if len(entries) == 0 {
			return nil, nil
		}
		gw, err := tx.GetGameweek(ctx, gameweekID)
		if err != nil {
			return nil, fmt.Errorf("load gameweek: %w", err)
		}
		if gw == nil {
			return nil, apperror.NotFound(apperror.CodeGameweekNotFound, "Gameweek %d not found", gameweekID)
		}
		if state, _, err = EnsureState(ctx, tx, s.rules, managerID, gw); err != nil {
			return nil, err
		}
	}

	ids := make([]uint, len(entries))
	for i, e := range entries {
		ids[i] = e.PlayerID
	}
	points := make(map[uint]int, len(entries))
	if len(ids) > 0 {
		stats, err := tx.ListPlayerStats(ctx, gameweekID, ids)
		if err != nil {
			return nil, fmt.Errorf("list player stats: %w", err)
		}
		for _, st := range stats {
			points[st.PlayerID] = st.TotalPoints
		}
	}

	score := ScoreSquad(entries, points)
	state.SquadPoints = score.SquadPoints
	state.CaptainBonus = score.CaptainBonus
	state.BenchPoints = score.BenchPoints
	state.SyncTotal()
	if err := tx.SaveManagerState(ctx, state); err != nil {
		return nil, fmt.Errorf("save gameweek state: %w", err)
	}
	return state, nil
}

// UpdateManagerGameweekPoints recomputes one manager's aggregate in its own
// transaction under the manager lock.
func (s *Service) UpdateManagerGameweekPoints(ctx context.Context, managerID, gameweekID uint) (*models.ManagerGameweekState, error) {
	return s.updateManager(ctx, managerID, gameweekID, TriggerManager)
}

func (s *Service) updateManager(ctx context.Context, managerID, gameweekID uint, trigger string) (*models.ManagerGameweekState, error) {
	start := time.Now()
	var state *models.ManagerGameweekState
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		mgr, err := tx.LockManager(ctx, managerID)
		if err != nil {
			return fmt.Errorf("lock manager: %w", err)
		}
		if mgr == nil {
			return apperror.NotFound(apperror.CodeManagerNotFound, "Manager %d not found", managerID)
		}
		state, err = s.RecomputeInTx(ctx, tx, managerID, gameweekID)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordRecompute(trigger, time.Since(start))
	return state, nil
}

// RecalculateAllManagerPoints recomputes every manager holding a squad or a
// state row in the gameweek.
func (s *Service) RecalculateAllManagerPoints(ctx context.Context, gameweekID uint) (*RecomputeSummary, error) {
	gw, err := s.store.GetGameweek(ctx, gameweekID)
	if err != nil {
		return nil, apperror.Internal("Failed to load gameweek", err)
	}
	if gw == nil {
		return nil, apperror.NotFound(apperror.CodeGameweekNotFound, "Gameweek %d not found", gameweekID)
	}

	withSquad, err := s.store.ListManagersWithSquad(ctx, gameweekID)
	if err != nil {
		return nil, apperror.Internal("Failed to list managers", err)
	}
	states, err := s.store.ListManagerStates(ctx, gameweekID)
	if err != nil {
		return nil, apperror.Internal("Failed to list gameweek states", err)
	}
	ids := withSquad
	for _, st := range states {
		ids = append(ids, st.ManagerID)
	}
	return s.recomputeMany(ctx, gameweekID, dedupe(ids), TriggerGameweek)
}

// recomputeMany runs independent per-manager recomputes on a bounded pool.
// A failing manager does not stop the others.
func (s *Service) recomputeMany(ctx context.Context, gameweekID uint, managerIDs []uint, trigger string) (*RecomputeSummary, error) {
	start := time.Now()
	summary := &RecomputeSummary{GameweekID: gameweekID, Managers: len(managerIDs)}

	var mu sync.Mutex
	var firstErr error
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, id := range managerIDs {
		id := id
		g.Go(func() error {
			_, err := s.updateManager(gctx, id, gameweekID, trigger)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed = append(summary.Failed, id)
				if firstErr == nil {
					firstErr = err
				}
				s.log.WithError(err).WithFields(logrus.Fields{
					"manager_id":  id,
					"gameweek_id": gameweekID,
				}).Error("manager recompute failed")
				return nil
			}
			summary.Updated++
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(summary.Failed, func(i, j int) bool { return summary.Failed[i] < summary.Failed[j] })
	summary.Duration = time.Since(start)
	s.log.WithFields(logrus.Fields{
		"gameweek_id": gameweekID,
		"trigger":     trigger,
		"managers":    summary.Managers,
		"failed":      len(summary.Failed),
		"duration":    summary.Duration,
	}).Info("recomputed manager points")

	if firstErr != nil {
		return summary, fmt.Errorf("recompute failed for %d of %d managers: %w", len(summary.Failed), summary.Managers, firstErr)
	}
	return summary, nil
}

type batchKey struct{}

// batch collects the (gameweek, manager) pairs touched by stat writes so
// each is recomputed once when the batch finishes.
type batch struct {
	mu      sync.Mutex
	pending map[uint]map[uint]struct{}
}

func batchFrom(ctx context.Context) *batch {
	b, _ := ctx.Value(batchKey{}).(*batch)
	return b
}

func (b *batch) add(gameweekID uint, managerIDs []uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending[gameweekID] == nil {
		b.pending[gameweekID] = make(map[uint]struct{})
	}
	for _, id := range managerIDs {
		b.pending[gameweekID][id] = struct{}{}
	}
}

// UpdatePlayerStatsAndRecompute writes a stat line, rescoring the player,
// then recomputes every manager holding the player in that gameweek. Inside
// ApplyStatBatch the recompute is deferred to the end of the batch.
func (s *Service) UpdatePlayerStatsAndRecompute(ctx context.Context, upd StatUpdate) (*StatResult, error) {
	var result *StatResult
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		var err error
		result, err = s.applyStat(ctx, tx, upd)
		return err
	})
	if err != nil {
		return nil, wrapInternal("Failed to update player stats", err)
	}

	if b := batchFrom(ctx); b != nil {
		b.add(upd.GameweekID, result.Affected)
		return result, nil
	}
	if len(result.Affected) == 0 {
		return result, nil
	}
	summary, err := s.recomputeMany(ctx, upd.GameweekID, result.Affected, TriggerStat)
	result.Summary = summary
	if err != nil {
		return result, apperror.Internal("Stat saved but some manager totals failed to update", err)
	}
	return result, nil
}

// ApplyStatBatch writes several stat lines in one transaction and recomputes
// each affected manager once per gameweek.
func (s *Service) ApplyStatBatch(ctx context.Context, updates []StatUpdate) ([]*RecomputeSummary, error) {
	if outer := batchFrom(ctx); outer != nil {
		for _, upd := range updates {
			if _, err := s.UpdatePlayerStatsAndRecompute(ctx, upd); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	b := &batch{pending: make(map[uint]map[uint]struct{})}
	bctx := context.WithValue(ctx, batchKey{}, b)
	err := storage.InTx(bctx, s.store, s.retries, func(tx storage.Store) error {
		b.pending = make(map[uint]map[uint]struct{})
		for _, upd := range updates {
			res, err := s.applyStat(bctx, tx, upd)
			if err != nil {
				return err
			}
			b.add(upd.GameweekID, res.Affected)
		}
		return nil
	})
	if err != nil {
		return nil, wrapInternal("Failed to apply stat batch", err)
	}

	gameweeks := make([]uint, 0, len(b.pending))
	for gwID := range b.pending {
		gameweeks = append(gameweeks, gwID)
	}
	sort.Slice(gameweeks, func(i, j int) bool { return gameweeks[i] < gameweeks[j] })

	var summaries []*RecomputeSummary
	for _, gwID := range gameweeks {
		ids := make([]uint, 0, len(b.pending[gwID]))
		for id := range b.pending[gwID] {
			ids = append(ids, id)
		}
		summary, err := s.recomputeMany(ctx, gwID, dedupe(ids), TriggerStat)
		summaries = append(summaries, summary)
		if err != nil {
			return summaries, apperror.Internal("Stats saved but some manager totals failed to update", err)
		}
	}
	return summaries, nil
}

func (s *Service) applyStat(ctx context.Context, tx storage.Store, upd StatUpdate) (*StatResult, error) {
	if err := upd.validate(); err != nil {
		return nil, err
	}
	player, err := tx.GetPlayer(ctx, upd.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}
	if player == nil {
		return nil, apperror.NotFound(apperror.CodePlayerNotFound, "Player %d not found", upd.PlayerID)
	}
	gw, err := tx.GetGameweek(ctx, upd.GameweekID)
	if err != nil {
		return nil, fmt.Errorf("load gameweek: %w", err)
	}
	if gw == nil {
		return nil, apperror.NotFound(apperror.CodeGameweekNotFound, "Gameweek %d not found", upd.GameweekID)
	}

	stat, err := tx.GetPlayerStat(ctx, upd.PlayerID, upd.GameweekID)
	if err != nil {
		return nil, fmt.Errorf("load player stat: %w", err)
	}
	if stat == nil {
		stat = &models.PlayerStat{PlayerID: upd.PlayerID, GameweekID: upd.GameweekID}
	}
	upd.apply(stat)

	rb, err := s.RuleBook(ctx, tx)
	if err != nil {
		return nil, err
	}
	stat.TotalPoints = PlayerPoints(*stat, player.PositionID, rb)
	if err := tx.SavePlayerStat(ctx, stat); err != nil {
		return nil, fmt.Errorf("save player stat: %w", err)
	}

	affected, err := tx.ListManagersHoldingPlayer(ctx, upd.PlayerID, upd.GameweekID)
	if err != nil {
		return nil, fmt.Errorf("list affected managers: %w", err)
	}
	return &StatResult{Stat: *stat, Affected: affected}, nil
}

func (u StatUpdate) validate() error {
	counts := map[string]*int{
		"goals":          u.Goals,
		"assists":        u.Assists,
		"clean_sheets":   u.CleanSheets,
		"yellow_cards":   u.YellowCards,
		"red_cards":      u.RedCards,
		"minutes_played": u.MinutesPlayed,
	}
	for name, v := range counts {
		if v != nil && *v < 0 {
			return apperror.Validation(apperror.CodeInvalidStat, "%s cannot be negative", name)
		}
	}
	return nil
}

func (u StatUpdate) apply(stat *models.PlayerStat) {
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&stat.Goals, u.Goals)
	setInt(&stat.Assists, u.Assists)
	setInt(&stat.CleanSheets, u.CleanSheets)
	setInt(&stat.YellowCards, u.YellowCards)
	setInt(&stat.RedCards, u.RedCards)
	setInt(&stat.BonusPoints, u.BonusPoints)
	setInt(&stat.MinutesPlayed, u.MinutesPlayed)
	if u.Started != nil {
		stat.Started = *u.Started
	}
}

// PointsForGameweek lists every player stat line recorded for the gameweek.
func (s *Service) PointsForGameweek(ctx context.Context, gameweekID uint) ([]models.PlayerStat, error) {
	gw, err := s.store.GetGameweek(ctx, gameweekID)
	if err != nil {
		return nil, apperror.Internal("Failed to load gameweek", err)
	}
	if gw == nil {
		return nil, apperror.NotFound(apperror.CodeGameweekNotFound, "Gameweek %d not found", gameweekID)
	}
	stats, err := s.store.ListPlayerStats(ctx, gameweekID, nil)
	if err != nil {
		return nil, apperror.Internal("Failed to list player stats", err)
	}
	return stats, nil
}

// wrapInternal passes typed failures through and wraps everything else.
func wrapInternal(message string, err error) error {
	if apperror.From(err) != nil {
		return err
	}
	return apperror.Internal(message, err)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
