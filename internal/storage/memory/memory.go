package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

type pairKey struct{ a, b uint }

type squadKey struct{ manager, gameweek, player uint }

type ruleKey struct {
	event    models.EventType
	position models.PositionID
}

type data struct {
	nextID    uint
	positions map[models.PositionID]models.Position
	teams     map[uint]models.Team
	players   map[uint]models.Player
	managers  map[uint]models.Manager
	gameweeks map[uint]models.Gameweek
	fixtures  map[uint]models.Fixture
	squads    map[squadKey]models.SquadEntry
	states    map[pairKey]models.ManagerGameweekState
	transfers []models.Transfer
	prices    map[pairKey]models.PlayerPrice
	stats     map[pairKey]models.PlayerStat
	rules     map[ruleKey]models.ScoringRule
}

func newData() *data {
	return &data{
		nextID:    1,
		positions: make(map[models.PositionID]models.Position),
		teams:     make(map[uint]models.Team),
		players:   make(map[uint]models.Player),
		managers:  make(map[uint]models.Manager),
		gameweeks: make(map[uint]models.Gameweek),
		fixtures:  make(map[uint]models.Fixture),
		squads:    make(map[squadKey]models.SquadEntry),
		states:    make(map[pairKey]models.ManagerGameweekState),
		prices:    make(map[pairKey]models.PlayerPrice),
		stats:     make(map[pairKey]models.PlayerStat),
		rules:     make(map[ruleKey]models.ScoringRule),
	}
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (d *data) clone() *data {
	return &data{
		nextID:    d.nextID,
		positions: copyMap(d.positions),
		teams:     copyMap(d.teams),
		players:   copyMap(d.players),
		managers:  copyMap(d.managers),
		gameweeks: copyMap(d.gameweeks),
		fixtures:  copyMap(d.fixtures),
		squads:    copyMap(d.squads),
		states:    copyMap(d.states),
		transfers: append([]models.Transfer(nil), d.transfers...),
		prices:    copyMap(d.prices),
		stats:     copyMap(d.stats),
		rules:     copyMap(d.rules),
	}
}

func (d *data) id() uint {
	id := d.nextID
	d.nextID++
	return id
}

// Store is an in-memory implementation of storage.Store. It is safe for
// concurrent use and is primarily intended for tests and local development.
// Transactions run one at a time against a snapshot that replaces the live
// data only when the transaction function succeeds.
type Store struct {
	mu   sync.Mutex
	d    *data
	inTx bool

	conflicts int
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{d: newData()}
}

// FailNextCommits makes the next n transactions report storage.ErrConflict
// instead of committing.
func (s *Store) FailNextCommits(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = n
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithTransaction(ctx context.Context, fn func(tx storage.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &Store{d: s.d.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	if s.conflicts > 0 {
		s.conflicts--
		return storage.ErrConflict
	}
	s.d = tx.d
	return nil
}

// GameweekStore implementation -----------------------------------------------

func (s *Store) CreateGameweek(_ context.Context, gw *models.Gameweek) error {
	defer s.lock()()
	for _, existing := range s.d.gameweeks {
		if existing.Number == gw.Number {
			return fmt.Errorf("gameweek %d: %w", gw.Number, storage.ErrDuplicate)
		}
	}
	if gw.Phase == "" {
		gw.Phase = models.PhaseUpcoming
	}
	gw.ID = s.d.id()
	gw.CreatedAt = time.Now()
	gw.UpdatedAt = gw.CreatedAt
	s.d.gameweeks[gw.ID] = *gw
	return nil
}

func (s *Store) GetGameweek(_ context.Context, id uint) (*models.Gameweek, error) {
	defer s.lock()()
	gw, ok := s.d.gameweeks[id]
	if !ok {
		return nil, nil
	}
	return &gw, nil
}

func (s *Store) GetGameweekByNumber(_ context.Context, number int) (*models.Gameweek, error) {
	defer s.lock()()
	for _, gw := range s.d.gameweeks {
		if gw.Number == number {
			gw := gw
			return &gw, nil
		}
	}
	return nil, nil
}

func (s *Store) sortedGameweeks() []models.Gameweek {
	out := make([]models.Gameweek, 0, len(s.d.gameweeks))
	for _, gw := range s.d.gameweeks {
		out = append(out, gw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (s *Store) ListGameweeks(_ context.Context) ([]models.Gameweek, error) {
	defer s.lock()()
	return s.sortedGameweeks(), nil
}

func (s *Store) LatestGameweek(_ context.Context, phases ...models.Phase) (*models.Gameweek, error) {
	defer s.lock()()
	gws := s.sortedGameweeks()
	for i := len(gws) - 1; i >= 0; i-- {
		if hasPhase(gws[i].Phase, phases) {
			return &gws[i], nil
		}
	}
	return nil, nil
}

func (s *Store) OldestGameweek(_ context.Context, phase models.Phase) (*models.Gameweek, error) {
	defer s.lock()()
	for _, gw := range s.sortedGameweeks() {
		if gw.Phase == phase {
			gw := gw
			return &gw, nil
		}
	}
	return nil, nil
}

func (s *Store) NextGameweek(_ context.Context, number int) (*models.Gameweek, error) {
	defer s.lock()()
	for _, gw := range s.sortedGameweeks() {
		if gw.Number > number {
			gw := gw
			return &gw, nil
		}
	}
	return nil, nil
}

func (s *Store) LockGameweeks(_ context.Context) error {
	return nil
}

func (s *Store) UpdateGameweekPhase(_ context.Context, id uint, phase models.Phase, at time.Time) error {
	defer s.lock()()
	gw, ok := s.d.gameweeks[id]
	if !ok {
		return fmt.Errorf("gameweek %d not found", id)
	}
	gw.Phase = phase
	gw.PhaseChangedAt = &at
	gw.UpdatedAt = at
	s.d.gameweeks[id] = gw
	return nil
}

func hasPhase(p models.Phase, phases []models.Phase) bool {
	for _, candidate := range phases {
		if p == candidate {
			return true
		}
	}
	return false
}

func (s *Store) CreateFixture(_ context.Context, f *models.Fixture) error {
	defer s.lock()()
	f.ID = s.d.id()
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	s.d.fixtures[f.ID] = *f
	return nil
}

func (s *Store) GetFixture(_ context.Context, id uint) (*models.Fixture, error) {
	defer s.lock()()
	f, ok := s.d.fixtures[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (s *Store) ListFixtures(_ context.Context, gameweekID uint) ([]models.Fixture, error) {
	defer s.lock()()
	var out []models.Fixture
	for _, f := range s.d.fixtures {
		if f.GameweekID == gameweekID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].KickoffAt.Before(out[j].KickoffAt)
	})
	return out, nil
}

func (s *Store) UpdateFixtureScore(_ context.Context, id uint, home, away int, at time.Time) error {
	defer s.lock()()
	f, ok := s.d.fixtures[id]
	if !ok {
		return fmt.Errorf("fixture %d not found", id)
	}
	f.HomeScore = home
	f.AwayScore = away
	f.UpdatedAt = at
	s.d.fixtures[id] = f
	return nil
}

func (s *Store) KickoffWindow(_ context.Context, gameweekID uint) (time.Time, time.Time, bool, error) {
	defer s.lock()()
	var first, last time.Time
	found := false
	for _, f := range s.d.fixtures {
		if f.GameweekID != gameweekID {
			continue
		}
		if !found || f.KickoffAt.Before(first) {
			first = f.KickoffAt
		}
		if !found || f.KickoffAt.After(last) {
			last = f.KickoffAt
		}
		found = true
	}
	return first, last, found, nil
}

// RosterStore implementation -------------------------------------------------

func (s *Store) EnsurePositions(_ context.Context) error {
	defer s.lock()()
	for _, p := range models.Positions {
		s.d.positions[p] = models.Position{ID: p, Code: p.Code(), Name: p.Name()}
	}
	return nil
}

func (s *Store) CreateTeam(_ context.Context, team *models.Team) error {
	defer s.lock()()
	for _, existing := range s.d.teams {
		if existing.Name == team.Name {
			return fmt.Errorf("team %q: %w", team.Name, storage.ErrDuplicate)
		}
	}
	team.ID = s.d.id()
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	s.d.teams[team.ID] = *team
	return nil
}

func (s *Store) GetTeam(_ context.Context, id uint) (*models.Team, error) {
	defer s.lock()()
	t, ok := s.d.teams[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *Store) ListTeamsByIDs(_ context.Context, ids []uint) ([]models.Team, error) {
	defer s.lock()()
	var out []models.Team
	for _, id := range uniqueSorted(ids) {
		if t, ok := s.d.teams[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) CreatePlayer(_ context.Context, p *models.Player) error {
	defer s.lock()()
	p.ID = s.d.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	s.d.players[p.ID] = *p
	return nil
}

func (s *Store) GetPlayer(_ context.Context, id uint) (*models.Player, error) {
	defer s.lock()()
	p, ok := s.d.players[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) ListPlayersByIDs(_ context.Context, ids []uint) ([]models.Player, error) {
	defer s.lock()()
	var out []models.Player
	for _, id := range uniqueSorted(ids) {
		if p, ok := s.d.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) ListPlayers(_ context.Context, filter storage.PlayerFilter) ([]models.Player, int64, error) {
	defer s.lock()()
	var matched []models.Player
	for _, p := range s.d.players {
		if filter.TeamID != 0 && p.TeamID != filter.TeamID {
			continue
		}
		if filter.PositionID != 0 && p.PositionID != filter.PositionID {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	if filter.Limit <= 0 {
		return matched, total, nil
	}
	start, end, ok := storage.PageBounds(filter.Page, filter.Limit, len(matched))
	if !ok {
		return []models.Player{}, total, nil
	}
	return matched[start:end], total, nil
}

func (s *Store) CreateManager(_ context.Context, m *models.Manager) error {
	defer s.lock()()
	for _, existing := range s.d.managers {
		if existing.Email == m.Email {
			return fmt.Errorf("manager %q: %w", m.Email, storage.ErrDuplicate)
		}
	}
	m.ID = s.d.id()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	s.d.managers[m.ID] = *m
	return nil
}

func (s *Store) GetManager(_ context.Context, id uint) (*models.Manager, error) {
	defer s.lock()()
	m, ok := s.d.managers[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *Store) ListManagersByIDs(_ context.Context, ids []uint) ([]models.Manager, error) {
	defer s.lock()()
	var out []models.Manager
	for _, id := range uniqueSorted(ids) {
		if m, ok := s.d.managers[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// LockManager is a plain read: transactions are already serialized.
func (s *Store) LockManager(ctx context.Context, id uint) (*models.Manager, error) {
	return s.GetManager(ctx, id)
}

func (s *Store) UpdateManagerWallet(_ context.Context, id uint, wallet decimal.Decimal) error {
	defer s.lock()()
	m, ok := s.d.managers[id]
	if !ok {
		return fmt.Errorf("manager %d not found", id)
	}
	m.Wallet = wallet
	m.UpdatedAt = time.Now()
	s.d.managers[id] = m
	return nil
}

func (s *Store) ListManagerIDs(_ context.Context) ([]uint, error) {
	defer s.lock()()
	ids := make([]uint, 0, len(s.d.managers))
	for id := range s.d.managers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// SquadStore implementation --------------------------------------------------

func (s *Store) ListSquad(_ context.Context, managerID, gameweekID uint) ([]models.SquadEntry, error) {
	defer s.lock()()
	var out []models.SquadEntry
	for k, e := range s.d.squads {
		if k.manager == managerID && k.gameweek == gameweekID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (s *Store) ReplaceSquad(_ context.Context, managerID, gameweekID uint, entries []models.SquadEntry) error {
	defer s.lock()()
	for k := range s.d.squads {
		if k.manager == managerID && k.gameweek == gameweekID {
			delete(s.d.squads, k)
		}
	}
	for _, e := range entries {
		e.ManagerID = managerID
		e.GameweekID = gameweekID
		k := squadKey{managerID, gameweekID, e.PlayerID}
		if _, exists := s.d.squads[k]; exists {
			return fmt.Errorf("squad entry for player %d: %w", e.PlayerID, storage.ErrDuplicate)
		}
		s.d.squads[k] = e
	}
	return nil
}

func (s *Store) UpdateSquadEntry(_ context.Context, entry models.SquadEntry) error {
	defer s.lock()()
	k := squadKey{entry.ManagerID, entry.GameweekID, entry.PlayerID}
	if _, ok := s.d.squads[k]; !ok {
		return fmt.Errorf("squad entry for player %d not found", entry.PlayerID)
	}
	s.d.squads[k] = entry
	return nil
}

func (s *Store) SwapSquadPlayer(_ context.Context, managerID, gameweekID, outID, inID uint) error {
	defer s.lock()()
	outKey := squadKey{managerID, gameweekID, outID}
	entry, ok := s.d.squads[outKey]
	if !ok {
		return fmt.Errorf("squad entry for player %d not found", outID)
	}
	inKey := squadKey{managerID, gameweekID, inID}
	if _, exists := s.d.squads[inKey]; exists {
		return fmt.Errorf("squad entry for player %d: %w", inID, storage.ErrDuplicate)
	}
	delete(s.d.squads, outKey)
	entry.PlayerID = inID
	s.d.squads[inKey] = entry
	return nil
}

func (s *Store) ListGameweekSquads(_ context.Context, gameweekID uint) ([]models.SquadEntry, error) {
	defer s.lock()()
	var out []models.SquadEntry
	for k, e := range s.d.squads {
		if k.gameweek == gameweekID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ManagerID == out[j].ManagerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].ManagerID < out[j].ManagerID
	})
	return out, nil
}

func (s *Store) ListManagersHoldingPlayer(_ context.Context, playerID, gameweekID uint) ([]uint, error) {
	defer s.lock()()
	var ids []uint
	for k := range s.d.squads {
		if k.player == playerID && k.gameweek == gameweekID {
			ids = append(ids, k.manager)
		}
	}
	return uniqueSorted(ids), nil
}

func (s *Store) ListManagersWithSquad(_ context.Context, gameweekID uint) ([]uint, error) {
	defer s.lock()()
	var ids []uint
	for k := range s.d.squads {
		if k.gameweek == gameweekID {
			ids = append(ids, k.manager)
		}
	}
	return uniqueSorted(ids), nil
}

func (s *Store) GetManagerState(_ context.Context, managerID, gameweekID uint) (*models.ManagerGameweekState, error) {
	defer s.lock()()
	st, ok := s.d.states[pairKey{managerID, gameweekID}]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *Store) SaveManagerState(_ context.Context, state *models.ManagerGameweekState) error {
	defer s.lock()()
	k := pairKey{state.ManagerID, state.GameweekID}
	now := time.Now()
	if existing, ok := s.d.states[k]; ok {
		state.CreatedAt = existing.CreatedAt
	} else if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.UpdatedAt = now
	s.d.states[k] = *state
	return nil
}

func (s *Store) ListManagerStates(_ context.Context, gameweekID uint) ([]models.ManagerGameweekState, error) {
	defer s.lock()()
	var out []models.ManagerGameweekState
	for k, st := range s.d.states {
		if k.b == gameweekID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ManagerID < out[j].ManagerID })
	return out, nil
}

func (s *Store) SumManagerPoints(_ context.Context, maxNumber int) (map[uint]int, error) {
	defer s.lock()()
	totals := make(map[uint]int)
	for k, st := range s.d.states {
		gw, ok := s.d.gameweeks[k.b]
		if !ok || gw.Number > maxNumber {
			continue
		}
		totals[st.ManagerID] += st.TotalGWPoints
	}
	return totals, nil
}

// LedgerStore implementation -------------------------------------------------

func (s *Store) CreateTransfer(_ context.Context, t *models.Transfer) error {
	defer s.lock()()
	for _, existing := range s.d.transfers {
		if existing.ID == t.ID {
			return fmt.Errorf("transfer %s: %w", t.ID, storage.ErrDuplicate)
		}
	}
	s.d.transfers = append(s.d.transfers, *t)
	return nil
}

func (s *Store) ListTransfers(_ context.Context, managerID, gameweekID uint) ([]models.Transfer, error) {
	defer s.lock()()
	var out []models.Transfer
	for i := len(s.d.transfers) - 1; i >= 0; i-- {
		t := s.d.transfers[i]
		if t.ManagerID != managerID || (gameweekID != 0 && t.GameweekID != gameweekID) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TransferredAt.After(out[j].TransferredAt) })
	return out, nil
}

func (s *Store) ListGameweekTransfers(_ context.Context, gameweekID uint) ([]models.Transfer, error) {
	defer s.lock()()
	var out []models.Transfer
	for _, t := range s.d.transfers {
		if t.GameweekID == gameweekID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) GetPlayerPrice(_ context.Context, playerID, gameweekID uint) (*models.PlayerPrice, error) {
	defer s.lock()()
	p, ok := s.d.prices[pairKey{playerID, gameweekID}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) SavePlayerPrice(_ context.Context, price *models.PlayerPrice) error {
	defer s.lock()()
	price.UpdatedAt = time.Now()
	s.d.prices[pairKey{price.PlayerID, price.GameweekID}] = *price
	return nil
}

// StatStore implementation ---------------------------------------------------

func (s *Store) GetPlayerStat(_ context.Context, playerID, gameweekID uint) (*models.PlayerStat, error) {
	defer s.lock()()
	st, ok := s.d.stats[pairKey{playerID, gameweekID}]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *Store) SavePlayerStat(_ context.Context, stat *models.PlayerStat) error {
	defer s.lock()()
	k := pairKey{stat.PlayerID, stat.GameweekID}
	now := time.Now()
	if existing, ok := s.d.stats[k]; ok {
		stat.CreatedAt = existing.CreatedAt
	} else if stat.CreatedAt.IsZero() {
		stat.CreatedAt = now
	}
	stat.UpdatedAt = now
	s.d.stats[k] = *stat
	return nil
}

func (s *Store) ListPlayerStats(_ context.Context, gameweekID uint, playerIDs []uint) ([]models.PlayerStat, error) {
	defer s.lock()()
	var out []models.PlayerStat
	if playerIDs == nil {
		for k, st := range s.d.stats {
			if k.b == gameweekID {
				out = append(out, st)
			}
		}
	} else {
		for _, id := range uniqueSorted(playerIDs) {
			if st, ok := s.d.stats[pairKey{id, gameweekID}]; ok {
				out = append(out, st)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (s *Store) ListScoringRules(_ context.Context) ([]models.ScoringRule, error) {
	defer s.lock()()
	out := make([]models.ScoringRule, 0, len(s.d.rules))
	for _, r := range s.d.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EventType == out[j].EventType {
			return out[i].PositionID < out[j].PositionID
		}
		return out[i].EventType < out[j].EventType
	})
	return out, nil
}

func (s *Store) SaveScoringRule(_ context.Context, rule *models.ScoringRule) error {
	defer s.lock()()
	s.d.rules[ruleKey{rule.EventType, rule.PositionID}] = *rule
	return nil
}

func uniqueSorted(ids []uint) []uint {
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
