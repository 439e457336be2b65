package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	mgr := &models.Manager{Email: "a@example.com", Wallet: decimal.NewFromInt(10)}
	require.NoError(t, s.CreateManager(ctx, mgr))

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(tx storage.Store) error {
		require.NoError(t, tx.UpdateManagerWallet(ctx, mgr.ID, decimal.Zero))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetManager(ctx, mgr.ID)
	require.NoError(t, err)
	assert.True(t, got.Wallet.Equal(decimal.NewFromInt(10)))
}

func TestTransactionCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	mgr := &models.Manager{Email: "a@example.com"}
	require.NoError(t, s.CreateManager(ctx, mgr))

	err := s.WithTransaction(ctx, func(tx storage.Store) error {
		return tx.UpdateManagerWallet(ctx, mgr.ID, decimal.NewFromInt(3))
	})
	require.NoError(t, err)

	got, _ := s.GetManager(ctx, mgr.ID)
	assert.True(t, got.Wallet.Equal(decimal.NewFromInt(3)))
}

func TestFailNextCommitsDiscardsWork(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.FailNextCommits(1)

	err := s.WithTransaction(ctx, func(tx storage.Store) error {
		return tx.CreateGameweek(ctx, &models.Gameweek{Number: 1})
	})
	assert.ErrorIs(t, err, storage.ErrConflict)

	gws, _ := s.ListGameweeks(ctx)
	assert.Empty(t, gws)

	err = storage.InTx(ctx, s, 2, func(tx storage.Store) error {
		return tx.CreateGameweek(ctx, &models.Gameweek{Number: 1})
	})
	require.NoError(t, err)
	gws, _ = s.ListGameweeks(ctx)
	assert.Len(t, gws, 1)
}

func TestGameweekQueries(t *testing.T) {
	ctx := context.Background()
	s := New()
	for n, phase := range map[int]models.Phase{1: models.PhaseCompleted, 2: models.PhaseCompleted, 3: models.PhaseOpen, 4: models.PhaseUpcoming, 5: models.PhaseUpcoming} {
		require.NoError(t, s.CreateGameweek(ctx, &models.Gameweek{Number: n, Phase: phase}))
	}
	assert.ErrorIs(t, s.CreateGameweek(ctx, &models.Gameweek{Number: 3}), storage.ErrDuplicate)

	latest, _ := s.LatestGameweek(ctx, models.PhaseCompleted)
	assert.Equal(t, 2, latest.Number)

	oldest, _ := s.OldestGameweek(ctx, models.PhaseUpcoming)
	assert.Equal(t, 4, oldest.Number)

	next, _ := s.NextGameweek(ctx, 3)
	assert.Equal(t, 4, next.Number)

	none, _ := s.NextGameweek(ctx, 5)
	assert.Nil(t, none)

	missing, _ := s.LatestGameweek(ctx, models.PhaseActive)
	assert.Nil(t, missing)
}

func TestKickoffWindow(t *testing.T) {
	ctx := context.Background()
	s := New()
	gw := &models.Gameweek{Number: 1}
	require.NoError(t, s.CreateGameweek(ctx, gw))

	_, _, ok, err := s.KickoffWindow(ctx, gw.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	base := time.Date(2025, 8, 16, 12, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{24 * time.Hour, 0, 3 * time.Hour} {
		require.NoError(t, s.CreateFixture(ctx, &models.Fixture{GameweekID: gw.ID, HomeTeamID: 1, AwayTeamID: 2, KickoffAt: base.Add(offset)}))
	}
	first, last, ok, err := s.KickoffWindow(ctx, gw.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, first)
	assert.Equal(t, base.Add(24*time.Hour), last)
}

func TestSquadSwapAndHolders(t *testing.T) {
	ctx := context.Background()
	s := New()
	entries := []models.SquadEntry{{PlayerID: 1, IsStarter: true, IsCaptain: true}, {PlayerID: 2}}
	require.NoError(t, s.ReplaceSquad(ctx, 10, 1, entries))
	require.NoError(t, s.ReplaceSquad(ctx, 11, 1, []models.SquadEntry{{PlayerID: 1}}))

	holders, _ := s.ListManagersHoldingPlayer(ctx, 1, 1)
	assert.Equal(t, []uint{10, 11}, holders)

	require.NoError(t, s.SwapSquadPlayer(ctx, 10, 1, 1, 3))
	squad, _ := s.ListSquad(ctx, 10, 1)
	require.Len(t, squad, 2)
	assert.Equal(t, uint(3), squad[1].PlayerID)
	assert.True(t, squad[1].IsCaptain)

	assert.Error(t, s.SwapSquadPlayer(ctx, 10, 1, 1, 4))
	assert.ErrorIs(t, s.SwapSquadPlayer(ctx, 10, 1, 2, 3), storage.ErrDuplicate)
}

func TestSumManagerPointsRespectsGameweekNumber(t *testing.T) {
	ctx := context.Background()
	s := New()
	gw1 := &models.Gameweek{Number: 1}
	gw2 := &models.Gameweek{Number: 2}
	require.NoError(t, s.CreateGameweek(ctx, gw1))
	require.NoError(t, s.CreateGameweek(ctx, gw2))

	require.NoError(t, s.SaveManagerState(ctx, &models.ManagerGameweekState{ManagerID: 1, GameweekID: gw1.ID, TotalGWPoints: 40}))
	require.NoError(t, s.SaveManagerState(ctx, &models.ManagerGameweekState{ManagerID: 1, GameweekID: gw2.ID, TotalGWPoints: 25}))
	require.NoError(t, s.SaveManagerState(ctx, &models.ManagerGameweekState{ManagerID: 2, GameweekID: gw2.ID, TotalGWPoints: 70}))

	upTo1, _ := s.SumManagerPoints(ctx, 1)
	assert.Equal(t, map[uint]int{1: 40}, upTo1)

	upTo2, _ := s.SumManagerPoints(ctx, 2)
	assert.Equal(t, map[uint]int{1: 65, 2: 70}, upTo2)
}

func TestListPlayersPaginates(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 0; i < 5; i++ {
		pos := models.Defender
		if i%2 == 0 {
			pos = models.Forward
		}
		require.NoError(t, s.CreatePlayer(ctx, &models.Player{TeamID: 1, PositionID: pos}))
	}

	page, total, err := s.ListPlayers(ctx, storage.PlayerFilter{PositionID: models.Forward, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)
}
