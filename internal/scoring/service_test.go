package scoring

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
	"github.com/DhavalSuthar-24/fantasy/internal/storage/memory"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fixture struct {
	store    *memory.Store
	svc      *Service
	gw       *models.Gameweek
	players  []models.Player
	managers []uint
}

// newFixture builds one active gameweek, fifteen players and managers that
// all pick the same squad with players[captain] as captain.
func newFixture(t *testing.T, managers int, captain int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.EnsurePositions(ctx))

	gw := &models.Gameweek{Number: 1, Phase: models.PhaseActive}
	require.NoError(t, store.CreateGameweek(ctx, gw))

	layout := []models.PositionID{
		models.Goalkeeper, models.Goalkeeper,
		models.Defender, models.Defender, models.Defender, models.Defender, models.Defender,
		models.Midfielder, models.Midfielder, models.Midfielder, models.Midfielder, models.Midfielder,
		models.Forward, models.Forward, models.Forward,
	}
	f := &fixture{store: store, gw: gw}
	for i, pos := range layout {
		p := models.Player{TeamID: uint(i/3 + 1), PositionID: pos, IsActive: true}
		require.NoError(t, store.CreatePlayer(ctx, &p))
		f.players = append(f.players, p)
	}

	for m := 0; m < managers; m++ {
		mgr := &models.Manager{Email: string(rune('a'+m)) + "@example.com"}
		require.NoError(t, store.CreateManager(ctx, mgr))
		entries := make([]models.SquadEntry, len(f.players))
		for i, p := range f.players {
			entries[i] = models.SquadEntry{
				PlayerID:  p.ID,
				IsStarter: i != 1 && i != 6 && i != 11 && i != 14,
				IsCaptain: i == captain,
			}
		}
		require.NoError(t, store.ReplaceSquad(ctx, mgr.ID, gw.ID, entries))
		f.managers = append(f.managers, mgr.ID)
	}

	f.svc = NewService(store, rules.DefaultRules(), quietLogger(), Options{Workers: 4, Retries: 3})
	return f
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func TestCaptainGoalsRaiseEveryHoldingManager(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, 12)
	forward := f.players[12]

	for _, id := range f.managers {
		state, err := f.svc.UpdateManagerGameweekPoints(ctx, id, f.gw.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, state.SquadPoints)
	}

	res, err := f.svc.UpdatePlayerStatsAndRecompute(ctx, StatUpdate{
		PlayerID:   forward.ID,
		GameweekID: f.gw.ID,
		Goals:      intPtr(2),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, f.managers, res.Affected)
	assert.Equal(t, 8, res.Stat.TotalPoints)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 3, res.Summary.Updated)

	goalValue := rules.DefaultRules().Scoring[models.EventGoal][models.Forward]
	for _, id := range f.managers {
		state, err := f.store.GetManagerState(ctx, id, f.gw.ID)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, 2*goalValue*2, state.SquadPoints)
		assert.Equal(t, 2*goalValue, state.CaptainBonus)
		assert.Equal(t, state.SquadPoints-state.TransferPenalty, state.TotalGWPoints)
	}
}

func TestPartialStatUpdateKeepsStoredFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 0)
	mid := f.players[7]

	_, err := f.svc.UpdatePlayerStatsAndRecompute(ctx, StatUpdate{
		PlayerID: mid.ID, GameweekID: f.gw.ID, Goals: intPtr(1), Started: boolPtr(true),
	})
	require.NoError(t, err)

	res, err := f.svc.UpdatePlayerStatsAndRecompute(ctx, StatUpdate{
		PlayerID: mid.ID, GameweekID: f.gw.ID, Assists: intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stat.Goals)
	assert.True(t, res.Stat.Started)
	// 5 for the goal, 3 for the assist, 2 for starting.
	assert.Equal(t, 10, res.Stat.TotalPoints)
}

func TestNegativeStatIsRejected(t *testing.T) {
	f := newFixture(t, 1, 0)

	_, err := f.svc.UpdatePlayerStatsAndRecompute(context.Background(), StatUpdate{
		PlayerID: f.players[0].ID, GameweekID: f.gw.ID, Goals: intPtr(-1),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStat))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestStatUpdateForUnknownPlayer(t *testing.T) {
	f := newFixture(t, 1, 0)

	_, err := f.svc.UpdatePlayerStatsAndRecompute(context.Background(), StatUpdate{
		PlayerID: 9999, GameweekID: f.gw.ID, Goals: intPtr(1),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodePlayerNotFound))
}

func TestBenchPointsCountTowardsSquadPoints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 0)
	benchKeeper := f.players[1]

	_, err := f.svc.UpdatePlayerStatsAndRecompute(ctx, StatUpdate{
		PlayerID: benchKeeper.ID, GameweekID: f.gw.ID, CleanSheets: intPtr(1),
	})
	require.NoError(t, err)

	state, err := f.store.GetManagerState(ctx, f.managers[0], f.gw.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, state.SquadPoints)
	assert.Equal(t, 4, state.BenchPoints)
	assert.Equal(t, 0, state.CaptainBonus)
}

func TestApplyStatBatchRecomputesEachManagerOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2, 12)

	summaries, err := f.svc.ApplyStatBatch(ctx, []StatUpdate{
		{PlayerID: f.players[12].ID, GameweekID: f.gw.ID, Goals: intPtr(1)},
		{PlayerID: f.players[2].ID, GameweekID: f.gw.ID, CleanSheets: intPtr(1)},
		{PlayerID: f.players[8].ID, GameweekID: f.gw.ID, Assists: intPtr(1)},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].Managers)
	assert.Equal(t, 2, summaries[0].Updated)

	for _, id := range f.managers {
		state, err := f.store.GetManagerState(ctx, id, f.gw.ID)
		require.NoError(t, err)
		// captain forward goal 4x2, defender clean sheet 4, midfielder assist 3.
		assert.Equal(t, 15, state.SquadPoints)
	}
}

func TestApplyStatBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 12)

	_, err := f.svc.ApplyStatBatch(ctx, []StatUpdate{
		{PlayerID: f.players[12].ID, GameweekID: f.gw.ID, Goals: intPtr(1)},
		{PlayerID: f.players[2].ID, GameweekID: f.gw.ID, RedCards: intPtr(-2)},
	})
	require.Error(t, err)

	stat, err := f.store.GetPlayerStat(ctx, f.players[12].ID, f.gw.ID)
	require.NoError(t, err)
	assert.Nil(t, stat)
}

func TestRecomputeRetriesConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, 0)

	f.store.FailNextCommits(2)
	state, err := f.svc.UpdateManagerGameweekPoints(ctx, f.managers[0], f.gw.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.FreeTransfers)

	f.store.FailNextCommits(3)
	_, err = f.svc.UpdateManagerGameweekPoints(ctx, f.managers[0], f.gw.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeRetriesExhausted))
}

func TestRecalculateAllManagerPointsKeepsPenalty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2, 12)

	require.NoError(t, f.store.SaveManagerState(ctx, &models.ManagerGameweekState{
		ManagerID: f.managers[0], GameweekID: f.gw.ID, FreeTransfers: 0, TransfersMade: 2, TransferPenalty: 4,
	}))
	require.NoError(t, f.store.SavePlayerStat(ctx, &models.PlayerStat{
		PlayerID: f.players[12].ID, GameweekID: f.gw.ID, Goals: 1, TotalPoints: 4,
	}))

	summary, err := f.svc.RecalculateAllManagerPoints(ctx, f.gw.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Updated)
	assert.Empty(t, summary.Failed)

	penalized, err := f.store.GetManagerState(ctx, f.managers[0], f.gw.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, penalized.SquadPoints)
	assert.Equal(t, 4, penalized.TotalGWPoints)

	clean, err := f.store.GetManagerState(ctx, f.managers[1], f.gw.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, clean.TotalGWPoints)
}

func TestSeedRulesOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, 0)

	n, err := f.svc.SeedRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(rules.DefaultRules().ScoringRules()), n)

	n, err = f.svc.SeedRules(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, f.store.SaveScoringRule(ctx, &models.ScoringRule{
		EventType: models.EventGoal, PositionID: models.Forward, Points: 10,
	}))
	rb, err := f.svc.RuleBook(ctx, f.store)
	require.NoError(t, err)
	assert.Equal(t, 10, rb.Value(models.EventGoal, models.Forward))
}

func TestPointsForGameweekUnknown(t *testing.T) {
	f := newFixture(t, 0, 0)

	_, err := f.svc.PointsForGameweek(context.Background(), 404)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
