package gameweek

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage/memory"
)

func TestActionGating(t *testing.T) {
	tests := []struct {
		phase   models.Phase
		action  Action
		allowed bool
	}{
		{models.PhaseUpcoming, ActionViewFixtures, true},
		{models.PhaseUpcoming, ActionSaveSquad, false},
		{models.PhaseOpen, ActionMakeTransfer, true},
		{models.PhaseOpen, ActionViewLiveScores, false},
		{models.PhaseActive, ActionMakeTransfer, false},
		{models.PhaseActive, ActionSubstitute, true},
		{models.PhaseCompleted, ActionViewFinalPoints, true},
		{models.PhaseCompleted, ActionSaveSquad, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.phase)+"/"+string(tt.action), func(t *testing.T) {
			err := ValidateAction(&models.Gameweek{Number: 3, Phase: tt.phase}, tt.action)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.HasCode(err, apperror.CodeWrongPhase))
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.PhaseUpcoming, models.PhaseOpen))
	assert.True(t, CanTransition(models.PhaseActive, models.PhaseCompleted))
	assert.False(t, CanTransition(models.PhaseOpen, models.PhaseUpcoming))
	assert.False(t, CanTransition(models.PhaseCompleted, models.PhaseOpen))
}

func TestResolveWindow(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	_, err := ResolveWindow(ctx, store, 0, ActionSaveSquad)
	assert.True(t, apperror.HasCode(err, apperror.CodeNoActiveWindow))
	_, err = ResolveWindow(ctx, store, 0, ActionMakeTransfer)
	assert.True(t, apperror.HasCode(err, apperror.CodeNoTransferWindow))

	done := &models.Gameweek{Number: 1, Phase: models.PhaseCompleted}
	active := &models.Gameweek{Number: 2, Phase: models.PhaseActive}
	require.NoError(t, store.CreateGameweek(ctx, done))
	require.NoError(t, store.CreateGameweek(ctx, active))

	gw, err := ResolveWindow(ctx, store, 0, ActionSubstitute)
	require.NoError(t, err)
	assert.Equal(t, 2, gw.Number)

	_, err = ResolveWindow(ctx, store, 0, ActionMakeTransfer)
	assert.True(t, apperror.HasCode(err, apperror.CodeNoTransferWindow))

	_, err = ResolveWindow(ctx, store, done.ID, ActionSaveSquad)
	assert.True(t, apperror.HasCode(err, apperror.CodeWrongPhase))

	_, err = ResolveWindow(ctx, store, active.ID, ActionMakeTransfer)
	assert.True(t, apperror.HasCode(err, apperror.CodeNoTransferWindow))
}

func TestReferencePrefersActiveThenCompletedThenOpen(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	ref, err := Reference(ctx, store)
	require.NoError(t, err)
	assert.Nil(t, ref)

	open := &models.Gameweek{Number: 3, Phase: models.PhaseOpen}
	require.NoError(t, store.CreateGameweek(ctx, open))
	ref, err = Reference(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 3, ref.Number)

	done := &models.Gameweek{Number: 2, Phase: models.PhaseCompleted}
	require.NoError(t, store.CreateGameweek(ctx, done))
	ref, err = Reference(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 2, ref.Number)

	active := &models.Gameweek{Number: 4, Phase: models.PhaseActive}
	require.NoError(t, store.CreateGameweek(ctx, active))
	ref, err = Reference(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 4, ref.Number)
}
