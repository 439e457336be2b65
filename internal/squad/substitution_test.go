package squad

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

func starterOf(t *testing.T, w *world, playerID uint) bool {
	t.Helper()
	entries, err := w.store.ListSquad(context.Background(), w.manager, w.gw.ID)
	require.NoError(t, err)
	for _, e := range entries {
		if e.PlayerID == playerID {
			return e.IsStarter
		}
	}
	t.Fatalf("player %d not in squad", playerID)
	return false
}

func TestSubstituteAcrossPositions(t *testing.T) {
	w := newWorld(t, models.PhaseActive)
	w.save(t, w.picks())

	// bench DEF6 for starting MID7: 5 DEF, 3 MID.
	res, err := w.svc.Substitute(context.Background(), w.manager, 0, w.squad[7].ID, w.squad[6].ID)
	require.NoError(t, err)
	assert.False(t, res.Out.IsStarter)
	assert.True(t, res.In.IsStarter)
	assert.True(t, starterOf(t, w, w.squad[6].ID))
	assert.False(t, starterOf(t, w, w.squad[7].ID))
}

func TestSubstituteRejectsIllegalFormations(t *testing.T) {
	tests := []struct {
		name    string
		out, in int
		code    string
		msg     string
	}{
		{"no goalkeeper", 0, 6, apperror.CodeFormation, "too few: Goalkeeper: have 0, need 1"},
		{"five midfielders", 12, 11, apperror.CodeFormation, "too many: Midfielder: have 5, max 4"},
		{"two starters", 2, 3, apperror.CodeInvalidSubstitution, "one starter and one bench player"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t, models.PhaseOpen)
			w.save(t, w.picks())

			_, err := w.svc.Substitute(context.Background(), w.manager, 0, w.squad[tt.out].ID, w.squad[tt.in].ID)
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.True(t, starterOf(t, w, w.squad[tt.out].ID))
		})
	}
}

func TestSameBenchStatusSameError(t *testing.T) {
	w := newWorld(t, models.PhaseOpen)
	w.save(t, w.picks())

	_, err := w.svc.Substitute(context.Background(), w.manager, 0, w.squad[1].ID, w.squad[6].ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidSubstitution))
}

func TestSamePositionSubstituteIgnoresFormation(t *testing.T) {
	w := newWorld(t, models.PhaseOpen)
	picks := w.picks()
	// no forwards start: an illegal formation that a save still accepts.
	for i := range picks {
		picks[i].IsStarter = i != 1 && i < 12
		picks[i].IsCaptain = false
	}
	w.save(t, picks)

	_, err := w.svc.Substitute(context.Background(), w.manager, 0, w.squad[0].ID, w.squad[1].ID)
	require.NoError(t, err)
	assert.True(t, starterOf(t, w, w.squad[1].ID))
	assert.False(t, starterOf(t, w, w.squad[0].ID))
}

func TestSubstitutePlayersMustBeInSquad(t *testing.T) {
	w := newWorld(t, models.PhaseOpen)
	w.save(t, w.picks())

	_, err := w.svc.Substitute(context.Background(), w.manager, 0, w.squad[0].ID, w.spareGK.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodePlayerNotInSquad))

	_, err = w.svc.Substitute(context.Background(), w.manager, 0, w.squad[0].ID, w.squad[0].ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeSamePlayer))
}

func TestSubstituteNotAllowedAfterCompletion(t *testing.T) {
	w := newWorld(t, models.PhaseCompleted)

	_, err := w.svc.Substitute(context.Background(), w.manager, w.gw.ID, w.squad[0].ID, w.squad[1].ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeWrongPhase))
}
