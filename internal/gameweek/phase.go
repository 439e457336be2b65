package gameweek

import (
	"context"
	"fmt"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

// Action is a manager-facing operation gated by the gameweek phase.
type Action string

const (
	ActionViewFixtures    Action = "view_fixtures"
	ActionMakeTransfer    Action = "make_transfer"
	ActionSaveSquad       Action = "save_squad"
	ActionSubstitute      Action = "substitute"
	ActionViewLiveScores  Action = "view_live_scores"
	ActionViewFinalPoints Action = "view_final_points"
)

var allowedActions = map[models.Phase][]Action{
	models.PhaseUpcoming:  {ActionViewFixtures},
	models.PhaseOpen:      {ActionMakeTransfer, ActionSaveSquad, ActionSubstitute, ActionViewFixtures},
	models.PhaseActive:    {ActionSaveSquad, ActionSubstitute, ActionViewLiveScores, ActionViewFixtures},
	models.PhaseCompleted: {ActionViewFinalPoints, ActionViewFixtures},
}

// next holds the only legal forward move out of each phase.
var next = map[models.Phase]models.Phase{
	models.PhaseUpcoming: models.PhaseOpen,
	models.PhaseOpen:     models.PhaseActive,
	models.PhaseActive:   models.PhaseCompleted,
}

func AllowedActions(phase models.Phase) []Action {
	return allowedActions[phase]
}

func Allowed(phase models.Phase, action Action) bool {
	for _, a := range allowedActions[phase] {
		if a == action {
			return true
		}
	}
	return false
}

func CanTransition(from, to models.Phase) bool {
	n, ok := next[from]
	return ok && n == to
}

// ValidateAction rejects actions the gameweek's phase does not permit.
func ValidateAction(gw *models.Gameweek, action Action) error {
	if Allowed(gw.Phase, action) {
		return nil
	}
	return apperror.State(apperror.CodeWrongPhase,
		"Action %s is not allowed while GW %d is %s", action, gw.Number, gw.Phase).
		WithDetails("phase", gw.Phase)
}

// ResolveWindow picks the gameweek a manager action applies to. An explicit
// gameweekID must pass the phase gate. Otherwise transfers use the latest
// open gameweek and other actions the latest open or active one.
func ResolveWindow(ctx context.Context, store storage.GameweekStore, gameweekID uint, action Action) (*models.Gameweek, error) {
	if gameweekID != 0 {
		gw, err := store.GetGameweek(ctx, gameweekID)
		if err != nil {
			return nil, fmt.Errorf("load gameweek: %w", err)
		}
		if gw == nil {
			return nil, apperror.NotFound(apperror.CodeGameweekNotFound, "Gameweek %d not found", gameweekID)
		}
		if action == ActionMakeTransfer && gw.Phase != models.PhaseOpen {
			return nil, apperror.State(apperror.CodeNoTransferWindow, "GW %d is not open for transfers", gw.Number)
		}
		if err := ValidateAction(gw, action); err != nil {
			return nil, err
		}
		return gw, nil
	}

	if action == ActionMakeTransfer {
		gw, err := store.LatestGameweek(ctx, models.PhaseOpen)
		if err != nil {
			return nil, fmt.Errorf("find open gameweek: %w", err)
		}
		if gw == nil {
			return nil, apperror.State(apperror.CodeNoTransferWindow, "No open transfer window")
		}
		return gw, nil
	}

	gw, err := Current(ctx, store)
	if err != nil {
		return nil, err
	}
	if err := ValidateAction(gw, action); err != nil {
		return nil, err
	}
	return gw, nil
}

// Reference is the gameweek points are reported against: the active one,
// else the latest completed, else the open one. It is nil before the season.
func Reference(ctx context.Context, store storage.GameweekStore) (*models.Gameweek, error) {
	for _, phase := range []models.Phase{models.PhaseActive, models.PhaseCompleted, models.PhaseOpen} {
		gw, err := store.LatestGameweek(ctx, phase)
		if err != nil {
			return nil, fmt.Errorf("find %s gameweek: %w", phase, err)
		}
		if gw != nil {
			return gw, nil
		}
	}
	return nil, nil
}

// Current is the latest open or active gameweek.
func Current(ctx context.Context, store storage.GameweekStore) (*models.Gameweek, error) {
	gw, err := store.LatestGameweek(ctx, models.PhaseOpen, models.PhaseActive)
	if err != nil {
		return nil, fmt.Errorf("find current gameweek: %w", err)
	}
	if gw == nil {
		return nil, apperror.State(apperror.CodeNoActiveWindow, "No open or active gameweek")
	}
	return gw, nil
}
