package scoring

import (
	"context"
	"fmt"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

// CarryForward is the free-transfer allowance that follows prev. A manager
// without a previous state starts with one.
func CarryForward(prev *models.ManagerGameweekState, r rules.Rules) int {
	if prev == nil {
		return 1
	}
	return r.NextFreeTransfers(prev.FreeTransfers)
}

// EnsureState returns the manager's state for gw, creating it when missing
// with the allowance carried from the previous numbered gameweek. The
// boolean reports whether a row was created.
func EnsureState(ctx context.Context, tx storage.Store, r rules.Rules, managerID uint, gw *models.Gameweek) (*models.ManagerGameweekState, bool, error) {
	state, err := tx.GetManagerState(ctx, managerID, gw.ID)
	if err != nil {
		return nil, false, fmt.Errorf("load gameweek state: %w", err)
	}
	if state != nil {
		return state, false, nil
	}

	var prev *models.ManagerGameweekState
	prevGW, err := tx.GetGameweekByNumber(ctx, gw.Number-1)
	if err != nil {
		return nil, false, fmt.Errorf("load previous gameweek: %w", err)
	}
	if prevGW != nil {
		if prev, err = tx.GetManagerState(ctx, managerID, prevGW.ID); err != nil {
			return nil, false, fmt.Errorf("load previous gameweek state: %w", err)
		}
	}

	state = &models.ManagerGameweekState{
		ManagerID:     managerID,
		GameweekID:    gw.ID,
		FreeTransfers: CarryForward(prev, r),
	}
	if err := tx.SaveManagerState(ctx, state); err != nil {
		return nil, false, fmt.Errorf("create gameweek state: %w", err)
	}
	return state, true, nil
}
