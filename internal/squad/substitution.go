package squad

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/gameweek"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

type SubstitutionResult struct {
	GameweekID uint                         `json:"gameweek_id"`
	Out        models.SquadEntry            `json:"out"`
	In         models.SquadEntry            `json:"in"`
	State      *models.ManagerGameweekState `json:"state"`
}

// Substitute swaps the starter flag of a starter and a bench player. A swap
// within one position cannot change the formation; any other swap must
// leave a legal formation.
func (s *Service) Substitute(ctx context.Context, managerID, gameweekID, outID, inID uint) (*SubstitutionResult, error) {
	if outID == inID {
		return nil, apperror.Validation(apperror.CodeSamePlayer, "Cannot substitute a player with themselves")
	}

	var result *SubstitutionResult
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		if _, err := lockManager(ctx, tx, managerID); err != nil {
			return err
		}
		gw, err := gameweek.ResolveWindow(ctx, tx, gameweekID, gameweek.ActionSubstitute)
		if err != nil {
			return err
		}
		entries, err := tx.ListSquad(ctx, managerID, gw.ID)
		if err != nil {
			return fmt.Errorf("list squad: %w", err)
		}

		var out, in *models.SquadEntry
		ids := make([]uint, len(entries))
		for i := range entries {
			ids[i] = entries[i].PlayerID
			switch entries[i].PlayerID {
			case outID:
				out = &entries[i]
			case inID:
				in = &entries[i]
			}
		}
		if out == nil || in == nil {
			return apperror.State(apperror.CodePlayerNotInSquad, "Both players must be in the squad for GW %d", gw.Number)
		}
		if out.IsStarter == in.IsStarter {
			return apperror.Validation(apperror.CodeInvalidSubstitution, "Substitution requires one starter and one bench player")
		}

		players, err := tx.ListPlayersByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("resolve squad players: %w", err)
		}
		positions := make(map[uint]models.PositionID, len(players))
		for _, p := range players {
			positions[p.ID] = p.PositionID
		}

		out.IsStarter, in.IsStarter = in.IsStarter, out.IsStarter
		if positions[outID] != positions[inID] {
			starters := make(map[models.PositionID]int)
			for _, e := range entries {
				if e.IsStarter {
					starters[positions[e.PlayerID]]++
				}
			}
			if err := s.validator.checkFormation(starters); err != nil {
				return err
			}
		}

		if err := tx.UpdateSquadEntry(ctx, *out); err != nil {
			return err
		}
		if err := tx.UpdateSquadEntry(ctx, *in); err != nil {
			return err
		}
		state, err := s.scoring.RecomputeInTx(ctx, tx, managerID, gw.ID)
		if err != nil {
			return err
		}
		result = &SubstitutionResult{GameweekID: gw.ID, Out: *out, In: *in, State: state}
		return nil
	})
	if err != nil {
		return nil, wrap("Failed to substitute", err)
	}
	s.log.WithFields(logrus.Fields{
		"manager_id": managerID,
		"out":        outID,
		"in":         inID,
	}).Info("substitution applied")
	return result, nil
}
