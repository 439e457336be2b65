// Package gameweek drives the season: it opens transfer windows, moves
// gameweeks through their phases as fixtures kick off and finish, rolls
// squads forward and manages fixtures.
package gameweek

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/market"
	"github.com/DhavalSuthar-24/fantasy/internal/metrics"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
	"github.com/DhavalSuthar-24/fantasy/internal/scoring"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

type Options struct {
	Retries int
	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	store   storage.Store
	rules   rules.Rules
	scoring *scoring.Service
	log     logrus.FieldLogger
	retries int
	now     func() time.Time

	// sweepMu serializes phase changes inside this process; row locks on
	// the gameweek table cover other processes.
	sweepMu sync.Mutex
}

func NewService(store storage.Store, r rules.Rules, sc *scoring.Service, log logrus.FieldLogger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	return &Service{
		store:   store,
		rules:   r,
		scoring: sc,
		log:     log.WithField("component", "gameweek"),
		retries: opts.Retries,
		now:     opts.Now,
	}
}

// WindowResult describes a newly opened transfer window.
type WindowResult struct {
	Gameweek     *models.Gameweek `json:"gameweek"`
	SeededStates int              `json:"seeded_states"`
}

// TransitionReport lists the gameweek numbers a sweep moved.
type TransitionReport struct {
	Activated  []int                       `json:"activated,omitempty"`
	Completed  []int                       `json:"completed,omitempty"`
	Opened     []int                       `json:"opened,omitempty"`
	Recomputes []*scoring.RecomputeSummary `json:"recomputes,omitempty"`
}

// Changed reports whether the sweep did anything.
func (r *TransitionReport) Changed() bool {
	return len(r.Activated)+len(r.Completed)+len(r.Opened) > 0
}

func (s *Service) CreateGameweek(ctx context.Context, number int, startsAt, endsAt *time.Time) (*models.Gameweek, error) {
	if number < 1 {
		return nil, apperror.Validation(apperror.CodeInvalidGameweek, "Gameweek number must be positive")
	}
	if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
		return nil, apperror.Validation(apperror.CodeInvalidGameweek, "Gameweek cannot end before it starts")
	}
	gw := &models.Gameweek{Number: number, StartsAt: startsAt, EndsAt: endsAt, Phase: models.PhaseUpcoming}
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		existing, err := tx.GetGameweekByNumber(ctx, number)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.Validation(apperror.CodeDuplicateGameweek, "GW %d already exists", number)
		}
		return tx.CreateGameweek(ctx, gw)
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, apperror.Validation(apperror.CodeDuplicateGameweek, "GW %d already exists", number)
	}
	if err != nil {
		return nil, wrap("Failed to create gameweek", err)
	}
	s.log.WithField("gw_number", number).Info("gameweek created")
	return gw, nil
}

func (s *Service) GetGameweek(ctx context.Context, id uint) (*models.Gameweek, error) {
	gw, err := s.store.GetGameweek(ctx, id)
	if err != nil {
		return nil, apperror.Internal("Failed to load gameweek", err)
	}
	if gw == nil {
		return nil, apperror.NotFound(apperror.CodeGameweekNotFound, "Gameweek %d not found", id)
	}
	return gw, nil
}

func (s *Service) ListGameweeks(ctx context.Context) ([]models.Gameweek, error) {
	gws, err := s.store.ListGameweeks(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to list gameweeks", err)
	}
	return gws, nil
}

// OpenTransferWindow opens the oldest upcoming gameweek and seeds a state
// row for every manager lacking one. Only one gameweek may be open.
func (s *Service) OpenTransferWindow(ctx context.Context) (*WindowResult, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	var result *WindowResult
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		if err := tx.LockGameweeks(ctx); err != nil {
			return err
		}
		target, err := tx.OldestGameweek(ctx, models.PhaseUpcoming)
		if err != nil {
			return err
		}
		if target == nil {
			if err := s.ensureNoOpenWindow(ctx, tx); err != nil {
				return err
			}
			return apperror.State(apperror.CodeNoUpcomingGameweek, "No upcoming gameweek to open")
		}
		result, err = s.openInTx(ctx, tx, target)
		return err
	})
	if err != nil {
		return nil, wrap("Failed to open transfer window", err)
	}
	s.log.WithFields(logrus.Fields{
		"gw_number": result.Gameweek.Number,
		"seeded":    result.SeededStates,
	}).Info("transfer window opened")
	return result, nil
}

func (s *Service) ensureNoOpenWindow(ctx context.Context, tx storage.Store) error {
	open, err := tx.LatestGameweek(ctx, models.PhaseOpen)
	if err != nil {
		return err
	}
	if open != nil {
		return apperror.State(apperror.CodeWindowAlreadyOpen, "Cannot open window. GW %d already open", open.Number)
	}
	return nil
}

func (s *Service) openInTx(ctx context.Context, tx storage.Store, gw *models.Gameweek) (*WindowResult, error) {
	if err := s.ensureNoOpenWindow(ctx, tx); err != nil {
		return nil, err
	}
	now := s.now()
	if err := tx.UpdateGameweekPhase(ctx, gw.ID, models.PhaseOpen, now); err != nil {
		return nil, fmt.Errorf("open GW %d: %w", gw.Number, err)
	}
	gw.Phase = models.PhaseOpen
	gw.PhaseChangedAt = &now
	metrics.RecordPhaseTransition(string(models.PhaseOpen))

	managers, err := tx.ListManagerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	seeded := 0
	for _, id := range managers {
		if _, err := tx.LockManager(ctx, id); err != nil {
			return nil, fmt.Errorf("lock manager %d: %w", id, err)
		}
		state, err := tx.GetManagerState(ctx, id, gw.ID)
		if err != nil {
			return nil, err
		}
		if state != nil {
			continue
		}
		state = &models.ManagerGameweekState{ManagerID: id, GameweekID: gw.ID, FreeTransfers: 1}
		state.SyncTotal()
		if err := tx.SaveManagerState(ctx, state); err != nil {
			return nil, fmt.Errorf("seed state for manager %d: %w", id, err)
		}
		seeded++
	}
	return &WindowResult{Gameweek: gw, SeededStates: seeded}, nil
}

func (s *Service) activateInTx(ctx context.Context, tx storage.Store, gw *models.Gameweek) error {
	now := s.now()
	if err := tx.UpdateGameweekPhase(ctx, gw.ID, models.PhaseActive, now); err != nil {
		return fmt.Errorf("activate GW %d: %w", gw.Number, err)
	}
	gw.Phase = models.PhaseActive
	gw.PhaseChangedAt = &now
	metrics.RecordPhaseTransition(string(models.PhaseActive))
	if _, err := market.RefreshTransferVolumes(ctx, tx, gw.ID); err != nil {
		return fmt.Errorf("refresh volumes for GW %d: %w", gw.Number, err)
	}
	return nil
}

// completeInTx marks gw completed and rolls its squads into the next
// gameweek in the same transaction, so a failed rollover leaves gw active
// for the next sweep. It returns the gameweek it opened, if any.
func (s *Service) completeInTx(ctx context.Context, tx storage.Store, gw *models.Gameweek) (*models.Gameweek, error) {
	now := s.now()
	if err := tx.UpdateGameweekPhase(ctx, gw.ID, models.PhaseCompleted, now); err != nil {
		return nil, fmt.Errorf("complete GW %d: %w", gw.Number, err)
	}
	opened, err := s.rolloverInTx(ctx, tx, gw)
	if err != nil {
		return nil, fmt.Errorf("roll over GW %d: %w", gw.Number, err)
	}
	gw.Phase = models.PhaseCompleted
	gw.PhaseChangedAt = &now
	metrics.RecordPhaseTransition(string(models.PhaseCompleted))
	return opened, nil
}

// CheckAndAdvanceGameweekStates applies every time-based transition that is
// due: open gameweeks go active at their first kickoff and active ones
// complete once the grace period after their last kickoff has passed.
// Calling it when nothing is due changes nothing.
func (s *Service) CheckAndAdvanceGameweekStates(ctx context.Context) (*TransitionReport, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	report := &TransitionReport{}
	var completed []*models.Gameweek
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		report = &TransitionReport{}
		completed = nil
		if err := tx.LockGameweeks(ctx); err != nil {
			return err
		}
		gws, err := tx.ListGameweeks(ctx)
		if err != nil {
			return err
		}
		now := s.now()
		for i := range gws {
			gw := &gws[i]
			if gw.Phase != models.PhaseOpen && gw.Phase != models.PhaseActive {
				continue
			}
			first, last, ok, err := tx.KickoffWindow(ctx, gw.ID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if gw.Phase == models.PhaseOpen && !now.Before(first) {
				if err := s.activateInTx(ctx, tx, gw); err != nil {
					return err
				}
				report.Activated = append(report.Activated, gw.Number)
			}
			if gw.Phase == models.PhaseActive && !now.Before(last.Add(s.rules.CompletionGrace)) {
				opened, err := s.completeInTx(ctx, tx, gw)
				if err != nil {
					return err
				}
				report.Completed = append(report.Completed, gw.Number)
				if opened != nil {
					report.Opened = append(report.Opened, opened.Number)
				}
				completed = append(completed, gw)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap("Failed to advance gameweeks", err)
	}

	var errs []error
	for _, gw := range completed {
		summary, err := s.finalRecompute(ctx, gw)
		if summary != nil {
			report.Recomputes = append(report.Recomputes, summary)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if report.Changed() {
		s.log.WithFields(logrus.Fields{
			"activated": report.Activated,
			"completed": report.Completed,
			"opened":    report.Opened,
		}).Info("gameweek phases advanced")
	}
	if len(errs) > 0 {
		return report, wrap("Gameweek completed but follow-up work failed", errors.Join(errs...))
	}
	return report, nil
}

// finalRecompute rescores the completed gameweek once its phase change and
// rollover have committed. A failure here is repaired by an admin recalc.
func (s *Service) finalRecompute(ctx context.Context, gw *models.Gameweek) (*scoring.RecomputeSummary, error) {
	summary, err := s.scoring.RecalculateAllManagerPoints(ctx, gw.ID)
	if err != nil {
		s.log.WithError(err).WithField("gw_number", gw.Number).Error("final recompute failed")
	}
	return summary, err
}

// rolloverInTx copies every squad of the completed gameweek into the next
// one, opening it if it is still upcoming, and carries free transfers
// forward. The caller holds the gameweek locks. It returns the gameweek it
// opened, if any.
func (s *Service) rolloverInTx(ctx context.Context, tx storage.Store, completed *models.Gameweek) (*models.Gameweek, error) {
	nextGW, err := tx.NextGameweek(ctx, completed.Number)
	if err != nil {
		return nil, err
	}
	if nextGW == nil {
		return nil, nil
	}
	var opened *models.Gameweek
	if nextGW.Phase == models.PhaseUpcoming {
		open, err := tx.LatestGameweek(ctx, models.PhaseOpen)
		if err != nil {
			return nil, err
		}
		if open == nil {
			if err := tx.UpdateGameweekPhase(ctx, nextGW.ID, models.PhaseOpen, s.now()); err != nil {
				return nil, err
			}
			nextGW.Phase = models.PhaseOpen
			opened = nextGW
			metrics.RecordPhaseTransition(string(models.PhaseOpen))
		}
	}

	entries, err := tx.ListGameweekSquads(ctx, completed.ID)
	if err != nil {
		return nil, err
	}
	squads := make(map[uint][]models.SquadEntry)
	var order []uint
	for _, e := range entries {
		if _, seen := squads[e.ManagerID]; !seen {
			order = append(order, e.ManagerID)
		}
		squads[e.ManagerID] = append(squads[e.ManagerID], e)
	}
	states, err := tx.ListManagerStates(ctx, completed.ID)
	if err != nil {
		return nil, err
	}
	prevStates := make(map[uint]*models.ManagerGameweekState, len(states))
	for i := range states {
		st := &states[i]
		prevStates[st.ManagerID] = st
		if _, seen := squads[st.ManagerID]; !seen {
			order = append(order, st.ManagerID)
			squads[st.ManagerID] = nil
		}
	}

	for _, managerID := range order {
		if err := s.rollManager(ctx, tx, managerID, nextGW, squads[managerID], prevStates[managerID]); err != nil {
			return nil, fmt.Errorf("roll manager %d into GW %d: %w", managerID, nextGW.Number, err)
		}
	}
	return opened, nil
}

func (s *Service) rollManager(ctx context.Context, tx storage.Store, managerID uint, nextGW *models.Gameweek, squad []models.SquadEntry, prev *models.ManagerGameweekState) error {
	// Transfers and squad saves on the next gameweek take the same lock.
	if _, err := tx.LockManager(ctx, managerID); err != nil {
		return err
	}
	if len(squad) > 0 {
		existing, err := tx.ListSquad(ctx, managerID, nextGW.ID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			copied := make([]models.SquadEntry, len(squad))
			for i, e := range squad {
				e.GameweekID = nextGW.ID
				copied[i] = e
			}
			if err := tx.ReplaceSquad(ctx, managerID, nextGW.ID, copied); err != nil {
				return err
			}
		}
	}

	allowance := scoring.CarryForward(prev, s.rules)
	state, err := tx.GetManagerState(ctx, managerID, nextGW.ID)
	if err != nil {
		return err
	}
	switch {
	case state == nil:
		state = &models.ManagerGameweekState{ManagerID: managerID, GameweekID: nextGW.ID, FreeTransfers: allowance}
		state.SyncTotal()
		if err := tx.SaveManagerState(ctx, state); err != nil {
			return err
		}
	case state.TransfersMade == 0 && state.FreeTransfers != allowance:
		state.FreeTransfers = allowance
		if err := tx.SaveManagerState(ctx, state); err != nil {
			return err
		}
	}
	_, err = s.scoring.RecomputeInTx(ctx, tx, managerID, nextGW.ID)
	return err
}

// Transition moves a gameweek one step along its lifecycle on an admin's
// request, running the same side effects as the sweep.
func (s *Service) Transition(ctx context.Context, gameweekID uint, target models.Phase) (*TransitionReport, error) {
	if !target.Valid() {
		return nil, apperror.Validation(apperror.CodeIllegalTransition, "Unknown phase %q", target)
	}

	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	report := &TransitionReport{}
	var gw *models.Gameweek
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		report = &TransitionReport{}
		if err := tx.LockGameweeks(ctx); err != nil {
			return err
		}
		var err error
		gw, err = tx.GetGameweek(ctx, gameweekID)
		if err != nil {
			return err
		}
		if gw == nil {
			return apperror.NotFound(apperror.CodeGameweekNotFound, "Gameweek %d not found", gameweekID)
		}
		if !CanTransition(gw.Phase, target) {
			return apperror.State(apperror.CodeIllegalTransition,
				"Cannot move GW %d from %s to %s", gw.Number, gw.Phase, target)
		}
		switch target {
		case models.PhaseOpen:
			if _, err := s.openInTx(ctx, tx, gw); err != nil {
				return err
			}
			report.Opened = append(report.Opened, gw.Number)
		case models.PhaseActive:
			if err := s.activateInTx(ctx, tx, gw); err != nil {
				return err
			}
			report.Activated = append(report.Activated, gw.Number)
		case models.PhaseCompleted:
			opened, err := s.completeInTx(ctx, tx, gw)
			if err != nil {
				return err
			}
			report.Completed = append(report.Completed, gw.Number)
			if opened != nil {
				report.Opened = append(report.Opened, opened.Number)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap("Failed to transition gameweek", err)
	}
	s.log.WithFields(logrus.Fields{"gw_number": gw.Number, "phase": target}).Info("gameweek transitioned by admin")

	if target == models.PhaseCompleted {
		summary, err := s.finalRecompute(ctx, gw)
		if summary != nil {
			report.Recomputes = append(report.Recomputes, summary)
		}
		if err != nil {
			return report, wrap("Gameweek completed but follow-up work failed", err)
		}
	}
	return report, nil
}

func wrap(message string, err error) error {
	if apperror.From(err) != nil {
		return err
	}
	return apperror.Internal(message, err)
}
