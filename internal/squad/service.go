// Package squad saves and reads managers' squads and applies substitutions.
package squad

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/gameweek"
	"github.com/DhavalSuthar-24/fantasy/internal/metrics"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
	"github.com/DhavalSuthar-24/fantasy/internal/scoring"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

type Service struct {
	store     storage.Store
	rules     rules.Rules
	validator *Validator
	scoring   *scoring.Service
	log       logrus.FieldLogger
	retries   int
}

func NewService(store storage.Store, r rules.Rules, sc *scoring.Service, log logrus.FieldLogger, retries int) *Service {
	return &Service{
		store:     store,
		rules:     r,
		validator: NewValidator(r),
		scoring:   sc,
		log:       log.WithField("component", "squad"),
		retries:   retries,
	}
}

type SaveResult struct {
	GameweekID uint                         `json:"gameweek_id"`
	GwNumber   int                          `json:"gw_number"`
	State      *models.ManagerGameweekState `json:"state"`
}

// SquadPlayer is one squad member as shown to the manager.
type SquadPlayer struct {
	PlayerID      uint   `json:"player_id"`
	Name          string `json:"name"`
	PositionID    uint   `json:"position_id"`
	Position      string `json:"position"`
	TeamID        uint   `json:"team_id"`
	TeamName      string `json:"team_name"`
	IsStarter     bool   `json:"is_starter"`
	IsCaptain     bool   `json:"is_captain"`
	IsViceCaptain bool   `json:"is_vice_captain"`
	Points        int    `json:"points"`
}

type SquadView struct {
	Gameweek        uint          `json:"gameweek"`
	ScoringGameweek uint          `json:"scoring_gameweek"`
	Players         []SquadPlayer `json:"squad_players"`
	SquadPoints     int           `json:"squad_points"`
	TransferPenalty int           `json:"transfer_penalty"`
	TotalGWPoints   int           `json:"total_gw_points"`
	FreeTransfers   int           `json:"free_transfers"`
	TransfersMade   int           `json:"transfers_made"`
}

type PlayerPoints struct {
	PlayerID uint `json:"player_id"`
	Points   int  `json:"points"`
	Goals    int  `json:"goals"`
	Assists  int  `json:"assists"`
	Bonus    int  `json:"bonus"`
}

type Overview struct {
	ScoringGameweek uint           `json:"scoring_gameweek"`
	GwNumber        int            `json:"gw_number"`
	SquadPoints     int            `json:"squad_points"`
	CaptainBonus    int            `json:"captain_bonus"`
	BenchPoints     int            `json:"bench_points"`
	TransferPenalty int            `json:"transfer_penalty"`
	TotalGWPoints   int            `json:"total_gw_points"`
	FreeTransfers   int            `json:"free_transfers"`
	TransfersMade   int            `json:"transfers_made"`
	Players         []PlayerPoints `json:"players"`
}

// ValidateAndSaveSquad replaces the manager's squad for the gameweek after
// validating it, creates the gameweek state if needed and scores the squad.
// gameweekID 0 targets the current open or active gameweek.
func (s *Service) ValidateAndSaveSquad(ctx context.Context, managerID, gameweekID uint, picks []Pick) (*SaveResult, error) {
	var result *SaveResult
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		if _, err := lockManager(ctx, tx, managerID); err != nil {
			return err
		}
		gw, err := gameweek.ResolveWindow(ctx, tx, gameweekID, gameweek.ActionSaveSquad)
		if err != nil {
			return err
		}
		if _, err := s.validator.ValidateSelection(ctx, tx, picks); err != nil {
			return err
		}

		entries := make([]models.SquadEntry, len(picks))
		for i, p := range picks {
			entries[i] = models.SquadEntry{
				ManagerID:     managerID,
				GameweekID:    gw.ID,
				PlayerID:      p.PlayerID,
				IsStarter:     p.IsStarter,
				IsCaptain:     p.IsCaptain,
				IsViceCaptain: p.IsViceCaptain,
			}
		}
		if err := tx.ReplaceSquad(ctx, managerID, gw.ID, entries); err != nil {
			return fmt.Errorf("replace squad: %w", err)
		}
		if _, _, err := scoring.EnsureState(ctx, tx, s.rules, managerID, gw); err != nil {
			return err
		}
		state, err := s.scoring.RecomputeInTx(ctx, tx, managerID, gw.ID)
		if err != nil {
			return err
		}
		result = &SaveResult{GameweekID: gw.ID, GwNumber: gw.Number, State: state}
		return nil
	})
	metrics.RecordSquadSave(err)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.log.WithError(err).WithField("manager_id", managerID).Error("squad save failed")
		}
		return nil, wrap("Failed to save squad", err)
	}
	s.log.WithFields(logrus.Fields{
		"manager_id": managerID,
		"gw_number":  result.GwNumber,
	}).Info("squad saved")
	return result, nil
}

// GetSquad returns the squad of the current gameweek with points from the
// scoring gameweek. Penalties stay hidden until that gameweek completes.
func (s *Service) GetSquad(ctx context.Context, managerID uint) (*SquadView, error) {
	if err := s.requireManager(ctx, managerID); err != nil {
		return nil, err
	}
	gw, err := gameweek.Current(ctx, s.store)
	if err != nil {
		return nil, wrap("Failed to load squad", err)
	}
	ref, err := gameweek.Reference(ctx, s.store)
	if err != nil {
		return nil, apperror.Internal("Failed to load squad", err)
	}
	if ref == nil {
		ref = gw
	}

	players, err := s.squadPlayers(ctx, managerID, gw.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to load squad", err)
	}
	state, err := s.store.GetManagerState(ctx, managerID, ref.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to load squad", err)
	}

	view := &SquadView{Gameweek: gw.ID, ScoringGameweek: ref.ID, Players: players}
	if state != nil {
		view.SquadPoints = state.SquadPoints
		view.TotalGWPoints = state.TotalGWPoints
		view.FreeTransfers = state.FreeTransfers
		view.TransfersMade = state.TransfersMade
		view.TransferPenalty = visiblePenalty(ref, state)
	}
	return view, nil
}

func (s *Service) squadPlayers(ctx context.Context, managerID, gameweekID uint) ([]SquadPlayer, error) {
	entries, err := s.store.ListSquad(ctx, managerID, gameweekID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(entries))
	for i, e := range entries {
		ids[i] = e.PlayerID
	}
	players, err := s.store.ListPlayersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Player, len(players))
	teamIDs := make([]uint, 0, len(players))
	for _, p := range players {
		byID[p.ID] = p
		teamIDs = append(teamIDs, p.TeamID)
	}
	teams, err := s.store.ListTeamsByIDs(ctx, teamIDs)
	if err != nil {
		return nil, err
	}
	teamNames := make(map[uint]string, len(teams))
	for _, t := range teams {
		teamNames[t.ID] = t.Name
	}
	points, err := s.points(ctx, gameweekID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]SquadPlayer, 0, len(entries))
	for _, e := range entries {
		p := byID[e.PlayerID]
		out = append(out, SquadPlayer{
			PlayerID:      e.PlayerID,
			Name:          p.FullName,
			PositionID:    uint(p.PositionID),
			Position:      p.PositionID.Code(),
			TeamID:        p.TeamID,
			TeamName:      teamNames[p.TeamID],
			IsStarter:     e.IsStarter,
			IsCaptain:     e.IsCaptain,
			IsViceCaptain: e.IsViceCaptain,
			Points:        points[e.PlayerID].TotalPoints,
		})
	}
	return out, nil
}

func (s *Service) points(ctx context.Context, gameweekID uint, ids []uint) (map[uint]models.PlayerStat, error) {
	out := make(map[uint]models.PlayerStat, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	stats, err := s.store.ListPlayerStats(ctx, gameweekID, ids)
	if err != nil {
		return nil, err
	}
	for _, st := range stats {
		out[st.PlayerID] = st
	}
	return out, nil
}

// Overview summarises the manager's scoring gameweek.
func (s *Service) Overview(ctx context.Context, managerID uint) (*Overview, error) {
	if err := s.requireManager(ctx, managerID); err != nil {
		return nil, err
	}
	ref, err := gameweek.Reference(ctx, s.store)
	if err != nil {
		return nil, apperror.Internal("Failed to load overview", err)
	}
	if ref == nil {
		return nil, apperror.State(apperror.CodeNoActiveWindow, "No active gameweek")
	}
	state, err := s.store.GetManagerState(ctx, managerID, ref.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to load overview", err)
	}
	if state == nil {
		return nil, apperror.State(apperror.CodeNoGameweekState, "No gameweek state found for GW %d", ref.Number)
	}

	entries, err := s.store.ListSquad(ctx, managerID, ref.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to load overview", err)
	}
	ids := make([]uint, len(entries))
	for i, e := range entries {
		ids[i] = e.PlayerID
	}
	stats, err := s.points(ctx, ref.ID, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to load overview", err)
	}

	ov := &Overview{
		ScoringGameweek: ref.ID,
		GwNumber:        ref.Number,
		SquadPoints:     state.SquadPoints,
		CaptainBonus:    state.CaptainBonus,
		BenchPoints:     state.BenchPoints,
		TransferPenalty: visiblePenalty(ref, state),
		TotalGWPoints:   state.TotalGWPoints,
		FreeTransfers:   state.FreeTransfers,
		TransfersMade:   state.TransfersMade,
		Players:         make([]PlayerPoints, 0, len(entries)),
	}
	for _, id := range ids {
		st := stats[id]
		ov.Players = append(ov.Players, PlayerPoints{
			PlayerID: id,
			Points:   st.TotalPoints,
			Goals:    st.Goals,
			Assists:  st.Assists,
			Bonus:    st.BonusPoints,
		})
	}
	return ov, nil
}

// visiblePenalty hides the penalty until the gameweek is completed.
func visiblePenalty(gw *models.Gameweek, state *models.ManagerGameweekState) int {
	if gw.Phase == models.PhaseCompleted {
		return state.TransferPenalty
	}
	return 0
}

func (s *Service) requireManager(ctx context.Context, managerID uint) error {
	m, err := s.store.GetManager(ctx, managerID)
	if err != nil {
		return apperror.Internal("Failed to load manager", err)
	}
	if m == nil {
		return apperror.NotFound(apperror.CodeManagerNotFound, "Manager %d not found", managerID)
	}
	return nil
}

func lockManager(ctx context.Context, tx storage.Store, managerID uint) (*models.Manager, error) {
	m, err := tx.LockManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("lock manager: %w", err)
	}
	if m == nil {
		return nil, apperror.NotFound(apperror.CodeManagerNotFound, "Manager %d not found", managerID)
	}
	return m, nil
}

func wrap(message string, err error) error {
	if apperror.From(err) != nil {
		return err
	}
	return apperror.Internal(message, err)
}
