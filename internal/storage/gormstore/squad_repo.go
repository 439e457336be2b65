package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

func (s *Store) ListSquad(ctx context.Context, managerID, gameweekID uint) ([]models.SquadEntry, error) {
	var entries []models.SquadEntry
	err := s.conn(ctx).
		Where("manager_id = ? AND gameweek_id = ?", managerID, gameweekID).
		Order("player_id").
		Find(&entries).Error
	if err != nil {
		return nil, translate(err)
	}
	return entries, nil
}

func (s *Store) ReplaceSquad(ctx context.Context, managerID, gameweekID uint, entries []models.SquadEntry) error {
	db := s.conn(ctx)
	if err := db.Where("manager_id = ? AND gameweek_id = ?", managerID, gameweekID).Delete(&models.SquadEntry{}).Error; err != nil {
		return translate(err)
	}
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.SquadEntry, len(entries))
	for i, e := range entries {
		e.ManagerID = managerID
		e.GameweekID = gameweekID
		rows[i] = e
	}
	return translate(db.Create(&rows).Error)
}

func (s *Store) UpdateSquadEntry(ctx context.Context, entry models.SquadEntry) error {
	res := s.conn(ctx).Model(&models.SquadEntry{}).
		Where("manager_id = ? AND gameweek_id = ? AND player_id = ?", entry.ManagerID, entry.GameweekID, entry.PlayerID).
		Updates(map[string]interface{}{
			"is_starter":      entry.IsStarter,
			"is_captain":      entry.IsCaptain,
			"is_vice_captain": entry.IsViceCaptain,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("squad entry for player %d not found", entry.PlayerID)
	}
	return nil
}

func (s *Store) SwapSquadPlayer(ctx context.Context, managerID, gameweekID, outID, inID uint) error {
	res := s.conn(ctx).Model(&models.SquadEntry{}).
		Where("manager_id = ? AND gameweek_id = ? AND player_id = ?", managerID, gameweekID, outID).
		Update("player_id", inID)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("squad entry for player %d not found", outID)
	}
	return nil
}

func (s *Store) ListGameweekSquads(ctx context.Context, gameweekID uint) ([]models.SquadEntry, error) {
	var entries []models.SquadEntry
	err := s.conn(ctx).Where("gameweek_id = ?", gameweekID).Order("manager_id, player_id").Find(&entries).Error
	if err != nil {
		return nil, translate(err)
	}
	return entries, nil
}

func (s *Store) ListManagersHoldingPlayer(ctx context.Context, playerID, gameweekID uint) ([]uint, error) {
	var ids []uint
	err := s.conn(ctx).Model(&models.SquadEntry{}).
		Where("player_id = ? AND gameweek_id = ?", playerID, gameweekID).
		Distinct().
		Order("manager_id").
		Pluck("manager_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

func (s *Store) ListManagersWithSquad(ctx context.Context, gameweekID uint) ([]uint, error) {
	var ids []uint
	err := s.conn(ctx).Model(&models.SquadEntry{}).
		Where("gameweek_id = ?", gameweekID).
		Distinct().
		Order("manager_id").
		Pluck("manager_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

func (s *Store) GetManagerState(ctx context.Context, managerID, gameweekID uint) (*models.ManagerGameweekState, error) {
	return take[models.ManagerGameweekState](s.conn(ctx).Where("manager_id = ? AND gameweek_id = ?", managerID, gameweekID))
}

func (s *Store) SaveManagerState(ctx context.Context, state *models.ManagerGameweekState) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "manager_id"}, {Name: "gameweek_id"}},
		UpdateAll: true,
	}).Create(state).Error
	return translate(err)
}

func (s *Store) ListManagerStates(ctx context.Context, gameweekID uint) ([]models.ManagerGameweekState, error) {
	var states []models.ManagerGameweekState
	if err := s.conn(ctx).Where("gameweek_id = ?", gameweekID).Order("manager_id").Find(&states).Error; err != nil {
		return nil, translate(err)
	}
	return states, nil
}

func (s *Store) SumManagerPoints(ctx context.Context, maxNumber int) (map[uint]int, error) {
	var rows []struct {
		ManagerID uint
		Total     int
	}
	err := s.conn(ctx).Table("manager_gameweek_states AS s").
		Select("s.manager_id AS manager_id, COALESCE(SUM(s.total_gw_points), 0) AS total").
		Joins("JOIN gameweeks g ON g.id = s.gameweek_id AND g.deleted_at IS NULL").
		Where("g.number <= ?", maxNumber).
		Group("s.manager_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	totals := make(map[uint]int, len(rows))
	for _, r := range rows {
		totals[r.ManagerID] = r.Total
	}
	return totals, nil
}
