package gormstore

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

func (s *Store) GetPlayerStat(ctx context.Context, playerID, gameweekID uint) (*models.PlayerStat, error) {
	return take[models.PlayerStat](s.conn(ctx).Where("player_id = ? AND gameweek_id = ?", playerID, gameweekID))
}

func (s *Store) SavePlayerStat(ctx context.Context, stat *models.PlayerStat) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}, {Name: "gameweek_id"}},
		UpdateAll: true,
	}).Create(stat).Error
	return translate(err)
}

func (s *Store) ListPlayerStats(ctx context.Context, gameweekID uint, playerIDs []uint) ([]models.PlayerStat, error) {
	if playerIDs != nil && len(playerIDs) == 0 {
		return nil, nil
	}
	var stats []models.PlayerStat
	query := s.conn(ctx).Where("gameweek_id = ?", gameweekID)
	if playerIDs != nil {
		query = query.Where("player_id IN ?", playerIDs)
	}
	if err := query.Order("player_id").Find(&stats).Error; err != nil {
		return nil, translate(err)
	}
	return stats, nil
}

func (s *Store) ListScoringRules(ctx context.Context) ([]models.ScoringRule, error) {
	var rules []models.ScoringRule
	if err := s.conn(ctx).Order("event_type, position_id").Find(&rules).Error; err != nil {
		return nil, translate(err)
	}
	return rules, nil
}

func (s *Store) SaveScoringRule(ctx context.Context, rule *models.ScoringRule) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_type"}, {Name: "position_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"points"}),
	}).Create(rule).Error
	return translate(err)
}
