package gormstore

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

func (s *Store) CreateTransfer(ctx context.Context, t *models.Transfer) error {
	return translate(s.conn(ctx).Create(t).Error)
}

func (s *Store) ListTransfers(ctx context.Context, managerID, gameweekID uint) ([]models.Transfer, error) {
	var transfers []models.Transfer
	query := s.conn(ctx).Where("manager_id = ?", managerID)
	if gameweekID != 0 {
		query = query.Where("gameweek_id = ?", gameweekID)
	}
	if err := query.Order("transferred_at DESC").Find(&transfers).Error; err != nil {
		return nil, translate(err)
	}
	return transfers, nil
}

func (s *Store) ListGameweekTransfers(ctx context.Context, gameweekID uint) ([]models.Transfer, error) {
	var transfers []models.Transfer
	if err := s.conn(ctx).Where("gameweek_id = ?", gameweekID).Order("transferred_at ASC").Find(&transfers).Error; err != nil {
		return nil, translate(err)
	}
	return transfers, nil
}

func (s *Store) GetPlayerPrice(ctx context.Context, playerID, gameweekID uint) (*models.PlayerPrice, error) {
	return take[models.PlayerPrice](s.conn(ctx).Where("player_id = ? AND gameweek_id = ?", playerID, gameweekID))
}

func (s *Store) SavePlayerPrice(ctx context.Context, price *models.PlayerPrice) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}, {Name: "gameweek_id"}},
		UpdateAll: true,
	}).Create(price).Error
	return translate(err)
}
