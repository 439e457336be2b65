package gormstore

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

func (s *Store) EnsurePositions(ctx context.Context) error {
	positions := make([]models.Position, 0, len(models.Positions))
	for _, p := range models.Positions {
		positions = append(positions, models.Position{ID: p, Code: p.Code(), Name: p.Name()})
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "name"}),
	}).Create(&positions).Error
	return translate(err)
}

func (s *Store) CreateTeam(ctx context.Context, team *models.Team) error {
	return translate(s.conn(ctx).Create(team).Error)
}

func (s *Store) GetTeam(ctx context.Context, id uint) (*models.Team, error) {
	return take[models.Team](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) ListTeamsByIDs(ctx context.Context, ids []uint) ([]models.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var teams []models.Team
	if err := s.conn(ctx).Where("id IN ?", ids).Order("id").Find(&teams).Error; err != nil {
		return nil, translate(err)
	}
	return teams, nil
}

func (s *Store) ListManagersByIDs(ctx context.Context, ids []uint) ([]models.Manager, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var managers []models.Manager
	if err := s.conn(ctx).Where("id IN ?", ids).Order("id").Find(&managers).Error; err != nil {
		return nil, translate(err)
	}
	return managers, nil
}

func (s *Store) CreatePlayer(ctx context.Context, p *models.Player) error {
	return translate(s.conn(ctx).Create(p).Error)
}

func (s *Store) GetPlayer(ctx context.Context, id uint) (*models.Player, error) {
	return take[models.Player](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) ListPlayersByIDs(ctx context.Context, ids []uint) ([]models.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var players []models.Player
	if err := s.conn(ctx).Where("id IN ?", ids).Order("id").Find(&players).Error; err != nil {
		return nil, translate(err)
	}
	return players, nil
}

func (s *Store) ListPlayers(ctx context.Context, filter storage.PlayerFilter) ([]models.Player, int64, error) {
	var players []models.Player
	var total int64

	query := s.conn(ctx).Model(&models.Player{})
	if filter.TeamID != 0 {
		query = query.Where("team_id = ?", filter.TeamID)
	}
	if filter.PositionID != 0 {
		query = query.Where("position_id = ?", filter.PositionID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	query = query.Order("id")
	if filter.Limit > 0 {
		start, _, ok := storage.PageBounds(filter.Page, filter.Limit, int(total))
		if !ok {
			return []models.Player{}, total, nil
		}
		query = query.Offset(start).Limit(filter.Limit)
	}
	if err := query.Find(&players).Error; err != nil {
		return nil, 0, translate(err)
	}
	return players, total, nil
}

func (s *Store) CreateManager(ctx context.Context, m *models.Manager) error {
	return translate(s.conn(ctx).Create(m).Error)
}

func (s *Store) GetManager(ctx context.Context, id uint) (*models.Manager, error) {
	return take[models.Manager](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) LockManager(ctx context.Context, id uint) (*models.Manager, error) {
	return take[models.Manager](s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (s *Store) UpdateManagerWallet(ctx context.Context, id uint, wallet decimal.Decimal) error {
	res := s.conn(ctx).Model(&models.Manager{}).Where("id = ?", id).Update("wallet", wallet)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("manager %d not found", id)
	}
	return nil
}

func (s *Store) ListManagerIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.conn(ctx).Model(&models.Manager{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, translate(err)
	}
	return ids, nil
}
