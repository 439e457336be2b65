package gormstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

func (s *Store) CreateGameweek(ctx context.Context, gw *models.Gameweek) error {
	if gw.Phase == "" {
		gw.Phase = models.PhaseUpcoming
	}
	return translate(s.conn(ctx).Create(gw).Error)
}

func (s *Store) GetGameweek(ctx context.Context, id uint) (*models.Gameweek, error) {
	return take[models.Gameweek](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) GetGameweekByNumber(ctx context.Context, number int) (*models.Gameweek, error) {
	return take[models.Gameweek](s.conn(ctx).Where("number = ?", number))
}

func (s *Store) ListGameweeks(ctx context.Context) ([]models.Gameweek, error) {
	var gws []models.Gameweek
	if err := s.conn(ctx).Order("number ASC").Find(&gws).Error; err != nil {
		return nil, translate(err)
	}
	return gws, nil
}

func (s *Store) LatestGameweek(ctx context.Context, phases ...models.Phase) (*models.Gameweek, error) {
	return take[models.Gameweek](s.conn(ctx).Where("phase IN ?", phases).Order("number DESC"))
}

func (s *Store) OldestGameweek(ctx context.Context, phase models.Phase) (*models.Gameweek, error) {
	return take[models.Gameweek](s.conn(ctx).Where("phase = ?", phase).Order("number ASC"))
}

func (s *Store) NextGameweek(ctx context.Context, number int) (*models.Gameweek, error) {
	return take[models.Gameweek](s.conn(ctx).Where("number > ?", number).Order("number ASC"))
}

func (s *Store) LockGameweeks(ctx context.Context) error {
	var ids []uint
	err := s.conn(ctx).Model(&models.Gameweek{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("id").
		Pluck("id", &ids).Error
	return translate(err)
}

func (s *Store) UpdateGameweekPhase(ctx context.Context, id uint, phase models.Phase, at time.Time) error {
	res := s.conn(ctx).Model(&models.Gameweek{}).Where("id = ?", id).Updates(map[string]interface{}{
		"phase":            phase,
		"phase_changed_at": at,
		"updated_at":       at,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gameweek %d not found", id)
	}
	return nil
}

func (s *Store) CreateFixture(ctx context.Context, f *models.Fixture) error {
	return translate(s.conn(ctx).Create(f).Error)
}

func (s *Store) GetFixture(ctx context.Context, id uint) (*models.Fixture, error) {
	return take[models.Fixture](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) ListFixtures(ctx context.Context, gameweekID uint) ([]models.Fixture, error) {
	var fixtures []models.Fixture
	err := s.conn(ctx).Where("gameweek_id = ?", gameweekID).Order("kickoff_at ASC, id ASC").Find(&fixtures).Error
	if err != nil {
		return nil, translate(err)
	}
	return fixtures, nil
}

func (s *Store) UpdateFixtureScore(ctx context.Context, id uint, home, away int, at time.Time) error {
	res := s.conn(ctx).Model(&models.Fixture{}).Where("id = ?", id).Updates(map[string]interface{}{
		"home_score": home,
		"away_score": away,
		"updated_at": at,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("fixture %d not found", id)
	}
	return nil
}

func (s *Store) KickoffWindow(ctx context.Context, gameweekID uint) (time.Time, time.Time, bool, error) {
	var row struct {
		First *time.Time
		Last  *time.Time
	}
	err := s.conn(ctx).Model(&models.Fixture{}).
		Select("MIN(kickoff_at) AS first, MAX(kickoff_at) AS last").
		Where("gameweek_id = ?", gameweekID).
		Scan(&row).Error
	if err != nil {
		return time.Time{}, time.Time{}, false, translate(err)
	}
	if row.First == nil || row.Last == nil {
		return time.Time{}, time.Time{}, false, nil
	}
	return *row.First, *row.Last, true, nil
}
