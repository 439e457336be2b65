package gameweek

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

type FixtureInput struct {
	GameweekID uint
	HomeTeamID uint
	AwayTeamID uint
	KickoffAt  time.Time
}

func (s *Service) CreateFixture(ctx context.Context, in FixtureInput) (*models.Fixture, error) {
	if in.HomeTeamID == in.AwayTeamID {
		return nil, apperror.Validation(apperror.CodeInvalidFixture, "A team cannot play itself")
	}
	if in.KickoffAt.IsZero() {
		return nil, apperror.Validation(apperror.CodeInvalidFixture, "Kickoff time is required")
	}

	fixture := &models.Fixture{
		GameweekID: in.GameweekID,
		HomeTeamID: in.HomeTeamID,
		AwayTeamID: in.AwayTeamID,
		KickoffAt:  in.KickoffAt.UTC(),
	}
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		gw, err := tx.GetGameweek(ctx, in.GameweekID)
		if err != nil {
			return err
		}
		if gw == nil {
			return apperror.NotFound(apperror.CodeGameweekNotFound, "Gameweek %d not found", in.GameweekID)
		}
		if gw.Phase == models.PhaseCompleted {
			return apperror.State(apperror.CodeWrongPhase, "GW %d is already completed", gw.Number)
		}
		teams, err := tx.ListTeamsByIDs(ctx, []uint{in.HomeTeamID, in.AwayTeamID})
		if err != nil {
			return err
		}
		if len(teams) != 2 {
			return apperror.NotFound(apperror.CodeTeamNotFound, "Both teams must exist")
		}
		return tx.CreateFixture(ctx, fixture)
	})
	if err != nil {
		return nil, wrap("Failed to create fixture", err)
	}
	return fixture, nil
}

func (s *Service) ListFixtures(ctx context.Context, gameweekID uint) ([]models.Fixture, error) {
	gw, err := s.GetGameweek(ctx, gameweekID)
	if err != nil {
		return nil, err
	}
	if err := ValidateAction(gw, ActionViewFixtures); err != nil {
		return nil, err
	}
	fixtures, err := s.store.ListFixtures(ctx, gameweekID)
	if err != nil {
		return nil, apperror.Internal("Failed to list fixtures", err)
	}
	return fixtures, nil
}

// UpdateLiveScore records the running score of a fixture. Scores only move
// while the fixture's gameweek is active.
func (s *Service) UpdateLiveScore(ctx context.Context, fixtureID uint, home, away int) (*models.Fixture, error) {
	if home < 0 || away < 0 {
		return nil, apperror.Validation(apperror.CodeInvalidFixture, "Scores cannot be negative")
	}
	var fixture *models.Fixture
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		var err error
		fixture, err = tx.GetFixture(ctx, fixtureID)
		if err != nil {
			return err
		}
		if fixture == nil {
			return apperror.NotFound(apperror.CodeFixtureNotFound, "Fixture %d not found", fixtureID)
		}
		gw, err := tx.GetGameweek(ctx, fixture.GameweekID)
		if err != nil {
			return err
		}
		if gw == nil || gw.Phase != models.PhaseActive {
			number := 0
			if gw != nil {
				number = gw.Number
			}
			return apperror.State(apperror.CodeWrongPhase, "Live scores can only change while GW %d is active", number)
		}
		now := s.now()
		if err := tx.UpdateFixtureScore(ctx, fixtureID, home, away, now); err != nil {
			return err
		}
		fixture.HomeScore, fixture.AwayScore, fixture.UpdatedAt = home, away, now
		return nil
	})
	if err != nil {
		return nil, wrap("Failed to update live score", err)
	}
	s.log.WithFields(logrus.Fields{"fixture_id": fixtureID, "home": home, "away": away}).Debug("live score updated")
	return fixture, nil
}
