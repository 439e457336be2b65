// Package market resolves player prices per gameweek and keeps the
// transfer volume counters in step with the transfer log.
package market

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

// ResolvePrice returns the player's price for the gameweek, falling back to
// the player's current price when no gameweek row exists.
func ResolvePrice(ctx context.Context, tx storage.Store, player *models.Player, gameweekID uint) (decimal.Decimal, error) {
	row, err := tx.GetPlayerPrice(ctx, player.ID, gameweekID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load price for player %d: %w", player.ID, err)
	}
	if row != nil {
		return row.Price, nil
	}
	return player.CurrentPrice, nil
}

type VolumeReport struct {
	GameweekID uint `json:"gameweek_id"`
	Transfers  int  `json:"transfers"`
	Players    int  `json:"players"`
}

type volume struct{ in, out int }

// RefreshTransferVolumes rebuilds transfers_in, transfers_out and
// net_transfers for every player traded in the gameweek. Rows missing a
// price are created at the player's current price. Running it twice gives
// the same counters.
func RefreshTransferVolumes(ctx context.Context, tx storage.Store, gameweekID uint) (*VolumeReport, error) {
	transfers, err := tx.ListGameweekTransfers(ctx, gameweekID)
	if err != nil {
		return nil, fmt.Errorf("list gameweek transfers: %w", err)
	}

	volumes := make(map[uint]*volume)
	bump := func(id uint) *volume {
		if volumes[id] == nil {
			volumes[id] = &volume{}
		}
		return volumes[id]
	}
	for _, t := range transfers {
		bump(t.PlayerInID).in++
		bump(t.PlayerOutID).out++
	}

	ids := make([]uint, 0, len(volumes))
	for id := range volumes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	players, err := tx.ListPlayersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list traded players: %w", err)
	}
	byID := make(map[uint]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	for _, id := range ids {
		row, err := tx.GetPlayerPrice(ctx, id, gameweekID)
		if err != nil {
			return nil, fmt.Errorf("load price for player %d: %w", id, err)
		}
		if row == nil {
			p, ok := byID[id]
			if !ok {
				return nil, apperror.NotFound(apperror.CodePlayerNotFound, "Player %d not found", id)
			}
			row = &models.PlayerPrice{PlayerID: id, GameweekID: gameweekID, Price: p.CurrentPrice}
		}
		v := volumes[id]
		row.TransfersIn = v.in
		row.TransfersOut = v.out
		row.NetTransfers = v.in - v.out
		if err := tx.SavePlayerPrice(ctx, row); err != nil {
			return nil, fmt.Errorf("save price for player %d: %w", id, err)
		}
	}

	return &VolumeReport{GameweekID: gameweekID, Transfers: len(transfers), Players: len(ids)}, nil
}

// Service exposes the volume refresh as a standalone operation.
type Service struct {
	store   storage.Store
	log     logrus.FieldLogger
	retries int
}

func NewService(store storage.Store, log logrus.FieldLogger, retries int) *Service {
	return &Service{store: store, log: log.WithField("component", "market"), retries: retries}
}

func (s *Service) RefreshTransferVolumes(ctx context.Context, gameweekID uint) (*VolumeReport, error) {
	var report *VolumeReport
	err := storage.InTx(ctx, s.store, s.retries, func(tx storage.Store) error {
		gw, err := tx.GetGameweek(ctx, gameweekID)
		if err != nil {
			return err
		}
		if gw == nil {
			return apperror.NotFound(apperror.CodeGameweekNotFound, "Gameweek %d not found", gameweekID)
		}
		report, err = RefreshTransferVolumes(ctx, tx, gameweekID)
		return err
	})
	if err != nil {
		if apperror.From(err) != nil {
			return nil, err
		}
		return nil, apperror.Internal("Failed to refresh transfer volumes", err)
	}
	s.log.WithFields(logrus.Fields{
		"gameweek_id": gameweekID,
		"transfers":   report.Transfers,
		"players":     report.Players,
	}).Info("refreshed transfer volumes")
	return report, nil
}
