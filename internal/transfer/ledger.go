// Package transfer applies player trades against a manager's wallet and
// free-transfer allowance and keeps the append-only transfer log.
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/gameweek"
	"github.com/DhavalSuthar-24/fantasy/internal/market"
	"github.com/DhavalSuthar-24/fantasy/internal/metrics"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
	"github.com/DhavalSuthar-24/fantasy/internal/scoring"
	"github.com/DhavalSuthar-24/fantasy/internal/squad"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

type Request struct {
	ManagerID   uint
	PlayerOutID uint
	PlayerInID  uint
	// GameweekID 0 means the open gameweek.
	GameweekID uint
}

type Receipt struct {
	TransferID      uuid.UUID       `json:"transfer_id"`
	GameweekID      uint            `json:"gameweek_id"`
	GwNumber        int             `json:"gw_number"`
	PlayerOutID     uint            `json:"player_out_id"`
	PlayerInID      uint            `json:"player_in_id"`
	PriceOut        decimal.Decimal `json:"price_out"`
	PriceIn         decimal.Decimal `json:"price_in"`
	Wallet          decimal.Decimal `json:"wallet"`
	Penalized       bool            `json:"penalized"`
	FreeTransfers   int             `json:"free_transfers"`
	TransfersMade   int             `json:"transfers_made"`
	TransferPenalty int             `json:"transfer_penalty"`
	TotalGWPoints   int             `json:"total_gw_points"`
}

type Ledger struct {
	store     storage.Store
	rules     rules.Rules
	validator *squad.Validator
	scoring   *scoring.Service
	log       logrus.FieldLogger
	retries   int
	now       func() time.Time
}

func NewLedger(store storage.Store, r rules.Rules, sc *scoring.Service, log logrus.FieldLogger, retries int) *Ledger {
	return &Ledger{
		store:     store,
		rules:     r,
		validator: squad.NewValidator(r),
		scoring:   sc,
		log:       log.WithField("component", "transfer"),
		retries:   retries,
		now:       time.Now,
	}
}

// MakeTransfer swaps one squad player for another during an open window.
// The first transfers each gameweek use up free transfers; once none are
// left every transfer costs the configured penalty.
func (l *Ledger) MakeTransfer(ctx context.Context, req Request) (*Receipt, error) {
	if req.PlayerOutID == req.PlayerInID {
		return nil, apperror.Validation(apperror.CodeSamePlayer, "Player out and player in must differ")
	}

	var receipt *Receipt
	err := storage.InTx(ctx, l.store, l.retries, func(tx storage.Store) error {
		var err error
		receipt, err = l.apply(ctx, tx, req)
		return err
	})
	metrics.RecordTransfer(err)
	if err != nil {
		entry := l.log.WithError(err).WithFields(logrus.Fields{
			"manager_id": req.ManagerID,
			"out":        req.PlayerOutID,
			"in":         req.PlayerInID,
		})
		if apperror.KindOf(err) == apperror.KindInternal {
			entry.Error("transfer failed")
			return nil, apperror.Internal("Failed to make transfer", err)
		}
		entry.Info("transfer rejected")
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"manager_id": req.ManagerID,
		"gw_number":  receipt.GwNumber,
		"out":        receipt.PlayerOutID,
		"in":         receipt.PlayerInID,
		"penalized":  receipt.Penalized,
	}).Info("transfer made")
	return receipt, nil
}

func (l *Ledger) apply(ctx context.Context, tx storage.Store, req Request) (*Receipt, error) {
	manager, err := tx.LockManager(ctx, req.ManagerID)
	if err != nil {
		return nil, fmt.Errorf("lock manager: %w", err)
	}
	if manager == nil {
		return nil, apperror.NotFound(apperror.CodeManagerNotFound, "Manager %d not found", req.ManagerID)
	}
	gw, err := gameweek.ResolveWindow(ctx, tx, req.GameweekID, gameweek.ActionMakeTransfer)
	if err != nil {
		return nil, err
	}

	entries, err := tx.ListSquad(ctx, req.ManagerID, gw.ID)
	if err != nil {
		return nil, fmt.Errorf("list squad: %w", err)
	}
	ids := make([]uint, 0, len(entries))
	hasOut := false
	for _, e := range entries {
		switch e.PlayerID {
		case req.PlayerInID:
			return nil, apperror.Validation(apperror.CodePlayerAlreadyInSquad, "Player %d is already in your squad", req.PlayerInID)
		case req.PlayerOutID:
			hasOut = true
			ids = append(ids, req.PlayerInID)
		default:
			ids = append(ids, e.PlayerID)
		}
	}
	if !hasOut {
		return nil, apperror.State(apperror.CodePlayerNotInSquad, "Player %d is not in your squad for GW %d", req.PlayerOutID, gw.Number)
	}

	playerOut, err := tx.GetPlayer(ctx, req.PlayerOutID)
	if err != nil {
		return nil, fmt.Errorf("load player out: %w", err)
	}
	playerIn, err := tx.GetPlayer(ctx, req.PlayerInID)
	if err != nil {
		return nil, fmt.Errorf("load player in: %w", err)
	}
	if playerOut == nil || playerIn == nil {
		return nil, apperror.NotFound(apperror.CodePlayerNotFound, "Player not found")
	}

	simulated, err := tx.ListPlayersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve simulated squad: %w", err)
	}
	if err := l.validator.CheckComposition(ctx, tx, simulated); err != nil {
		return nil, err
	}

	priceOut, err := market.ResolvePrice(ctx, tx, playerOut, gw.ID)
	if err != nil {
		return nil, err
	}
	priceIn, err := market.ResolvePrice(ctx, tx, playerIn, gw.ID)
	if err != nil {
		return nil, err
	}
	balance := manager.Wallet.Add(priceOut).Sub(priceIn)
	if balance.IsNegative() {
		return nil, apperror.Economic(apperror.CodeInsufficientBudget,
			"Insufficient budget: %s short", balance.Neg().StringFixed(1)).
			WithDetails("wallet", manager.Wallet.StringFixed(1)).
			WithDetails("price_out", priceOut.StringFixed(1)).
			WithDetails("price_in", priceIn.StringFixed(1)).
			WithDetails("shortfall", balance.Neg().StringFixed(1))
	}

	state, err := tx.GetManagerState(ctx, req.ManagerID, gw.ID)
	if err != nil {
		return nil, fmt.Errorf("load gameweek state: %w", err)
	}
	if state == nil {
		return nil, apperror.State(apperror.CodeNoGameweekState, "No gameweek state for GW %d", gw.Number)
	}
	penalized := state.FreeTransfers <= 0
	if penalized {
		state.TransferPenalty += l.rules.TransferPenalty
	} else {
		state.FreeTransfers--
	}
	state.TransfersMade++
	state.SyncTotal()

	if err := tx.UpdateManagerWallet(ctx, req.ManagerID, balance); err != nil {
		return nil, fmt.Errorf("update wallet: %w", err)
	}
	record := &models.Transfer{
		ID:            uuid.New(),
		ManagerID:     req.ManagerID,
		GameweekID:    gw.ID,
		PlayerOutID:   req.PlayerOutID,
		PlayerInID:    req.PlayerInID,
		PriceOut:      priceOut,
		PriceIn:       priceIn,
		Penalized:     penalized,
		TransferredAt: l.now().UTC(),
	}
	if err := tx.CreateTransfer(ctx, record); err != nil {
		return nil, fmt.Errorf("record transfer: %w", err)
	}
	if err := tx.SwapSquadPlayer(ctx, req.ManagerID, gw.ID, req.PlayerOutID, req.PlayerInID); err != nil {
		return nil, fmt.Errorf("swap squad player: %w", err)
	}
	if err := tx.SaveManagerState(ctx, state); err != nil {
		return nil, fmt.Errorf("save gameweek state: %w", err)
	}
	state, err = l.scoring.RecomputeInTx(ctx, tx, req.ManagerID, gw.ID)
	if err != nil {
		return nil, err
	}

	return &Receipt{
		TransferID:      record.ID,
		GameweekID:      gw.ID,
		GwNumber:        gw.Number,
		PlayerOutID:     req.PlayerOutID,
		PlayerInID:      req.PlayerInID,
		PriceOut:        priceOut,
		PriceIn:         priceIn,
		Wallet:          balance,
		Penalized:       penalized,
		FreeTransfers:   state.FreeTransfers,
		TransfersMade:   state.TransfersMade,
		TransferPenalty: state.TransferPenalty,
		TotalGWPoints:   state.TotalGWPoints,
	}, nil
}

// History lists a manager's transfers, newest first. gameweekID 0 lists
// the whole season.
func (l *Ledger) History(ctx context.Context, managerID, gameweekID uint) ([]models.Transfer, error) {
	m, err := l.store.GetManager(ctx, managerID)
	if err != nil {
		return nil, apperror.Internal("Failed to load manager", err)
	}
	if m == nil {
		return nil, apperror.NotFound(apperror.CodeManagerNotFound, "Manager %d not found", managerID)
	}
	transfers, err := l.store.ListTransfers(ctx, managerID, gameweekID)
	if err != nil {
		return nil, apperror.Internal("Failed to list transfers", err)
	}
	if transfers == nil {
		transfers = []models.Transfer{}
	}
	return transfers, nil
}
