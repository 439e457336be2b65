package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer is an append-only record of one player swap.
type Transfer struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ManagerID     uint            `json:"manager_id" gorm:"index:idx_transfer_manager_gw;not null"`
	GameweekID    uint            `json:"gameweek_id" gorm:"index:idx_transfer_manager_gw;not null"`
	PlayerOutID   uint            `json:"player_out_id" gorm:"not null"`
	PlayerInID    uint            `json:"player_in_id" gorm:"not null"`
	PriceOut      decimal.Decimal `json:"price_out" gorm:"type:numeric(6,2);not null"`
	PriceIn       decimal.Decimal `json:"price_in" gorm:"type:numeric(6,2);not null"`
	Penalized     bool            `json:"penalized"`
	TransferredAt time.Time       `json:"transferred_at" gorm:"not null"`
}

// PlayerPrice is a player's price and transfer volume for one gameweek.
type PlayerPrice struct {
	PlayerID     uint            `json:"player_id" gorm:"primaryKey;autoIncrement:false"`
	GameweekID   uint            `json:"gameweek_id" gorm:"primaryKey;autoIncrement:false;index"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(6,2);not null"`
	TransfersIn  int             `json:"transfers_in" gorm:"not null;default:0"`
	TransfersOut int             `json:"transfers_out" gorm:"not null;default:0"`
	NetTransfers int             `json:"net_transfers" gorm:"not null;default:0"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
