package models

import (
	"time"
)

// SquadEntry is one player in a manager's squad for a gameweek.
type SquadEntry struct {
	ManagerID     uint `json:"manager_id" gorm:"primaryKey;autoIncrement:false"`
	GameweekID    uint `json:"gameweek_id" gorm:"primaryKey;autoIncrement:false;index"`
	PlayerID      uint `json:"player_id" gorm:"primaryKey;autoIncrement:false;index"`
	IsStarter     bool `json:"is_starter"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

// ManagerGameweekState holds a manager's transfer rights and points for one gameweek.
type ManagerGameweekState struct {
	ManagerID       uint      `json:"manager_id" gorm:"primaryKey;autoIncrement:false"`
	GameweekID      uint      `json:"gameweek_id" gorm:"primaryKey;autoIncrement:false;index"`
	FreeTransfers   int       `json:"free_transfers" gorm:"not null"`
	TransfersMade   int       `json:"transfers_made" gorm:"not null;default:0"`
	SquadPoints     int       `json:"squad_points" gorm:"not null;default:0"`
	CaptainBonus    int       `json:"captain_bonus" gorm:"not null;default:0"`
	BenchPoints     int       `json:"bench_points" gorm:"not null;default:0"`
	TransferPenalty int       `json:"transfer_penalty" gorm:"not null;default:0"`
	TotalGWPoints   int       `json:"total_gw_points" gorm:"column:total_gw_points;not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SyncTotal keeps total_gw_points equal to squad_points minus transfer_penalty.
func (s *ManagerGameweekState) SyncTotal() {
	s.TotalGWPoints = s.SquadPoints - s.TransferPenalty
}
