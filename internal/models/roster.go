package models

import (
	"github.com/shopspring/decimal"
)

// PositionID identifies one of the four playing positions.
type PositionID uint

const (
	Goalkeeper PositionID = 1
	Defender   PositionID = 2
	Midfielder PositionID = 3
	Forward    PositionID = 4
)

// Positions lists the playing positions in squad order.
var Positions = []PositionID{Goalkeeper, Defender, Midfielder, Forward}

func (p PositionID) Code() string {
	switch p {
	case Goalkeeper:
		return "GK"
	case Defender:
		return "DEF"
	case Midfielder:
		return "MID"
	case Forward:
		return "FWD"
	}
	return "UNK"
}

func (p PositionID) Name() string {
	switch p {
	case Goalkeeper:
		return "Goalkeeper"
	case Defender:
		return "Defender"
	case Midfielder:
		return "Midfielder"
	case Forward:
		return "Forward"
	}
	return "Unknown"
}

// ParsePosition maps a position code back to its id.
func ParsePosition(code string) (PositionID, bool) {
	for _, p := range Positions {
		if p.Code() == code {
			return p, true
		}
	}
	return 0, false
}

type Position struct {
	ID   PositionID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Code string     `json:"code" gorm:"type:varchar(8);uniqueIndex;not null"`
	Name string     `json:"name" gorm:"not null"`
}

// Team is a real-world club players belong to.
type Team struct {
	BaseModel
	Name      string `json:"name" gorm:"uniqueIndex;not null"`
	ShortName string `json:"short_name" gorm:"type:varchar(8)"`
	Logo      string `json:"logo"`
}

type Player struct {
	BaseModel
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	FullName     string          `json:"full_name" gorm:"index"`
	TeamID       uint            `json:"team_id" gorm:"index;not null"`
	PositionID   PositionID      `json:"position_id" gorm:"index;not null"`
	InitialPrice decimal.Decimal `json:"initial_price" gorm:"type:numeric(6,2);not null;default:0"`
	CurrentPrice decimal.Decimal `json:"current_price" gorm:"type:numeric(6,2);not null;default:0"`
	IsActive     bool            `json:"is_active"`
}

// Manager is a fantasy participant owning squads and a wallet.
type Manager struct {
	BaseModel
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	SquadName string          `json:"squad_name"`
	Email     string          `json:"email" gorm:"uniqueIndex;not null"`
	Wallet    decimal.Decimal `json:"wallet" gorm:"type:numeric(8,2);not null;default:0"`
}
