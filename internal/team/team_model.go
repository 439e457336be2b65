// team/model.go
package team

import (
	"github.com/shopspring/decimal"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

// PlayerView is a roster player with its club and position resolved.
type PlayerView struct {
	ID           uint            `json:"id"`
	FullName     string          `json:"full_name"`
	TeamID       uint            `json:"team_id"`
	TeamName     string          `json:"team_name"`
	PositionID   uint            `json:"position_id"`
	Position     string          `json:"position"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	IsActive     bool            `json:"is_active"`
}

// ListPlayersQuery binds the roster filters.
type ListPlayersQuery struct {
	TeamID   uint   `form:"team_id"`
	Position string `form:"position" binding:"omitempty,oneof=GK DEF MID FWD"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func toView(p models.Player, teams map[uint]models.Team) PlayerView {
	return PlayerView{
		ID:           p.ID,
		FullName:     p.FullName,
		TeamID:       p.TeamID,
		TeamName:     teams[p.TeamID].Name,
		PositionID:   uint(p.PositionID),
		Position:     p.PositionID.Code(),
		CurrentPrice: p.CurrentPrice,
		IsActive:     p.IsActive,
	}
}
