package manager

import (
	"github.com/DhavalSuthar-24/fantasy/internal/gameweek"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

// GameweekView is a gameweek with the actions its phase permits.
type GameweekView struct {
	*models.Gameweek
	AllowedActions []gameweek.Action `json:"allowed_actions"`
}
