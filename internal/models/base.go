// internal/models/base.go
package models

import (
	"gorm.io/gorm"
)

type BaseModel struct {
	gorm.Model
}

// All returns every persisted entity in migration order.
func All() []interface{} {
	return []interface{}{
		&Position{}, &Team{}, &Player{}, &Manager{},
		&Gameweek{}, &Fixture{},
		&SquadEntry{}, &ManagerGameweekState{},
		&Transfer{}, &PlayerPrice{},
		&PlayerStat{}, &ScoringRule{},
	}
}
