package models

import (
	"time"
)

// Phase is the lifecycle stage of a gameweek.
type Phase string

const (
	PhaseUpcoming  Phase = "upcoming"
	PhaseOpen      Phase = "open"
	PhaseActive    Phase = "active"
	PhaseCompleted Phase = "completed"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseUpcoming, PhaseOpen, PhaseActive, PhaseCompleted:
		return true
	}
	return false
}

// Gameweek is one scheduled round of fixtures.
type Gameweek struct {
	BaseModel
	Number         int        `json:"gw_number" gorm:"uniqueIndex;not null"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	Phase          Phase      `json:"phase" gorm:"type:varchar(16);index;not null;default:'upcoming'"`
	PhaseChangedAt *time.Time `json:"phase_changed_at,omitempty"`
}

// Fixture is a real-world match inside a gameweek.
type Fixture struct {
	BaseModel
	GameweekID uint      `json:"gameweek_id" gorm:"index;not null"`
	HomeTeamID uint      `json:"home_team_id" gorm:"not null"`
	AwayTeamID uint      `json:"away_team_id" gorm:"not null"`
	KickoffAt  time.Time `json:"kickoff_at" gorm:"index;not null"`
	HomeScore  int       `json:"home_score" gorm:"default:0"`
	AwayScore  int       `json:"away_score" gorm:"default:0"`
}
