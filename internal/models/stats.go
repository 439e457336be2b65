package models

import (
	"time"
)

// EventType is a scoreable match event.
type EventType string

const (
	EventGoal       EventType = "goal"
	EventAssist     EventType = "assist"
	EventCleanSheet EventType = "clean_sheet"
	EventYellowCard EventType = "yellow_card"
	EventRedCard    EventType = "red_card"
	EventStarted    EventType = "started"
)

var EventTypes = []EventType{EventGoal, EventAssist, EventCleanSheet, EventYellowCard, EventRedCard, EventStarted}

// PlayerStat is a player's match output for one gameweek.
type PlayerStat struct {
	PlayerID      uint      `json:"player_id" gorm:"primaryKey;autoIncrement:false"`
	GameweekID    uint      `json:"gameweek_id" gorm:"primaryKey;autoIncrement:false;index"`
	Goals         int       `json:"goals" gorm:"not null;default:0"`
	Assists       int       `json:"assists" gorm:"not null;default:0"`
	CleanSheets   int       `json:"clean_sheets" gorm:"not null;default:0"`
	YellowCards   int       `json:"yellow_cards" gorm:"not null;default:0"`
	RedCards      int       `json:"red_cards" gorm:"not null;default:0"`
	BonusPoints   int       `json:"bonus_points" gorm:"not null;default:0"`
	MinutesPlayed int       `json:"minutes_played" gorm:"not null;default:0"`
	Started       bool      `json:"started"`
	TotalPoints   int       `json:"total_points" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ScoringRule awards points for an event by position.
type ScoringRule struct {
	EventType  EventType  `json:"event_type" gorm:"type:varchar(32);primaryKey"`
	PositionID PositionID `json:"position_id" gorm:"primaryKey;autoIncrement:false"`
	Points     int        `json:"points" gorm:"not null"`
}
