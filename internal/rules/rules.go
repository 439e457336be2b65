// Package rules holds the tunable constants of the game.
package rules

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

// Rules stores squad, transfer and scoring parameters.
type Rules struct {
	SquadSize         int
	Starters          int
	MaxPlayersPerTeam int
	Quotas            map[models.PositionID]int
	FormationMin      map[models.PositionID]int
	TransferPenalty   int
	MaxFreeTransfers  int
	CompletionGrace   time.Duration
	Scoring           map[models.EventType]map[models.PositionID]int
}

func DefaultRules() Rules {
	return Rules{
		SquadSize:         15,
		Starters:          11,
		MaxPlayersPerTeam: 3,
		Quotas: map[models.PositionID]int{
			models.Goalkeeper: 2,
			models.Defender:   5,
			models.Midfielder: 5,
			models.Forward:    3,
		},
		FormationMin: map[models.PositionID]int{
			models.Goalkeeper: 1,
			models.Defender:   3,
			models.Midfielder: 2,
			models.Forward:    1,
		},
		TransferPenalty:  4,
		MaxFreeTransfers: 3,
		CompletionGrace:  2 * time.Hour,
		Scoring: map[models.EventType]map[models.PositionID]int{
			models.EventGoal:       perPosition(6, 6, 5, 4),
			models.EventAssist:     perPosition(3, 3, 3, 3),
			models.EventCleanSheet: perPosition(4, 4, 1, 0),
			models.EventYellowCard: perPosition(-1, -1, -1, -1),
			models.EventRedCard:    perPosition(-3, -3, -3, -3),
			models.EventStarted:    perPosition(2, 2, 2, 2),
		},
	}
}

func perPosition(gk, def, mid, fwd int) map[models.PositionID]int {
	return map[models.PositionID]int{
		models.Goalkeeper: gk,
		models.Defender:   def,
		models.Midfielder: mid,
		models.Forward:    fwd,
	}
}

// FormationMax is the most starters a position may field.
func (r Rules) FormationMax(pos models.PositionID) int {
	return r.FormationMin[pos] + 2
}

// NextFreeTransfers carries an allowance into the following gameweek.
func (r Rules) NextFreeTransfers(previous int) int {
	next := previous + 1
	if next > r.MaxFreeTransfers {
		next = r.MaxFreeTransfers
	}
	if next < 0 {
		next = 0
	}
	return next
}

// ScoringRules flattens the scoring table into rule rows.
func (r Rules) ScoringRules() []models.ScoringRule {
	out := make([]models.ScoringRule, 0, len(r.Scoring)*len(models.Positions))
	for _, event := range models.EventTypes {
		byPos, ok := r.Scoring[event]
		if !ok {
			continue
		}
		for _, pos := range models.Positions {
			out = append(out, models.ScoringRule{EventType: event, PositionID: pos, Points: byPos[pos]})
		}
	}
	return out
}

type fileRules struct {
	Squad struct {
		Size         *int           `yaml:"size"`
		Starters     *int           `yaml:"starters"`
		MaxPerTeam   *int           `yaml:"max_per_team"`
		Quotas       map[string]int `yaml:"quotas"`
		FormationMin map[string]int `yaml:"formation_min"`
	} `yaml:"squad"`
	Transfers struct {
		Penalty *int `yaml:"penalty"`
		MaxFree *int `yaml:"max_free"`
	} `yaml:"transfers"`
	Gameweek struct {
		CompletionGrace *time.Duration `yaml:"completion_grace"`
	} `yaml:"gameweek"`
	Scoring map[string]map[string]int `yaml:"scoring"`
}

// Load overlays the YAML file at path on DefaultRules. A missing file yields the defaults.
func Load(path string) (Rules, error) {
	r := DefaultRules()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return r, fmt.Errorf("read rules: %w", err)
	}
	return Parse(data)
}

// Parse overlays a YAML document on DefaultRules.
func Parse(data []byte) (Rules, error) {
	r := DefaultRules()
	var f fileRules
	if err := yaml.Unmarshal(data, &f); err != nil {
		return r, fmt.Errorf("parse rules: %w", err)
	}

	if f.Squad.Size != nil {
		r.SquadSize = *f.Squad.Size
	}
	if f.Squad.Starters != nil {
		r.Starters = *f.Squad.Starters
	}
	if f.Squad.MaxPerTeam != nil {
		r.MaxPlayersPerTeam = *f.Squad.MaxPerTeam
	}
	if err := overlayPositions(r.Quotas, f.Squad.Quotas); err != nil {
		return r, fmt.Errorf("squad.quotas: %w", err)
	}
	if err := overlayPositions(r.FormationMin, f.Squad.FormationMin); err != nil {
		return r, fmt.Errorf("squad.formation_min: %w", err)
	}
	if f.Transfers.Penalty != nil {
		r.TransferPenalty = *f.Transfers.Penalty
	}
	if f.Transfers.MaxFree != nil {
		r.MaxFreeTransfers = *f.Transfers.MaxFree
	}
	if f.Gameweek.CompletionGrace != nil {
		r.CompletionGrace = *f.Gameweek.CompletionGrace
	}
	for event, byPos := range f.Scoring {
		et := models.EventType(event)
		if !knownEvent(et) {
			return r, fmt.Errorf("scoring: unknown event %q", event)
		}
		if err := overlayPositions(r.Scoring[et], byPos); err != nil {
			return r, fmt.Errorf("scoring.%s: %w", event, err)
		}
	}

	return r, r.Validate()
}

// Validate rejects tables that no squad could satisfy.
func (r Rules) Validate() error {
	total := 0
	for _, pos := range models.Positions {
		total += r.Quotas[pos]
		if r.FormationMin[pos] > r.Quotas[pos] {
			return fmt.Errorf("formation minimum for %s exceeds its quota", pos.Code())
		}
	}
	if total != r.SquadSize {
		return fmt.Errorf("position quotas add up to %d, squad size is %d", total, r.SquadSize)
	}
	if r.Starters <= 0 || r.Starters > r.SquadSize {
		return fmt.Errorf("starters must be between 1 and %d", r.SquadSize)
	}
	if r.MaxFreeTransfers < 1 {
		return fmt.Errorf("max free transfers must be at least 1")
	}
	if r.TransferPenalty < 0 {
		return fmt.Errorf("transfer penalty cannot be negative")
	}
	return nil
}

func overlayPositions(dst map[models.PositionID]int, src map[string]int) error {
	for code, v := range src {
		pos, ok := models.ParsePosition(code)
		if !ok {
			return fmt.Errorf("unknown position %q", code)
		}
		dst[pos] = v
	}
	return nil
}

func knownEvent(et models.EventType) bool {
	for _, e := range models.EventTypes {
		if e == et {
			return true
		}
	}
	return false
}
