package scoring

import (
	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

// RuleBook maps an event and a position to the points it is worth.
type RuleBook map[models.EventType]map[models.PositionID]int

func NewRuleBook(rules []models.ScoringRule) RuleBook {
	rb := make(RuleBook)
	for _, r := range rules {
		if rb[r.EventType] == nil {
			rb[r.EventType] = make(map[models.PositionID]int)
		}
		rb[r.EventType][r.PositionID] = r.Points
	}
	return rb
}

// Value is zero for events or positions without a rule.
func (rb RuleBook) Value(event models.EventType, pos models.PositionID) int {
	return rb[event][pos]
}

// PlayerPoints scores one stat line for a player in the given position.
func PlayerPoints(stat models.PlayerStat, pos models.PositionID, rb RuleBook) int {
	points := stat.Goals*rb.Value(models.EventGoal, pos) +
		stat.Assists*rb.Value(models.EventAssist, pos) +
		stat.CleanSheets*rb.Value(models.EventCleanSheet, pos) +
		stat.YellowCards*rb.Value(models.EventYellowCard, pos) +
		stat.RedCards*rb.Value(models.EventRedCard, pos)
	if stat.Started {
		points += rb.Value(models.EventStarted, pos)
	}
	return points + stat.BonusPoints
}

// SquadScore is a squad's aggregate for one gameweek.
type SquadScore struct {
	SquadPoints  int
	CaptainBonus int
	BenchPoints  int
}

// ScoreSquad sums every squad member's points and counts the captain twice.
// Bench points are reported separately but are part of SquadPoints.
// Players missing from points score zero.
func ScoreSquad(entries []models.SquadEntry, points map[uint]int) SquadScore {
	var score SquadScore
	for _, e := range entries {
		p := points[e.PlayerID]
		score.SquadPoints += p
		if e.IsCaptain {
			score.CaptainBonus += p
		}
		if !e.IsStarter {
			score.BenchPoints += p
		}
	}
	score.SquadPoints += score.CaptainBonus
	return score
}
