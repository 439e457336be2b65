package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
)

func TestPlayerPoints(t *testing.T) {
	rb := NewRuleBook(rules.DefaultRules().ScoringRules())

	tests := []struct {
		name string
		stat models.PlayerStat
		pos  models.PositionID
		want int
	}{
		{"defender clean sheet and goal", models.PlayerStat{Goals: 1, CleanSheets: 1, Started: true}, models.Defender, 12},
		{"forward brace", models.PlayerStat{Goals: 2}, models.Forward, 8},
		{"midfielder cards", models.PlayerStat{YellowCards: 1, RedCards: 1, Started: true}, models.Midfielder, -2},
		{"forward clean sheet is worthless", models.PlayerStat{CleanSheets: 1}, models.Forward, 0},
		{"bonus only", models.PlayerStat{BonusPoints: 3}, models.Goalkeeper, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlayerPoints(tt.stat, tt.pos, rb))
		})
	}
}

func TestScoreSquadDoublesCaptain(t *testing.T) {
	entries := []models.SquadEntry{
		{PlayerID: 1, IsStarter: true, IsCaptain: true},
		{PlayerID: 2, IsStarter: true, IsViceCaptain: true},
		{PlayerID: 3},
	}
	score := ScoreSquad(entries, map[uint]int{1: 6, 2: 5, 3: 2})

	assert.Equal(t, 19, score.SquadPoints)
	assert.Equal(t, 6, score.CaptainBonus)
	assert.Equal(t, 2, score.BenchPoints)
}

func TestCarryForward(t *testing.T) {
	r := rules.DefaultRules()
	assert.Equal(t, 1, CarryForward(nil, r))
	assert.Equal(t, 2, CarryForward(&models.ManagerGameweekState{FreeTransfers: 1}, r))
	assert.Equal(t, 3, CarryForward(&models.ManagerGameweekState{FreeTransfers: 3}, r))
	assert.Equal(t, 1, CarryForward(&models.ManagerGameweekState{FreeTransfers: 0}, r))
}
