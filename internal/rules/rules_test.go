package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
)

func TestDefaultRulesAreConsistent(t *testing.T) {
	r := DefaultRules()
	require.NoError(t, r.Validate())
	assert.Equal(t, 15, r.SquadSize)
	assert.Equal(t, 2*time.Hour, r.CompletionGrace)
	assert.Equal(t, 3, r.FormationMax(models.Goalkeeper))
	assert.Equal(t, 5, r.FormationMax(models.Defender))
}

func TestNextFreeTransfersIsCapped(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, 1, r.NextFreeTransfers(0))
	assert.Equal(t, 2, r.NextFreeTransfers(1))
	assert.Equal(t, 3, r.NextFreeTransfers(2))
	assert.Equal(t, 3, r.NextFreeTransfers(3))
}

func TestParseOverlaysDefaults(t *testing.T) {
	doc := []byte(`
transfers:
  penalty: 6
gameweek:
  completion_grace: 90m
scoring:
  goal:
    FWD: 5
`)
	r, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, 6, r.TransferPenalty)
	assert.Equal(t, 90*time.Minute, r.CompletionGrace)
	assert.Equal(t, 5, r.Scoring[models.EventGoal][models.Forward])
	assert.Equal(t, 5, r.Scoring[models.EventGoal][models.Midfielder])
	assert.Equal(t, 3, r.MaxFreeTransfers)
}

func TestParseRejectsUnknownNames(t *testing.T) {
	_, err := Parse([]byte("scoring:\n  own_goal:\n    DEF: -2\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("squad:\n  quotas:\n    CB: 2\n"))
	assert.Error(t, err)
}

func TestParseRejectsInconsistentQuotas(t *testing.T) {
	_, err := Parse([]byte("squad:\n  quotas:\n    FWD: 4\n"))
	assert.Error(t, err)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRules().TransferPenalty, r.TransferPenalty)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transfers:\n  max_free: 5\n"), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, r.MaxFreeTransfers)
	assert.Equal(t, 5, r.NextFreeTransfers(4))
}

func TestScoringRulesCoverEveryEventAndPosition(t *testing.T) {
	rows := DefaultRules().ScoringRules()
	assert.Len(t, rows, len(models.EventTypes)*len(models.Positions))
}

func TestShippedRulesFileMatchesDefaults(t *testing.T) {
	r, err := Load(filepath.Join("..", "..", "config", "rules.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), r)
}
