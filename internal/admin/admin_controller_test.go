package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/fantasy/config"
	"github.com/DhavalSuthar-24/fantasy/internal/app"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
	"github.com/DhavalSuthar-24/fantasy/internal/storage/memory"
	"github.com/DhavalSuthar-24/fantasy/pkg/token"
)

const secret = "test-secret"

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Reason  string          `json:"reason"`
}

type console struct {
	engine  *gin.Engine
	store   *memory.Store
	home    uint
	away    uint
	striker uint
}

func newConsole(t *testing.T) *console {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	log := logrus.New()
	log.SetOutput(io.Discard)

	c := &console{store: memory.New()}
	home := &models.Team{Name: "Rovers"}
	away := &models.Team{Name: "United"}
	require.NoError(t, c.store.CreateTeam(ctx, home))
	require.NoError(t, c.store.CreateTeam(ctx, away))
	c.home, c.away = home.ID, away.ID
	striker := &models.Player{FullName: "Striker", TeamID: home.ID, PositionID: models.Forward,
		CurrentPrice: decimal.NewFromInt(8), IsActive: true}
	require.NoError(t, c.store.CreatePlayer(ctx, striker))
	c.striker = striker.ID

	cfg := &config.Config{}
	cfg.Game.RecomputeWorkers = 2
	cfg.Game.TxMaxRetries = 3
	a := app.Build(cfg, c.store, nil, rules.DefaultRules(), log)

	c.engine = gin.New()
	AdminRoutes(c.engine.Group("/api"), a, secret)
	return c
}

func (c *console) call(t *testing.T, role, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	signed, err := token.GenerateJWT(1, role, secret, time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+signed)

	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (c *console) admin(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	return c.call(t, token.RoleAdmin, method, path, body)
}

func (c *console) createGameweek(t *testing.T, number int) models.Gameweek {
	t.Helper()
	code, env := c.admin(t, http.MethodPost, "/api/admin/gameweeks", CreateGameweekRequest{Number: number})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var gw models.Gameweek
	require.NoError(t, json.Unmarshal(env.Data, &gw))
	return gw
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	c := newConsole(t)

	code, _ := c.call(t, token.RoleManager, http.MethodPost, "/api/admin/gameweeks/sweep", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = c.admin(t, http.MethodPost, "/api/admin/gameweeks/sweep", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestSeasonLifecycle(t *testing.T) {
	c := newConsole(t)
	gw1 := c.createGameweek(t, 1)
	gw2 := c.createGameweek(t, 2)
	assert.Equal(t, models.PhaseUpcoming, gw1.Phase)

	code, env := c.admin(t, http.MethodPost, "/api/admin/gameweeks", CreateGameweekRequest{Number: 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "duplicate_gameweek", env.Reason)

	code, env = c.admin(t, http.MethodPost, "/api/admin/gameweeks/open-window", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	code, env = c.admin(t, http.MethodPost, "/api/admin/gameweeks/open-window", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "window_already_open", env.Reason)

	kickoff := time.Now().Add(time.Hour).UTC()
	code, env = c.admin(t, http.MethodPost, "/api/admin/fixtures", CreateFixtureRequest{
		GameweekID: gw1.ID, HomeTeamID: c.home, AwayTeamID: c.home, KickoffAt: kickoff,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_fixture", env.Reason)

	code, env = c.admin(t, http.MethodPost, "/api/admin/fixtures", CreateFixtureRequest{
		GameweekID: gw1.ID, HomeTeamID: c.home, AwayTeamID: c.away, KickoffAt: kickoff,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var fixture models.Fixture
	require.NoError(t, json.Unmarshal(env.Data, &fixture))

	scorePath := fmt.Sprintf("/api/admin/fixtures/%d/score", fixture.ID)
	two, one := 2, 1
	code, env = c.admin(t, http.MethodPut, scorePath, LiveScoreRequest{HomeScore: &two, AwayScore: &one})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "wrong_phase", env.Reason)

	transition := fmt.Sprintf("/api/admin/gameweeks/%d/transition", gw1.ID)
	code, env = c.admin(t, http.MethodPost, transition, TransitionRequest{Phase: models.PhaseUpcoming})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "illegal_transition", env.Reason)

	code, env = c.admin(t, http.MethodPost, transition, map[string]string{"phase": "live"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", env.Reason)

	code, env = c.admin(t, http.MethodPost, transition, TransitionRequest{Phase: models.PhaseActive})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = c.admin(t, http.MethodPut, scorePath, LiveScoreRequest{HomeScore: &two, AwayScore: &one})
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &fixture))
	assert.Equal(t, 2, fixture.HomeScore)

	code, env = c.admin(t, http.MethodPost, transition, TransitionRequest{Phase: models.PhaseCompleted})
	require.Equal(t, http.StatusOK, code, env.Message)
	var report struct {
		Completed []int `json:"completed"`
		Opened    []int `json:"opened"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, []int{1}, report.Completed)
	assert.Equal(t, []int{2}, report.Opened)

	next, err := c.store.GetGameweek(context.Background(), gw2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseOpen, next.Phase)
}

func TestStatWrites(t *testing.T) {
	c := newConsole(t)
	gw := c.createGameweek(t, 1)

	goals := 2
	code, env := c.admin(t, http.MethodPut, "/api/admin/stats", StatRequest{PlayerID: c.striker, GameweekID: gw.ID, Goals: &goals})
	require.Equal(t, http.StatusOK, code, env.Message)
	var result struct {
		Stat models.PlayerStat `json:"stat"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 8, result.Stat.TotalPoints)

	negative := -1
	code, env = c.admin(t, http.MethodPut, "/api/admin/stats", StatRequest{PlayerID: c.striker, GameweekID: gw.ID, Assists: &negative})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_stat", env.Reason)

	code, env = c.admin(t, http.MethodPut, "/api/admin/stats", StatRequest{PlayerID: 9999, GameweekID: gw.ID, Goals: &goals})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "player_not_found", env.Reason)

	assists := 1
	code, env = c.admin(t, http.MethodPost, "/api/admin/stats/batch", StatBatchRequest{Updates: []StatRequest{
		{PlayerID: c.striker, GameweekID: gw.ID, Assists: &assists},
	}})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = c.admin(t, http.MethodGet, fmt.Sprintf("/api/admin/gameweeks/%d/points", gw.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var stats []models.PlayerStat
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Goals, "partial update keeps goals")
	assert.Equal(t, 11, stats[0].TotalPoints)

	code, env = c.admin(t, http.MethodPost, "/api/admin/stats/batch", StatBatchRequest{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_request", env.Reason)
}

func TestMaintenanceOperations(t *testing.T) {
	c := newConsole(t)
	gw := c.createGameweek(t, 1)

	code, env := c.admin(t, http.MethodGet, "/api/admin/scoring-rules", nil)
	require.Equal(t, http.StatusOK, code)
	var table []models.ScoringRule
	require.NoError(t, json.Unmarshal(env.Data, &table))
	assert.Len(t, table, len(models.EventTypes)*len(models.Positions))

	code, env = c.admin(t, http.MethodPost, fmt.Sprintf("/api/admin/gameweeks/%d/volumes", gw.ID), nil)
	assert.Equal(t, http.StatusOK, code, env.Message)

	code, env = c.admin(t, http.MethodPost, fmt.Sprintf("/api/admin/gameweeks/%d/recalculate", gw.ID), nil)
	assert.Equal(t, http.StatusOK, code, env.Message)

	code, env = c.admin(t, http.MethodPost, "/api/admin/gameweeks/999/recalculate", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "gameweek_not_found", env.Reason)

	code, _ = c.admin(t, http.MethodPost, "/api/admin/gameweeks/abc/volumes", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
