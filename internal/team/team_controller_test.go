package team

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage/memory"
)

type envelope struct {
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data"`
	Reason     string          `json:"reason"`
	Pagination struct {
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

func setup(t *testing.T) (*gin.Engine, map[string]uint) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	store := memory.New()

	ids := map[string]uint{}
	for _, name := range []string{"Rovers", "United"} {
		team := &models.Team{Name: name}
		require.NoError(t, store.CreateTeam(ctx, team))
		ids[name] = team.ID
	}
	players := []models.Player{
		{FullName: "Keeper", TeamID: ids["Rovers"], PositionID: models.Goalkeeper},
		{FullName: "Striker", TeamID: ids["Rovers"], PositionID: models.Forward},
		{FullName: "Winger", TeamID: ids["United"], PositionID: models.Midfielder},
	}
	for i := range players {
		players[i].CurrentPrice = decimal.RequireFromString("5.5")
		players[i].IsActive = true
		require.NoError(t, store.CreatePlayer(ctx, &players[i]))
		ids[players[i].FullName] = players[i].ID
	}

	r := gin.New()
	TeamRoutes(r.Group("/api"), store)
	return r, ids
}

func get(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestListPlayersFilters(t *testing.T) {
	r, ids := setup(t)

	w, body := get(t, r, "/api/players?position=FWD")
	require.Equal(t, http.StatusOK, w.Code)
	var views []PlayerView
	require.NoError(t, json.Unmarshal(body.Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Striker", views[0].FullName)
	assert.Equal(t, "Rovers", views[0].TeamName)
	assert.Equal(t, "FWD", views[0].Position)

	w, body = get(t, r, "/api/players?page_size=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), body.Pagination.TotalItems)
	assert.Equal(t, 2, body.Pagination.TotalPages)

	_, body = get(t, r, fmt.Sprintf("/api/players?team_id=%d", ids["United"]))
	require.NoError(t, json.Unmarshal(body.Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Winger", views[0].FullName)
}

func TestListPlayersFarPageIsEmpty(t *testing.T) {
	r, _ := setup(t)

	w, body := get(t, r, "/api/players?page=461168601842738792&page_size=20")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(body.Data))
	assert.Equal(t, int64(3), body.Pagination.TotalItems)
}

func TestListPlayersRejectsUnknownPosition(t *testing.T) {
	r, _ := setup(t)

	w, body := get(t, r, "/api/players?position=SWEEPER")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", body.Reason)
}

func TestGetPlayerAndTeam(t *testing.T) {
	r, ids := setup(t)

	w, body := get(t, r, fmt.Sprintf("/api/players/%d", ids["Keeper"]))
	require.Equal(t, http.StatusOK, w.Code)
	var view PlayerView
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.Equal(t, "GK", view.Position)
	assert.True(t, view.CurrentPrice.Equal(decimal.RequireFromString("5.5")))

	w, _ = get(t, r, "/api/players/999")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = get(t, r, "/api/players/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = get(t, r, fmt.Sprintf("/api/teams/%d", ids["United"]))
	assert.Equal(t, http.StatusOK, w.Code)
}
