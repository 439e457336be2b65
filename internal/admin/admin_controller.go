package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/fantasy/internal/gameweek"
	"github.com/DhavalSuthar-24/fantasy/internal/market"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/scoring"
	"github.com/DhavalSuthar-24/fantasy/pkg/responses"
	"github.com/DhavalSuthar-24/fantasy/pkg/validator"
)

// AdminController runs the season: gameweeks, fixtures, stats and recomputes.
type AdminController struct {
	gameweeks *gameweek.Service
	scoring   *scoring.Service
	market    *market.Service
}

func NewAdminController(gameweeks *gameweek.Service, sc *scoring.Service, m *market.Service) *AdminController {
	return &AdminController{gameweeks: gameweeks, scoring: sc, market: m}
}

// --- DTOs for requests ---

type CreateGameweekRequest struct {
	Number   int        `json:"gw_number" binding:"required,min=1"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type TransitionRequest struct {
	Phase models.Phase `json:"phase" binding:"required,oneof=upcoming open active completed"`
}

type CreateFixtureRequest struct {
	GameweekID uint      `json:"gameweek_id" binding:"required"`
	HomeTeamID uint      `json:"home_team_id" binding:"required"`
	AwayTeamID uint      `json:"away_team_id" binding:"required"`
	KickoffAt  time.Time `json:"kickoff_at" binding:"required"`
}

type LiveScoreRequest struct {
	HomeScore *int `json:"home_score" binding:"required,min=0"`
	AwayScore *int `json:"away_score" binding:"required,min=0"`
}

// StatRequest is a partial stat write; omitted counters keep their value.
type StatRequest struct {
	PlayerID      uint  `json:"player_id" binding:"required"`
	GameweekID    uint  `json:"gameweek_id" binding:"required"`
	Goals         *int  `json:"goals"`
	Assists       *int  `json:"assists"`
	CleanSheets   *int  `json:"clean_sheets"`
	YellowCards   *int  `json:"yellow_cards"`
	RedCards      *int  `json:"red_cards"`
	BonusPoints   *int  `json:"bonus_points"`
	MinutesPlayed *int  `json:"minutes_played"`
	Started       *bool `json:"started"`
}

type StatBatchRequest struct {
	Updates []StatRequest `json:"updates" binding:"required,min=1,dive"`
}

func (r StatRequest) update() scoring.StatUpdate {
	return scoring.StatUpdate{
		PlayerID:      r.PlayerID,
		GameweekID:    r.GameweekID,
		Goals:         r.Goals,
		Assists:       r.Assists,
		CleanSheets:   r.CleanSheets,
		YellowCards:   r.YellowCards,
		RedCards:      r.RedCards,
		BonusPoints:   r.BonusPoints,
		MinutesPlayed: r.MinutesPlayed,
		Started:       r.Started,
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// --- Gameweek Handlers ---

// CreateGameweek godoc
// @Summary Schedule a gameweek
// @Tags Admin
// @Accept json
// @Produce json
// @Param gameweek body CreateGameweekRequest true "Gameweek"
// @Success 201 {object} responses.SuccessResponse{data=models.Gameweek}
// @Failure 400 {object} responses.ErrorResponse "Invalid or duplicate gameweek"
// @Security ApiKeyAuth
// @Router /admin/gameweeks [post]
func (ac *AdminController) CreateGameweek(c *gin.Context) {
	var req CreateGameweekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	gw, err := ac.gameweeks.CreateGameweek(c.Request.Context(), req.Number, req.StartsAt, req.EndsAt)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Gameweek created successfully", gw)
}

// Transition godoc
// @Summary Move a gameweek to its next phase
// @Tags Admin
// @Accept json
// @Produce json
// @Param gameweek_id path int true "Gameweek ID"
// @Param transition body TransitionRequest true "Target phase"
// @Success 200 {object} responses.SuccessResponse{data=gameweek.TransitionReport}
// @Failure 409 {object} responses.ErrorResponse "Illegal transition"
// @Security ApiKeyAuth
// @Router /admin/gameweeks/{gameweek_id}/transition [post]
func (ac *AdminController) Transition(c *gin.Context) {
	id, ok := parseID(c, "gameweek_id")
	if !ok {
		return
	}
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	report, err := ac.gameweeks.Transition(c.Request.Context(), id, req.Phase)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Gameweek transitioned", report)
}

// OpenTransferWindow godoc
// @Summary Open the next upcoming gameweek for transfers
// @Tags Admin
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=gameweek.WindowResult}
// @Failure 409 {object} responses.ErrorResponse "A window is already open"
// @Security ApiKeyAuth
// @Router /admin/gameweeks/open-window [post]
func (ac *AdminController) OpenTransferWindow(c *gin.Context) {
	result, err := ac.gameweeks.OpenTransferWindow(c.Request.Context())
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Transfer window opened", result)
}

// Sweep godoc
// @Summary Advance gameweek phases that are due
// @Tags Admin
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=gameweek.TransitionReport}
// @Security ApiKeyAuth
// @Router /admin/gameweeks/sweep [post]
func (ac *AdminController) Sweep(c *gin.Context) {
	report, err := ac.gameweeks.CheckAndAdvanceGameweekStates(c.Request.Context())
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Gameweek states checked", report)
}

// RecalculateGameweek godoc
// @Summary Recompute every manager's points for a gameweek
// @Tags Admin
// @Produce json
// @Param gameweek_id path int true "Gameweek ID"
// @Success 200 {object} responses.SuccessResponse{data=scoring.RecomputeSummary}
// @Security ApiKeyAuth
// @Router /admin/gameweeks/{gameweek_id}/recalculate [post]
func (ac *AdminController) RecalculateGameweek(c *gin.Context) {
	id, ok := parseID(c, "gameweek_id")
	if !ok {
		return
	}
	summary, err := ac.scoring.RecalculateAllManagerPoints(c.Request.Context(), id)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Points recalculated", summary)
}

// RecalculateManager godoc
// @Summary Recompute one manager's points for a gameweek
// @Tags Admin
// @Produce json
// @Param gameweek_id path int true "Gameweek ID"
// @Param manager_id path int true "Manager ID"
// @Success 200 {object} responses.SuccessResponse{data=models.ManagerGameweekState}
// @Security ApiKeyAuth
// @Router /admin/gameweeks/{gameweek_id}/managers/{manager_id}/recalculate [post]
func (ac *AdminController) RecalculateManager(c *gin.Context) {
	gameweekID, ok := parseID(c, "gameweek_id")
	if !ok {
		return
	}
	managerID, ok := parseID(c, "manager_id")
	if !ok {
		return
	}
	state, err := ac.scoring.UpdateManagerGameweekPoints(c.Request.Context(), managerID, gameweekID)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	if state == nil {
		responses.NotFound(c, "Manager gameweek state")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Points recalculated", state)
}

// RefreshVolumes godoc
// @Summary Recount transfers in and out per player
// @Tags Admin
// @Produce json
// @Param gameweek_id path int true "Gameweek ID"
// @Success 200 {object} responses.SuccessResponse{data=market.VolumeReport}
// @Security ApiKeyAuth
// @Router /admin/gameweeks/{gameweek_id}/volumes [post]
func (ac *AdminController) RefreshVolumes(c *gin.Context) {
	id, ok := parseID(c, "gameweek_id")
	if !ok {
		return
	}
	report, err := ac.market.RefreshTransferVolumes(c.Request.Context(), id)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Transfer volumes refreshed", report)
}

// GameweekPoints godoc
// @Summary Every player's stat line for a gameweek
// @Tags Admin
// @Produce json
// @Param gameweek_id path int true "Gameweek ID"
// @Success 200 {object} responses.SuccessResponse{data=[]models.PlayerStat}
// @Security ApiKeyAuth
// @Router /admin/gameweeks/{gameweek_id}/points [get]
func (ac *AdminController) GameweekPoints(c *gin.Context) {
	id, ok := parseID(c, "gameweek_id")
	if !ok {
		return
	}
	stats, err := ac.scoring.PointsForGameweek(c.Request.Context(), id)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Points retrieved successfully", stats)
}

// --- Fixture Handlers ---

// CreateFixture godoc
// @Summary Schedule a fixture
// @Tags Admin
// @Accept json
// @Produce json
// @Param fixture body CreateFixtureRequest true "Fixture"
// @Success 201 {object} responses.SuccessResponse{data=models.Fixture}
// @Security ApiKeyAuth
// @Router /admin/fixtures [post]
func (ac *AdminController) CreateFixture(c *gin.Context) {
	var req CreateFixtureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	fixture, err := ac.gameweeks.CreateFixture(c.Request.Context(), gameweek.FixtureInput{
		GameweekID: req.GameweekID,
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
		KickoffAt:  req.KickoffAt,
	})
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Fixture created successfully", fixture)
}

// UpdateLiveScore godoc
// @Summary Update a fixture's live score
// @Tags Admin
// @Accept json
// @Produce json
// @Param fixture_id path int true "Fixture ID"
// @Param score body LiveScoreRequest true "Score"
// @Success 200 {object} responses.SuccessResponse{data=models.Fixture}
// @Failure 409 {object} responses.ErrorResponse "Gameweek is not active"
// @Security ApiKeyAuth
// @Router /admin/fixtures/{fixture_id}/score [put]
func (ac *AdminController) UpdateLiveScore(c *gin.Context) {
	id, ok := parseID(c, "fixture_id")
	if !ok {
		return
	}
	var req LiveScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	fixture, err := ac.gameweeks.UpdateLiveScore(c.Request.Context(), id, *req.HomeScore, *req.AwayScore)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Score updated", fixture)
}

// --- Stat Handlers ---

// UpdatePlayerStats godoc
// @Summary Write a player's stat line and rescore affected managers
// @Tags Admin
// @Accept json
// @Produce json
// @Param stat body StatRequest true "Partial stat update"
// @Success 200 {object} responses.SuccessResponse{data=scoring.StatResult}
// @Failure 404 {object} responses.ErrorResponse "Unknown player or gameweek"
// @Security ApiKeyAuth
// @Router /admin/stats [put]
func (ac *AdminController) UpdatePlayerStats(c *gin.Context) {
	var req StatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	result, err := ac.scoring.UpdatePlayerStatsAndRecompute(c.Request.Context(), req.update())
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Stats updated", result)
}

// ApplyStatBatch godoc
// @Summary Write several stat lines atomically, then rescore once
// @Tags Admin
// @Accept json
// @Produce json
// @Param batch body StatBatchRequest true "Stat updates"
// @Success 200 {object} responses.SuccessResponse{data=[]scoring.RecomputeSummary}
// @Security ApiKeyAuth
// @Router /admin/stats/batch [post]
func (ac *AdminController) ApplyStatBatch(c *gin.Context) {
	var req StatBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	updates := make([]scoring.StatUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		updates = append(updates, u.update())
	}
	summaries, err := ac.scoring.ApplyStatBatch(c.Request.Context(), updates)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Stats updated", summaries)
}

// ScoringRules godoc
// @Summary The active scoring table
// @Tags Admin
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]models.ScoringRule}
// @Security ApiKeyAuth
// @Router /admin/scoring-rules [get]
func (ac *AdminController) ScoringRules(c *gin.Context) {
	rules, err := ac.scoring.ScoringRules(c.Request.Context())
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Scoring rules retrieved successfully", rules)
}
