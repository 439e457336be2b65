package manager

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/fantasy/internal/gameweek"
	"github.com/DhavalSuthar-24/fantasy/internal/leaderboard"
	"github.com/DhavalSuthar-24/fantasy/internal/middleware"
	"github.com/DhavalSuthar-24/fantasy/internal/squad"
	"github.com/DhavalSuthar-24/fantasy/internal/transfer"
	"github.com/DhavalSuthar-24/fantasy/pkg/responses"
	"github.com/DhavalSuthar-24/fantasy/pkg/validator"
)

// ManagerController handles the requests a manager makes about their own team.
type ManagerController struct {
	squads      *squad.Service
	transfers   *transfer.Ledger
	gameweeks   *gameweek.Service
	leaderboard *leaderboard.Service
}

func NewManagerController(squads *squad.Service, transfers *transfer.Ledger, gameweeks *gameweek.Service, board *leaderboard.Service) *ManagerController {
	return &ManagerController{
		squads:      squads,
		transfers:   transfers,
		gameweeks:   gameweeks,
		leaderboard: board,
	}
}

// --- DTOs for requests ---

type PickRequest struct {
	PlayerID      uint  `json:"player_id" binding:"required"`
	IsStarter     *bool `json:"is_starter"` // defaults to true
	IsCaptain     bool  `json:"is_captain"`
	IsViceCaptain bool  `json:"is_vice_captain"`
}

type SaveSquadRequest struct {
	GameweekID uint          `json:"gameweek_id"`
	Players    []PickRequest `json:"players" binding:"required,dive"`
}

type TransferRequest struct {
	GameweekID  uint `json:"gameweek_id"`
	PlayerOutID uint `json:"player_out_id" binding:"required"`
	PlayerInID  uint `json:"player_in_id" binding:"required"`
}

type SubstitutionRequest struct {
	GameweekID  uint `json:"gameweek_id"`
	PlayerOutID uint `json:"player_out_id" binding:"required"`
	PlayerInID  uint `json:"player_in_id" binding:"required"`
}

type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (r SaveSquadRequest) picks() []squad.Pick {
	out := make([]squad.Pick, 0, len(r.Players))
	for _, p := range r.Players {
		starter := true
		if p.IsStarter != nil {
			starter = *p.IsStarter
		}
		out = append(out, squad.Pick{
			PlayerID:      p.PlayerID,
			IsStarter:     starter,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		})
	}
	return out
}

func currentManager(c *gin.Context) (uint, bool) {
	managerID, err := middleware.GetManagerIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "Manager not authenticated")
		return 0, false
	}
	return managerID, true
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// --- Squad Handlers ---

// SaveSquad godoc
// @Summary Save the manager's squad
// @Description Validates and replaces the 15-player squad for the current (or given) gameweek and rescores it.
// @Tags Squad
// @Accept json
// @Produce json
// @Param squad body SaveSquadRequest true "Squad selection"
// @Success 200 {object} responses.SuccessResponse{data=squad.SaveResult}
// @Failure 400 {object} responses.ErrorResponse "Invalid squad"
// @Failure 409 {object} responses.ErrorResponse "No open or active gameweek"
// @Security ApiKeyAuth
// @Router /me/squad [post]
func (mc *ManagerController) SaveSquad(c *gin.Context) {
	managerID, ok := currentManager(c)
	if !ok {
		return
	}
	var req SaveSquadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	result, err := mc.squads.ValidateAndSaveSquad(c.Request.Context(), managerID, req.GameweekID, req.picks())
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Squad saved successfully", result)
}

// GetSquad godoc
// @Summary Get the manager's squad
// @Tags Squad
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=squad.SquadView}
// @Failure 409 {object} responses.ErrorResponse "No open or active gameweek"
// @Security ApiKeyAuth
// @Router /me/squad [get]
func (mc *ManagerController) GetSquad(c *gin.Context) {
	managerID, ok := currentManager(c)
	if !ok {
		return
	}
	view, err := mc.squads.GetSquad(c.Request.Context(), managerID)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Squad retrieved successfully", view)
}

// Substitute godoc
// @Summary Swap a starter with a bench player
// @Tags Squad
// @Accept json
// @Produce json
// @Param substitution body SubstitutionRequest true "Players to swap"
// @Success 200 {object} responses.SuccessResponse{data=squad.SubstitutionResult}
// @Failure 400 {object} responses.ErrorResponse "Invalid substitution"
// @Security ApiKeyAuth
// @Router /me/substitutions [post]
func (mc *ManagerController) Substitute(c *gin.Context) {
	managerID, ok := currentManager(c)
	if !ok {
		return
	}
	var req SubstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	result, err := mc.squads.Substitute(c.Request.Context(), managerID, req.GameweekID, req.PlayerOutID, req.PlayerInID)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Substitution applied", result)
}

// Overview godoc
// @Summary Points overview for the scoring gameweek
// @Tags Squad
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=squad.Overview}
// @Security ApiKeyAuth
// @Router /me/overview [get]
func (mc *ManagerController) Overview(c *gin.Context) {
	managerID, ok := currentManager(c)
	if !ok {
		return
	}
	overview, err := mc.squads.Overview(c.Request.Context(), managerID)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Overview retrieved successfully", overview)
}

// --- Transfer Handlers ---

// MakeTransfer godoc
// @Summary Trade one squad player for another
// @Description The first transfers of a gameweek are free; later ones cost points.
// @Tags Transfers
// @Accept json
// @Produce json
// @Param transfer body TransferRequest true "Transfer"
// @Success 201 {object} responses.SuccessResponse{data=transfer.Receipt}
// @Failure 409 {object} responses.ErrorResponse "No open transfer window"
// @Failure 422 {object} responses.ErrorResponse "Insufficient budget"
// @Security ApiKeyAuth
// @Router /me/transfers [post]
func (mc *ManagerController) MakeTransfer(c *gin.Context) {
	managerID, ok := currentManager(c)
	if !ok {
		return
	}
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	receipt, err := mc.transfers.MakeTransfer(c.Request.Context(), transfer.Request{
		ManagerID:   managerID,
		PlayerOutID: req.PlayerOutID,
		PlayerInID:  req.PlayerInID,
		GameweekID:  req.GameweekID,
	})
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Transfer completed", receipt)
}

// TransferHistory godoc
// @Summary List the manager's transfers
// @Tags Transfers
// @Produce json
// @Param gameweek_id query int false "Restrict to one gameweek"
// @Success 200 {object} responses.SuccessResponse{data=[]models.Transfer}
// @Security ApiKeyAuth
// @Router /me/transfers [get]
func (mc *ManagerController) TransferHistory(c *gin.Context) {
	managerID, ok := currentManager(c)
	if !ok {
		return
	}
	var gameweekID uint64
	if raw := c.Query("gameweek_id"); raw != "" {
		var err error
		if gameweekID, err = strconv.ParseUint(raw, 10, 32); err != nil {
			responses.BadRequest(c, "Invalid gameweek_id")
			return
		}
	}
	history, err := mc.transfers.History(c.Request.Context(), managerID, uint(gameweekID))
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Transfers retrieved successfully", history)
}

// --- Public Handlers ---

// Leaderboard godoc
// @Summary Season leaderboard
// @Tags Leaderboard
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} responses.SuccessResponse{data=leaderboard.Page}
// @Router /leaderboard [get]
func (mc *ManagerController) Leaderboard(c *gin.Context) {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	page, err := mc.leaderboard.Leaderboard(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Leaderboard retrieved successfully", page)
}

// ListGameweeks godoc
// @Summary List gameweeks
// @Tags Gameweeks
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]models.Gameweek}
// @Router /gameweeks [get]
func (mc *ManagerController) ListGameweeks(c *gin.Context) {
	gameweeks, err := mc.gameweeks.ListGameweeks(c.Request.Context())
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Gameweeks retrieved successfully", gameweeks)
}

// GetGameweek godoc
// @Summary Get a gameweek with its allowed actions
// @Tags Gameweeks
// @Produce json
// @Param gameweek_id path int true "Gameweek ID"
// @Success 200 {object} responses.SuccessResponse{data=GameweekView}
// @Failure 404 {object} responses.ErrorResponse "Gameweek not found"
// @Router /gameweeks/{gameweek_id} [get]
func (mc *ManagerController) GetGameweek(c *gin.Context) {
	id, ok := parseID(c, "gameweek_id")
	if !ok {
		return
	}
	gw, err := mc.gameweeks.GetGameweek(c.Request.Context(), id)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Gameweek retrieved successfully", GameweekView{
		Gameweek:       gw,
		AllowedActions: gameweek.AllowedActions(gw.Phase),
	})
}

// ListFixtures godoc
// @Summary List a gameweek's fixtures
// @Tags Gameweeks
// @Produce json
// @Param gameweek_id path int true "Gameweek ID"
// @Success 200 {object} responses.SuccessResponse{data=[]models.Fixture}
// @Failure 404 {object} responses.ErrorResponse "Gameweek not found"
// @Router /gameweeks/{gameweek_id}/fixtures [get]
func (mc *ManagerController) ListFixtures(c *gin.Context) {
	id, ok := parseID(c, "gameweek_id")
	if !ok {
		return
	}
	fixtures, err := mc.gameweeks.ListFixtures(c.Request.Context(), id)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Fixtures retrieved successfully", fixtures)
}
