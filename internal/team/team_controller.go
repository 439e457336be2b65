package team

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage"
	"github.com/DhavalSuthar-24/fantasy/pkg/responses"
	"github.com/DhavalSuthar-24/fantasy/pkg/validator"
)

const defaultPageSize = 20

// TeamController serves read-only roster requests.
type TeamController struct {
	roster storage.RosterStore
}

func NewTeamController(roster storage.RosterStore) *TeamController {
	return &TeamController{roster: roster}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func (tc *TeamController) teamsFor(ctx context.Context, players []models.Player) (map[uint]models.Team, error) {
	ids := make([]uint, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.TeamID)
	}
	teams, err := tc.roster.ListTeamsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	return byID, nil
}

// ListPlayers godoc
// @Summary List players
// @Description Lists roster players, optionally filtered by team and position.
// @Tags Roster
// @Produce json
// @Param team_id query int false "Team ID"
// @Param position query string false "Position code (GK, DEF, MID, FWD)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} responses.PaginatedResponse{data=[]PlayerView}
// @Failure 400 {object} responses.ErrorResponse "Invalid query"
// @Router /players [get]
func (tc *TeamController) ListPlayers(c *gin.Context) {
	var q ListPlayersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}

	filter := storage.PlayerFilter{TeamID: q.TeamID, Page: q.Page, Limit: q.PageSize}
	if q.Position != "" {
		filter.PositionID, _ = models.ParsePosition(q.Position)
	}

	ctx := c.Request.Context()
	players, total, err := tc.roster.ListPlayers(ctx, filter)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	teams, err := tc.teamsFor(ctx, players)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}

	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, toView(p, teams))
	}
	responses.SendPaginated(c, http.StatusOK, "Players retrieved successfully", views, total, q.Page, q.PageSize)
}

// GetPlayer godoc
// @Summary Get a player
// @Tags Roster
// @Produce json
// @Param player_id path int true "Player ID"
// @Success 200 {object} responses.SuccessResponse{data=PlayerView}
// @Failure 404 {object} responses.ErrorResponse "Player not found"
// @Router /players/{player_id} [get]
func (tc *TeamController) GetPlayer(c *gin.Context) {
	id, ok := parseID(c, "player_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	player, err := tc.roster.GetPlayer(ctx, id)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	if player == nil {
		responses.NotFound(c, "Player")
		return
	}
	teams, err := tc.teamsFor(ctx, []models.Player{*player})
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Player retrieved successfully", toView(*player, teams))
}

// GetTeamByID godoc
// @Summary Get a team by its ID
// @Tags Roster
// @Produce json
// @Param team_id path int true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=models.Team}
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/{team_id} [get]
func (tc *TeamController) GetTeamByID(c *gin.Context) {
	id, ok := parseID(c, "team_id")
	if !ok {
		return
	}
	team, err := tc.roster.GetTeam(c.Request.Context(), id)
	if err != nil {
		responses.SendFailure(c, err)
		return
	}
	if team == nil {
		responses.NotFound(c, "Team")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team retrieved successfully", team)
}
