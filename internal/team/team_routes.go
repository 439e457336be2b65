package team

import (
	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/fantasy/internal/storage"
)

// TeamRoutes registers the public roster reads.
func TeamRoutes(router *gin.RouterGroup, roster storage.RosterStore) {
	teamController := NewTeamController(roster)

	router.GET("/players", teamController.ListPlayers)
	router.GET("/players/:player_id", teamController.GetPlayer)
	router.GET("/teams/:team_id", teamController.GetTeamByID)
}
