package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/fantasy/internal/app"
	mw "github.com/DhavalSuthar-24/fantasy/internal/middleware"
	"github.com/DhavalSuthar-24/fantasy/pkg/rmiddleware"
)

// AdminRoutes sets up the season administration routes.
func AdminRoutes(router *gin.RouterGroup, a *app.App, jwtSecret string) {
	adminController := NewAdminController(a.Gameweeks, a.Scoring, a.Market)

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(mw.AuthMiddleware(jwtSecret))
	adminRoutes.Use(rmiddleware.AdminMiddleware())
	{
		adminRoutes.POST("/gameweeks", adminController.CreateGameweek)
		adminRoutes.POST("/gameweeks/open-window", adminController.OpenTransferWindow)
		adminRoutes.POST("/gameweeks/sweep", adminController.Sweep)
		adminRoutes.POST("/gameweeks/:gameweek_id/transition", adminController.Transition)
		adminRoutes.POST("/gameweeks/:gameweek_id/recalculate", adminController.RecalculateGameweek)
		adminRoutes.POST("/gameweeks/:gameweek_id/managers/:manager_id/recalculate", adminController.RecalculateManager)
		adminRoutes.POST("/gameweeks/:gameweek_id/volumes", adminController.RefreshVolumes)
		adminRoutes.GET("/gameweeks/:gameweek_id/points", adminController.GameweekPoints)

		adminRoutes.POST("/fixtures", adminController.CreateFixture)
		adminRoutes.PUT("/fixtures/:fixture_id/score", adminController.UpdateLiveScore)

		adminRoutes.PUT("/stats", adminController.UpdatePlayerStats)
		adminRoutes.POST("/stats/batch", adminController.ApplyStatBatch)
		adminRoutes.GET("/scoring-rules", adminController.ScoringRules)
	}
}
