package manager

import (
	"github.com/gin-gonic/gin"

	"github.com/DhavalSuthar-24/fantasy/internal/app"
	mw "github.com/DhavalSuthar-24/fantasy/internal/middleware"
	"github.com/DhavalSuthar-24/fantasy/pkg/rmiddleware"
)

// ManagerRoutes sets up the public game reads and the authenticated manager routes.
func ManagerRoutes(router *gin.RouterGroup, a *app.App, jwtSecret string, limiter *mw.RateLimiter) {
	managerController := NewManagerController(a.Squads, a.Transfers, a.Gameweeks, a.Leaderboard)

	// Public routes
	router.GET("/leaderboard", managerController.Leaderboard)
	router.GET("/gameweeks", managerController.ListGameweeks)
	router.GET("/gameweeks/:gameweek_id", managerController.GetGameweek)
	router.GET("/gameweeks/:gameweek_id/fixtures", managerController.ListFixtures)

	me := router.Group("/me")
	me.Use(mw.AuthMiddleware(jwtSecret), rmiddleware.ManagerOrAdminMiddleware())
	{
		me.GET("/squad", managerController.GetSquad)
		me.GET("/overview", managerController.Overview)
		me.GET("/transfers", managerController.TransferHistory)

		// Mutations are rate limited per manager
		mutating := me.Group("")
		mutating.Use(limiter.Handler())
		{
			mutating.POST("/squad", managerController.SaveSquad)
			mutating.POST("/transfers", managerController.MakeTransfer)
			mutating.POST("/substitutions", managerController.Substitute)
		}
	}
}
