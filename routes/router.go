package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/DhavalSuthar-24/fantasy/internal/admin"
	"github.com/DhavalSuthar-24/fantasy/internal/app"
	"github.com/DhavalSuthar-24/fantasy/internal/manager"
	"github.com/DhavalSuthar-24/fantasy/internal/metrics"
	mw "github.com/DhavalSuthar-24/fantasy/internal/middleware"
	"github.com/DhavalSuthar-24/fantasy/internal/team"
)

func SetupRoutes(a *app.App, limiter *mw.RateLimiter) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{a.Config.App.FrontendURL}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))
	r.Use(metrics.Middleware())

	// Welcome page
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`
			<html>
				<head><title>Fantasy</title></head>
				<body style="text-align:center; margin-top: 40px;">
					<h1>Fantasy League API</h1>
					<a href="/swagger/index.html">swagger</a>
				</body>
			</html>
		`))
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	secret := a.Config.JWT.AccessTokenSecret
	team.TeamRoutes(api, a.Store)
	manager.ManagerRoutes(api, a, secret, limiter)
	admin.AdminRoutes(api, a, secret)

	return r
}
