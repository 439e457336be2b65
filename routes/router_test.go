package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/DhavalSuthar-24/fantasy/config"
	"github.com/DhavalSuthar-24/fantasy/internal/app"
	mw "github.com/DhavalSuthar-24/fantasy/internal/middleware"
	"github.com/DhavalSuthar-24/fantasy/internal/rules"
	"github.com/DhavalSuthar-24/fantasy/internal/storage/memory"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.App.FrontendURL = "http://localhost:3000"
	cfg.JWT.AccessTokenSecret = "router-secret"
	cfg.Game.RecomputeWorkers = 1
	cfg.Game.TxMaxRetries = 1
	a := app.Build(cfg, memory.New(), nil, rules.DefaultRules(), log)
	return SetupRoutes(a, mw.NewRateLimiter(60, log))
}

func TestSetupRoutes(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"public gameweeks", http.MethodGet, "/api/gameweeks", http.StatusOK},
		{"public players", http.MethodGet, "/api/players", http.StatusOK},
		{"manager squad needs token", http.MethodGet, "/api/me/squad", http.StatusUnauthorized},
		{"admin needs token", http.MethodPost, "/api/admin/gameweeks/sweep", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestCORSAllowsFrontend(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/gameweeks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
