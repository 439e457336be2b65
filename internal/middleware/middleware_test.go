package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/fantasy/pkg/token"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func whoAmI(c *gin.Context) {
	id, err := GetManagerIDFromContext(c)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"manager_id": id, "role": GetRoleFromContext(c)})
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), whoAmI)

	signed, err := token.GenerateJWT(9, token.RoleManager, secret, time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token " + signed, http.StatusUnauthorized},
		{"bad signature", "Bearer " + signed + "x", http.StatusUnauthorized},
		{"ok", "Bearer " + signed, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"manager_id":9,"role":"manager"}`, w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	rl := NewRateLimiter(2, log)

	r := gin.New()
	r.POST("/act", AuthMiddleware(secret), rl.Handler(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(managerID uint) int {
		signed, err := token.GenerateJWT(managerID, token.RoleManager, secret, time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/act", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, call(1))
	assert.Equal(t, http.StatusNoContent, call(1))
	assert.Equal(t, http.StatusTooManyRequests, call(1))
	assert.Equal(t, http.StatusNoContent, call(2), "buckets are per manager")

	rl.Reset()
	assert.Equal(t, http.StatusNoContent, call(1))
}

func TestRateLimiterDropsIdleBuckets(t *testing.T) {
	log, _ := test.NewNullLogger()
	rl := NewRateLimiter(2, log)
	clock := time.Date(2025, 8, 16, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.Allow("manager:1"))
	assert.True(t, rl.Allow("manager:2"))
	assert.Equal(t, 2, rl.Len())

	clock = clock.Add(idleTTL / 2)
	assert.True(t, rl.Allow("manager:2"))

	clock = clock.Add(idleTTL/2 + time.Second)
	assert.True(t, rl.Allow("manager:3"))
	assert.Equal(t, 2, rl.Len(), "manager:1 sat idle past the TTL")

	rl.mu.Lock()
	_, kept := rl.limiters["manager:2"]
	_, dropped := rl.limiters["manager:1"]
	rl.mu.Unlock()
	assert.True(t, kept)
	assert.False(t, dropped)
}
