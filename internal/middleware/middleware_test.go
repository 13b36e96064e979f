package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/healthref-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	tm, err := utils.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := utils.NewTokenManager("other-secret", time.Hour)
	require.NoError(t, err)

	id := primitive.NewObjectID()
	good, err := tm.Generate(id.Hex(), "partner")
	require.NoError(t, err)
	forged, err := other.Generate(id.Hex(), "admin")
	require.NoError(t, err)

	r := gin.New()
	r.Use(AuthMiddleware(tm))
	r.GET("/me", func(c *gin.Context) {
		uid, ok := UserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": uid.Hex(), "role": UserRole(c)})
	})
	r.GET("/partners", RequireRole("partner"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/admin", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "no header", path: "/me", want: http.StatusUnauthorized},
		{name: "not bearer", path: "/me", header: "Token " + good, want: http.StatusUnauthorized},
		{name: "foreign signature", path: "/me", header: "Bearer " + forged, want: http.StatusUnauthorized},
		{name: "valid", path: "/me", header: "Bearer " + good, want: http.StatusOK},
		{name: "matching role", path: "/partners", header: "Bearer " + good, want: http.StatusNoContent},
		{name: "wrong role", path: "/admin", header: "Bearer " + good, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"id":"`+id.Hex()+`","role":"partner"}`, w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter().Route("/otp", rate.Every(time.Hour), 2)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/otp", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/list", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(method, path, ip string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/otp", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/otp", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost, "/otp", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodGet, "/list", "10.0.0.1"), "the whole client is blocked")
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/otp", "10.0.0.2"), "other clients are unaffected")

	clock = clock.Add(6 * time.Minute)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/list", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/otp", "10.0.0.1"), "block expiry resets the bucket")

	rl.prune(clock.Add(2 * time.Hour))
	assert.Empty(t, rl.visitors)
}

func TestLogger(t *testing.T) {
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
