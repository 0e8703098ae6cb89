package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gameforum/controller"
	"gameforum/models"
	"gameforum/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSessions map[string]*models.SessionUser

func (f fakeSessions) ValidateSession(_ context.Context, token string) (*models.SessionUser, error) {
	if su, ok := f[token]; ok {
		return su, nil
	}
	return nil, errorx.ErrSessionRevoked
}

var sessions = fakeSessions{
	"user-token":  {ID: 1, Username: "alice", Role: models.RoleUser},
	"admin-token": {ID: 2, Username: "boss", Role: models.RoleAdmin},
}

func whoami(c *gin.Context) {
	u := controller.CurrentUser(c)
	if u == nil {
		controller.ResponseSuccess(c, "guest")
		return
	}
	controller.ResponseSuccess(c, u.Username)
}

func call(t *testing.T, r *gin.Engine, header string) (int, controller.ResponseData) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var res controller.ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w.Code, res
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", JWTAuthMiddleware(sessions), whoami)

	cases := []struct {
		header string
		code   int
	}{
		{"", errorx.CodeNeedLogin},
		{"Token user-token", errorx.CodeInvalidToken},
		{"Bearer ", errorx.CodeInvalidToken},
		{"Bearer stale", errorx.CodeSessionRevoked},
		{"Bearer user-token", errorx.CodeSuccess},
	}
	for _, tc := range cases {
		_, res := call(t, r, tc.header)
		assert.Equal(t, tc.code, res.Code, tc.header)
	}
	_, res := call(t, r, "Bearer user-token")
	assert.Equal(t, "alice", res.Data)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", OptionalAuthMiddleware(sessions), whoami)

	for header, want := range map[string]string{
		"":                  "guest",
		"Bearer stale":      "guest",
		"Basic abc":         "guest",
		"Bearer user-token": "alice",
	} {
		_, res := call(t, r, header)
		assert.Equal(t, errorx.CodeSuccess, res.Code)
		assert.Equal(t, want, res.Data, header)
	}
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/", OptionalAuthMiddleware(sessions), RequireRole(models.RoleAdmin, models.RoleModerator), whoami)

	_, res := call(t, r, "")
	assert.Equal(t, errorx.CodeNeedLogin, res.Code)
	_, res = call(t, r, "Bearer user-token")
	assert.Equal(t, errorx.CodeForbidden, res.Code)
	_, res = call(t, r, "Bearer admin-token")
	assert.Equal(t, "boss", res.Data)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(time.Hour, 2), whoami)

	for i := 0; i < 2; i++ {
		status, _ := call(t, r, "")
		assert.Equal(t, http.StatusOK, status)
	}
	status, res := call(t, r, "")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, errorx.CodeRateLimitExceeded, res.Code)
}

func TestTimeoutMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", TimeoutMiddleware(20*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	_, res := call(t, r, "")
	assert.Equal(t, errorx.CodeTimeout, res.Code)

	r = gin.New()
	r.GET("/", TimeoutMiddleware(time.Second), func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		controller.ResponseSuccess(c, nil)
	})
	_, res = call(t, r, "")
	assert.Equal(t, errorx.CodeSuccess, res.Code)
}
