package controller

import (
	"strconv"

	"gameforum/models"
	"gameforum/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// CurrentUser returns the session user the auth middleware stored, or nil
// for guests.
func CurrentUser(c *gin.Context) *models.SessionUser {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.SessionUser)
	return u
}

// requireUser writes ErrNeedLogin when the request carries no session.
func requireUser(c *gin.Context) (*models.SessionUser, bool) {
	u := CurrentUser(c)
	if u == nil {
		ResponseError(c, errorx.ErrNeedLogin)
		return nil, false
	}
	return u, true
}

// pathID parses a snowflake id path parameter. A malformed id is reported
// as ErrInvalidParam and ok is false.
func pathID[T ~int64](c *gin.Context, name string) (id T, ok bool) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || n <= 0 {
		ResponseError(c, errorx.ErrInvalidParam.WithMsg("invalid %s", name))
		return 0, false
	}
	return T(n), true
}

// queryInt reads an optional integer query parameter, falling back to def
// when absent or malformed.
func queryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
