package controller

import (
	"net/http"

	"gameforum/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware. They live here rather than in
// middlewares so handlers can read them without an import cycle.
const (
	CtxSessionKey = "sessionUser"
	CtxTokenKey   = "sessionToken"
)

// ResponseData is the envelope every endpoint writes.
type ResponseData struct {
	Code int         `json:"code"`
	Msg  interface{} `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// ResponseError writes a predefined business error.
func ResponseError(c *gin.Context, e *errorx.CodeError) {
	c.JSON(http.StatusOK, &ResponseData{
		Code: e.Code,
		Msg:  e.Msg,
	})
}

// ResponseErrorWithMsg writes code with a custom message, e.g. translated
// validation errors keyed by field.
func ResponseErrorWithMsg(c *gin.Context, code int, msg interface{}) {
	c.JSON(http.StatusOK, &ResponseData{
		Code: code,
		Msg:  msg,
	})
}

func ResponseSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &ResponseData{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleError passes business errors through with their own code. Anything
// else is logged and reported as ErrServerBusy so internals never leak.
func HandleError(c *gin.Context, err error) {
	if ce, ok := errorx.As(err); ok {
		ResponseError(c, ce)
		return
	}
	zap.L().Error("unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	ResponseError(c, errorx.ErrServerBusy)
}
