package resputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func wrapResponse(c *gin.Context, httpCode int, msg string, data interface{}, code ErrorCode) {
	c.JSON(httpCode, gin.H{
		"code": code,
		"data": data,
		"msg":  msg,
	})
}

func Success(c *gin.Context, data interface{}) {
	wrapResponse(c, http.StatusOK, "", data, OK)
}

// Error reports a failure with HTTP 500; use HTTPError when a more
// specific status applies.
func Error(c *gin.Context, msg string, errorCode ErrorCode) {
	wrapResponse(c, http.StatusInternalServerError, msg, nil, errorCode)
}

func HTTPError(c *gin.Context, httpCode int, msg string, errorCode ErrorCode) {
	wrapResponse(c, httpCode, msg, nil, errorCode)
}
