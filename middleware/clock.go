package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const contextNowKey = "request_time"

// Clock captures the current time once per request. Every visibility check made
// while serving the request reads the same instant through RequestTime.
func Clock(now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx *gin.Context) {
		ctx.Set(contextNowKey, now().UTC())
		ctx.Next()
	}
}

// RequestTime returns the instant captured by Clock, or the wall clock when
// Clock is not installed.
func RequestTime(ctx *gin.Context) time.Time {
	if v, ok := ctx.Get(contextNowKey); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Now().UTC()
}
