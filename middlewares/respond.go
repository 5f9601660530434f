package middlewares

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/requisition_inbound/utils"
)

var responseLocation atomic.Pointer[time.Location]

// SetResponseLocation sets the zone of the "timestamp" field in JSON responses.
func SetResponseLocation(loc *time.Location) {
	responseLocation.Store(loc)
}

// ResponseTimestamp is the current time as "YYYY-MM-DD HH:MM:SS" in the response zone.
func ResponseTimestamp() string {
	return utils.FormatDate(time.Now(), responseLocation.Load())
}

// ErrorBody is the failure envelope shared by all JSON routes.
func ErrorBody(c *gin.Context, message string) gin.H {
	body := gin.H{
		"success":   false,
		"message":   message,
		"timestamp": ResponseTimestamp(),
	}
	if cid, ok := utils.GetCorrelationIdFromContext(c.Request.Context()); ok {
		body["correlation_id"] = cid
	}
	return body
}

func AbortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody(c, message))
}
