package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/metrics"
	"github.com/mmdatafocus/requisition_inbound/utils"
	"github.com/sirupsen/logrus"
)

const (
	MessageAuthRequired       = "Authentication required."
	MessageInvalidCredentials = "Invalid credentials."
)

// BasicAuthMiddleware admits only the configured identity.
// Missing credentials get a 401 challenge, wrong ones a 403 without challenge.
func BasicAuthMiddleware(expected utils.BasicCredentials, realm string) gin.HandlerFunc {
	challenge := fmt.Sprintf("Basic realm=%q", realm)
	return func(c *gin.Context) {
		result := utils.VerifyBasicAuth(c.GetHeader("Authorization"), expected)
		switch result {
		case utils.AuthAuthenticated:
			ctx := utils.SetAuthUserInContext(c.Request.Context(), expected.Username)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			return
		case utils.AuthInvalid:
			metrics.IngestOutcomesTotal.WithLabelValues(metrics.OutcomeForbidden).Inc()
			logAuthRejection(c, result)
			AbortWithMessage(c, http.StatusForbidden, MessageInvalidCredentials)
		default:
			metrics.IngestOutcomesTotal.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
			c.Header("WWW-Authenticate", challenge)
			AbortWithMessage(c, http.StatusUnauthorized, MessageAuthRequired)
		}
	}
}

func logAuthRejection(c *gin.Context, result utils.AuthResult) {
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	config.GetLogger().WithFields(logrus.Fields{
		"field":          "BasicAuthMiddleware",
		"remote_ip":      c.ClientIP(),
		"result":         result.String(),
		"correlation_id": cid,
	}).Warn("inbound request rejected")
}
