package middleware

import (
	"github.com/gin-gonic/gin"

	"lingua-board/api/auth"
	"lingua-board/logger"
)

const CredentialKey = "trigger_credential"

// TriggerAuthMiddleware verifies the shared refresh-trigger secret carried
// as a bearer token. Rejection happens before the pipeline starts, so a bad
// credential causes no side effects.
func TriggerAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}

		if err := auth.CheckSharedSecret(token, secret); err != nil {
			logger.Log.Warnf("refresh trigger rejected: %v", err)
			auth.AbortWithUnauthorized(c, err)
			return
		}

		// The pipeline re-checks the credential in its Authorizing phase.
		c.Set(CredentialKey, token)

		c.Next()
	}
}
