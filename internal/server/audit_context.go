package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jperram92/JamesCRM-sub003/internal/audit/domain"
	"github.com/jperram92/JamesCRM-sub003/internal/auditcontext"
)

// HeaderActor identifies the acting user for audit attribution. Requests
// without it are attributed to the system actor.
const HeaderActor = "X-Actor-Id"

// AuditContext copies request identity onto the context so audit records
// carry the actor, client address and user agent.
func (s *Server) AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if requestID, ok := c.Get("request_id"); ok {
			if value, ok := requestID.(string); ok {
				ctx = auditcontext.WithRequestID(ctx, value)
			}
		}
		if actorID := strings.TrimSpace(c.GetHeader(HeaderActor)); actorID != "" {
			ctx = auditcontext.WithActor(ctx, string(domain.ActorTypeUser), actorID)
		}
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
