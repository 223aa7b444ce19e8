package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bookkeeper/internal/auditcontext"
	"github.com/smallbiznis/bookkeeper/internal/authorization"
	"github.com/smallbiznis/bookkeeper/internal/orgcontext"
)

const (
	HeaderOrg       = "X-Org-ID"
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"

	contextOrgIDKey = "org_id"
	contextRoleKey  = "actor_role"
)

// TenantContext resolves the tenant and actor of an already authenticated request.
// A request without a role acts as a member.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(HeaderOrg)))
		if err != nil || orgID == 0 {
			AbortWithError(c, newValidationError("org_id", "invalid_organization", "X-Org-ID header must be a valid id"))
			return
		}

		role := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderActorRole)))
		if role == "" {
			role = authorization.RoleMember
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		if actorID := strings.TrimSpace(c.GetHeader(HeaderActorID)); actorID != "" {
			ctx = auditcontext.WithActor(ctx, auditcontext.ActorTypeUser, actorID)
		} else {
			ctx = auditcontext.WithActor(ctx, auditcontext.ActorTypeSystem, "")
		}
		c.Request = c.Request.WithContext(ctx)

		c.Set(contextOrgIDKey, orgID)
		c.Set(contextRoleKey, role)
		c.Next()
	}
}

func orgIDFrom(c *gin.Context) snowflake.ID {
	if value, ok := c.Get(contextOrgIDKey); ok {
		if id, ok := value.(snowflake.ID); ok {
			return id
		}
	}
	id, _ := orgcontext.OrgIDFromContext(c.Request.Context())
	return id
}

func roleFrom(c *gin.Context) string {
	return c.GetString(contextRoleKey)
}

func (s *Server) isAdmin(c *gin.Context) bool {
	return s.authzSvc.IsAdmin(c.Request.Context(), roleFrom(c))
}

func (s *Server) authorizeAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authzSvc.Authorize(c.Request.Context(), roleFrom(c), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
