package orgcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type orgKey struct{}

// WithOrgID stores the tenant of the request.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	return context.WithValue(ctx, orgKey{}, orgID)
}

// OrgIDFromContext reports the tenant stored by WithOrgID. A zero id counts as absent.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(orgKey{}).(snowflake.ID)
	return id, ok && id != 0
}
