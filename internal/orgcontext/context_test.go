package orgcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrgIDRoundTrip(t *testing.T) {
	_, ok := OrgIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = OrgIDFromContext(WithOrgID(context.Background(), 0))
	assert.False(t, ok)

	id, ok := OrgIDFromContext(WithOrgID(context.Background(), 42))
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)
}
