package auditcontext

import (
	"context"
	"testing"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), " user ", " 42 ")
	typ, id := ActorFromContext(ctx)
	if typ != ActorTypeUser || id != "42" {
		t.Fatalf("unexpected actor %q/%q", typ, id)
	}
}

func TestMissingValuesAreEmpty(t *testing.T) {
	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || IPAddressFromContext(ctx) != "" || UserAgentFromContext(ctx) != "" {
		t.Fatalf("expected empty values")
	}
	if typ, id := ActorFromContext(ctx); typ != "" || id != "" {
		t.Fatalf("expected empty actor")
	}
}
