package tracing

import (
	"errors"
	"fmt"
	"testing"
)

func TestSafeErrorKeepsOnlyLeadingKind(t *testing.T) {
	err := fmt.Errorf("insert ledger entry: %w", errors.New("duplicate value 1850.45"))
	if got := SafeError(err).Error(); got != "insert ledger entry" {
		t.Fatalf("unexpected safe error %q", got)
	}
	if SafeError(nil) != nil {
		t.Fatalf("expected nil")
	}
}
