package authorization

import (
	"context"
	"errors"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)

// Service answers RBAC questions for an already authenticated actor role.
type Service interface {
	Authorize(ctx context.Context, role string, object string, action string) error
	IsAdmin(ctx context.Context, role string) bool
}
