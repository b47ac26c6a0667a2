package handlers

import (
	"errors"

	"temple-system/internal/status"

	"github.com/go-playground/validator/v10"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

var validate = validator.New()

// requireRole checks the authenticated user's role claim. Route-level auth
// is enforced separately with apis.RequireAuth.
func requireRole(e *core.RequestEvent, roles ...string) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	role := e.Auth.GetString("role")
	for _, r := range roles {
		if role == r {
			return nil
		}
	}
	return apis.NewForbiddenError("Insufficient permissions", nil)
}

// apiError maps service-level sentinel errors onto HTTP responses.
func apiError(err error, fallback string) error {
	switch {
	case errors.Is(err, status.ErrNotFound),
		errors.Is(err, status.ErrTempleNotFound):
		return apis.NewNotFoundError(err.Error(), nil)
	case errors.Is(err, status.ErrSlotFull),
		errors.Is(err, status.ErrSlotPassed),
		errors.Is(err, status.ErrInvalidTimeSlot),
		errors.Is(err, status.ErrInvalidTransition),
		errors.Is(err, status.ErrAlreadyInQueue),
		errors.Is(err, status.ErrNotInQueue):
		return apis.NewBadRequestError(err.Error(), nil)
	default:
		return apis.NewBadRequestError(fallback, err)
	}
}
