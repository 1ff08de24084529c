package workflow

import (
	"fmt"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
)

// InvalidTransitionError reports a rejected status transition. It names
// the current status, the requested status and the unmet precondition so
// callers can render a precise message.
type InvalidTransitionError struct {
	From   models.OrderStatus
	To     models.OrderStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %q to %q: %s", e.From, e.To, e.Reason)
}

// ForbiddenError reports that the caller's role lacks permission for an
// operation. Unlike InvalidTransitionError it is not correctable by
// changing the request.
type ForbiddenError struct {
	Role   models.Role
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("role %q: %s", e.Role, e.Reason)
}

// NotFoundError reports a reference to an unknown order or item.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ValidationError reports a malformed request shape.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
