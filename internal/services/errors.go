package services

import "errors"

// Failure taxonomy surfaced at the handler boundary. Handlers translate
// these into JSON notices; none of them escapes as a fault.
var (
	// ErrNotFound covers missing records and records outside the actor's
	// scope; the two are indistinguishable to the caller.
	ErrNotFound = errors.New("record not found")
	// ErrNotAssignee marks a status change requested by someone other than
	// the task's assignee.
	ErrNotAssignee = errors.New("task is not assigned to you")
	// ErrInvalidTransition marks a status change outside the allowed edges.
	ErrInvalidTransition = errors.New("illegal status transition")
	// ErrForbidden marks an action the actor's role does not permit.
	ErrForbidden = errors.New("forbidden")
	// ErrRoleNotAllowed marks registration with a role the public form
	// does not offer.
	ErrRoleNotAllowed = errors.New("role not allowed")
	// ErrDelivery marks an email that could not be sent. It never rolls
	// back the mutation it accompanies.
	ErrDelivery = errors.New("delivery failed")
)
