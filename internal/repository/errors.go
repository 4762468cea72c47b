// Package repository persists session plans and tracking state.  The
// sentinel values below let the service and handler layers tell
// failure scenarios apart.
package repository

import "errors"

// ErrPlanNotFound is returned when no plan is stored for an event
// session.  Handlers translate it into an HTTP 404 response.
var ErrPlanNotFound = errors.New("plan not found")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as creating a session that already exists or
// losing an optimistic update race repeatedly.  Handlers translate it
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNoChange may be returned by an update callback to abandon the
// write without failing.  Update returns it unchanged so callers can
// recognise it.
var ErrNoChange = errors.New("no change")
