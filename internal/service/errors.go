package service

import "errors"

var (
	// ErrSeatNotFound is returned when an operation addresses a seat the
	// plan does not contain and cannot report that as a result.
	ErrSeatNotFound = errors.New("seat not found")
	// ErrTableConflict is returned when a table id is already used in the
	// session.
	ErrTableConflict = errors.New("table id already in use")
	// ErrInvalidTable is returned for an unknown shape or a table without
	// seats.
	ErrInvalidTable = errors.New("invalid table")
)
