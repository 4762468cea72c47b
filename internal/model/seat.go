package model

import "fmt"

// SeatMode restricts which guests may occupy a seat.
type SeatMode string

const (
	SeatModeDefault      SeatMode = "default"
	SeatModeHostOnly     SeatMode = "host-only"
	SeatModeExternalOnly SeatMode = "external-only"
)

// Valid reports whether m is one of the known seat modes.
func (m SeatMode) Valid() bool {
	switch m {
	case SeatModeDefault, SeatModeHostOnly, SeatModeExternalOnly:
		return true
	}
	return false
}

// Seat describes a single physical seat at a table.  Position is the
// 0-based physical index fixed when the table is built and is what the
// adjacency graph is derived from; SeatNumber is the label shown to
// users and may be reassigned freely.
//
// Fields:
//
//	ID              unique seat identifier ("<tableID>-seat-<position>").
//	Position        physical index, never renumbered.
//	SeatNumber      user-facing display number.
//	Mode            eligibility restriction (default, host-only, external-only).
//	Locked          locked seats may not be assigned, swapped or cleared normally.
//	AssignedGuestID occupant, empty when the seat is free.
//	AdjacentSeats   ids of physically adjacent seats, always symmetric.
type Seat struct {
	ID              string   `json:"id"`
	Position        int      `json:"position"`
	SeatNumber      int      `json:"seat_number"`
	Mode            SeatMode `json:"mode"`
	Locked          bool     `json:"locked"`
	AssignedGuestID string   `json:"assigned_guest_id,omitempty"`
	AdjacentSeats   []string `json:"adjacent_seats"`
}

// Occupied reports whether a guest is assigned to the seat.
func (s *Seat) Occupied() bool {
	return s.AssignedGuestID != ""
}

// SeatID builds the identifier of the seat at position on table tableID.
func SeatID(tableID string, position int) string {
	return fmt.Sprintf("%s-seat-%d", tableID, position)
}

// SeatRef addresses a seat within a multi-table layout.
type SeatRef struct {
	TableID string `json:"table_id"`
	SeatID  string `json:"seat_id"`
}
