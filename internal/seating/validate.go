// Package seating decides whether a guest may take a seat and applies
// already-validated changes to a layout.
//
// Validators never fail with an error: every outcome, including a
// missing seat, is reported as a result carrying human-readable
// reasons so callers can show feedback directly.
package seating

import (
	"fmt"

	"github.com/iliyamo/seating-planner/internal/model"
)

// AssignmentResult is the outcome of ValidateGuestSeatAssignment.
type AssignmentResult struct {
	CanAssign bool   `json:"can_assign"`
	Reason    string `json:"reason,omitempty"`
}

// SwapResult is the outcome of ValidateSeatSwap.
type SwapResult struct {
	CanSwap bool     `json:"can_swap"`
	Reasons []string `json:"reasons,omitempty"`
}

// ValidateGuestSeatAssignment reports whether guest may be placed in
// seat.  A nil guest means clearing the seat, which this check always
// allows; clearing a locked seat is refused by ClearSeat, not here.
func ValidateGuestSeatAssignment(guest model.GuestInfo, seat *model.Seat) AssignmentResult {
	if seat == nil {
		return AssignmentResult{Reason: "seat not found"}
	}
	if guest == nil {
		return AssignmentResult{CanAssign: true}
	}
	if seat.Locked {
		return AssignmentResult{Reason: fmt.Sprintf("seat %d is locked", seat.SeatNumber)}
	}
	if reason := modeMismatch(guest, seat); reason != "" {
		return AssignmentResult{Reason: reason}
	}
	return AssignmentResult{CanAssign: true}
}

// modeMismatch returns a reason when seat's mode excludes guest.
func modeMismatch(guest model.GuestInfo, seat *model.Seat) string {
	switch seat.Mode {
	case model.SeatModeHostOnly:
		if !guest.IsFromHost() {
			return fmt.Sprintf("external guest cannot sit in host-only seat %d", seat.SeatNumber)
		}
	case model.SeatModeExternalOnly:
		if guest.IsFromHost() {
			return fmt.Sprintf("host guest cannot sit in external-only seat %d", seat.SeatNumber)
		}
	}
	return ""
}

// ValidateSeatSwap reports whether the occupants of seat1 and seat2 may
// trade places.  guest1 and guest2 are the current occupants of seat1
// and seat2.  Both cross directions are checked and every failure is
// reported.
func ValidateSeatSwap(seat1, seat2 *model.Seat, guest1, guest2 model.GuestInfo) SwapResult {
	if seat1 == nil || seat2 == nil {
		return SwapResult{Reasons: []string{"seat not found"}}
	}
	if seat1.ID == seat2.ID {
		return SwapResult{Reasons: []string{"cannot swap a seat with itself"}}
	}

	var reasons []string
	for _, s := range []*model.Seat{seat1, seat2} {
		if s.Locked {
			reasons = append(reasons, fmt.Sprintf("seat %d is locked", s.SeatNumber))
		}
	}
	for _, s := range []*model.Seat{seat1, seat2} {
		if !s.Occupied() {
			reasons = append(reasons, fmt.Sprintf("seat %d is empty", s.SeatNumber))
		}
	}
	if len(reasons) > 0 {
		return SwapResult{Reasons: reasons}
	}

	if guest1 == nil {
		reasons = append(reasons, fmt.Sprintf("guest %s not found", seat1.AssignedGuestID))
	}
	if guest2 == nil {
		reasons = append(reasons, fmt.Sprintf("guest %s not found", seat2.AssignedGuestID))
	}
	if len(reasons) > 0 {
		return SwapResult{Reasons: reasons}
	}

	// guest1 moves to seat2, guest2 moves to seat1
	if r := modeMismatch(guest1, seat2); r != "" {
		reasons = append(reasons, r)
	}
	if r := modeMismatch(guest2, seat1); r != "" {
		reasons = append(reasons, r)
	}
	return SwapResult{CanSwap: len(reasons) == 0, Reasons: reasons}
}
