package seating

import (
	"fmt"

	"github.com/iliyamo/seating-planner/internal/model"
)

// These functions are the only paths that mutate a layout.  Each one
// runs the matching validator first and leaves tables untouched when
// the validator refuses.  Seat positions and adjacency are never
// modified; only occupants, locks and modes change.

// AssignGuest places guest in the seat addressed by ref.  A guest
// already seated elsewhere is moved, which requires the old seat to be
// unlocked.  Assigning a guest to the seat they already occupy is a
// no-op success.
func AssignGuest(tables []model.Table, ref model.SeatRef, guest model.GuestInfo) AssignmentResult {
	_, seat := model.FindSeat(tables, ref)
	if guest == nil {
		return ClearSeat(tables, ref)
	}
	res := ValidateGuestSeatAssignment(guest, seat)
	if !res.CanAssign {
		return res
	}
	if seat.AssignedGuestID == guest.GuestID() {
		return res
	}
	_, prev := model.FindGuestSeat(tables, guest.GuestID())
	if prev != nil && prev.Locked {
		return AssignmentResult{Reason: fmt.Sprintf("guest is locked in seat %d", prev.SeatNumber)}
	}
	if prev != nil {
		prev.AssignedGuestID = ""
	}
	seat.AssignedGuestID = guest.GuestID()
	return res
}

// ClearSeat removes the occupant of an unlocked seat.
func ClearSeat(tables []model.Table, ref model.SeatRef) AssignmentResult {
	_, seat := model.FindSeat(tables, ref)
	if seat == nil {
		return AssignmentResult{Reason: "seat not found"}
	}
	if seat.Locked {
		return AssignmentResult{Reason: fmt.Sprintf("seat %d is locked", seat.SeatNumber)}
	}
	seat.AssignedGuestID = ""
	return AssignmentResult{CanAssign: true}
}

// ForceClearSeat removes the occupant even when the seat is locked.
// The lock itself is kept.
func ForceClearSeat(tables []model.Table, ref model.SeatRef) AssignmentResult {
	_, seat := model.FindSeat(tables, ref)
	if seat == nil {
		return AssignmentResult{Reason: "seat not found"}
	}
	seat.AssignedGuestID = ""
	return AssignmentResult{CanAssign: true}
}

// SwapSeats exchanges the occupants of two seats after ValidateSeatSwap
// approves it.
func SwapSeats(tables []model.Table, ref1, ref2 model.SeatRef, guests model.GuestLookup) SwapResult {
	_, s1 := model.FindSeat(tables, ref1)
	_, s2 := model.FindSeat(tables, ref2)
	var g1, g2 model.GuestInfo
	if s1 != nil {
		g1 = guests.Info(s1.AssignedGuestID)
	}
	if s2 != nil {
		g2 = guests.Info(s2.AssignedGuestID)
	}
	res := ValidateSeatSwap(s1, s2, g1, g2)
	if !res.CanSwap {
		return res
	}
	s1.AssignedGuestID, s2.AssignedGuestID = s2.AssignedGuestID, s1.AssignedGuestID
	return res
}

// SetSeatLock locks or unlocks a seat.
func SetSeatLock(tables []model.Table, ref model.SeatRef, locked bool) AssignmentResult {
	_, seat := model.FindSeat(tables, ref)
	if seat == nil {
		return AssignmentResult{Reason: "seat not found"}
	}
	seat.Locked = locked
	return AssignmentResult{CanAssign: true}
}

// SetSeatMode changes a seat's restriction.  The change is refused when
// the current occupant would no longer be allowed in the seat, so a
// committed assignment always satisfies its seat's mode.
func SetSeatMode(tables []model.Table, ref model.SeatRef, mode model.SeatMode, guests model.GuestLookup) AssignmentResult {
	_, seat := model.FindSeat(tables, ref)
	if seat == nil {
		return AssignmentResult{Reason: "seat not found"}
	}
	if !mode.Valid() {
		return AssignmentResult{Reason: fmt.Sprintf("unknown seat mode %q", mode)}
	}
	if seat.Occupied() {
		if occupant := guests.Info(seat.AssignedGuestID); occupant != nil {
			probe := *seat
			probe.Mode = mode
			if r := modeMismatch(occupant, &probe); r != "" {
				return AssignmentResult{Reason: r}
			}
		}
	}
	seat.Mode = mode
	return AssignmentResult{CanAssign: true}
}
