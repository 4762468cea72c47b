// Package swap evaluates hypothetical seat swaps.
//
// Predictions run on a private copy of the layout, so the live tables
// are never touched.  Every prediction re-runs violation detection over
// the whole copied layout.
package swap

import (
	"sort"

	"github.com/iliyamo/seating-planner/internal/model"
	"github.com/iliyamo/seating-planner/internal/seating"
	"github.com/iliyamo/seating-planner/internal/violation"
)

// Prediction is the advisory outcome of a hypothetical swap.
// Computable is false when either seat could not be found, in which
// case the counts are zero.
type Prediction struct {
	Computable bool                  `json:"computable"`
	Counts     model.ViolationCounts `json:"counts"`
	Violations []model.Violation     `json:"violations"`
}

// Candidate is a legal swap target for a source seat.
type Candidate struct {
	Seat        model.SeatRef         `json:"seat"`
	SeatNumber  int                   `json:"seat_number"`
	GuestID     string                `json:"guest_id"`
	Counts      model.ViolationCounts `json:"counts"`
	Improvement int                   `json:"improvement"`
}

// CloneTables returns a deep copy of tables.  Mutating the copy,
// including seat adjacency slices, never affects the original.
func CloneTables(tables []model.Table) []model.Table {
	if tables == nil {
		return nil
	}
	out := make([]model.Table, len(tables))
	for i, t := range tables {
		out[i] = t
		if t.Sides != nil {
			sides := *t.Sides
			out[i].Sides = &sides
		}
		out[i].Seats = make([]model.Seat, len(t.Seats))
		for j, s := range t.Seats {
			s.AdjacentSeats = append([]string(nil), s.AdjacentSeats...)
			out[i].Seats[j] = s
		}
	}
	return out
}

// PredictViolationsAfterSwap exchanges the occupants of seat1 and seat2
// on a copy of tables and reports the violations the copy would have.
// Legality is not checked here; see GetSwapCandidates.
func PredictViolationsAfterSwap(tables []model.Table, seat1, seat2 model.SeatRef, rules model.ProximityRules, guests model.GuestLookup) Prediction {
	clone := CloneTables(tables)
	_, s1 := model.FindSeat(clone, seat1)
	_, s2 := model.FindSeat(clone, seat2)
	if s1 == nil || s2 == nil {
		return Prediction{Violations: []model.Violation{}}
	}
	s1.AssignedGuestID, s2.AssignedGuestID = s2.AssignedGuestID, s1.AssignedGuestID

	found := violation.DetectProximityViolations(clone, rules, guests)
	return Prediction{
		Computable: true,
		Counts:     violation.Count(found),
		Violations: found,
	}
}

// GetSwapCandidates lists every occupied, unlocked seat that source may
// legally swap with, ranked by the number of violations the layout
// would have afterwards (fewest first).  Ties keep layout order.  This
// is a one-step lookahead, not a global search.
func GetSwapCandidates(source model.SeatRef, tables []model.Table, guests model.GuestLookup, rules model.ProximityRules) []Candidate {
	out := []Candidate{}
	_, src := model.FindSeat(tables, source)
	if src == nil || !src.Occupied() || src.Locked {
		return out
	}
	srcGuest := guests.Info(src.AssignedGuestID)
	current := violation.Count(violation.DetectProximityViolations(tables, rules, guests))

	for ti := range tables {
		for si := range tables[ti].Seats {
			target := &tables[ti].Seats[si]
			if target.ID == src.ID || !target.Occupied() || target.Locked {
				continue
			}
			res := seating.ValidateSeatSwap(src, target, srcGuest, guests.Info(target.AssignedGuestID))
			if !res.CanSwap {
				continue
			}
			ref := model.SeatRef{TableID: tables[ti].ID, SeatID: target.ID}
			p := PredictViolationsAfterSwap(tables, source, ref, rules, guests)
			if !p.Computable {
				continue
			}
			out = append(out, Candidate{
				Seat:        ref,
				SeatNumber:  target.SeatNumber,
				GuestID:     target.AssignedGuestID,
				Counts:      p.Counts,
				Improvement: current.Total - p.Counts.Total,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Counts.Total < out[j].Counts.Total
	})
	return out
}
