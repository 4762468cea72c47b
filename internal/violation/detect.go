// Package violation finds broken sit-together and sit-away rules in a
// seating layout.
package violation

import (
	"github.com/iliyamo/seating-planner/internal/model"
)

type placedSeat struct {
	ref  model.SeatRef
	seat *model.Seat
}

// index is a read-only view of a layout built once per detection run.
type index struct {
	seats      map[string]placedSeat
	guestSeats map[string]model.SeatRef
	order      []placedSeat
}

func newIndex(tables []model.Table) *index {
	idx := &index{
		seats:      map[string]placedSeat{},
		guestSeats: map[string]model.SeatRef{},
	}
	for ti := range tables {
		for si := range tables[ti].Seats {
			s := &tables[ti].Seats[si]
			p := placedSeat{ref: model.SeatRef{TableID: tables[ti].ID, SeatID: s.ID}, seat: s}
			idx.seats[s.ID] = p
			idx.order = append(idx.order, p)
			if s.Occupied() {
				if _, dup := idx.guestSeats[s.AssignedGuestID]; !dup {
					idx.guestSeats[s.AssignedGuestID] = p.ref
				}
			}
		}
	}
	return idx
}

// neighbours returns the guests seated next to s, keyed by guest id.
func (idx *index) neighbours(s *model.Seat) map[string]model.SeatRef {
	out := make(map[string]model.SeatRef, len(s.AdjacentSeats))
	for _, id := range s.AdjacentSeats {
		if adj, ok := idx.seats[id]; ok && adj.seat.Occupied() {
			out[adj.seat.AssignedGuestID] = adj.ref
		}
	}
	return out
}

// ruleIndex maps a guest id to the rules mentioning it.
type ruleIndex map[string][]model.GuestPair

func newRuleIndex(pairs []model.GuestPair) ruleIndex {
	out := ruleIndex{}
	for _, p := range pairs {
		if p[0] == "" || p[1] == "" || p[0] == p[1] {
			continue
		}
		out[p[0]] = append(out[p[0]], p)
		out[p[1]] = append(out[p[1]], p)
	}
	return out
}

// DetectProximityViolations scans every occupied seat and reports each
// broken rule once.
//
// A sit-together rule is broken when both guests are seated and not
// adjacent; a rule with an unseated member is not yet checked.  A
// sit-away rule is broken when both guests occupy adjacent seats.
// Each pair is found from both of its seats, so results are keyed by
// rule type, guest pair and seat pair and reported once.
//
// guests is used only for display names and may be nil.
func DetectProximityViolations(tables []model.Table, rules model.ProximityRules, guests model.GuestLookup) []model.Violation {
	if rules.Empty() {
		return []model.Violation{}
	}
	idx := newIndex(tables)
	together := newRuleIndex(rules.SitTogether)
	away := newRuleIndex(rules.SitAway)

	seen := map[string]struct{}{}
	out := []model.Violation{}
	report := func(typ model.ViolationType, pair model.GuestPair, a, b model.SeatRef) {
		key := string(typ) + "#" + pair.Key() + "#" + seatPairKey(a.SeatID, b.SeatID)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, newViolation(typ, pair, idx, guests))
	}

	for _, p := range idx.order {
		if !p.seat.Occupied() {
			continue
		}
		gid := p.seat.AssignedGuestID
		near := idx.neighbours(p.seat)

		for _, pair := range together[gid] {
			other := pair.Other(gid)
			otherRef, seated := idx.guestSeats[other]
			if !seated {
				continue
			}
			if _, adjacent := near[other]; adjacent {
				continue
			}
			report(model.ViolationSitTogether, pair, p.ref, otherRef)
		}

		for _, pair := range away[gid] {
			other := pair.Other(gid)
			if otherRef, adjacent := near[other]; adjacent {
				report(model.ViolationSitAway, pair, p.ref, otherRef)
			}
		}
	}
	return out
}

func newViolation(typ model.ViolationType, pair model.GuestPair, idx *index, guests model.GuestLookup) model.Violation {
	v := model.Violation{Type: typ, GuestIDs: pair}
	for i, id := range pair {
		v.GuestNames[i] = guests.Name(id)
		if ref, ok := idx.guestSeats[id]; ok {
			v.Seats = append(v.Seats, ref)
		}
	}
	return v
}

func seatPairKey(a, b string) string {
	if a <= b {
		return a + "|" + b
	}
	return b + "|" + a
}

// Count aggregates violations by type.
func Count(violations []model.Violation) model.ViolationCounts {
	var c model.ViolationCounts
	for _, v := range violations {
		switch v.Type {
		case model.ViolationSitTogether:
			c.SitTogether++
		case model.ViolationSitAway:
			c.SitAway++
		}
	}
	c.Total = c.SitTogether + c.SitAway
	return c
}

// ForGuest returns the violations that involve guestID.
func ForGuest(violations []model.Violation, guestID string) []model.Violation {
	var out []model.Violation
	for _, v := range violations {
		if v.GuestIDs.Contains(guestID) {
			out = append(out, v)
		}
	}
	return out
}
