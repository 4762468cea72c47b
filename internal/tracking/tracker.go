// Package tracking records which guests sat next to tracked (VIP)
// guests in each session of an event.
//
// History is ordered by when a session was planned, not by when it
// takes place.  Re-planning a session flags every session planned
// after it for review, since their seating may have been chosen from
// exposure counts that no longer hold.
package tracking

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/seating-planner/internal/model"
)

// SessionAdjacencyRecord lists the neighbours of one tracked guest in
// one session.
type SessionAdjacencyRecord struct {
	SessionID        string    `json:"session_id"`
	SessionStartTime time.Time `json:"session_start_time"`
	PlanningOrder    int       `json:"planning_order"`
	TrackedGuestID   string    `json:"tracked_guest_id"`
	AdjacentGuestIDs []string  `json:"adjacent_guest_ids"`
	NeedsReview      bool      `json:"needs_review"`
}

// EventState is the whole tracking state of one event.  It holds no
// references to plans and is safe to persist as JSON.  It is not safe
// for concurrent use.
type EventState struct {
	EventID         string                   `json:"event_id"`
	TrackedGuestIDs GuestSet                 `json:"tracked_guest_ids"`
	Records         []SessionAdjacencyRecord `json:"records"`
	Planning        PlanningOrderTracker     `json:"planning"`
}

// NewEventState returns an empty state for eventID.
func NewEventState(eventID string) *EventState {
	return &EventState{
		EventID:         eventID,
		TrackedGuestIDs: GuestSet{},
		Records:         []SessionAdjacencyRecord{},
		Planning:        newPlanningOrderTracker(),
	}
}

// DecodeEventState parses a stored state and repairs missing or
// inconsistent fields.
func DecodeEventState(data []byte) (*EventState, error) {
	var s EventState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode tracking state: %w", err)
	}
	s.normalize()
	return &s, nil
}

func (s *EventState) normalize() {
	if s.TrackedGuestIDs == nil {
		s.TrackedGuestIDs = GuestSet{}
	}
	if s.Records == nil {
		s.Records = []SessionAdjacencyRecord{}
	}
	s.Planning.normalize()
}

// SetGuestTracked adds or removes guestID from the tracked set.
// Existing records are kept either way.
func (s *EventState) SetGuestTracked(guestID string, tracked bool) {
	s.normalize()
	if tracked {
		s.TrackedGuestIDs.Add(guestID)
	} else {
		s.TrackedGuestIDs.Remove(guestID)
	}
}

func (s *EventState) IsTracked(guestID string) bool {
	return s.TrackedGuestIDs.Has(guestID)
}

// PlanningOrder returns the planning order of sessionID, if assigned.
func (s *EventState) PlanningOrder(sessionID string) (int, bool) {
	return s.Planning.Order(sessionID)
}

// RecordOutcome summarises one RecordSessionAdjacency call.  A zero
// PlanningOrder means nothing was recorded because no guest is tracked.
type RecordOutcome struct {
	PlanningOrder int  `json:"planning_order"`
	Replan        bool `json:"replan"`
	Recorded      int  `json:"recorded"`
	Flagged       int  `json:"flagged"`
}

// RecordSessionAdjacency replaces the records of sessionID with the
// neighbours each tracked guest has in tables.
//
// Locked neighbouring seats are not counted.  A tracked guest with no
// counted neighbour, or who is not seated, gets no record.  When the
// session already had a planning order, records of every session
// planned later are marked for review.
func (s *EventState) RecordSessionAdjacency(sessionID string, startTime time.Time, tables []model.Table) RecordOutcome {
	s.normalize()
	if len(s.TrackedGuestIDs) == 0 {
		return RecordOutcome{}
	}

	order, replan := s.Planning.Assign(sessionID)
	out := RecordOutcome{PlanningOrder: order, Replan: replan}

	kept := s.Records[:0]
	for _, r := range s.Records {
		if r.SessionID != sessionID {
			kept = append(kept, r)
		}
	}
	s.Records = kept

	seats := map[string]*model.Seat{}
	for ti := range tables {
		for si := range tables[ti].Seats {
			seats[tables[ti].Seats[si].ID] = &tables[ti].Seats[si]
		}
	}

	for _, gid := range s.TrackedGuestIDs.Sorted() {
		_, seat := model.FindGuestSeat(tables, gid)
		if seat == nil {
			continue
		}
		near := GuestSet{}
		for _, id := range seat.AdjacentSeats {
			adj, ok := seats[id]
			if !ok || adj.Locked || !adj.Occupied() || adj.AssignedGuestID == gid {
				continue
			}
			near.Add(adj.AssignedGuestID)
		}
		if len(near) == 0 {
			continue
		}
		s.Records = append(s.Records, SessionAdjacencyRecord{
			SessionID:        sessionID,
			SessionStartTime: startTime,
			PlanningOrder:    order,
			TrackedGuestID:   gid,
			AdjacentGuestIDs: near.Sorted(),
		})
		out.Recorded++
	}

	if replan {
		for i := range s.Records {
			r := &s.Records[i]
			if r.SessionID != sessionID && r.PlanningOrder > order && !r.NeedsReview {
				r.NeedsReview = true
				out.Flagged++
			}
		}
	}

	sort.SliceStable(s.Records, func(i, j int) bool {
		a, b := s.Records[i], s.Records[j]
		if a.PlanningOrder != b.PlanningOrder {
			return a.PlanningOrder < b.PlanningOrder
		}
		return a.TrackedGuestID < b.TrackedGuestID
	})
	return out
}

// RecordsForSession returns a copy of the records of sessionID.
func (s *EventState) RecordsForSession(sessionID string) []SessionAdjacencyRecord {
	out := []SessionAdjacencyRecord{}
	for _, r := range s.Records {
		if r.SessionID == sessionID {
			r.AdjacentGuestIDs = append([]string(nil), r.AdjacentGuestIDs...)
			out = append(out, r)
		}
	}
	return out
}

// GetHistoricalAdjacencyCount counts how often each guest sat next to
// trackedGuestID in sessions planned before currentSessionID.  The
// result is empty when currentSessionID has no planning order.
func (s *EventState) GetHistoricalAdjacencyCount(currentSessionID, trackedGuestID string) map[string]int {
	counts := map[string]int{}
	current, ok := s.Planning.Order(currentSessionID)
	if !ok {
		return counts
	}
	for _, r := range s.Records {
		if r.TrackedGuestID != trackedGuestID || r.PlanningOrder >= current {
			continue
		}
		for _, id := range r.AdjacentGuestIDs {
			counts[id]++
		}
	}
	return counts
}

// AdjacencyCount is one entry of a tracked guest's history.
type AdjacencyCount struct {
	GuestID string `json:"guest_id"`
	Count   int    `json:"count"`
}

// GetTrackedGuestHistory is GetHistoricalAdjacencyCount as a list,
// most frequent neighbour first.  Ties are ordered by guest id.
func (s *EventState) GetTrackedGuestHistory(currentSessionID, trackedGuestID string) []AdjacencyCount {
	counts := s.GetHistoricalAdjacencyCount(currentSessionID, trackedGuestID)
	out := make([]AdjacencyCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, AdjacencyCount{GuestID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].GuestID < out[j].GuestID
	})
	return out
}

// SessionReview describes a session with records awaiting review.
type SessionReview struct {
	SessionID        string    `json:"session_id"`
	SessionStartTime time.Time `json:"session_start_time"`
	PlanningOrder    int       `json:"planning_order"`
	TrackedGuestIDs  []string  `json:"tracked_guest_ids"`
}

// GetSessionsNeedingReview lists sessions holding at least one record
// marked for review, in planning order.
func (s *EventState) GetSessionsNeedingReview() []SessionReview {
	out := []SessionReview{}
	at := map[string]int{}
	for _, r := range s.Records {
		if !r.NeedsReview {
			continue
		}
		i, ok := at[r.SessionID]
		if !ok {
			i = len(out)
			at[r.SessionID] = i
			out = append(out, SessionReview{
				SessionID:        r.SessionID,
				SessionStartTime: r.SessionStartTime,
				PlanningOrder:    r.PlanningOrder,
			})
		}
		out[i].TrackedGuestIDs = append(out[i].TrackedGuestIDs, r.TrackedGuestID)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlanningOrder < out[j].PlanningOrder
	})
	for i := range out {
		sort.Strings(out[i].TrackedGuestIDs)
	}
	return out
}

// AcknowledgeSessionReview clears the review flag on every record of
// sessionID and returns how many were cleared.
func (s *EventState) AcknowledgeSessionReview(sessionID string) int {
	n := 0
	for i := range s.Records {
		if s.Records[i].SessionID == sessionID && s.Records[i].NeedsReview {
			s.Records[i].NeedsReview = false
			n++
		}
	}
	return n
}

// DeleteSession removes the records and planning order of sessionID
// and returns the number of records removed.  The order is not handed
// out again.
func (s *EventState) DeleteSession(sessionID string) int {
	s.normalize()
	kept := s.Records[:0]
	for _, r := range s.Records {
		if r.SessionID != sessionID {
			kept = append(kept, r)
		}
	}
	n := len(s.Records) - len(kept)
	s.Records = kept
	s.Planning.Forget(sessionID)
	return n
}
