package model

import "time"

// GuestPair is an unordered pair of guest ids.  Order is kept as given
// for display but equality is order-independent.
type GuestPair [2]string

// Matches reports whether the pair is {a, b} in either order.
func (p GuestPair) Matches(a, b string) bool {
	return (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a)
}

// Contains reports whether id is one of the pair's members.
func (p GuestPair) Contains(id string) bool {
	return p[0] == id || p[1] == id
}

// Other returns the member that is not id.
func (p GuestPair) Other(id string) string {
	if p[0] == id {
		return p[1]
	}
	return p[0]
}

// Key is an order-independent identity for the pair.
func (p GuestPair) Key() string {
	if p[0] <= p[1] {
		return p[0] + "|" + p[1]
	}
	return p[1] + "|" + p[0]
}

// ProximityRules lists the pairwise seating constraints of a session.
type ProximityRules struct {
	SitTogether []GuestPair `json:"sit_together"`
	SitAway     []GuestPair `json:"sit_away"`
}

// Empty reports whether no rules are defined.
func (r ProximityRules) Empty() bool {
	return len(r.SitTogether) == 0 && len(r.SitAway) == 0
}

// ViolationType names the rule kind a violation breaks.
type ViolationType string

const (
	ViolationSitTogether ViolationType = "sit-together"
	ViolationSitAway     ViolationType = "sit-away"
)

// Violation records one broken proximity rule.  GuestIDs follow the
// rule's order; Seats holds where each of the two guests sits.
type Violation struct {
	Type       ViolationType `json:"type"`
	GuestIDs   GuestPair     `json:"guest_ids"`
	GuestNames [2]string     `json:"guest_names"`
	Seats      []SeatRef     `json:"seats"`
}

// ViolationCounts aggregates violations by type.
type ViolationCounts struct {
	SitTogether int `json:"sit_together"`
	SitAway     int `json:"sit_away"`
	Total       int `json:"total"`
}

// SessionPlan is the persisted seating layout of one session of an
// event: its tables, the guests invited to it and its rules.
type SessionPlan struct {
	EventID   string         `json:"event_id"`
	SessionID string         `json:"session_id"`
	StartTime time.Time      `json:"start_time"`
	Tables    []Table        `json:"tables"`
	Guests    []Guest        `json:"guests"`
	Rules     ProximityRules `json:"rules"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Lookup returns the plan's guests indexed by id.
func (p *SessionPlan) Lookup() GuestLookup {
	return NewGuestLookup(p.Guests)
}
