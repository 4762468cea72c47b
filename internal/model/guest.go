package model

// GuestInfo is the narrow view of a guest the validators need.
type GuestInfo interface {
	GuestID() string
	IsFromHost() bool
}

// Guest is an invitee.  FromHost classifies the guest as belonging to
// the host company (true) or as an external visitor (false).
type Guest struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	FromHost bool   `json:"from_host"`
}

func (g Guest) GuestID() string  { return g.ID }
func (g Guest) IsFromHost() bool { return g.FromHost }

// Kind returns "host" or "external".
func (g Guest) Kind() string {
	return GuestKind(g)
}

// GuestKind describes a GuestInfo as "host" or "external".
func GuestKind(g GuestInfo) string {
	if g.IsFromHost() {
		return "host"
	}
	return "external"
}

// GuestLookup indexes guests by id.
type GuestLookup map[string]Guest

// NewGuestLookup builds a lookup from a guest list.  Later entries win
// on duplicate ids.
func NewGuestLookup(guests []Guest) GuestLookup {
	out := make(GuestLookup, len(guests))
	for _, g := range guests {
		out[g.ID] = g
	}
	return out
}

// Info returns the guest with the given id as a GuestInfo, or nil when
// the id is unknown.  A nil interface (not a typed nil) is returned so
// callers can compare against nil directly.
func (l GuestLookup) Info(id string) GuestInfo {
	if g, ok := l[id]; ok {
		return g
	}
	return nil
}

// Name returns the display name of a guest, falling back to the id.
func (l GuestLookup) Name(id string) string {
	if g, ok := l[id]; ok && g.Name != "" {
		return g.Name
	}
	return id
}
