package tracking

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "tracking")

// GuestSet is a set of guest ids.  It marshals as a sorted JSON array.
type GuestSet map[string]struct{}

// NewGuestSet returns a set holding ids.  Empty ids are dropped.
func NewGuestSet(ids ...string) GuestSet {
	s := GuestSet{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s GuestSet) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

func (s GuestSet) Remove(id string) { delete(s, id) }

func (s GuestSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s GuestSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s GuestSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON accepts an array of ids, an object keyed by id (values
// true) or null.  Stored sets have come back in both shapes.  Anything
// else is treated as an empty set and logged; it never fails decoding.
func (s *GuestSet) UnmarshalJSON(data []byte) error {
	out := GuestSet{}
	*s = out

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var list []string
	if err := json.Unmarshal(trimmed, &list); err == nil {
		for _, id := range list {
			out.Add(id)
		}
		return nil
	}

	var obj map[string]bool
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		for id, member := range obj {
			if member {
				out.Add(id)
			}
		}
		return nil
	}

	log.WithField("raw", truncate(string(trimmed), 64)).Warn("tracked guest set has unexpected shape, treating as empty")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
