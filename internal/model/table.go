package model

// TableShape is the physical shape of a table.
type TableShape string

const (
	TableShapeRound     TableShape = "round"
	TableShapeRectangle TableShape = "rectangle"
)

// RectangleSides holds the number of seats on each side of a
// rectangle table.
type RectangleSides struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Total returns the number of seats around the table.
func (s RectangleSides) Total() int {
	return s.Top + s.Right + s.Bottom + s.Left
}

// Table is a set of seats sharing one adjacency graph.  Rectangle
// tables keep their side counts so adjacency can be re-derived.
type Table struct {
	ID    string          `json:"id"`
	Label string          `json:"label,omitempty"`
	Shape TableShape      `json:"shape"`
	Sides *RectangleSides `json:"sides,omitempty"`
	Seats []Seat          `json:"seats"`
}

// Seat returns a pointer into t.Seats for the seat with the given id.
func (t *Table) Seat(id string) *Seat {
	for i := range t.Seats {
		if t.Seats[i].ID == id {
			return &t.Seats[i]
		}
	}
	return nil
}

// FindSeat locates a seat across all tables.  The returned pointers
// alias the slice elements so callers may mutate through them.
func FindSeat(tables []Table, ref SeatRef) (*Table, *Seat) {
	for i := range tables {
		if ref.TableID != "" && tables[i].ID != ref.TableID {
			continue
		}
		if s := tables[i].Seat(ref.SeatID); s != nil {
			return &tables[i], s
		}
	}
	return nil, nil
}

// FindGuestSeat returns the first seat occupied by guestID.
func FindGuestSeat(tables []Table, guestID string) (*Table, *Seat) {
	if guestID == "" {
		return nil, nil
	}
	for i := range tables {
		for j := range tables[i].Seats {
			if tables[i].Seats[j].AssignedGuestID == guestID {
				return &tables[i], &tables[i].Seats[j]
			}
		}
	}
	return nil, nil
}
