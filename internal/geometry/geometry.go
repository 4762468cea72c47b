// Package geometry builds tables and their physical adjacency graphs.
//
// Two shapes are supported.  Round tables form a ring.  Rectangle
// tables place seats on four sides walked clockwise (top left to right,
// right top to bottom, bottom right to left, left bottom to top) and
// connect same-side neighbours, equal-length opposite sides and the
// seats on either side of each corner.
//
// Builders are pure: the same options always produce the same table,
// except for the generated table id when none is supplied.
package geometry

import (
	"sort"

	"github.com/google/uuid"

	"github.com/iliyamo/seating-planner/internal/model"
)

// Overrides customise seats by physical position.  Both slices are
// indexed by position; missing or zero entries fall back to the
// defaults (display number position+1, mode default).
type Overrides struct {
	SeatNumbers []int            `json:"seat_numbers,omitempty"`
	SeatModes   []model.SeatMode `json:"seat_modes,omitempty"`
}

func (o Overrides) number(pos int) int {
	if pos < len(o.SeatNumbers) && o.SeatNumbers[pos] > 0 {
		return o.SeatNumbers[pos]
	}
	return pos + 1
}

func (o Overrides) mode(pos int) model.SeatMode {
	if pos < len(o.SeatModes) && o.SeatModes[pos].Valid() {
		return o.SeatModes[pos]
	}
	return model.SeatModeDefault
}

// RoundTableOptions configures CreateRoundTable.
type RoundTableOptions struct {
	ID        string
	Label     string
	SeatCount int
	Overrides
}

// RectangleTableOptions configures CreateRectangleTable.
type RectangleTableOptions struct {
	ID    string
	Label string
	Sides model.RectangleSides
	Overrides
}

// CreateRoundTable builds a ring of SeatCount seats where position i
// neighbours (i-1+n) mod n and (i+1) mod n.  Negative counts are
// treated as zero.
func CreateRoundTable(opts RoundTableOptions) model.Table {
	n := max(opts.SeatCount, 0)
	t := newTable(opts.ID, opts.Label, model.TableShapeRound, n, opts.Overrides)
	edges := newEdgeSet(n)
	for i := 0; i < n; i++ {
		edges.add(i, (i-1+n)%n)
		edges.add(i, (i+1)%n)
	}
	edges.apply(&t)
	return t
}

// CreateRectangleTable builds a rectangle table from per-side seat
// counts.  Negative side counts are treated as zero.
func CreateRectangleTable(opts RectangleTableOptions) model.Table {
	sides := model.RectangleSides{
		Top:    max(opts.Sides.Top, 0),
		Right:  max(opts.Sides.Right, 0),
		Bottom: max(opts.Sides.Bottom, 0),
		Left:   max(opts.Sides.Left, 0),
	}
	n := sides.Total()
	t := newTable(opts.ID, opts.Label, model.TableShapeRectangle, n, opts.Overrides)
	t.Sides = &sides

	l := newRectLayout(sides)
	edges := newEdgeSet(n)

	// same-side neighbours, no wraparound across sides
	for _, side := range l.sides {
		for i := 1; i < len(side); i++ {
			edges.add(side[i-1], side[i])
		}
	}

	// opposite seats; both pairs traverse in opposite directions
	if sides.Top == sides.Bottom {
		for i := 0; i < sides.Top; i++ {
			edges.add(l.top()[i], l.bottom()[sides.Top-1-i])
		}
	}
	if sides.Left == sides.Right {
		for i := 0; i < sides.Left; i++ {
			edges.add(l.left()[i], l.right()[sides.Left-1-i])
		}
	}

	// corners, following the clockwise walk
	for s := 0; s < 4; s++ {
		cur, next := l.sides[s], l.sides[(s+1)%4]
		if len(cur) == 0 || len(next) == 0 {
			continue
		}
		edges.add(cur[len(cur)-1], next[0])
	}

	edges.apply(&t)
	return t
}

// RebuildAdjacency re-derives the adjacency graph of t from its shape
// and seat count, keeping every other seat attribute.  It is used when
// a persisted layout's edges are missing or suspect.
func RebuildAdjacency(t *model.Table) {
	var fresh model.Table
	switch t.Shape {
	case model.TableShapeRectangle:
		if t.Sides == nil || t.Sides.Total() != len(t.Seats) {
			return
		}
		fresh = CreateRectangleTable(RectangleTableOptions{ID: t.ID, Sides: *t.Sides})
	default:
		fresh = CreateRoundTable(RoundTableOptions{ID: t.ID, SeatCount: len(t.Seats)})
	}
	idAt := make(map[int]string, len(t.Seats))
	for _, s := range t.Seats {
		idAt[s.Position] = s.ID
	}
	freshPos := make(map[string]int, len(fresh.Seats))
	for _, s := range fresh.Seats {
		freshPos[s.ID] = s.Position
	}
	neighbours := make(map[int][]string, len(fresh.Seats))
	for _, s := range fresh.Seats {
		ids := make([]string, 0, len(s.AdjacentSeats))
		for _, adj := range s.AdjacentSeats {
			if id, ok := idAt[freshPos[adj]]; ok {
				ids = append(ids, id)
			}
		}
		neighbours[s.Position] = ids
	}
	for i := range t.Seats {
		if ids, ok := neighbours[t.Seats[i].Position]; ok {
			t.Seats[i].AdjacentSeats = ids
		} else {
			t.Seats[i].AdjacentSeats = []string{}
		}
	}
}

func newTable(id, label string, shape model.TableShape, n int, o Overrides) model.Table {
	if id == "" {
		id = uuid.NewString()
	}
	t := model.Table{ID: id, Label: label, Shape: shape, Seats: make([]model.Seat, n)}
	for i := 0; i < n; i++ {
		t.Seats[i] = model.Seat{
			ID:            model.SeatID(id, i),
			Position:      i,
			SeatNumber:    o.number(i),
			Mode:          o.mode(i),
			AdjacentSeats: []string{},
		}
	}
	return t
}

// rectLayout maps side-local indexes to physical positions.  Sides are
// ordered top, right, bottom, left.
type rectLayout struct {
	sides [4][]int
}

func newRectLayout(s model.RectangleSides) rectLayout {
	var l rectLayout
	pos := 0
	for i, count := range []int{s.Top, s.Right, s.Bottom, s.Left} {
		l.sides[i] = make([]int, count)
		for j := 0; j < count; j++ {
			l.sides[i][j] = pos
			pos++
		}
	}
	return l
}

func (l rectLayout) top() []int    { return l.sides[0] }
func (l rectLayout) right() []int  { return l.sides[1] }
func (l rectLayout) bottom() []int { return l.sides[2] }
func (l rectLayout) left() []int   { return l.sides[3] }

// edgeSet collects undirected edges between positions.  Adding an
// edge always records both directions, which keeps the graph
// symmetric by construction.
type edgeSet struct {
	adj []map[int]struct{}
}

func newEdgeSet(n int) *edgeSet {
	e := &edgeSet{adj: make([]map[int]struct{}, n)}
	for i := range e.adj {
		e.adj[i] = map[int]struct{}{}
	}
	return e
}

func (e *edgeSet) add(a, b int) {
	if a == b {
		return
	}
	e.adj[a][b] = struct{}{}
	e.adj[b][a] = struct{}{}
}

func (e *edgeSet) apply(t *model.Table) {
	for i := range t.Seats {
		positions := make([]int, 0, len(e.adj[i]))
		for p := range e.adj[i] {
			positions = append(positions, p)
		}
		sort.Ints(positions)
		ids := make([]string, len(positions))
		for k, p := range positions {
			ids[k] = t.Seats[p].ID
		}
		t.Seats[i].AdjacentSeats = ids
	}
}
