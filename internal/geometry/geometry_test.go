package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seating-planner/internal/model"
)

func positionsOf(t *testing.T, table model.Table, seatPos int) []int {
	t.Helper()
	byID := make(map[string]int, len(table.Seats))
	for _, s := range table.Seats {
		byID[s.ID] = s.Position
	}
	out := make([]int, 0, len(table.Seats[seatPos].AdjacentSeats))
	for _, id := range table.Seats[seatPos].AdjacentSeats {
		p, ok := byID[id]
		require.True(t, ok, "adjacent seat %s not on table", id)
		out = append(out, p)
	}
	return out
}

func assertSymmetric(t *testing.T, table model.Table) {
	t.Helper()
	adj := make(map[string]map[string]bool, len(table.Seats))
	for _, s := range table.Seats {
		adj[s.ID] = map[string]bool{}
		for _, a := range s.AdjacentSeats {
			adj[s.ID][a] = true
		}
	}
	for a, neighbours := range adj {
		for b := range neighbours {
			assert.True(t, adj[b][a], "edge %s -> %s has no reverse", a, b)
		}
		assert.False(t, neighbours[a], "seat %s lists itself", a)
	}
}

func TestCreateRoundTable_Ring(t *testing.T) {
	table := CreateRoundTable(RoundTableOptions{ID: "t1", SeatCount: 8})

	require.Len(t, table.Seats, 8)
	assert.Equal(t, model.TableShapeRound, table.Shape)
	assert.Nil(t, table.Sides)
	for i := 0; i < 8; i++ {
		prev, next := (i-1+8)%8, (i+1)%8
		assert.ElementsMatch(t, []int{prev, next}, positionsOf(t, table, i), "position %d", i)
	}
	assertSymmetric(t, table)
}

func TestCreateRoundTable_Defaults(t *testing.T) {
	table := CreateRoundTable(RoundTableOptions{ID: "t1", SeatCount: 4})

	for i, s := range table.Seats {
		assert.Equal(t, model.SeatID("t1", i), s.ID)
		assert.Equal(t, i, s.Position)
		assert.Equal(t, i+1, s.SeatNumber)
		assert.Equal(t, model.SeatModeDefault, s.Mode)
		assert.False(t, s.Locked)
		assert.Empty(t, s.AssignedGuestID)
	}
}

func TestCreateRoundTable_TwoSeats(t *testing.T) {
	table := CreateRoundTable(RoundTableOptions{ID: "t1", SeatCount: 2})

	assert.Equal(t, []string{"t1-seat-1"}, table.Seats[0].AdjacentSeats)
	assert.Equal(t, []string{"t1-seat-0"}, table.Seats[1].AdjacentSeats)
}

func TestCreateRoundTable_SingleAndEmpty(t *testing.T) {
	one := CreateRoundTable(RoundTableOptions{ID: "t1", SeatCount: 1})
	require.Len(t, one.Seats, 1)
	assert.Empty(t, one.Seats[0].AdjacentSeats)

	none := CreateRoundTable(RoundTableOptions{ID: "t2", SeatCount: -3})
	assert.Empty(t, none.Seats)
}

func TestCreateRoundTable_GeneratesID(t *testing.T) {
	a := CreateRoundTable(RoundTableOptions{SeatCount: 3})
	b := CreateRoundTable(RoundTableOptions{SeatCount: 3})

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, model.SeatID(a.ID, 0), a.Seats[0].ID)
}

func TestCreateRoundTable_Overrides(t *testing.T) {
	table := CreateRoundTable(RoundTableOptions{
		ID:        "t1",
		SeatCount: 4,
		Overrides: Overrides{
			SeatNumbers: []int{10, 0, 30},
			SeatModes:   []model.SeatMode{model.SeatModeHostOnly, "bogus", model.SeatModeExternalOnly},
		},
	})

	assert.Equal(t, 10, table.Seats[0].SeatNumber)
	assert.Equal(t, 2, table.Seats[1].SeatNumber, "zero entry falls back to position+1")
	assert.Equal(t, 30, table.Seats[2].SeatNumber)
	assert.Equal(t, 4, table.Seats[3].SeatNumber, "short slice falls back")

	assert.Equal(t, model.SeatModeHostOnly, table.Seats[0].Mode)
	assert.Equal(t, model.SeatModeDefault, table.Seats[1].Mode, "unknown mode falls back")
	assert.Equal(t, model.SeatModeExternalOnly, table.Seats[2].Mode)
	assert.Equal(t, model.SeatModeDefault, table.Seats[3].Mode)

	// display numbering never affects adjacency
	assert.ElementsMatch(t, []int{3, 1}, positionsOf(t, table, 0))
}

func TestCreateRectangleTable_OppositeMapping(t *testing.T) {
	table := CreateRectangleTable(RectangleTableOptions{
		ID:    "r1",
		Sides: model.RectangleSides{Top: 3, Bottom: 3},
	})

	// top: 0,1,2 (left to right); bottom: 3,4,5 (right to left)
	require.Len(t, table.Seats, 6)
	assert.Equal(t, []int{1, 5}, positionsOf(t, table, 0))
	assert.Equal(t, []int{0, 2, 4}, positionsOf(t, table, 1))
	assert.Equal(t, []int{1, 3}, positionsOf(t, table, 2))
	assert.Equal(t, []int{2, 4}, positionsOf(t, table, 3))
	assert.Equal(t, []int{1, 3, 5}, positionsOf(t, table, 4))
	assert.Equal(t, []int{0, 4}, positionsOf(t, table, 5))
	assertSymmetric(t, table)
}

func TestCreateRectangleTable_UnequalSidesHaveNoOpposite(t *testing.T) {
	table := CreateRectangleTable(RectangleTableOptions{
		ID:    "r1",
		Sides: model.RectangleSides{Top: 2, Bottom: 3},
	})

	// top: 0,1; bottom: 2,3,4
	assert.Equal(t, []int{1}, positionsOf(t, table, 0))
	assert.Equal(t, []int{0}, positionsOf(t, table, 1))
	assert.Equal(t, []int{3}, positionsOf(t, table, 2))
	assert.Equal(t, []int{2, 4}, positionsOf(t, table, 3))
	assert.Equal(t, []int{3}, positionsOf(t, table, 4))
}

func TestCreateRectangleTable_Corners(t *testing.T) {
	table := CreateRectangleTable(RectangleTableOptions{
		ID:    "r1",
		Sides: model.RectangleSides{Top: 3, Right: 1, Bottom: 3, Left: 1},
	})

	// top 0,1,2; right 3; bottom 4,5,6; left 7
	require.Len(t, table.Seats, 8)
	assert.Equal(t, []int{1, 6, 7}, positionsOf(t, table, 0))
	assert.Equal(t, []int{0, 2, 5}, positionsOf(t, table, 1))
	assert.Equal(t, []int{1, 3, 4}, positionsOf(t, table, 2))
	assert.Equal(t, []int{2, 4, 7}, positionsOf(t, table, 3))
	assert.Equal(t, []int{2, 3, 5}, positionsOf(t, table, 4))
	assert.Equal(t, []int{0, 5, 7}, positionsOf(t, table, 6))
	assert.Equal(t, []int{0, 3, 6}, positionsOf(t, table, 7))
	assertSymmetric(t, table)
}

func TestCreateRectangleTable_SidesRecorded(t *testing.T) {
	sides := model.RectangleSides{Top: 4, Right: 2, Bottom: 4, Left: 2}
	table := CreateRectangleTable(RectangleTableOptions{ID: "r1", Sides: sides})

	require.NotNil(t, table.Sides)
	assert.Equal(t, sides, *table.Sides)
	assert.Equal(t, model.TableShapeRectangle, table.Shape)
	assert.Len(t, table.Seats, 12)
	assertSymmetric(t, table)
}

func TestCreateRectangleTable_LeftRightOpposite(t *testing.T) {
	table := CreateRectangleTable(RectangleTableOptions{
		ID:    "r1",
		Sides: model.RectangleSides{Right: 2, Left: 2},
	})

	// right 0,1 (top to bottom); left 2,3 (bottom to top)
	// left[i] <-> right[1-i]: 2<->1, 3<->0
	assert.Equal(t, []int{1, 3}, positionsOf(t, table, 0))
	assert.Equal(t, []int{0, 2}, positionsOf(t, table, 1))
	assert.Equal(t, []int{1, 3}, positionsOf(t, table, 2))
	assert.Equal(t, []int{0, 2}, positionsOf(t, table, 3))
	assertSymmetric(t, table)
}

func TestCreateRectangleTable_SymmetryAcrossShapes(t *testing.T) {
	cases := []model.RectangleSides{
		{Top: 1},
		{Top: 1, Right: 1, Bottom: 1, Left: 1},
		{Top: 5, Right: 0, Bottom: 4, Left: 2},
		{Top: 0, Right: 3, Bottom: 0, Left: 3},
		{Top: 6, Right: 2, Bottom: 6, Left: 1},
	}
	for _, sides := range cases {
		table := CreateRectangleTable(RectangleTableOptions{ID: "r", Sides: sides})
		assert.Len(t, table.Seats, sides.Total())
		assertSymmetric(t, table)
	}
}

func TestRebuildAdjacency(t *testing.T) {
	table := CreateRectangleTable(RectangleTableOptions{
		ID:    "r1",
		Sides: model.RectangleSides{Top: 3, Right: 1, Bottom: 3, Left: 1},
	})
	want := make([][]string, len(table.Seats))
	for i, s := range table.Seats {
		want[i] = append([]string(nil), s.AdjacentSeats...)
		table.Seats[i].AdjacentSeats = nil
	}
	table.Seats[2].AssignedGuestID = "g1"

	RebuildAdjacency(&table)

	for i, s := range table.Seats {
		assert.Equal(t, want[i], s.AdjacentSeats, "position %d", i)
	}
	assert.Equal(t, "g1", table.Seats[2].AssignedGuestID)
}

func TestRebuildAdjacency_RoundTable(t *testing.T) {
	table := CreateRoundTable(RoundTableOptions{ID: "t1", SeatCount: 5})
	table.Seats[0].AdjacentSeats = []string{"t1-seat-3"}

	RebuildAdjacency(&table)

	assert.Equal(t, []string{"t1-seat-1", "t1-seat-4"}, table.Seats[0].AdjacentSeats)
}
