package universe

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowlife/src/pixbuf"
)

type cell struct{ Row, Col int }

//liveSet lists the live cells of the grid in row-major order
func liveSet(t *testing.T, g *Grid) []cell {
	t.Helper()
	b := g.Buffer()
	require.NotNil(t, b)
	var cells []cell
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			if b.IsBlack(b.Offset(row, col)) {
				cells = append(cells, cell{row, col})
			}
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}

//settleRC settles cells given as row, col pairs
func settleRC(g *Grid, cells ...cell) {
	vc := make([][]int, 0, len(cells))
	for _, c := range cells {
		vc = append(vc, []int{c.Col, c.Row})
	}
	g.Settle(vc)
}

func TestStepOnAbsentGridIsNoop(t *testing.T) {
	g := NewGrid(4, 4)
	live, changed := g.Step()
	assert.Equal(t, 0, live)
	assert.False(t, changed)
	assert.False(t, g.Initialized())
	assert.Nil(t, g.Buffer())
}

func TestStepLoneCellDies(t *testing.T) {
	g := NewGrid(3, 3)
	settleRC(g, cell{1, 1})

	live, changed := g.Step()
	assert.Equal(t, 0, live)
	assert.True(t, changed)
	assert.Empty(t, liveSet(t, g))
}

func TestStepHorizontalTriplet(t *testing.T) {
	g := NewGrid(10, 10)
	settleRC(g, cell{5, 4}, cell{5, 5}, cell{5, 6})

	live, _ := g.Step()

	//every cell with exactly 2 or 3 live neighbours is alive, dead or not
	want := []cell{
		{4, 4}, {4, 5}, {4, 6},
		{5, 5},
		{6, 4}, {6, 5}, {6, 6},
	}
	if diff := cmp.Diff(want, liveSet(t, g)); diff != "" {
		t.Errorf("live cells mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, len(want), live)
}

func TestStepDeadCellWithTwoNeighboursIsBorn(t *testing.T) {
	g := NewGrid(3, 1)
	settleRC(g, cell{0, 0}, cell{0, 2})

	g.Step()

	if diff := cmp.Diff([]cell{{0, 1}}, liveSet(t, g)); diff != "" {
		t.Errorf("live cells mismatch (-want +got):\n%s", diff)
	}
}

func TestStepDoesNotWrapAtEdges(t *testing.T) {
	g := NewGrid(3, 3)
	var all []cell
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			all = append(all, cell{row, col})
		}
	}
	settleRC(g, all...)

	g.Step()

	//corners see 3 neighbours, edges 5, the centre 8
	want := []cell{{0, 0}, {0, 2}, {2, 0}, {2, 2}}
	if diff := cmp.Diff(want, liveSet(t, g)); diff != "" {
		t.Errorf("live cells mismatch (-want +got):\n%s", diff)
	}
}

func TestStepReplacesBuffer(t *testing.T) {
	g := NewGrid(4, 4)
	settleRC(g, cell{1, 1}, cell{1, 2}, cell{2, 1}, cell{2, 2})
	before := g.cells

	_, changed := g.Step()

	assert.NotSame(t, before, g.cells, "each generation gets a fresh buffer")
	assert.True(t, changed)
	//the block keeps its 4 cells and each side cell next to it (2 neighbours) is born
	assert.Equal(t, 12, g.LiveCells())
	assert.True(t, before.IsBlack(before.Offset(1, 1)), "the previous generation is left untouched")
	assert.False(t, before.IsBlack(before.Offset(0, 1)))
}

func TestMergeForegroundBootstrapsEmptyGrid(t *testing.T) {
	g := NewGrid(4, 3)
	mask := pixbuf.NewFilled(4, 3, 0, 0, 0, 255)

	added, err := g.MergeForeground(mask)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	require.True(t, g.Initialized())
	assert.Equal(t, pixbuf.NewFilled(4, 3, 255, 255, 255, 255).Pix, g.Buffer().Pix,
		"the first merge only produces the all-dead field")
}

func TestMergeForegroundOnlyAddsCells(t *testing.T) {
	g := NewGrid(4, 1)
	settleRC(g, cell{0, 0})

	mask := pixbuf.NewFilled(4, 1, 255, 255, 255, 0)
	mask.SetColor(mask.Offset(0, 0), 0, 0, 0, 255)
	mask.SetColor(mask.Offset(0, 2), 0, 0, 0, 255)

	added, err := g.MergeForeground(mask)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	if diff := cmp.Diff([]cell{{0, 0}, {0, 2}}, liveSet(t, g)); diff != "" {
		t.Errorf("live cells mismatch (-want +got):\n%s", diff)
	}
	b := g.Buffer()
	assert.Equal(t, []uint8{0, 0, 0, 255}, b.Pix[b.Offset(0, 2):b.Offset(0, 2)+4])
}

func TestMergeForegroundSizeMismatch(t *testing.T) {
	g := NewGrid(4, 4)
	_, err := g.MergeForeground(pixbuf.New(2, 2))
	var se *pixbuf.SizeError
	assert.True(t, errors.As(err, &se))
	assert.False(t, g.Initialized())
}

func TestInverseCell(t *testing.T) {
	g := NewGrid(3, 3)
	g.InverseCell(1, 1)
	assert.False(t, g.Initialized(), "nothing to flip on an absent grid")

	settleRC(g)
	g.InverseCell(2, 1)
	assert.Equal(t, []cell{{1, 2}}, liveSet(t, g))
	g.InverseCell(2, 1)
	g.InverseCell(5, 5)
	assert.Empty(t, liveSet(t, g))
}

func TestBufferIsACopy(t *testing.T) {
	g := NewGrid(2, 2)
	settleRC(g, cell{0, 0})
	b := g.Buffer()
	b.SetColor(0, 255, 255, 255, 255)
	assert.Equal(t, 1, g.LiveCells())
}

func TestSplitRows(t *testing.T) {
	areas := splitRows(10, 3)
	require.Len(t, areas, 3)
	assert.Equal(t, workArea{y1: 0, y2: 3}, areas[0])
	assert.Equal(t, workArea{y1: 8, y2: 9}, areas[2])

	areas = splitRows(7, 10)
	require.Len(t, areas, 3, "bands keep the minimum row count")
	assert.Equal(t, 6, areas[2].y1)
	assert.Equal(t, 6, areas[2].y2)
}

func TestParallelStepMatchesSerial(t *testing.T) {
	serial := NewGrid(20, 17)
	parallel := NewGrid(20, 17)
	assert.Equal(t, 1, serial.SetWorkers(1))
	assert.Equal(t, 4, parallel.SetWorkers(4))

	seed := []cell{{1, 1}, {1, 2}, {2, 1}, {5, 4}, {5, 5}, {5, 6}, {9, 10}, {10, 10}, {16, 19}, {16, 18}, {15, 19}}
	settleRC(serial, seed...)
	settleRC(parallel, seed...)

	for i := 0; i < 6; i++ {
		sLive, sChanged := serial.Step()
		pLive, pChanged := parallel.Step()
		assert.Equal(t, sLive, pLive, "generation %d", i)
		assert.Equal(t, sChanged, pChanged, "generation %d", i)
		if diff := cmp.Diff(liveSet(t, serial), liveSet(t, parallel)); diff != "" {
			t.Fatalf("generation %d mismatch (-serial +parallel):\n%s", i, diff)
		}
	}
}

func TestSettleSkipsShortCoordinates(t *testing.T) {
	g := NewGrid(4, 4)
	g.Settle([][]int{{1}, nil, {2, 1}, {9, 9}})
	assert.Equal(t, []cell{{1, 2}}, liveSet(t, g))
}
