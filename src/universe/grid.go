package universe

import (
	"fmt"

	"shadowlife/src/pixbuf"
)

//Grid is the Life field stored as pixels: a pure black cell is alive, anything else is dead
//the grid is absent until the first MergeForeground (or Settle) call
type Grid struct {
	width     int
	height    int
	cells     *pixbuf.Buffer
	workAreas []workArea
}

//NewGrid creates an absent grid of the given dimensions
func NewGrid(width int, height int) *Grid {
	return &Grid{width: width, height: height}
}

//SetWorkers splits the generation step between n goroutines, n <= 1 keeps it serial
//returns the number of work areas actually used
func (g *Grid) SetWorkers(n int) int {
	if n <= 1 {
		g.workAreas = nil
		return 1
	}
	g.workAreas = splitRows(g.height, n)
	return len(g.workAreas)
}

//Initialized reports whether the grid holds cells
func (g *Grid) Initialized() bool {
	return g.cells != nil
}

//Size returns the grid dimensions
func (g *Grid) Size() (width int, height int) {
	return g.width, g.height
}

//Buffer returns a copy of the current cells, nil if the grid is absent
func (g *Grid) Buffer() *pixbuf.Buffer {
	if g.cells == nil {
		return nil
	}
	return g.cells.Clone()
}

//Reset drops all cells, the grid becomes absent again
func (g *Grid) Reset() {
	g.cells = nil
}

//Step computes the next generation into a fresh buffer and swaps it in
//A cell is alive in the next generation iff it has exactly 2 or 3 live neighbours,
//whatever its own state. This is not Conway's birth/survival split: a dead cell
//with 2 neighbours is born too. The shadow effect depends on it, so keep it.
func (g *Grid) Step() (liveCells int, changed bool) {
	if g.cells == nil {
		return 0, false
	}
	next := pixbuf.New(g.width, g.height)
	if len(g.workAreas) > 1 {
		liveCells, changed = g.stepParallel(next)
		g.cells = next
		return
	}
	g.walkArea(func(x int, y int, i int) {
		nextState := g.cellNextState(x, y)
		changed = changed || nextState != g.cells.IsBlack(i)
		if nextState {
			setAlive(next, i)
			liveCells++
		} else {
			setDead(next, i)
		}
	})
	g.cells = next
	return
}

//MergeForeground forces every black mask cell alive and returns how many dead cells it revived.
//On an absent grid it only creates the all-dead field and ignores the mask.
func (g *Grid) MergeForeground(mask *pixbuf.Buffer) (added int, err error) {
	if err := mask.CheckSize(g.width, g.height); err != nil {
		return 0, fmt.Errorf("merge foreground: %w", err)
	}
	if g.cells == nil {
		g.cells = createArea(g.width, g.height)
		return 0, nil
	}
	for i := 0; i < len(mask.Pix); i += pixbuf.Channels {
		if !mask.IsBlack(i) {
			continue
		}
		if !g.cells.IsBlack(i) {
			added++
		}
		setAlive(g.cells, i)
	}
	return added, nil
}

//LiveCells counts the black cells
func (g *Grid) LiveCells() int {
	liveCells := 0
	if g.cells == nil {
		return 0
	}
	g.walkArea(func(x int, y int, i int) {
		if g.cells.IsBlack(i) {
			liveCells++
		}
	})
	return liveCells
}

//Settle makes the cells at the given x,y coordinates alive, creating the grid if needed
//coordinates outside the field and entries without both x and y are ignored
func (g *Grid) Settle(vc [][]int) {
	if g.cells == nil {
		g.cells = createArea(g.width, g.height)
	}
	for _, v := range vc {
		if len(v) < 2 || !g.cells.InBounds(v[1], v[0]) {
			continue
		}
		setAlive(g.cells, g.cells.Offset(v[1], v[0]))
	}
}

//InverseCell flips the cell at x,y
func (g *Grid) InverseCell(x int, y int) {
	if g.cells == nil || !g.cells.InBounds(y, x) {
		return
	}
	i := g.cells.Offset(y, x)
	if g.cells.IsBlack(i) {
		setDead(g.cells, i)
	} else {
		setAlive(g.cells, i)
	}
}

//walkArea walks the entire field and calls cb with the cell coordinates and pixel offset
func (g *Grid) walkArea(cb func(x int, y int, i int)) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			cb(x, y, g.cells.Offset(y, x))
		}
	}
}

//cellNextState calculates the next state for the cell at x,y
func (g *Grid) cellNextState(x int, y int) (live bool) {
	liveNeighbours := 0
	for i := -1; i < 2; i++ {
		for j := -1; j < 2; j++ {
			//skip my position
			if i == 0 && j == 0 {
				continue
			}
			nx := x + i
			ny := y + j
			//cells outside the field are dead, the field does not wrap
			if nx < 0 || ny < 0 || nx >= g.width || ny >= g.height {
				continue
			}
			if g.cells.IsBlack(g.cells.Offset(ny, nx)) {
				liveNeighbours++
			}
		}
	}
	return liveNeighbours == 2 || liveNeighbours == 3
}

//createArea allocates an all-dead (white) field
func createArea(width int, height int) *pixbuf.Buffer {
	return pixbuf.NewFilled(width, height, 255, 255, 255, 255)
}

func setAlive(b *pixbuf.Buffer, i int) {
	b.SetColor(i, 0, 0, 0, 255)
}

func setDead(b *pixbuf.Buffer, i int) {
	b.SetColor(i, 255, 255, 255, 255)
}
