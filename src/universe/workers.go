package universe

import (
	"sync"

	"shadowlife/src/pixbuf"
)

/*
	Parallel generation step
	the field is splitted into row bands each of which is computed by individual goroutine
	every worker writes its own rows of the same fresh buffer
*/

const (
	DefWorkers          = 1 //default workers, 1 means the serial step
	DefMinRowsPerWorker = 3 //minimum rows for one worker
)

//workArea describe the working area for the worker
type workArea struct {
	y1        int
	y2        int
	liveCells int
	changed   bool
}

//splitRows splits height rows into at most workers bands of at least DefMinRowsPerWorker rows
func splitRows(height int, workers int) []workArea {
	if workers < 1 {
		workers = 1
	}
	linesPerWorker := height / workers
	if linesPerWorker < DefMinRowsPerWorker {
		linesPerWorker = DefMinRowsPerWorker
	} else if linesPerWorker*workers < height {
		linesPerWorker++
	}
	workAreas := make([]workArea, 0, workers)
	for y1 := 0; y1 < height; y1 += linesPerWorker {
		y2 := y1 + linesPerWorker - 1
		if y2 > height-1 {
			y2 = height - 1
		}
		workAreas = append(workAreas, workArea{y1: y1, y2: y2})
	}
	return workAreas
}

//stepParallel starts a goroutine per work area, waits for them and sums the metrics
func (g *Grid) stepParallel(next *pixbuf.Buffer) (liveCells int, changed bool) {
	var waitGroup sync.WaitGroup
	for i := range g.workAreas {
		wa := &g.workAreas[i]
		waitGroup.Add(1)
		go func() {
			g.calcArea(wa, next)
			waitGroup.Done()
		}()
	}
	waitGroup.Wait()
	for _, wa := range g.workAreas {
		liveCells += wa.liveCells
		changed = changed || wa.changed
	}
	return
}

//calcArea calculates new states for the cells inside workArea
func (g *Grid) calcArea(wa *workArea, next *pixbuf.Buffer) {
	wa.liveCells = 0
	wa.changed = false
	for y := wa.y1; y <= wa.y2; y++ {
		for x := 0; x < g.width; x++ {
			i := g.cells.Offset(y, x)
			nextState := g.cellNextState(x, y)
			if nextState {
				setAlive(next, i)
				wa.liveCells++
			} else {
				setDead(next, i)
			}
			wa.changed = wa.changed || nextState != g.cells.IsBlack(i)
		}
	}
}
