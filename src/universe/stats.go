package universe

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//DefTickWindow is the number of recent tick durations kept for TickStats
const DefTickWindow = 120

//TickStats summarises the duration of the recent processed ticks
type TickStats struct {
	Samples int
	Mean    time.Duration
	StdDev  time.Duration
	Min     time.Duration
	Max     time.Duration
	//FPS is the tick rate the mean duration allows, 0 without samples
	FPS float64
}

//tickWindow is a fixed-size ring of tick durations in seconds
type tickWindow struct {
	samples []float64
	next    int
	full    bool
}

func newTickWindow(size int) *tickWindow {
	if size <= 0 {
		size = DefTickWindow
	}
	return &tickWindow{samples: make([]float64, size)}
}

func (w *tickWindow) add(d time.Duration) {
	w.samples[w.next] = d.Seconds()
	w.next++
	if w.next == len(w.samples) {
		w.next = 0
		w.full = true
	}
}

func (w *tickWindow) reset() {
	w.next = 0
	w.full = false
}

func (w *tickWindow) values() []float64 {
	if w.full {
		return w.samples
	}
	return w.samples[:w.next]
}

//stats computes the summary over the window
func (w *tickWindow) stats() TickStats {
	v := w.values()
	if len(v) == 0 {
		return TickStats{}
	}
	mean, std := stat.MeanStdDev(v, nil)
	if len(v) < 2 {
		std = 0
	}
	ts := TickStats{
		Samples: len(v),
		Mean:    seconds(mean),
		StdDev:  seconds(std),
		Min:     seconds(floats.Min(v)),
		Max:     seconds(floats.Max(v)),
	}
	if mean > 0 {
		ts.FPS = 1 / mean
	}
	return ts
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
