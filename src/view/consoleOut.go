package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"shadowlife/src/universe"
)

//ConsoleOut prints the progress of a headless run
type ConsoleOut struct {
	u         universe.Universe
	w         io.Writer
	startTime time.Time
	every     int
	lastIter  int
}

func NewConsoleOut() *ConsoleOut {
	return &ConsoleOut{w: os.Stdout, every: 10}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	if st.RunningMode == universe.RunningStateFinished {
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last iteration":   st.IterationNum,
			"Total time":       totalTime,
			"Live cells":       st.LiveCells,
			"Foreground cells": st.ForegroundCells,
			"Skipped ticks":    st.SkippedTicks,
			"Mean tick":        st.TickStats.Mean.Round(time.Microsecond),
		}
		if st.Err != nil {
			resultData["Error"] = st.Err
		}
		fmt.Fprintln(c.w, "\nFinished:")
		c.printHashData(resultData)
	} else if st.IterationNum != c.lastIter && st.IterationNum%c.every == 0 {
		c.lastIter = st.IterationNum
		fmt.Fprintf(c.w, "  Iterations done: %v, live cells: %v, foreground cells: %v\n",
			st.IterationNum, st.LiveCells, st.ForegroundCells)
	}
}

func (c *ConsoleOut) Register(u universe.Universe) {
	c.u = u
	o := c.u.Options()
	fmt.Fprintln(c.w, "Running configuration:")
	fmt.Fprintf(c.w, "  Dimension: %v x %v\n", o.Width, o.Height)
	fmt.Fprintf(c.w, "  Interval: %v\n", o.Interval)
	fmt.Fprintf(c.w, "  Max iterations: %v steps\n", o.MaxSteps)
	fmt.Fprintf(c.w, "  Run: %v\n", c.u.Status().RunID)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
