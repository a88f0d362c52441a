package universe

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"shadowlife/src/background"
	"shadowlife/src/filter"
	"shadowlife/src/pixbuf"
)

//Options represents the Universe's configurable options
type Options struct {
	Width       int
	Height      int
	Interval    time.Duration
	MaxSteps    int
	Threshold   float64
	Alpha       float64
	BlurRadius  int
	AutoCapture bool                   //capture the background from the first available frame
	Workers     int                    //goroutines computing a generation, 0 or 1 is serial
	Advanced    map[string]interface{} //advanced options (for display)
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	RunID           string
	IterationNum    int
	RunningMode     RunningState
	Ready           bool //background captured
	LiveCells       int
	Changed         bool //the last Life step changed the grid, false once the field is stable
	ForegroundCells int
	SkippedTicks    int
	IterationTime   time.Duration
	TickStats       TickStats
	Err             error //set when a malformed frame stopped the run
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(u Universe)
	Start()
}

//The universe running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 30
	DefMaxSteps           = 0
	DefWidth              = 640
	DefHeight             = 480
	DefBlurRadius         = 10
)

const (
	RunningStateManual   = 0x0
	RunningStateStep     = 0x1
	RunningStateRun      = 0x2
	RunningStateFinished = 0x3
)

var DefaultUniverseOptions = Options{
	Width:      DefWidth,
	Height:     DefHeight,
	Interval:   DefSimulationInterval,
	MaxSteps:   DefMaxSteps,
	Threshold:  background.DefThreshold,
	Alpha:      background.DefAlpha,
	BlurRadius: DefBlurRadius,
	Workers:    DefWorkers,
}

//BaseUniverse runs the shadow pipeline
//implements Universe interface
//the background model and the grid are only touched from the main loop goroutine,
//other goroutines see copies guarded by the mutexes
type BaseUniverse struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	frames struct {
		grid *pixbuf.Buffer
		raw  *pixbuf.Buffer
		sync.Mutex
	}
	source    FrameSource
	model     *background.Model
	grid      *Grid
	ticks     *tickWindow
	log       *slog.Logger
	stateCh   chan Status
	views     []Viewer
	controlCh chan func()
	closeCh   chan bool
	doneCh    chan struct{}
	runGen    atomic.Uint64 //bumped by every run, stop and clear; a run loop ends once it changes
}

//NewBaseUniverse creates the BaseUniverse instance reading frames from source
func NewBaseUniverse(o *Options, source FrameSource, stateCh chan Status) *BaseUniverse {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	opts := *o
	opts.Advanced = make(map[string]interface{}, len(o.Advanced)+4)
	for k, v := range o.Advanced {
		opts.Advanced[k] = v
	}
	opts.Advanced["Threshold"] = opts.Threshold
	opts.Advanced["Background alpha"] = opts.Alpha
	opts.Advanced["Blur radius"] = opts.BlurRadius
	opts.Advanced["Auto capture"] = opts.AutoCapture

	u := BaseUniverse{
		options:   opts,
		source:    source,
		model:     background.New(opts.Threshold, opts.Alpha),
		grid:      NewGrid(opts.Width, opts.Height),
		ticks:     newTickWindow(DefTickWindow),
		controlCh: make(chan func(), 1),
		closeCh:   make(chan bool, 1),
		doneCh:    make(chan struct{}),
		stateCh:   stateCh,
	}
	if workers := u.grid.SetWorkers(opts.Workers); workers > 1 {
		u.options.Advanced["Workers"] = workers
	}
	u.state.RunID = uuid.NewString()
	u.log = Logger().With("run_id", u.state.RunID)
	go u.mainLoop()
	return &u
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
func (u *BaseUniverse) RegisterViewer(v Viewer) {
	u.views = append(u.views, v)
	v.Register(u)
}

//StateCh returns the channel with the universe's status updates
func (u *BaseUniverse) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *BaseUniverse) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns current universe configuration represented by Options struct
func (u *BaseUniverse) Options() Options {
	return u.options
}

//Grid returns a copy of the composited Life grid, nil before the first processed tick
func (u *BaseUniverse) Grid() *pixbuf.Buffer {
	u.frames.Lock()
	defer u.frames.Unlock()
	if u.frames.grid == nil {
		return nil
	}
	return u.frames.grid.Clone()
}

//Raw returns a copy of the last filtered frame, nil if no frame was read yet
func (u *BaseUniverse) Raw() *pixbuf.Buffer {
	u.frames.Lock()
	defer u.frames.Unlock()
	if u.frames.raw == nil {
		return nil
	}
	return u.frames.raw.Clone()
}

//CaptureBackground reads a fresh frame and remembers it as the background, returns immediately
func (u *BaseUniverse) CaptureBackground() {
	u.send(u.captureBackground)
}

//InverseCell inverses the grid cell at point x, y, returns immediately
func (u *BaseUniverse) InverseCell(x int, y int) {
	u.send(func() {
		u.grid.InverseCell(x, y)
		u.publishGrid()
		u.refreshView()
	})
}

//Run starts the simulation, returns immediately
func (u *BaseUniverse) Run() {
	u.send(u.run)
}

//Stop stops the simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (u *BaseUniverse) Stop() {
	u.send(u.stop)
}

//Step does one tick, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (u *BaseUniverse) Step() {
	u.send(u.step)
}

//Clear drops the grid, the background and all counters, returns immediately
//the Status struct will be written to the stateCh on finish
func (u *BaseUniverse) Clear() {
	u.send(u.clear)
}

//Close stops the main loop, returns immediately
func (u *BaseUniverse) Close() {
	select {
	case u.closeCh <- true:
	default:
	}
}

//send queues cmd for the main loop, dropped once the loop is closed
func (u *BaseUniverse) send(cmd func()) {
	select {
	case u.controlCh <- cmd:
	case <-u.doneCh:
	}
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *BaseUniverse) mainLoop() {
	defer close(u.doneCh)
	for {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case <-u.closeCh:
			return
		}
	}
}

func (u *BaseUniverse) runningMode() RunningState {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.RunningMode
}

//switchRunningState switch the state of the universe to RunningState
//also writes the new state to the stateCh to signal upper control software
func (u *BaseUniverse) switchRunningState(to RunningState) {
	u.state.Lock()
	u.state.RunningMode = to
	st := u.state.Status
	u.state.Unlock()
	if u.stateCh != nil {
		u.stateCh <- st
	}
}

//run starts the tick loop
//every tick waits for the previous one, then the loop sleeps Interval before the next
//the loop ends on Stop(), Clear(), Close() or when the run is finished.
//Only the loop of the latest run survives: a loop still sleeping when Stop and Run
//come in finds a new generation and exits.
func (u *BaseUniverse) run() {
	if mode := u.runningMode(); mode == RunningStateRun || mode == RunningStateFinished {
		return
	}
	gen := u.runGen.Add(1)
	u.switchRunningState(RunningStateRun)
	u.log.Info("simulation started", "interval", u.options.Interval, "max_steps", u.options.MaxSteps)
	go func() {
		done := make(chan bool)
		for u.runGen.Load() == gen && u.runningMode() == RunningStateRun {
			select {
			case u.controlCh <- func() {
				if u.runGen.Load() == gen {
					u.step()
				}
				done <- true
			}:
			case <-u.doneCh:
				return
			}
			select {
			case <-done:
			case <-u.doneCh:
				return
			}
			if u.options.Interval > 0 {
				time.Sleep(u.options.Interval)
			}
		}
	}()
}

//stop stops the running cycle
func (u *BaseUniverse) stop() {
	u.runGen.Add(1)
	if u.runningMode() == RunningStateRun {
		u.switchRunningState(RunningStateManual)
		u.log.Info("simulation stopped", "iteration", u.Status().IterationNum)
	}
}

//step runs one tick of the pipeline
func (u *BaseUniverse) step() {
	finished := false
	rm := u.runningMode()
	if rm == RunningStateFinished {
		return
	}
	defer func() {
		if finished {
			u.switchRunningState(RunningStateFinished)
		} else {
			u.switchRunningState(rm)
		}
		u.refreshView()
	}()

	maxIter := u.options.MaxSteps
	if maxIter != 0 && u.Status().IterationNum >= maxIter {
		finished = true
		return
	}
	u.switchRunningState(RunningStateStep)
	if err := u.nextIteration(); err != nil {
		u.log.Error("tick failed, stopping", "error", err)
		u.state.Lock()
		u.state.Err = err
		u.state.Unlock()
		finished = true
		return
	}
	if maxIter != 0 && u.Status().IterationNum >= maxIter {
		finished = true
	}
}

//nextIteration does one tick:
//frame -> blur -> classify and adapt background -> Life step -> merge foreground
//a tick without frame or background is skipped, only malformed frames return an error
func (u *BaseUniverse) nextIteration() error {
	start := time.Now()
	frame, ok := u.source.Frame()
	if !ok {
		u.skip("frame unavailable")
		return nil
	}
	if err := frame.CheckSize(u.options.Width, u.options.Height); err != nil {
		return fmt.Errorf("frame source: %w", err)
	}
	filtered, err := filter.StackBlur(frame, u.options.BlurRadius)
	if err != nil {
		return err
	}
	u.frames.Lock()
	u.frames.raw = filtered
	u.frames.Unlock()

	if !u.model.Ready() {
		if !u.options.AutoCapture {
			u.skip("background not captured")
			return nil
		}
		if err := u.captureFrame(filtered); err != nil {
			return err
		}
	}

	mask, foreground, err := u.model.Classify(filtered)
	if err != nil {
		return err
	}
	liveCells, changed := u.grid.Step()
	added, err := u.grid.MergeForeground(mask)
	if err != nil {
		return err
	}
	u.publishGrid()

	elapsed := time.Since(start)
	u.ticks.add(elapsed)
	u.state.Lock()
	u.state.IterationNum++
	u.state.LiveCells = liveCells + added
	u.state.Changed = changed
	u.state.ForegroundCells = foreground
	u.state.IterationTime = elapsed
	u.state.TickStats = u.ticks.stats()
	u.state.Unlock()
	return nil
}

//skip records a tick that had nothing to process
func (u *BaseUniverse) skip(reason string) {
	u.state.Lock()
	u.state.SkippedTicks++
	u.state.Unlock()
	u.log.Debug("tick skipped", "reason", reason)
}

//captureBackground reads and filters a fresh frame and stores it as the background
func (u *BaseUniverse) captureBackground() {
	frame, ok := u.source.Frame()
	if !ok {
		u.log.Warn("background not captured: frame unavailable")
		return
	}
	if err := frame.CheckSize(u.options.Width, u.options.Height); err != nil {
		u.log.Error("background not captured", "error", err)
		return
	}
	filtered, err := filter.StackBlur(frame, u.options.BlurRadius)
	if err == nil {
		err = u.captureFrame(filtered)
	}
	if err != nil {
		u.log.Error("background not captured", "error", err)
		return
	}
	u.frames.Lock()
	u.frames.raw = filtered
	u.frames.Unlock()
	u.refreshView()
}

func (u *BaseUniverse) captureFrame(filtered *pixbuf.Buffer) error {
	if err := u.model.Capture(filtered); err != nil {
		return err
	}
	u.state.Lock()
	u.state.Ready = true
	u.state.Unlock()
	u.log.Info("background captured", "width", filtered.Width, "height", filtered.Height)
	return nil
}

//clear clears the universe data, reset all counters
func (u *BaseUniverse) clear() {
	u.runGen.Add(1)
	u.grid.Reset()
	u.model.Reset()
	u.ticks.reset()
	u.frames.Lock()
	u.frames.grid = nil
	u.frames.raw = nil
	u.frames.Unlock()

	u.state.Lock()
	u.state.Status = Status{RunID: u.state.RunID}
	u.state.Unlock()
	u.switchRunningState(RunningStateManual)
	u.refreshView()
}

//publishGrid stores a snapshot of the grid for the viewers
func (u *BaseUniverse) publishGrid() {
	b := u.grid.Buffer()
	u.frames.Lock()
	u.frames.grid = b
	u.frames.Unlock()
}

//refreshView calls Refresh event for all registered views
func (u *BaseUniverse) refreshView() {
	for _, v := range u.views {
		v.Refresh()
	}
}
