package view

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"shadowlife/src/universe"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//ConsoleUI is the interactive terminal viewer
//the shadow (Life grid) is drawn over the raw camera view, each one can be toggled
type ConsoleUI struct {
	u universe.Universe
	g *gocui.Gui
	k []keyBindings

	showRaw    bool
	showShadow bool
	liveFiller string
	deadFiller string
}

var (
	runningStateDescr = map[universe.RunningState]string{
		universe.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
		universe.RunningStateStep:     "do the step",
		universe.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		universe.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

//NewViewTerminal creates the terminal UI with the initial display toggles
func NewViewTerminal(showRaw bool, showShadow bool) *ConsoleUI {

	var err error
	t := newConsoleUI(showRaw, showShadow)

	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln(err)
	}

	t.g.Mouse = true
	t.g.SetManagerFunc(t.layout)

	t.initKeyBindings(t.k)

	return t
}

//newConsoleUI builds the viewer without a terminal attached
func newConsoleUI(showRaw bool, showShadow bool) *ConsoleUI {
	t := &ConsoleUI{
		showRaw:    showRaw,
		showShadow: showShadow,
		liveFiller: aurora.Black("█").BgBlack().String(),
		deadFiller: "░",
	}
	t.k = []keyBindings{
		{gocui.KeyCtrlC,
			"^C",
			"Exit",
			t.cmdQuit,
			""},
		{'b',
			"B",
			"Capture background",
			t.cmdCaptureBackground,
			""},
		{'n',
			"N",
			"Next step",
			t.cmdNextRound,
			""},
		{'r',
			"R",
			"Run",
			t.cmdRun,
			""},
		{'s',
			"S",
			"Stop",
			t.cmdStop,
			""},
		{'c',
			"C",
			"Clear",
			t.cmdClear,
			""},
		{'w',
			"W",
			"Raw view",
			t.cmdToggleRaw,
			""},
		{'h',
			"H",
			"Shadow view",
			t.cmdToggleShadow,
			""},
		{gocui.MouseLeft,
			"MOUSE",
			"Flip the cell",
			t.cmdMouseClick,
			"battlefield"},
	}
	return t
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			log.Panicln(err)
		}
	}
}

func (t *ConsoleUI) Register(u universe.Universe) {
	t.u = u
}

func (t *ConsoleUI) Start() {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
	t.g.Close()
}

func (t *ConsoleUI) Refresh() {
	if t.g == nil {
		return
	}
	t.renderField()
	t.renderConfiguration()
	t.renderStatus()
}

func (t *ConsoleUI) renderField() {

	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View("battlefield")
		if e != nil {
			return e
		}
		v.Clear()
		_, _ = fmt.Fprint(v, t.fieldText(v.Size()))
		return nil
	})
}

//fieldText draws the grid and/or the raw frame into maxW x maxH characters
func (t *ConsoleUI) fieldText(maxW int, maxH int) string {
	var alive [][]bool
	var shade [][]byte
	if t.showShadow {
		if grid := t.u.Grid(); grid != nil {
			alive = aliveCells(grid, maxW, maxH)
		}
	}
	if t.showRaw {
		if raw := t.u.Raw(); raw != nil {
			shade = shadeCells(raw, maxW, maxH)
		}
	}
	if alive == nil && shade == nil {
		if !t.u.Status().Ready {
			return aurora.Yellow("Press B to capture the background").String()
		}
		return ""
	}

	rows := len(alive)
	if len(shade) > rows {
		rows = len(shade)
	}
	var b bytes.Buffer
	for r := 0; r < rows; r++ {
		//line feed char
		if r != 0 {
			b.WriteByte(10)
		}
		cols := 0
		if r < len(alive) {
			cols = len(alive[r])
		}
		if r < len(shade) && len(shade[r]) > cols {
			cols = len(shade[r])
		}
		for c := 0; c < cols; c++ {
			switch {
			case r < len(alive) && c < len(alive[r]) && alive[r][c]:
				b.WriteString(t.liveFiller)
			case r < len(shade) && c < len(shade[r]):
				b.WriteByte(shade[r][c])
			default:
				b.WriteString(t.deadFiller)
			}
		}
	}
	return b.String()
}

func (t *ConsoleUI) renderStatus() {
	s := t.u.Status()
	t.g.Update(func(g *gocui.Gui) error {
		if v, e := t.g.View("status"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Step", "%v", s.IterationNum))
			_, _ = fmt.Fprintln(v, t.renderProp("Background", "%v", readyDescr(s.Ready)))
			_, _ = fmt.Fprintln(v, t.renderProp("Live Cells", "%v", s.LiveCells))
			_, _ = fmt.Fprintln(v, t.renderProp("Foreground", "%v", s.ForegroundCells))
			_, _ = fmt.Fprintln(v, t.renderProp("Changing", "%v", s.Changed))
			_, _ = fmt.Fprintln(v, t.renderProp("Skipped", "%v", s.SkippedTicks))
			_, _ = fmt.Fprintln(v, t.renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
			_, _ = fmt.Fprintln(v, t.renderProp("FPS", "%.1f", s.TickStats.FPS))
			_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
			if s.Err != nil {
				_, _ = fmt.Fprintln(v, aurora.Red(s.Err.Error()).String())
			}
		}
		return nil
	})
}

func (t *ConsoleUI) renderConfiguration() {
	//it needs to call Update when calls from goroutine
	t.g.Update(func(g *gocui.Gui) error {
		c := t.u.Options()
		if v, e := g.View("configuration"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v x %v", c.Width, c.Height))
			_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", c.Interval))
			_, _ = fmt.Fprintln(v, t.renderProp("Threshold", "%v", c.Threshold))
			_, _ = fmt.Fprintln(v, t.renderProp("Alpha", "%v", c.Alpha))
			_, _ = fmt.Fprintln(v, t.renderProp("Blur radius", "%v", c.BlurRadius))
			_, _ = fmt.Fprintln(v, t.renderProp("Raw view", "%v", t.showRaw))
			_, _ = fmt.Fprintln(v, t.renderProp("Shadow view", "%v", t.showShadow))
		}
		return nil
	})
}

func readyDescr(ready bool) string {
	if ready {
		return aurora.Green("captured").String()
	}
	return aurora.Yellow("missing").String()
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {

	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("battlefield")
		return nil

	} else {
		if _, err := t.headerLayout(g, 3, "Shadow of Life"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.renderConfiguration()
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		t.renderStatus()
	}

	if v, err := g.SetView("battlefield", leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Shadow"
		v.Frame = true
		t.renderField()
	}

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		for i, k := range t.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		if maxX < len(text) {
			panic(fmt.Sprintf("Terminal width is too small: %v", maxX))
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", (maxX-len(text))/2)+text)
	}
	return
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

//cmdCaptureBackground captures the background and starts the simulation if it is idle
func (t *ConsoleUI) cmdCaptureBackground(_ *gocui.View) error {
	t.u.CaptureBackground()
	if t.u.Status().RunningMode == universe.RunningStateManual {
		t.u.Run()
	}
	return nil
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	t.u.Step()
	return nil
}

func (t *ConsoleUI) cmdRun(_ *gocui.View) error {
	t.u.Run()
	return nil
}

func (t *ConsoleUI) cmdStop(_ *gocui.View) error {
	t.u.Stop()
	return nil
}

func (t *ConsoleUI) cmdClear(_ *gocui.View) error {
	t.u.Clear()
	return nil
}

func (t *ConsoleUI) cmdToggleRaw(_ *gocui.View) error {
	t.showRaw = !t.showRaw
	t.Refresh()
	return nil
}

func (t *ConsoleUI) cmdToggleShadow(_ *gocui.View) error {
	t.showShadow = !t.showShadow
	t.Refresh()
	return nil
}

func (t *ConsoleUI) cmdMouseClick(v *gocui.View) error {
	cx, cy := v.Cursor()
	maxW, maxH := v.Size()
	o := t.u.Options()
	if x, y, ok := gridCoords(o.Width, o.Height, maxW, maxH, cx, cy); ok {
		t.u.InverseCell(x, y)
	}
	return nil
}
