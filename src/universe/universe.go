package universe

import "shadowlife/src/pixbuf"

//Universe is the shadow simulation engine: it pulls frames, tracks the background
//and evolves the Life grid one tick at a time
type Universe interface {
	Status() Status
	Options() Options
	Grid() *pixbuf.Buffer
	Raw() *pixbuf.Buffer
	StateCh() chan Status
	CaptureBackground()
	InverseCell(x int, y int)
	RegisterViewer(v Viewer)
	Run()
	Stop()
	Step()
	Clear()
	Close()
}

//FrameSource supplies the raw frames
//ok is false while no frame is available (camera not ready, sensor disconnected, ...)
type FrameSource interface {
	Frame() (frame *pixbuf.Buffer, ok bool)
}
