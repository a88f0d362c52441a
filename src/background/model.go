//Package background keeps the adaptive reference frame and splits frames into foreground and background
package background

import (
	"errors"
	"fmt"
	"math"

	"shadowlife/src/pixbuf"
)

//default options
const (
	DefThreshold = 10.0
	DefAlpha     = 0.05
)

//ErrNoBackground is returned by Classify before any background was captured
var ErrNoBackground = errors.New("background not captured")

//Model is the adaptive background reference
//the reference is absent until Capture succeeds
type Model struct {
	//Threshold is the grayscale distance at or above which a pixel is foreground
	Threshold float64
	//Alpha is the adaptation rate: 0 never adapts, 1 replaces the reference with every frame
	Alpha float64

	reference *pixbuf.Buffer
}

//New creates a model without a reference frame
func New(threshold float64, alpha float64) *Model {
	return &Model{Threshold: threshold, Alpha: alpha}
}

//Capture stores a copy of frame as the new reference
//a malformed frame is rejected and the previous reference is kept
func (m *Model) Capture(frame *pixbuf.Buffer) error {
	if err := frame.Validate(); err != nil {
		return fmt.Errorf("capture background: %w", err)
	}
	m.reference = frame.Clone()
	return nil
}

//Ready reports whether a reference frame has been captured
func (m *Model) Ready() bool {
	return m.reference != nil
}

//Reference returns a copy of the reference frame, nil when absent
func (m *Model) Reference() *pixbuf.Buffer {
	if m.reference == nil {
		return nil
	}
	return m.reference.Clone()
}

//Reset drops the reference frame
func (m *Model) Reset() {
	m.reference = nil
}

//Classify returns the foreground mask of frame and adapts the reference in the same pass.
//Foreground pixels are opaque black; background pixels are transparent white and
//pull the reference towards the current frame by Alpha.
func (m *Model) Classify(frame *pixbuf.Buffer) (mask *pixbuf.Buffer, foreground int, err error) {
	if m.reference == nil {
		return nil, 0, ErrNoBackground
	}
	if err := frame.CheckSize(m.reference.Width, m.reference.Height); err != nil {
		return nil, 0, fmt.Errorf("classify: %w", err)
	}

	ref := m.reference.Pix
	cur := frame.Pix
	mask = pixbuf.New(frame.Width, frame.Height)
	for i := 0; i < len(cur); i += pixbuf.Channels {
		d := Distance(cur[i], cur[i+1], cur[i+2], ref[i], ref[i+1], ref[i+2])
		if IsForeground(d, m.Threshold) {
			mask.SetColor(i, 0, 0, 0, 255)
			foreground++
			continue
		}
		ref[i] = Blend(cur[i], ref[i], m.Alpha)
		ref[i+1] = Blend(cur[i+1], ref[i+1], m.Alpha)
		ref[i+2] = Blend(cur[i+2], ref[i+2], m.Alpha)
		mask.SetColor(i, 255, 255, 255, 0)
	}
	return mask, foreground, nil
}

//Distance is the absolute difference of the two pixels' grayscale means
func Distance(r1, g1, b1, r2, g2, b2 uint8) float64 {
	m1 := (float64(r1) + float64(g1) + float64(b1)) / 3
	m2 := (float64(r2) + float64(g2) + float64(b2)) / 3
	return math.Abs(m1 - m2)
}

//IsForeground reports whether distance d reaches the threshold
func IsForeground(d float64, threshold float64) bool {
	return d >= threshold
}

//Blend is one exponential moving average step, rounded half up and clamped to a byte
func Blend(cur uint8, ref uint8, alpha float64) uint8 {
	v := math.Floor(alpha*float64(cur) + (1-alpha)*float64(ref) + 0.5)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
