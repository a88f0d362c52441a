package source

import (
	"math/rand"
	"sync"

	"shadowlife/src/pixbuf"
)

//default synthetic options
const (
	DefNoise       = 3
	DefSpeed       = 4
	DefEmptyFrames = 5
)

//Synthetic generates a static gradient scene with a dark ellipse ("the person") walking
//across it. Every frame gets seeded sensor noise, so runs are reproducible.
type Synthetic struct {
	//Noise is the maximum per-channel noise amplitude
	Noise int
	//Speed is the horizontal movement of the person in pixels per frame
	Speed int
	//WarmupFrames are reported unavailable, like a camera still starting
	WarmupFrames int
	//EmptyFrames are delivered without the person after the warm-up
	EmptyFrames int

	width  int
	height int
	scene  *pixbuf.Buffer
	mu     sync.Mutex
	rng    *rand.Rand
	frame  int
	closed bool
}

//NewSynthetic creates a synthetic source
func NewSynthetic(width int, height int, seed int64) *Synthetic {
	s := &Synthetic{
		Noise:       DefNoise,
		Speed:       DefSpeed,
		EmptyFrames: DefEmptyFrames,
		width:       width,
		height:      height,
		rng:         rand.New(rand.NewSource(seed)),
	}
	s.scene = s.renderScene()
	return s
}

//Size returns the frame dimensions
func (s *Synthetic) Size() (int, int) {
	return s.width, s.height
}

//Close makes the source unavailable
func (s *Synthetic) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

//Frame renders the next frame
func (s *Synthetic) Frame() (*pixbuf.Buffer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	n := s.frame
	s.frame++
	if n < s.WarmupFrames {
		return nil, false
	}
	n -= s.WarmupFrames

	frame := s.scene.Clone()
	if n >= s.EmptyFrames {
		s.drawPerson(frame, n-s.EmptyFrames)
	}
	s.addNoise(frame)
	return frame, true
}

//renderScene draws the static background gradient
func (s *Synthetic) renderScene() *pixbuf.Buffer {
	b := pixbuf.New(s.width, s.height)
	for row := 0; row < s.height; row++ {
		for col := 0; col < s.width; col++ {
			r := 60 + 150*col/max(s.width, 1)
			g := 80 + 120*row/max(s.height, 1)
			b.SetColor(b.Offset(row, col), uint8(r), uint8(g), 170, 255)
		}
	}
	return b
}

//drawPerson paints a dark ellipse bouncing between the left and right edges
func (s *Synthetic) drawPerson(b *pixbuf.Buffer, n int) {
	rx := max(s.width/10, 1)
	ry := max(s.height/3, 1)
	span := max(s.width-2*rx, 1)
	pos := (n * s.Speed) % (2 * span)
	if pos >= span {
		pos = 2*span - pos
	}
	cx := rx + pos
	cy := s.height / 2
	for row := cy - ry; row <= cy+ry; row++ {
		for col := cx - rx; col <= cx+rx; col++ {
			if !b.InBounds(row, col) {
				continue
			}
			dx := float64(col-cx) / float64(rx)
			dy := float64(row-cy) / float64(ry)
			if dx*dx+dy*dy <= 1 {
				b.SetColor(b.Offset(row, col), 25, 20, 30, 255)
			}
		}
	}
}

func (s *Synthetic) addNoise(b *pixbuf.Buffer) {
	if s.Noise <= 0 {
		return
	}
	for i := 0; i < len(b.Pix); i += pixbuf.Channels {
		for c := 0; c < 3; c++ {
			v := int(b.Pix[i+c]) + s.rng.Intn(2*s.Noise+1) - s.Noise
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			b.Pix[i+c] = uint8(v)
		}
	}
}
