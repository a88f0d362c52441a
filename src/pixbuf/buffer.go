package pixbuf

import (
	"errors"
	"fmt"
	"image"
)

//Channels is the number of values stored per pixel (r, g, b, a)
const Channels = 4

//ErrBadLength is returned when the Pix slice does not hold Width*Height*4 values
var ErrBadLength = errors.New("pixel data length does not match dimensions")

//Buffer is a fixed-size RGBA pixel grid stored row-major, 4 bytes per pixel
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

//SizeError reports a buffer whose dimensions differ from the expected ones
type SizeError struct {
	ExpectedWidth  int
	ExpectedHeight int
	ActualWidth    int
	ActualHeight   int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("frame size mismatch: expected %dx%d, got %dx%d",
		e.ExpectedWidth, e.ExpectedHeight, e.ActualWidth, e.ActualHeight)
}

//New allocates a zeroed (transparent black) buffer
func New(width int, height int) *Buffer {
	return &Buffer{Width: width, Height: height, Pix: make([]uint8, width*height*Channels)}
}

//NewFilled allocates a buffer with every pixel set to r, g, b, a
func NewFilled(width int, height int, r, g, b, a uint8) *Buffer {
	buf := New(width, height)
	for i := 0; i < len(buf.Pix); i += Channels {
		buf.SetColor(i, r, g, b, a)
	}
	return buf
}

//FromRGBA copies an image.RGBA into a new buffer
//the image origin is moved to 0,0
func FromRGBA(img *image.RGBA) *Buffer {
	b := img.Bounds()
	buf := New(b.Dx(), b.Dy())
	rowLen := b.Dx() * Channels
	for y := 0; y < b.Dy(); y++ {
		start := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(buf.Pix[y*rowLen:(y+1)*rowLen], img.Pix[start:start+rowLen])
	}
	return buf
}

//RGBA returns an image.RGBA sharing nothing with the buffer
func (b *Buffer) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

//Clone returns a deep copy of the buffer
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(c.Pix, b.Pix)
	return c
}

//Offset returns the index of the red channel of the pixel at row, col
func (b *Buffer) Offset(row int, col int) int {
	return (row*b.Width + col) * Channels
}

//InBounds reports whether row, col lies inside the grid
func (b *Buffer) InBounds(row int, col int) bool {
	return row >= 0 && row < b.Height && col >= 0 && col < b.Width
}

//IsBlack reports whether the pixel at offset i is pure black (alpha is ignored)
func (b *Buffer) IsBlack(i int) bool {
	return b.Pix[i] == 0 && b.Pix[i+1] == 0 && b.Pix[i+2] == 0
}

//SetColor writes r, g, b, a at offset i
func (b *Buffer) SetColor(i int, r, g, bl, a uint8) {
	b.Pix[i] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
	b.Pix[i+3] = a
}

//Len returns the number of pixels
func (b *Buffer) Len() int {
	return b.Width * b.Height
}

//Validate checks the Pix length against the dimensions
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("nil buffer: %w", ErrBadLength)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d: %w", b.Width, b.Height, ErrBadLength)
	}
	if len(b.Pix) != b.Width*b.Height*Channels {
		return fmt.Errorf("%dx%d buffer holds %d values: %w", b.Width, b.Height, len(b.Pix), ErrBadLength)
	}
	return nil
}

//CheckSize validates the buffer and requires it to be width x height
func (b *Buffer) CheckSize(width int, height int) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.Width != width || b.Height != height {
		return &SizeError{
			ExpectedWidth:  width,
			ExpectedHeight: height,
			ActualWidth:    b.Width,
			ActualHeight:   b.Height,
		}
	}
	return nil
}

//SameSize reports whether both buffers have identical dimensions
func SameSize(a *Buffer, b *Buffer) bool {
	return a.Width == b.Width && a.Height == b.Height
}
