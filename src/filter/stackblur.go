//Package filter holds the noise pre-filter applied to every captured frame
package filter

import (
	"fmt"
	"image"

	"github.com/esimov/stackblur-go"

	"shadowlife/src/pixbuf"
)

//MaxRadius is the largest radius the stack blur tables support
const MaxRadius = 254

//StackBlur returns a blurred copy of src
//Only the colour channels are smoothed, alpha is copied unchanged.
//A radius <= 0 returns an exact copy, a radius above MaxRadius is clamped.
func StackBlur(src *pixbuf.Buffer, radius int) (*pixbuf.Buffer, error) {
	if radius <= 0 {
		return src.Clone(), nil
	}
	if radius > MaxRadius {
		radius = MaxRadius
	}
	blurred, err := stackblur.Process(opaque(src), uint32(radius))
	if err != nil {
		return nil, fmt.Errorf("stack blur: %w", err)
	}
	dst := pixbuf.New(src.Width, src.Height)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			i := src.Offset(y, x)
			j := blurred.PixOffset(x, y)
			dst.SetColor(i, blurred.Pix[j], blurred.Pix[j+1], blurred.Pix[j+2], src.Pix[i+3])
		}
	}
	return dst, nil
}

//opaque copies the colour channels of b into an NRGBA image with full alpha,
//so transparent pixels take part in the blur with their own colour
func opaque(b *pixbuf.Buffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	for i := 3; i < len(img.Pix); i += pixbuf.Channels {
		img.Pix[i] = 255
	}
	return img
}
