package view

import "shadowlife/src/pixbuf"

//shades maps luminance to characters, dark to bright
const shades = "@%#*+=-:. "

//block is the pixel rectangle covered by one terminal cell
type block struct {
	x0, y0, x1, y1 int
}

//blocks splits a w x h buffer into cols x rows rectangles
//each rectangle covers at least one pixel
func blocks(w, h, cols, rows int) [][]block {
	if cols > w {
		cols = w
	}
	if rows > h {
		rows = h
	}
	if cols <= 0 || rows <= 0 {
		return nil
	}
	res := make([][]block, rows)
	for r := 0; r < rows; r++ {
		res[r] = make([]block, cols)
		for c := 0; c < cols; c++ {
			res[r][c] = block{
				x0: c * w / cols,
				y0: r * h / rows,
				x1: (c + 1) * w / cols,
				y1: (r + 1) * h / rows,
			}
		}
	}
	return res
}

//aliveCells downsamples the Life grid: a terminal cell is alive when at least
//a quarter of its pixels are black
func aliveCells(b *pixbuf.Buffer, cols, rows int) [][]bool {
	bl := blocks(b.Width, b.Height, cols, rows)
	res := make([][]bool, len(bl))
	for r, line := range bl {
		res[r] = make([]bool, len(line))
		for c, k := range line {
			black, total := 0, 0
			for y := k.y0; y < k.y1; y++ {
				for x := k.x0; x < k.x1; x++ {
					total++
					if b.IsBlack(b.Offset(y, x)) {
						black++
					}
				}
			}
			res[r][c] = black*4 >= total
		}
	}
	return res
}

//shadeCells downsamples a frame to shading characters by mean grayscale
func shadeCells(b *pixbuf.Buffer, cols, rows int) [][]byte {
	bl := blocks(b.Width, b.Height, cols, rows)
	res := make([][]byte, len(bl))
	for r, line := range bl {
		res[r] = make([]byte, len(line))
		for c, k := range line {
			sum, total := 0, 0
			for y := k.y0; y < k.y1; y++ {
				for x := k.x0; x < k.x1; x++ {
					i := b.Offset(y, x)
					sum += int(b.Pix[i]) + int(b.Pix[i+1]) + int(b.Pix[i+2])
					total += 3
				}
			}
			gray := sum / total
			res[r][c] = shades[gray*(len(shades)-1)/255]
		}
	}
	return res
}

//gridCoords maps a terminal cell to the pixel at the centre of its block
func gridCoords(w, h, cols, rows, cx, cy int) (x int, y int, ok bool) {
	bl := blocks(w, h, cols, rows)
	if cy < 0 || cy >= len(bl) || cx < 0 || cx >= len(bl[cy]) {
		return 0, 0, false
	}
	k := bl[cy][cx]
	return (k.x0 + k.x1 - 1) / 2, (k.y0 + k.y1 - 1) / 2, true
}
