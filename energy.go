package carve

// Energy computes the importance of the pixel at column x and row y as the
// sum of the squared horizontal and vertical gradients of each color channel.
//
// The neighbors are looked up with wraparound: the left neighbor of the first
// column is the last column, the bottom neighbor of the last row is the first
// row and so on. A one pixel wide (or tall) grid is its own neighbor, so the
// gradient along that axis is zero.
func Energy(g *Grid, x, y int) int {
	g.mustContain(x, y)

	left, right := x-1, x+1
	if x == 0 {
		left = g.width - 1
	}
	if x == g.width-1 {
		right = 0
	}
	top, bottom := y-1, y+1
	if y == 0 {
		top = g.height - 1
	}
	if y == g.height-1 {
		bottom = 0
	}

	l, r := g.pix[g.offset(left, y)], g.pix[g.offset(right, y)]
	t, b := g.pix[g.offset(x, top)], g.pix[g.offset(x, bottom)]

	return gradient(l.R, r.R, t.R, b.R) +
		gradient(l.G, r.G, t.G, b.G) +
		gradient(l.B, r.B, t.B, b.B)
}

// gradient returns dx² + dy² for a single channel.
func gradient(left, right, top, bottom uint8) int {
	dx := int(right) - int(left)
	dy := int(bottom) - int(top)
	return dx*dx + dy*dy
}
