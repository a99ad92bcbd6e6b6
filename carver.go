package carve

import "fmt"

// Carver shrinks a grid one seam at a time.
type Carver struct {
	Selector

	// OnSeam, when set, is called with every seam right before it is removed.
	OnSeam func(o Orientation, s Seam)
}

// NewCarver returns a Carver whose seam search runs on the given number of workers.
func NewCarver(workers int) *Carver {
	return &Carver{Selector: Selector{Workers: workers}}
}

// CarveVertical removes the lowest energy vertical seam, reducing the width by one.
func CarveVertical(g *Grid) Seam {
	var c Carver
	return c.CarveVertical(g)
}

// CarveHorizontal removes the lowest energy horizontal seam, reducing the height by one.
func CarveHorizontal(g *Grid) Seam {
	var c Carver
	return c.CarveHorizontal(g)
}

// CarveVertical removes the lowest energy vertical seam and returns it.
func (c *Carver) CarveVertical(g *Grid) Seam {
	seam := c.FindMinSeam(g, Vertical)
	if c.OnSeam != nil {
		c.OnSeam(Vertical, seam)
	}
	RemoveVerticalSeam(g, seam)
	return seam
}

// CarveHorizontal removes the lowest energy horizontal seam and returns it.
func (c *Carver) CarveHorizontal(g *Grid) Seam {
	seam := c.FindMinSeam(g, Horizontal)
	if c.OnSeam != nil {
		c.OnSeam(Horizontal, seam)
	}
	RemoveHorizontalSeam(g, seam)
	return seam
}

// Resize carves the grid down to width x height. While both dimensions are
// above their target a vertical and a horizontal seam are removed in turn,
// starting with the vertical one. A zero target keeps that dimension.
func (c *Carver) Resize(g *Grid, width, height int) error {
	if width == 0 {
		width = g.width
	}
	if height == 0 {
		height = g.height
	}
	if width < 0 || width > g.width {
		return boundsErrorf("target width %d outside of [1, %d]", width, g.width)
	}
	if height < 0 || height > g.height {
		return boundsErrorf("target height %d outside of [1, %d]", height, g.height)
	}

	for g.width > width || g.height > height {
		if g.width > width {
			c.CarveVertical(g)
		}
		if g.height > height {
			c.CarveHorizontal(g)
		}
	}
	return nil
}

// RemoveVerticalSeam deletes the seam pixel of every row by shifting the
// pixels on its right one column to the left, then shrinks the width by one.
func RemoveVerticalSeam(g *Grid, s Seam) {
	if len(s) != g.height {
		panic(fmt.Sprintf("carve: vertical seam of length %d on a grid of height %d", len(s), g.height))
	}
	for row, col := range s {
		if col < 0 || col >= g.width {
			panic(fmt.Sprintf("carve: vertical seam column %d outside of width %d", col, g.width))
		}
		for x := col; x < g.width-1; x++ {
			dst, src := g.offset(x, row), g.offset(x+1, row)
			g.pix[dst] = g.pix[src]
			if g.origin != nil {
				g.origin[dst] = g.origin[src]
			}
		}
	}
	g.width--
}

// RemoveHorizontalSeam deletes the seam pixel of every column by shifting
// the pixels below it one row up, then shrinks the height by one.
func RemoveHorizontalSeam(g *Grid, s Seam) {
	if len(s) != g.width {
		panic(fmt.Sprintf("carve: horizontal seam of length %d on a grid of width %d", len(s), g.width))
	}
	for col, row := range s {
		if row < 0 || row >= g.height {
			panic(fmt.Sprintf("carve: horizontal seam row %d outside of height %d", row, g.height))
		}
		// A column is contiguous in memory, so the shift is a single copy.
		start := g.offset(col, 0)
		copy(g.pix[start+row:start+g.height-1], g.pix[start+row+1:start+g.height])
		if g.origin != nil {
			copy(g.origin[start+row:start+g.height-1], g.origin[start+row+1:start+g.height])
		}
	}
	g.height--
}
