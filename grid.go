package carve

import "fmt"

// Capacity limits of a grid created from a source image.
const (
	MaxWidth  = 1920
	MaxHeight = 1080
)

// Pixel holds the red, green and blue channel values of a grid cell.
type Pixel struct {
	R, G, B uint8
}

// Grid is a fixed capacity pixel buffer addressed by (column, row).
// The pixels are stored column by column. The logical width and height
// shrink as seams are removed, while the allocated capacity stays the same,
// which means the cells outside of the logical bounds are stale.
type Grid struct {
	width  int
	height int

	capWidth  int
	capHeight int

	pix    []Pixel
	origin []int32
}

// NewGrid allocates a grid sized to hold a width x height image.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || width > MaxWidth {
		return nil, boundsErrorf("width %d outside of [1, %d]", width, MaxWidth)
	}
	if height <= 0 || height > MaxHeight {
		return nil, boundsErrorf("height %d outside of [1, %d]", height, MaxHeight)
	}
	return &Grid{
		width:     width,
		height:    height,
		capWidth:  width,
		capHeight: height,
		pix:       make([]Pixel, width*height),
	}, nil
}

// Width returns the current logical width.
func (g *Grid) Width() int { return g.width }

// Height returns the current logical height.
func (g *Grid) Height() int { return g.height }

// Capacity returns the dimensions the grid was allocated with.
func (g *Grid) Capacity() (int, int) { return g.capWidth, g.capHeight }

// At returns the pixel at column x and row y.
func (g *Grid) At(x, y int) Pixel {
	g.mustContain(x, y)
	return g.pix[g.offset(x, y)]
}

// Set overwrites the pixel at column x and row y.
func (g *Grid) Set(x, y int, p Pixel) {
	g.mustContain(x, y)
	g.pix[g.offset(x, y)] = p
}

// TrackOrigin starts recording the original coordinates of every live pixel.
// It should be called before the first seam is removed; the recorded positions
// follow the pixels through every subsequent removal.
func (g *Grid) TrackOrigin() {
	g.origin = make([]int32, len(g.pix))
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			idx := g.offset(x, y)
			g.origin[idx] = int32(idx)
		}
	}
}

// Origin reports the coordinates the pixel at (x, y) had when TrackOrigin was called.
// The last return value is false if origin tracking is disabled.
func (g *Grid) Origin(x, y int) (int, int, bool) {
	if g.origin == nil {
		return 0, 0, false
	}
	g.mustContain(x, y)
	o := int(g.origin[g.offset(x, y)])
	return o / g.capHeight, o % g.capHeight, true
}

// Clone returns a deep copy of the grid, including its stale cells.
func (g *Grid) Clone() *Grid {
	c := *g
	c.pix = append([]Pixel(nil), g.pix...)
	if g.origin != nil {
		c.origin = append([]int32(nil), g.origin...)
	}
	return &c
}

// offset returns the index of the (x, y) cell in the column-major buffer.
func (g *Grid) offset(x, y int) int {
	return x*g.capHeight + y
}

func (g *Grid) mustContain(x, y int) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		panic(fmt.Sprintf("carve: pixel (%d, %d) outside of the %dx%d grid", x, y, g.width, g.height))
	}
}
