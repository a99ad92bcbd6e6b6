package carve

import (
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnergy_UniformImageHasNoEnergy(t *testing.T) {
	g := newTestGrid(t, 7, 5, uniform(Pixel{R: 12, G: 200, B: 77}))
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			assert.Equal(t, 0, Energy(g, x, y))
		}
	}
}

func TestEnergy_SquaredGradients(t *testing.T) {
	// 3x3 grid, the center pixel sees distinct neighbors on every side.
	g := newTestGrid(t, 3, 3, uniform(Pixel{}))
	g.Set(0, 1, Pixel{R: 10, G: 20, B: 30}) // left
	g.Set(2, 1, Pixel{R: 40, G: 20, B: 0})  // right
	g.Set(1, 0, Pixel{R: 5, G: 0, B: 100})  // top
	g.Set(1, 2, Pixel{R: 0, G: 50, B: 100}) // bottom

	// dx = (30, 0, -30), dy = (-5, 50, 0)
	want := 30*30 + 0 + 30*30 + 5*5 + 50*50 + 0
	assert.Equal(t, want, Energy(g, 1, 1))
}

func TestEnergy_WrapsAroundTheBorders(t *testing.T) {
	g := newTestGrid(t, 4, 3, uniform(Pixel{}))
	g.Set(3, 0, Pixel{R: 100}) // left neighbor of (0, 0) after wrapping
	g.Set(0, 2, Pixel{G: 60})  // top neighbor of (0, 0) after wrapping

	// dx = right - left = 0 - 100, dy = bottom - top = 0 - 60
	assert.Equal(t, 100*100+60*60, Energy(g, 0, 0))

	// The pixel on the opposite corner sees (0, 0)'s row and column neighbors.
	g2 := newTestGrid(t, 4, 3, uniform(Pixel{}))
	g2.Set(0, 2, Pixel{B: 9}) // right neighbor of (3, 2) after wrapping
	g2.Set(3, 0, Pixel{B: 4}) // bottom neighbor of (3, 2) after wrapping
	assert.Equal(t, 9*9+4*4, Energy(g2, 3, 2))
}

func TestEnergy_SizeOneDimensions(t *testing.T) {
	single := newTestGrid(t, 1, 1, uniform(Pixel{R: 255, G: 3, B: 9}))
	assert.Equal(t, 0, Energy(single, 0, 0))

	// A one column grid is its own left and right neighbor.
	column := newTestGrid(t, 1, 3, func(_, y int) Pixel { return gray(uint8(y * 10)) })
	// dy = bottom - top = 20 - 0 for each channel
	assert.Equal(t, 3*20*20, Energy(column, 0, 1))
	// The top row wraps to the last one: dy = 10 - 20
	assert.Equal(t, 3*10*10, Energy(column, 0, 0))

	row := newTestGrid(t, 3, 1, func(x, _ int) Pixel { return gray(uint8(x * 10)) })
	assert.Equal(t, 3*20*20, Energy(row, 1, 0))
}

func TestEnergy_SymmetricUnderRotation(t *testing.T) {
	g := newTestGrid(t, 9, 7, randomPixels(42))

	rotated, err := GridFromImage(imaging.Rotate180(g.Image()))
	require.NoError(t, err)

	w, h := g.Width(), g.Height()
	for x := 1; x < w-1; x++ {
		for y := 1; y < h-1; y++ {
			assert.Equal(t, Energy(g, x, y), Energy(rotated, w-1-x, h-1-y), "pixel (%d, %d)", x, y)
		}
	}
}

func TestEnergy_OutOfBoundsPanics(t *testing.T) {
	g := newTestGrid(t, 2, 2, uniform(Pixel{}))
	assert.Panics(t, func() { Energy(g, 2, 0) })
	assert.Panics(t, func() { Energy(g, 0, -1) })
}
