package carve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// columns builds a grid whose rows all repeat the given gray levels, so the
// energy of a pixel only depends on its column.
func columns(t testing.TB, height int, levels ...uint8) *Grid {
	return newTestGrid(t, len(levels), height, func(x, _ int) Pixel { return gray(levels[x]) })
}

// rows builds a grid whose columns all repeat the given gray levels.
func rows(t testing.TB, width int, levels ...uint8) *Grid {
	return newTestGrid(t, width, len(levels), func(_, y int) Pixel { return gray(levels[y]) })
}

func assertConnected(t *testing.T, s Seam, limit int) {
	t.Helper()
	for i, v := range s {
		assert.True(t, v >= 0 && v < limit, "seam entry %d = %d outside of [0, %d)", i, v, limit)
		if i > 0 {
			d := v - s[i-1]
			assert.True(t, d >= -1 && d <= 1, "seam entries %d and %d are not connected: %v", i-1, i, s)
		}
	}
}

func TestSeam_OrientationString(t *testing.T) {
	assert.Equal(t, "vertical", Vertical.String())
	assert.Equal(t, "horizontal", Horizontal.String())
	assert.Equal(t, "Orientation(7)", Orientation(7).String())
}

func TestSeam_TraceGoesStraightOnTies(t *testing.T) {
	g := newTestGrid(t, 5, 4, uniform(gray(90)))

	seam, total := Trace(g, Vertical, 2)
	assert.Equal(t, Seam{2, 2, 2, 2}, seam)
	assert.Equal(t, 0, total)

	seam, total = Trace(g, Horizontal, 3)
	assert.Equal(t, Seam{3, 3, 3, 3, 3}, seam)
	assert.Equal(t, 0, total)
}

func TestSeam_TraceVerticalPrefersRightOnTies(t *testing.T) {
	// Column energies: 1200, 300, 7500, 300, 7500.
	g := columns(t, 4, 0, 0, 10, 50, 20)

	seam, total := Trace(g, Vertical, 2)
	assert.Equal(t, Seam{2, 3, 3, 3}, seam)
	assert.Equal(t, 7500+3*300, total)
}

func TestSeam_TraceVerticalTakesStrictlySmallerLeft(t *testing.T) {
	// Column energies: 1200, 75, 7500, 675, 7500.
	g := columns(t, 4, 0, 0, 5, 50, 20)

	seam, total := Trace(g, Vertical, 2)
	assert.Equal(t, Seam{2, 1, 1, 1}, seam)
	assert.Equal(t, 7500+3*75, total)
}

func TestSeam_TraceHorizontalPrefersUpOnTies(t *testing.T) {
	// Row energies: 1200, 300, 7500, 300, 7500.
	g := rows(t, 4, 0, 0, 10, 50, 20)

	seam, total := Trace(g, Horizontal, 2)
	assert.Equal(t, Seam{2, 1, 1, 1}, seam)
	assert.Equal(t, 7500+3*300, total)
}

func TestSeam_TraceHorizontalTakesStrictlySmallerDown(t *testing.T) {
	// Row energies: 675, 300, 7500, 75, 7500.
	g := rows(t, 4, 0, 0, 10, 50, 15)

	seam, total := Trace(g, Horizontal, 2)
	assert.Equal(t, Seam{2, 3, 3, 3}, seam)
	assert.Equal(t, 7500+3*75, total)
}

func TestSeam_TraceSinglePixel(t *testing.T) {
	g := newTestGrid(t, 1, 1, uniform(Pixel{R: 1, G: 2, B: 3}))

	for _, o := range []Orientation{Vertical, Horizontal} {
		seam, total := Trace(g, o, 0)
		assert.Equal(t, Seam{0}, seam)
		assert.Equal(t, Energy(g, 0, 0), total)
	}
}

func TestSeam_TraceTotalIsSumOfEnergies(t *testing.T) {
	g := newTestGrid(t, 12, 9, randomPixels(7))

	for start := 0; start < g.Width(); start++ {
		seam, total := Trace(g, Vertical, start)
		require.Len(t, seam, g.Height())
		assertConnected(t, seam, g.Width())

		var sum int
		for y, x := range seam {
			sum += Energy(g, x, y)
		}
		assert.Equal(t, sum, total)
	}
	for start := 0; start < g.Height(); start++ {
		seam, total := Trace(g, Horizontal, start)
		require.Len(t, seam, g.Width())
		assertConnected(t, seam, g.Height())

		var sum int
		for x, y := range seam {
			sum += Energy(g, x, y)
		}
		assert.Equal(t, sum, total)
	}
}

func TestSeam_TraceInvalidStartPanics(t *testing.T) {
	g := newTestGrid(t, 3, 2, uniform(Pixel{}))
	assert.Panics(t, func() { Trace(g, Vertical, 3) })
	assert.Panics(t, func() { Trace(g, Horizontal, 2) })
	assert.Panics(t, func() { Trace(g, Orientation(5), 0) })
}

func TestSeam_FindMinSeamFirstSeenWinsTies(t *testing.T) {
	// Starting from column 1 and column 3 both cost 1200.
	g := columns(t, 4, 0, 0, 10, 50, 20)
	assert.Equal(t, Seam{1, 1, 1, 1}, FindMinSeam(g, Vertical))

	flat := newTestGrid(t, 6, 5, uniform(gray(3)))
	assert.Equal(t, Seam{0, 0, 0, 0, 0}, FindMinSeam(flat, Vertical))
	assert.Equal(t, Seam{0, 0, 0, 0, 0, 0}, FindMinSeam(flat, Horizontal))
}

func TestSeam_FindMinSeamIsExactMinimum(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		g := newTestGrid(t, 15, 11, randomPixels(seed))

		for _, o := range []Orientation{Vertical, Horizontal} {
			n := g.Width()
			if o == Horizontal {
				n = g.Height()
			}

			best := FindMinSeam(g, o)
			winner := -1
			lowest := 0
			for start := 0; start < n; start++ {
				_, total := Trace(g, o, start)
				if winner < 0 || total < lowest {
					winner, lowest = start, total
				}
			}
			want, wantTotal := Trace(g, o, winner)
			assert.Equal(t, want, best, "seed %d, %v", seed, o)

			for start := 0; start < n; start++ {
				_, total := Trace(g, o, start)
				assert.LessOrEqual(t, wantTotal, total)
			}
		}
	}
}

func TestSeam_ParallelSelectorMatchesSequential(t *testing.T) {
	g := newTestGrid(t, 40, 30, randomPixels(99))

	for workers := 2; workers <= 9; workers++ {
		s := Selector{Workers: workers}
		assert.Equal(t, FindMinSeam(g, Vertical), s.FindMinSeam(g, Vertical), "workers %d", workers)
		assert.Equal(t, FindMinSeam(g, Horizontal), s.FindMinSeam(g, Horizontal), "workers %d", workers)
	}
}

func TestSeam_BrightColumnScenario(t *testing.T) {
	white, black := Pixel{R: 255, G: 255, B: 255}, Pixel{}

	// A single bright column in a 3x3 image. Its pixels have identical black
	// neighbors on both sides and identical white ones above and below, so
	// their energy is zero while both black columns sit next to the stripe.
	g := newTestGrid(t, 3, 3, func(x, _ int) Pixel {
		if x == 1 {
			return white
		}
		return black
	})
	assert.Equal(t, 0, Energy(g, 1, 1))
	assert.Equal(t, 3*255*255, Energy(g, 0, 1))
	assert.Equal(t, 3*255*255, Energy(g, 2, 1))
	assert.Equal(t, Seam{1, 1, 1}, FindMinSeam(g, Vertical))

	// A band two columns wide has a high gradient on every one of its pixels
	// and the seam runs through the black background instead.
	band := newTestGrid(t, 6, 3, func(x, _ int) Pixel {
		if x == 2 || x == 3 {
			return white
		}
		return black
	})
	seam := FindMinSeam(band, Vertical)
	_, total := Trace(band, Vertical, seam[0])
	assert.Equal(t, 0, total)
	for _, x := range seam {
		assert.NotContains(t, []int{2, 3}, x)
	}
}
