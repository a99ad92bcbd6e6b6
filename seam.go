package carve

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Orientation tells which way a seam runs across the grid.
type Orientation int

const (
	// Vertical seams hold one pixel per row and shrink the width.
	Vertical Orientation = iota
	// Horizontal seams hold one pixel per column and shrink the height.
	Horizontal
)

func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// Seam is a connected path across the grid. For a vertical seam entry i is
// the column of the seam pixel in row i, for a horizontal seam it is the row
// of the seam pixel in column i.
type Seam []int

// Trace walks greedily across the grid from the start offset and returns the
// visited path with its total energy.
//
// At every step the walker picks the neighbor with the lowest energy among the
// three candidates of the next row (or column) and never revisits a decision.
// On ties the straight step wins. After that a vertical walk prefers the column
// to the right over the column to the left, while a horizontal walk prefers the
// row above over the row below.
func Trace(g *Grid, o Orientation, start int) (Seam, int) {
	switch o {
	case Vertical:
		return traceVertical(g, start)
	case Horizontal:
		return traceHorizontal(g, start)
	}
	panic(fmt.Sprintf("carve: unknown seam orientation %d", o))
}

func traceVertical(g *Grid, start int) (Seam, int) {
	if start < 0 || start >= g.width {
		panic(fmt.Sprintf("carve: vertical seam start %d outside of width %d", start, g.width))
	}
	var (
		seam  = make(Seam, g.height)
		col   = start
		total int
	)
	for row := 0; row < g.height; row++ {
		seam[row] = col
		total += Energy(g, col, row)
		if row == g.height-1 {
			break
		}

		next, lowest := col, Energy(g, col, row+1)
		if col+1 < g.width {
			if e := Energy(g, col+1, row+1); e < lowest {
				next, lowest = col+1, e
			}
		}
		if col > 0 {
			if e := Energy(g, col-1, row+1); e < lowest {
				next = col - 1
			}
		}
		col = next
	}
	return seam, total
}

func traceHorizontal(g *Grid, start int) (Seam, int) {
	if start < 0 || start >= g.height {
		panic(fmt.Sprintf("carve: horizontal seam start %d outside of height %d", start, g.height))
	}
	var (
		seam  = make(Seam, g.width)
		row   = start
		total int
	)
	for col := 0; col < g.width; col++ {
		seam[col] = row
		total += Energy(g, col, row)
		if col == g.width-1 {
			break
		}

		next, lowest := row, Energy(g, col+1, row)
		if row > 0 {
			if e := Energy(g, col+1, row-1); e < lowest {
				next, lowest = row-1, e
			}
		}
		if row+1 < g.height {
			if e := Energy(g, col+1, row+1); e < lowest {
				next = row + 1
			}
		}
		row = next
	}
	return seam, total
}

// Selector picks the lowest energy seam among the traces started from every
// offset along one edge of the grid.
type Selector struct {
	// Workers is the number of goroutines tracing seams concurrently.
	// Values below 2 trace the offsets one after the other.
	Workers int
}

// FindMinSeam returns the seam of lowest total energy for the orientation
// using a sequential Selector.
func FindMinSeam(g *Grid, o Orientation) Seam {
	var s Selector
	return s.FindMinSeam(g, o)
}

// FindMinSeam traces a seam from every start offset and returns the one of
// lowest total energy. The first offset wins on ties, so the result does not
// depend on the number of workers.
func (s *Selector) FindMinSeam(g *Grid, o Orientation) Seam {
	n := g.width
	if o == Horizontal {
		n = g.height
	}
	if n == 0 {
		return nil
	}

	if s.Workers < 2 || n < 2 {
		best, lowest := Trace(g, o, 0)
		for start := 1; start < n; start++ {
			if seam, total := Trace(g, o, start); total < lowest {
				best, lowest = seam, total
			}
		}
		return best
	}

	totals := make([]int, n)
	chunk := (n + s.Workers - 1) / s.Workers

	var eg errgroup.Group
	eg.SetLimit(s.Workers)
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > n {
			hi = n
		}
		eg.Go(func() error {
			for start := lo; start < hi; start++ {
				_, totals[start] = Trace(g, o, start)
			}
			return nil
		})
	}
	_ = eg.Wait()

	winner := 0
	for start := 1; start < n; start++ {
		if totals[start] < totals[winner] {
			winner = start
		}
	}
	seam, _ := Trace(g, o, winner)
	return seam
}
