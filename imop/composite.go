// Package imop implements the Porter-Duff composition operations used for
// mixing a graphic element with its backdrop. The image/draw package only
// provides source and source-over-destination; this package fills the gap.
//
// It is used to render the seam map in debug mode, where the carved away
// pixels are painted over the source image in a distinct color.
package imop

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/exp/slices"
)

// The supported composition operations.
const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// Bitmap holds the result of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// NewBitmap allocates a transparent bitmap of the given size.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// InitOp returns a Composite with source-over as the active operation.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops: []string{
			Clear, Copy, Dst,
			SrcOver, DstOver,
			SrcIn, DstIn,
			SrcOut, DstOut,
			SrcAtop, DstAtop,
			Xor,
		},
	}
}

// Set activates a composition operation. Unknown operations are ignored.
func (op *Composite) Set(cop string) {
	if slices.Contains(op.ops, cop) {
		op.current = cop
	}
}

// Get returns the active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composes src over the dst backdrop with the active operation and
// stores the result into bitmap. The images must have the same bounds.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA) {
	if bitmap == nil {
		bitmap = NewBitmap(src.Bounds())
	}
	b := src.Bounds()

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s := src.NRGBAAt(x, y)
			d := dst.NRGBAAt(x, y)
			bitmap.Img.SetNRGBA(x, y, op.compose(s, d))
		}
	}
}

// compose applies the alpha composition formula of the active operation on
// a single source and backdrop pixel.
func (op *Composite) compose(s, d color.NRGBA) color.NRGBA {
	var (
		as = float64(s.A) / 255
		ab = float64(d.A) / 255
		fs float64 // source contribution
		fb float64 // backdrop contribution
	)

	switch op.current {
	case Clear:
		fs, fb = 0, 0
	case Copy:
		fs, fb = 1, 0
	case Dst:
		fs, fb = 0, 1
	case SrcOver:
		fs, fb = 1, 1-as
	case DstOver:
		fs, fb = 1-ab, 1
	case SrcIn:
		fs, fb = ab, 0
	case DstIn:
		fs, fb = 0, as
	case SrcOut:
		fs, fb = 1-ab, 0
	case DstOut:
		fs, fb = 0, 1-as
	case SrcAtop:
		fs, fb = ab, 1-as
	case DstAtop:
		fs, fb = 1-ab, as
	case Xor:
		fs, fb = 1-ab, 1-as
	}

	// Premultiplied source and backdrop weights.
	ws, wb := as*fs, ab*fb
	a := ws + wb
	if a == 0 {
		return color.NRGBA{}
	}
	mix := func(cs, cb uint8) uint8 {
		return uint8(math.Round((float64(cs)*ws + float64(cb)*wb) / a))
	}
	return color.NRGBA{
		R: mix(s.R, d.R),
		G: mix(s.G, d.G),
		B: mix(s.B, d.B),
		A: uint8(math.Round(a * 255)),
	}
}
