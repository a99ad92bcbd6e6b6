package carve

import (
	"image"
	"image/color"

	"github.com/esimov/carve/imop"
)

// SeamMap paints the pixels of the src grid that are no longer present in
// the carved grid with the given color. The carved grid must have been
// derived from src with origin tracking enabled before the first removal.
func SeamMap(src, carved *Grid, col color.NRGBA) *image.NRGBA {
	bounds := image.Rect(0, 0, src.width, src.height)
	col.A = 0xff

	// Start with a fully painted overlay and punch out the surviving pixels.
	overlay := image.NewNRGBA(bounds)
	for i := 0; i < len(overlay.Pix); i += 4 {
		overlay.Pix[i+0] = col.R
		overlay.Pix[i+1] = col.G
		overlay.Pix[i+2] = col.B
		overlay.Pix[i+3] = col.A
	}
	for x := 0; x < carved.width; x++ {
		for y := 0; y < carved.height; y++ {
			ox, oy, ok := carved.Origin(x, y)
			if !ok {
				return src.Image()
			}
			overlay.SetNRGBA(ox, oy, color.NRGBA{})
		}
	}

	bitmap := imop.NewBitmap(bounds)
	op := imop.InitOp()
	op.Set(imop.SrcOver)
	op.Draw(bitmap, overlay, src.Image())

	return bitmap.Img
}

// EnergyMap renders the energy of every live pixel as a grayscale image,
// scaled so the most important pixel is white.
func EnergyMap(g *Grid) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, g.width, g.height))
	energies := make([]int, g.width*g.height)

	var peak int
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			e := Energy(g, x, y)
			energies[y*g.width+x] = e
			if e > peak {
				peak = e
			}
		}
	}
	if peak == 0 {
		return dst
	}
	for i, e := range energies {
		dst.Pix[i] = uint8(e * 255 / peak)
	}
	return dst
}
