package carve

import (
	"bufio"
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
)

// DecodeImage reads a source image into a grid. Plain text PPM images are
// detected by their format tag, anything else goes through the registered
// image decoders (PNG, JPEG, GIF and BMP). When fit is set a raster image
// larger than the grid capacity is downscaled to fit instead of rejected.
func DecodeImage(r io.Reader, fit bool) (*Grid, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(ppmMagic))
	if err != nil && err != io.EOF {
		return nil, ioErrorf("read image header: %v", err)
	}
	if bytes.Equal(magic, []byte(ppmMagic)) {
		return DecodePPM(br)
	}

	src, err := imaging.Decode(br, imaging.AutoOrientation(true))
	if err != nil {
		return nil, formatErrorf("decode image: %v", err)
	}
	if fit {
		src = FitToCapacity(src)
	}
	return GridFromImage(src)
}

// FitToCapacity downscales the image, preserving its aspect ratio, in case it
// does not fit into a MaxWidth x MaxHeight grid.
func FitToCapacity(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= MaxWidth && b.Dy() <= MaxHeight {
		return img
	}
	return imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)
}

// GridFromImage copies the color channels of img into a new grid.
// The alpha channel is dropped.
func GridFromImage(img image.Image) (*Grid, error) {
	src := imgToNRGBA(img)
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()

	g, err := NewGrid(dx, dy)
	if err != nil {
		return nil, err
	}
	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			i := src.PixOffset(x, y)
			g.pix[g.offset(x, y)] = Pixel{R: src.Pix[i], G: src.Pix[i+1], B: src.Pix[i+2]}
		}
	}
	return g, nil
}

// Image returns the live area of the grid as an opaque NRGBA image.
func (g *Grid) Image() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, g.width, g.height))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := g.pix[g.offset(x, y)]
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = p.R
			dst.Pix[i+1] = p.G
			dst.Pix[i+2] = p.B
			dst.Pix[i+3] = 0xff
		}
	}
	return dst
}

// EncodeImage writes the grid to w in the format associated with the file
// extension. An empty extension selects the plain text PPM format.
func EncodeImage(w io.Writer, g *Grid, ext string) error {
	var err error

	switch strings.ToLower(ext) {
	case "", ".ppm":
		return EncodePPM(w, g)
	case ".png":
		err = png.Encode(w, g.Image())
	case ".jpg", ".jpeg":
		err = jpeg.Encode(w, g.Image(), &jpeg.Options{Quality: 100})
	case ".bmp":
		err = bmp.Encode(w, g.Image())
	default:
		return formatErrorf("unsupported output extension %q", ext)
	}
	if err != nil {
		return ioErrorf("encode %s image: %v", ext, err)
	}
	return nil
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}
