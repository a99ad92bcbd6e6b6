package carve

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/esimov/carve/utils"
	"github.com/pkg/errors"
)

// DefaultSeamColor is used to paint the carved away pixels in debug mode.
const DefaultSeamColor = "#ff0000"

// Processor options
type Processor struct {
	// NewWidth and NewHeight are the target dimensions. Zero keeps the source dimension.
	NewWidth  int
	NewHeight int
	// Percentage interprets NewWidth and NewHeight as percent of the source dimensions.
	Percentage bool
	// Workers is the number of goroutines used for the seam search.
	Workers int
	// Fit downscales raster sources which exceed the grid capacity.
	Fit bool
	// Debug writes the seam map and the energy map of the source next to the output.
	Debug     bool
	SeamColor string
	Spinner   *utils.Spinner
}

// Process decodes the source image, carves it down to the requested size and
// encodes the result into w. When w is a file, its extension selects the output
// format, otherwise the result is written as a plain text PPM image.
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer) error {
	logger := LoggerFromContext(ctx)

	src, err := DecodeImage(r, p.Fit)
	if err != nil {
		return err
	}

	var ext, debugBase string
	if f, ok := w.(*os.File); ok && f != os.Stdout {
		ext = filepath.Ext(f.Name())
		debugBase = strings.TrimSuffix(f.Name(), ext)
	}

	g := src.Clone()
	if p.Debug {
		g.TrackOrigin()
	}
	if err := p.Carve(ctx, g); err != nil {
		return err
	}
	if err := EncodeImage(w, g, ext); err != nil {
		return err
	}

	if p.Debug {
		if debugBase == "" {
			logger.Warn("debug maps are only written for file outputs")
			return nil
		}
		return p.writeDebugMaps(ctx, debugBase, src, g)
	}
	return nil
}

// Carve shrinks the grid in place to the target size of the processor.
func (p *Processor) Carve(ctx context.Context, g *Grid) error {
	logger := LoggerFromContext(ctx)

	width, height, err := p.targetSize(g.Width(), g.Height())
	if err != nil {
		return err
	}
	logger.Debug("carving image",
		"width", g.Width(), "height", g.Height(),
		"target_width", width, "target_height", height,
		"workers", p.Workers,
	)

	var (
		prog    = newProgress(logger)
		total   = g.Width() - width + g.Height() - height
		removed int
	)
	c := NewCarver(p.Workers)
	c.OnSeam = func(o Orientation, s Seam) {
		removed++
		if p.Spinner != nil {
			p.Spinner.SetMessage(utils.Banner(
				fmt.Sprintf("⇢ removing %s seams %s", o, progressRatio(removed, total)), utils.DefaultMessage))
		}
	}
	if err := c.Resize(g, width, height); err != nil {
		return err
	}
	prog.done("carving finished", "seams", removed, "width", g.Width(), "height", g.Height())
	return nil
}

// targetSize resolves the requested dimensions against the source dimensions.
func (p *Processor) targetSize(width, height int) (int, int, error) {
	nw, nh := p.NewWidth, p.NewHeight
	if nw < 0 || nh < 0 {
		return 0, 0, boundsErrorf("negative target size %dx%d", nw, nh)
	}

	if p.Percentage {
		if nw > 100 || nh > 100 {
			return 0, 0, errors.Wrap(ErrBounds, "cannot use the percentage flag for image enlargement")
		}
		if nw > 0 {
			nw = utils.Max(utils.Percent(width, nw), 1)
		}
		if nh > 0 {
			nh = utils.Max(utils.Percent(height, nh), 1)
		}
	}

	if nw > width {
		return 0, 0, boundsErrorf("new width %d should be less than image width %d", nw, width)
	}
	if nh > height {
		return 0, 0, boundsErrorf("new height %d should be less than image height %d", nh, height)
	}
	if nw == 0 {
		nw = width
	}
	if nh == 0 {
		nh = height
	}
	return nw, nh, nil
}

// writeDebugMaps saves the seam map and the energy map of the source image as PNG files.
func (p *Processor) writeDebugMaps(ctx context.Context, base string, src, carved *Grid) error {
	logger := LoggerFromContext(ctx)

	hex := p.SeamColor
	if hex == "" {
		hex = DefaultSeamColor
	}
	col, err := utils.HexToNRGBA(hex)
	if err != nil {
		return errors.Wrap(err, "seam color")
	}

	seams := base + "_seams.png"
	if err := writePNG(seams, SeamMap(src, carved, col)); err != nil {
		return err
	}
	energy := base + "_energy.png"
	if err := writePNG(energy, EnergyMap(src)); err != nil {
		return err
	}
	logger.Debug("debug maps saved", "seams", seams, "energy", energy)
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErrorf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return ioErrorf("encode %s: %v", path, err)
	}
	return nil
}

func progressRatio(n, total int) string {
	return utils.DecorateText(fmt.Sprintf("%d/%d", n, total), utils.StatusMessage)
}
