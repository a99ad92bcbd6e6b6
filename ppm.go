package carve

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

const (
	ppmMagic    = "P3"
	ppmMaxValue = 255
)

// DecodePPM reads a plain text (P3) PPM image into a new grid.
// The preamble must declare a maximum color value of 255 and the body must
// contain exactly width*height color triples. Comments starting with '#' run
// to the end of the line.
func DecodePPM(r io.Reader) (*Grid, error) {
	sc := &tokenScanner{r: bufio.NewReader(r)}

	tag, err := sc.next("format tag")
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, formatErrorf("missing format tag")
		}
		return nil, err
	}
	if tag != ppmMagic {
		return nil, formatErrorf("expected format tag %q, got %q", ppmMagic, tag)
	}

	width, err := sc.nextInt("width")
	if err != nil {
		return nil, err
	}
	height, err := sc.nextInt("height")
	if err != nil {
		return nil, err
	}
	grid, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}

	maxValue, err := sc.nextInt("max color value")
	if err != nil {
		return nil, err
	}
	if maxValue != ppmMaxValue {
		return nil, formatErrorf("expected max color value %d, got %d", ppmMaxValue, maxValue)
	}

	// The file lists the pixels row by row.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var ch [3]uint8
			for i := range ch {
				v, err := sc.nextInt("color value")
				if err != nil {
					if errors.Is(err, io.ErrUnexpectedEOF) {
						return nil, formatErrorf("too few color values: pixel (%d, %d) is incomplete", x, y)
					}
					return nil, err
				}
				if v < 0 || v > maxValue {
					return nil, valueErrorf("color value %d at pixel (%d, %d) outside of [0, %d]", v, x, y, maxValue)
				}
				ch[i] = uint8(v)
			}
			grid.pix[grid.offset(x, y)] = Pixel{R: ch[0], G: ch[1], B: ch[2]}
		}
	}

	if tok, err := sc.next("trailing data"); err == nil {
		return nil, formatErrorf("too many color values: unexpected %q after %dx%d pixels", tok, width, height)
	} else if !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return grid, nil
}

// EncodePPM writes the live area of the grid as a plain text (P3) PPM image,
// one image row per line.
func EncodePPM(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)

	buf = append(buf, ppmMagic...)
	buf = append(buf, '\n')
	buf = strconv.AppendInt(buf, int64(g.width), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(g.height), 10)
	buf = append(buf, '\n')
	buf = strconv.AppendInt(buf, ppmMaxValue, 10)
	buf = append(buf, '\n')
	if _, err := bw.Write(buf); err != nil {
		return ioErrorf("write ppm header: %v", err)
	}

	for y := 0; y < g.height; y++ {
		buf = buf[:0]
		for x := 0; x < g.width; x++ {
			p := g.pix[g.offset(x, y)]
			if x > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendUint(buf, uint64(p.R), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(p.G), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(p.B), 10)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return ioErrorf("write ppm row %d: %v", y, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return ioErrorf("flush ppm: %v", err)
	}
	return nil
}

// LoadPPM opens and decodes a PPM file.
func LoadPPM(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioErrorf("open %s: %v", path, err)
	}
	defer f.Close()

	return DecodePPM(f)
}

// SavePPM writes the grid to a PPM file, replacing any existing content.
func SavePPM(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErrorf("create %s: %v", path, err)
	}
	if err := EncodePPM(f, g); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return ioErrorf("close %s: %v", path, err)
	}
	return nil
}

// tokenScanner splits a PPM stream into whitespace separated tokens.
type tokenScanner struct {
	r   *bufio.Reader
	buf []byte
}

// next returns the following token. Running out of input is reported as
// io.ErrUnexpectedEOF wrapped with the name of the missing field.
func (s *tokenScanner) next(what string) (string, error) {
	s.buf = s.buf[:0]
	for {
		c, err := s.r.ReadByte()
		if err == io.EOF {
			if len(s.buf) > 0 {
				return string(s.buf), nil
			}
			return "", errors.Wrapf(io.ErrUnexpectedEOF, "missing %s", what)
		}
		if err != nil {
			return "", ioErrorf("read %s: %v", what, err)
		}

		switch {
		case c == '#' && len(s.buf) == 0:
			if _, err := s.r.ReadString('\n'); err != nil && err != io.EOF {
				return "", ioErrorf("read comment: %v", err)
			}
		case isSpace(c):
			if len(s.buf) > 0 {
				return string(s.buf), nil
			}
		default:
			s.buf = append(s.buf, c)
		}
	}
}

func (s *tokenScanner) nextInt(what string) (int, error) {
	tok, err := s.next(what)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) && what != "color value" {
			return 0, formatErrorf("missing %s", what)
		}
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, formatErrorf("%s %q is not an integer", what, tok)
	}
	return v, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\v' || c == '\f'
}
