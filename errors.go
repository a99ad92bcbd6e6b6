package carve

import "github.com/pkg/errors"

// Error kinds reported by the image loader, the writer and the resize driver.
// Callers match them with errors.Is; the returned errors carry extra context.
var (
	ErrIO         = errors.New("image i/o failure")
	ErrFormat     = errors.New("invalid image format")
	ErrBounds     = errors.New("image dimensions out of bounds")
	ErrValueRange = errors.New("color value out of range")
)

func ioErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrIO, format, args...)
}

func formatErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrFormat, format, args...)
}

func boundsErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrBounds, format, args...)
}

func valueErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrValueRange, format, args...)
}
