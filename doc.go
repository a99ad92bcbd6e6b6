/*
Package carve is a content aware image resize library. It shrinks an image
vertically and horizontally by repeatedly removing the connected seam of pixels
with the lowest energy, leaving the important parts of the image untouched.

The package comes with a command line interface. To check the supported flags type:

	$ carve --help

To use the API directly, decode a grid and hand it to a Carver:

	package main

	import (
		"log"

		"github.com/esimov/carve"
	)

	func main() {
		g, err := carve.LoadPPM("input.ppm")
		if err != nil {
			log.Fatal(err)
		}
		if err := carve.NewCarver(4).Resize(g, 320, 240); err != nil {
			log.Fatal(err)
		}
		if err := carve.SavePPM("output.ppm", g); err != nil {
			log.Fatal(err)
		}
	}

The Processor type wraps the same steps for arbitrary readers and writers,
including the raster formats decoded by the imaging package.
*/
package carve
