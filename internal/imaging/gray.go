package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// GrayPlane converts an image to a row-major luminance plane.
//
// The conversion uses the standard perceptual grayscale weighting via
// the imaging package. The result is indexed plane[y][x], matching the
// detectors' convention. An empty image yields an empty plane.
func GrayPlane(img image.Image) [][]uint8 {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	plane := make([][]uint8, h)
	for y := 0; y < h; y++ {
		row := make([]uint8, w)
		for x := 0; x < w; x++ {
			// Grayscale output has equal channels; red carries the value.
			row[x] = gray.Pix[gray.PixOffset(x, y)]
		}
		plane[y] = row
	}
	return plane
}

// BlurPlane applies Gaussian smoothing to a luminance plane and returns
// a new plane. Radius follows the bild convention (roughly the sigma of
// the kernel); the input is not modified.
func BlurPlane(plane [][]uint8, radius float64) [][]uint8 {
	h := len(plane)
	if h == 0 {
		return nil
	}
	w := len(plane[0])
	if w == 0 || radius <= 0 {
		return clonePlane(plane)
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(gray.Pix[y*gray.Stride:y*gray.Stride+w], plane[y])
	}

	blurred := blur.Gaussian(gray, radius)

	out := make([][]uint8, h)
	for y := 0; y < h; y++ {
		row := make([]uint8, w)
		for x := 0; x < w; x++ {
			row[x] = blurred.Pix[blurred.PixOffset(x, y)]
		}
		out[y] = row
	}
	return out
}

func clonePlane(plane [][]uint8) [][]uint8 {
	out := make([][]uint8, len(plane))
	for y, row := range plane {
		out[y] = append([]uint8(nil), row...)
	}
	return out
}
