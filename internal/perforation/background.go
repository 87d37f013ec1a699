package perforation

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// borderBandFraction is the share of each dimension sampled as the
// border band when estimating the mat color.
const borderBandFraction = 0.02

// EstimateBackground classifies the scanner mat color visible around
// the stamp edges into the nearest Background setting.
//
// The outer border band of the image is sampled and averaged in Lab
// space; the mean lightness decides the class. The stamp itself
// occupies most of the frame, so perforation holes and torn corners
// barely shift the band average. Callers that know the mat color should
// set it directly; this estimate is the fallback for unattended batch
// runs.
func EstimateBackground(img image.Image) Background {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return BackgroundBlack
	}

	band := int(float64(min(w, h)) * borderBandFraction)
	if band < 1 {
		band = 1
	}

	var sumL float64
	var n int
	sample := func(x, y int) {
		c, ok := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		if !ok {
			return
		}
		l, _, _ := c.Lab()
		sumL += l
		n++
	}

	for y := 0; y < h; y++ {
		inBand := y < band || y >= h-band
		for x := 0; x < w; x++ {
			if inBand || x < band || x >= w-band {
				sample(x, y)
			}
		}
	}
	if n == 0 {
		return BackgroundBlack
	}

	switch meanL := sumL / float64(n); {
	case meanL < 0.2:
		return BackgroundBlack
	case meanL < 0.45:
		return BackgroundDarkGray
	case meanL < 0.75:
		return BackgroundLightGray
	default:
		return BackgroundWhite
	}
}
