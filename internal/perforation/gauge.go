package perforation

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

const mmPerInch = 25.4

// CalculateGauge converts an ordered sequence of perforation points
// into a gauge value (holes per 20mm) and a measurement confidence.
//
// Spacings between consecutive points are compensated for single
// missing holes before averaging. Confidence is derived from spacing
// consistency: 1 minus the coefficient of variation, clamped to zero.
//
// Fewer than two points, or a non-positive DPI, is unmeasurable and
// yields (0, 0).
func CalculateGauge(points []Hole, dpi int, cfg DetectionConfig) (gauge, confidence float64) {
	if len(points) < 2 || dpi <= 0 {
		return 0, 0
	}

	spacings := pointSpacings(points)
	compensated := compensateMissingHoles(spacings, cfg)

	meanSpacing := stat.Mean(compensated, nil)
	pixelsPerMM := float64(dpi) / mmPerInch
	spacingMM := meanSpacing / pixelsPerMM
	if spacingMM <= 0 {
		return 0, 0
	}
	gauge = 20.0 / spacingMM

	sd := stat.PopStdDev(compensated, nil)
	confidence = math.Max(0, 1-sd/meanSpacing)
	return gauge, confidence
}

// pointSpacings returns the Euclidean distance between each consecutive
// pair of points.
func pointSpacings(points []Hole) []float64 {
	spacings := make([]float64, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		dx := points[i+1].CenterX - points[i].CenterX
		dy := points[i+1].CenterY - points[i].CenterY
		spacings = append(spacings, math.Hypot(dx, dy))
	}
	return spacings
}

// compensateMissingHoles splits spacings that look like exactly one
// missed detection (roughly double the typical spacing) into two equal
// segments. The typical spacing is the median of the lower half of the
// sorted spacings, which is robust to one or two large gaps.
//
// Only the single-miss band is corrected. Gaps wide enough to hide two
// or more holes are passed through unchanged; that conservatism avoids
// inventing regularity in genuinely irregular perforations.
func compensateMissingHoles(spacings []float64, cfg DetectionConfig) []float64 {
	if len(spacings) < 3 {
		return spacings
	}

	sorted := append([]float64(nil), spacings...)
	sort.Float64s(sorted)
	lowerHalf := sorted[:len(sorted)/2+1]

	typical, err := stats.Median(lowerHalf)
	if err != nil || typical <= 0 {
		return spacings
	}

	compensated := make([]float64, 0, len(spacings))
	for _, d := range spacings {
		if d > typical*cfg.MissingHoleLow && d < typical*cfg.MissingHoleHigh {
			half := d / 2
			compensated = append(compensated, half, half)
		} else {
			compensated = append(compensated, d)
		}
	}
	return compensated
}
