package perforation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// FormatGaugeForCatalog renders a gauge value in printed-catalog
// notation: rounded to the nearest quarter, whole values bare, quarter
// fractions with their glyph (e.g. "11¼", "12", "11½").
// Non-positive gauges render as "unknown".
func FormatGaugeForCatalog(gauge float64) string {
	if gauge <= 0 {
		return "unknown"
	}

	rounded := math.Round(gauge*4) / 4
	whole := int(rounded)
	frac := rounded - float64(whole)

	switch {
	case frac == 0:
		return fmt.Sprintf("%d", whole)
	case frac == 0.25:
		return fmt.Sprintf("%d¼", whole)
	case frac == 0.5:
		return fmt.Sprintf("%d½", whole)
	case frac == 0.75:
		return fmt.Sprintf("%d¾", whole)
	default:
		return fmt.Sprintf("%g", rounded)
	}
}

// analyzeCompound reports whether the measured edges form a compound
// perforation and describes the pattern. Edges round to the nearest
// quarter before comparison; one shared value means uniform.
func analyzeCompound(edges []Edge) (bool, string) {
	if len(edges) < 2 {
		return false, "Insufficient edges for compound analysis"
	}

	unique := make(map[float64]struct{})
	for _, e := range edges {
		if e.Gauge > 0 {
			unique[math.Round(e.Gauge*4)/4] = struct{}{}
		}
	}

	if len(unique) <= 1 {
		var g float64
		for v := range unique {
			g = v
		}
		return false, fmt.Sprintf("Uniform perforation gauge %s", FormatGaugeForCatalog(g))
	}

	var horizontal, vertical []float64
	for _, e := range edges {
		if e.Side.Horizontal() {
			horizontal = append(horizontal, e.Gauge)
		} else {
			vertical = append(vertical, e.Gauge)
		}
	}

	var hAvg, vAvg float64
	if len(horizontal) > 0 {
		hAvg = stat.Mean(horizontal, nil)
	}
	if len(vertical) > 0 {
		vAvg = stat.Mean(vertical, nil)
	}

	if hAvg > 0 && vAvg > 0 {
		return true, fmt.Sprintf("Compound perforation %s × %s",
			FormatGaugeForCatalog(hAvg), FormatGaugeForCatalog(vAvg))
	}
	return true, fmt.Sprintf("Compound perforation with %d different gauges", len(unique))
}

// detectAnomalies returns advisory warnings for measurement patterns
// associated with forgeries, reperforation, or historically unusual
// gauges. Warnings never invalidate a measurement.
func detectAnomalies(gauge float64, edges []Edge, cfg DetectionConfig) []string {
	var warnings []string

	// Genuine perforating machines produce quarter-step gauges; a
	// measurement that lands cleanly on an eighth is a classic sign of
	// reperforation.
	precise := math.Round(gauge*8) / 8
	eighthFrac := precise - math.Floor(precise)
	for _, f := range []float64{0.125, 0.375, 0.625, 0.875} {
		if math.Abs(eighthFrac-f) < cfg.EighthTolerance {
			warnings = append(warnings,
				"UNUSUAL: Eighth-fraction measurement detected - possible forgery or reperforations")
			break
		}
	}

	for _, e := range edges {
		if len(e.Holes) < 3 {
			continue
		}
		spacings := pointSpacings(e.Holes)
		mean := stat.Mean(spacings, nil)
		if mean <= 0 {
			continue
		}
		cv := stat.PopStdDev(spacings, nil) / mean
		if cv > cfg.IrregularCV {
			warnings = append(warnings, fmt.Sprintf(
				"IRREGULAR: Uneven hole spacing on %s edge - possible reperforation", e.Side))
		}
	}

	switch {
	case gauge < cfg.MinGaugeRare:
		warnings = append(warnings, fmt.Sprintf(
			"EXTREMELY RARE: Gauge %s - similar to Bhopal experimental stamps (perf 2)",
			FormatGaugeForCatalog(gauge)))
	case gauge < cfg.MinGaugeTypical:
		warnings = append(warnings, fmt.Sprintf(
			"VERY UNUSUAL: Gauge %s - below typical minimum (Canada 8½)",
			FormatGaugeForCatalog(gauge)))
	case gauge > cfg.MaxGaugeTypical:
		warnings = append(warnings, fmt.Sprintf(
			"UNUSUAL: Gauge %s - above typical maximum (perf 15-16)",
			FormatGaugeForCatalog(gauge)))
	case gauge > cfg.HighGaugeNote:
		warnings = append(warnings, fmt.Sprintf(
			"NOTE: High gauge %s - near maximum practical separation limit",
			FormatGaugeForCatalog(gauge)))
	}

	if math.Abs(gauge-math.Round(gauge*4)/4) > cfg.QuarterTolerance {
		warnings = append(warnings,
			"PRECISE: Measurement doesn't align with standard quarter-point system")
	}

	return warnings
}

// qualityLabel maps mean edge confidence to a measurement quality label.
func qualityLabel(meanConfidence float64, cfg DetectionConfig) string {
	switch {
	case meanConfidence > cfg.ExcellentConfidence:
		return QualityExcellent
	case meanConfidence > cfg.GoodConfidence:
		return QualityGood
	case meanConfidence > cfg.FairConfidence:
		return QualityFair
	default:
		return QualityPoor
	}
}
