package perforation

// Side identifies one edge of a stamp.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Sides lists all four edges in analysis order.
var Sides = []Side{SideTop, SideBottom, SideLeft, SideRight}

// Horizontal reports whether the side runs along the X axis.
func (s Side) Horizontal() bool {
	return s == SideTop || s == SideBottom
}

// Hole represents a single detected perforation hole.
//
// Coordinates are in full-image pixel space with (0,0) at the top-left.
// Holes produced by the line-tracing strategy carry a nominal diameter;
// only their center positions feed the gauge calculation.
type Hole struct {
	// CenterX is the horizontal center of the hole in pixels.
	CenterX float64 `json:"center_x"`

	// CenterY is the vertical center of the hole in pixels.
	CenterY float64 `json:"center_y"`

	// Diameter is the detected hole diameter in pixels.
	Diameter float64 `json:"diameter"`

	// Confidence indicates detection quality (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// EdgeQuality measures how clean the hole rim is (0.0 to 1.0).
	EdgeQuality float64 `json:"edge_quality"`
}

// Tic represents a perforation indentation found by tracing the
// scalloped inner edge line, the alternative to full circle detection.
type Tic struct {
	// X, Y is the indentation peak in full-image pixel coordinates.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Depth is the deviation from the edge trend line in pixels.
	Depth float64 `json:"depth"`

	// Confidence indicates detection quality (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Side is the stamp edge the tic belongs to.
	Side Side `json:"side"`
}

// Hole converts the tic into the common point representation used by
// the gauge calculator. The diameter is nominal; line tracing does not
// measure hole size.
func (t Tic) Hole() Hole {
	conf := t.Confidence
	if conf > 1 {
		conf = 1
	}
	return Hole{
		CenterX:     t.X,
		CenterY:     t.Y,
		Diameter:    10.0,
		Confidence:  conf,
		EdgeQuality: t.Depth / 20.0,
	}
}

// Edge is the measurement result for one side of the stamp.
// Immutable after construction.
type Edge struct {
	// Side identifies which stamp edge was measured.
	Side Side `json:"side"`

	// Holes is the ordered sequence of detected perforation points,
	// sorted along the edge's primary axis.
	Holes []Hole `json:"holes"`

	// LengthPixels is the length of the searched edge line.
	LengthPixels float64 `json:"length_pixels"`

	// Gauge is the perforation gauge in holes per 20mm.
	// Zero means the edge could not be measured.
	Gauge float64 `json:"gauge"`

	// Confidence is the measurement confidence (0.0 to 1.0), derived
	// from spacing consistency.
	Confidence float64 `json:"confidence"`

	// IsCompound is set when this edge's gauge differs from the others.
	IsCompound bool `json:"is_compound"`
}

// Quality labels for an overall measurement.
const (
	QualityExcellent = "Excellent"
	QualityGood      = "Good"
	QualityFair      = "Fair"
	QualityPoor      = "Poor"
)

// Analysis is the complete perforation measurement of a stamp.
//
// Measure always returns a valid Analysis: unmeasurable edges, an
// imperforate stamp, and internal failures are all represented in the
// value (empty Edges, zero gauges, warnings) rather than as errors.
type Analysis struct {
	// Edges holds the per-side results for every side that yielded
	// enough perforation points to measure.
	Edges []Edge `json:"edges"`

	// OverallGauge is the mean of the valid edge gauges, or zero when
	// nothing could be measured.
	OverallGauge float64 `json:"overall_gauge"`

	// CatalogGauge is OverallGauge rounded to the nearest quarter and
	// rendered in catalog notation (e.g. "11¼"). "unknown" when the
	// gauge is zero, "error" when analysis failed internally.
	CatalogGauge string `json:"catalog_gauge"`

	// IsCompound is true when different edges measured different
	// quarter-rounded gauges.
	IsCompound bool `json:"is_compound_perforation"`

	// CompoundDescription describes the perforation pattern, e.g.
	// "Compound perforation 11 × 12".
	CompoundDescription string `json:"compound_description"`

	// Quality is one of Excellent, Good, Fair, Poor.
	Quality string `json:"measurement_quality"`

	// TechnicalNotes carries measurement context (edge/point counts,
	// DPI, method, gauge range commentary).
	TechnicalNotes []string `json:"technical_notes"`

	// Warnings lists anomalies: possible forgery or reperforation
	// indicators, unusual gauge values, detection failures.
	Warnings []string `json:"warnings"`
}
