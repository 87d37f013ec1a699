package perforation

// Background identifies the scanner mat color the stamp was imaged
// against. Perforation holes show the background through them, so the
// expected hole interior intensity depends on this setting.
type Background string

const (
	BackgroundBlack     Background = "black"
	BackgroundDarkGray  Background = "dark_gray"
	BackgroundLightGray Background = "light_gray"
	BackgroundWhite     Background = "white"
)

// Intensity thresholds separating stamp paper from the background for
// each mat color. Stamps are assumed lighter than dark mats and darker
// than light mats.
const (
	stampOverBlack     = 100
	stampOverDarkGray  = 120
	stampOverWhite     = 200
	stampOverLightGray = 180
)

// IsStampPixel reports whether a grayscale value belongs to the stamp
// rather than the background.
func (b Background) IsStampPixel(v uint8) bool {
	switch b {
	case BackgroundBlack:
		return v > stampOverBlack
	case BackgroundDarkGray:
		return v > stampOverDarkGray
	case BackgroundWhite:
		return v < stampOverWhite
	case BackgroundLightGray:
		return v < stampOverLightGray
	default:
		return v > stampOverBlack
	}
}

// MatchesHoleIntensity reports whether the mean interior intensity of a
// candidate hole is consistent with the background showing through it.
func (b Background) MatchesHoleIntensity(mean float64) bool {
	switch b {
	case BackgroundBlack, BackgroundDarkGray:
		return mean < 120
	case BackgroundWhite:
		return mean > 180
	case BackgroundLightGray:
		return mean > 120
	default:
		return true
	}
}

// HoughParams is one sensitivity level of the circle search. The hole
// detector runs every set and unions the results, so faint or damaged
// perforations caught only by an aggressive set still contribute.
type HoughParams struct {
	// MinRadius and MaxRadius bound the circle radii searched, in pixels.
	MinRadius int
	MaxRadius int

	// EdgeThreshold is the grayscale gradient magnitude above which a
	// pixel counts as an edge and votes in the accumulator.
	EdgeThreshold float64

	// MinVotes is the absolute accumulator floor for a circle center.
	MinVotes int
}

// DetectionConfig collects every tunable threshold of the detectors,
// the gauge calculator, and the classifier. Literals from the tuned
// heuristics live here so each can be tested and adjusted in isolation.
type DetectionConfig struct {
	// EdgeMarginCap caps the edge search line inset in pixels. Input
	// images are pre-cropped to the stamp, so perforations sit within a
	// few pixels of the image boundary.
	EdgeMarginCap int

	// EdgeMarginDivisor scales the inset with image size:
	// margin = min(EdgeMarginCap, minDimension/EdgeMarginDivisor).
	EdgeMarginDivisor int

	// ROIMargin pads the edge search line when extracting the region
	// the circle search runs on.
	ROIMargin int

	// BlurRadius is the Gaussian smoothing radius applied to the ROI
	// before circle detection.
	BlurRadius float64

	// HoughSets are the circle search sensitivity levels, from very
	// sensitive small-hole search to conservative well-defined holes.
	HoughSets []HoughParams

	// VoteFraction scales the accumulator threshold with circle
	// circumference: threshold = max(MinVotes, 2r*VoteFraction).
	VoteFraction float64

	// SearchLineSlack and SearchLineRadiusFactor bound how far a circle
	// center may sit from the edge search line:
	// max(SearchLineSlack, r*SearchLineRadiusFactor).
	SearchLineSlack        float64
	SearchLineRadiusFactor float64

	// BoundaryProximityH / BoundaryProximityV are the maximum distances
	// from the nearest image boundary for holes on horizontal and
	// vertical edges. Vertical edges tend to sit further in.
	BoundaryProximityH float64
	BoundaryProximityV float64

	// PositionBand is the fraction of the image dimension a hole may
	// sit inside from its own edge (a "top" hole past 15% of the height
	// is an ink spot, not a perforation).
	PositionBand float64

	// BlackInteriorCeiling rejects candidate holes on black mats whose
	// interior is brighter than this. Ink blobs read gray, true
	// perforations read near-black.
	BlackInteriorCeiling float64

	// RingContrastMin is the minimum inner-vs-outer ring contrast
	// (0-1 scale) for a candidate to count as a real hole.
	RingContrastMin float64

	// ConfidenceFloor accepts holes outright; RelaxedConfidenceFloor
	// accepts them when the interior also matches the background.
	ConfidenceFloor        float64
	RelaxedConfidenceFloor float64

	// TraceDepth is how far inward (pixels) the line tracer searches
	// for the darkest pixel past the stamp/background transition.
	TraceDepth int

	// TraceStep is the column/row sampling stride of the line tracer.
	TraceStep int

	// TraceCornerMargin is skipped at each end of the traced strip so
	// corner perforations do not skew the trend line.
	TraceCornerMargin int

	// TraceBandDepth caps how deep (pixels) the traced strip reaches
	// into the image; TraceBandDivisor caps it further at dimension /
	// TraceBandDivisor on small scans.
	TraceBandDepth   int
	TraceBandDivisor int

	// MinTracePoints is the fewest traced points that still make a
	// usable edge line.
	MinTracePoints int

	// SmoothWindow is the sliding-window size used to smooth the traced
	// edge line. Small, so indentation shape survives.
	SmoothWindow int

	// DeviationThreshold is the minimum inward deviation from the trend
	// line (pixels) for a traced point to be an indentation candidate.
	DeviationThreshold float64

	// PeakWindow and PeakThreshold control the local-extremum test: a
	// candidate must carry the maximum deviation within ±PeakWindow
	// points and deviate by more than PeakThreshold pixels.
	PeakWindow    int
	PeakThreshold float64

	// TicDepthScale converts indentation depth to confidence:
	// confidence = min(1, depth/TicDepthScale).
	TicDepthScale float64

	// TicSpacingFloor and TicSpacingDPIDivisor set the minimum distance
	// between kept tics: max(TicSpacingFloor, dpi/TicSpacingDPIDivisor).
	TicSpacingFloor      int
	TicSpacingDPIDivisor int

	// MissingHoleLow/High bound the spacing band (as multiples of the
	// typical spacing) treated as exactly one missed hole. Wider gaps
	// are passed through untouched; over-correcting genuinely irregular
	// perforations is worse than under-correcting.
	MissingHoleLow  float64
	MissingHoleHigh float64

	// IrregularCV flags an edge as possibly reperforated when the
	// coefficient of variation of its spacings exceeds it.
	IrregularCV float64

	// Gauge range heuristics (holes per 20mm).
	MinGaugeTypical float64 // below: very unusual
	MinGaugeRare    float64 // below: extremely rare
	MaxGaugeTypical float64 // above: unusual
	HighGaugeNote   float64 // above: informational note

	// QuarterTolerance flags measurements that do not align with the
	// catalog quarter-point system.
	QuarterTolerance float64

	// EighthTolerance is the residual window around 1/8 fractions that
	// triggers the forgery warning.
	EighthTolerance float64

	// Quality label cutoffs on mean edge confidence.
	ExcellentConfidence float64
	GoodConfidence      float64
	FairConfidence      float64

	// MinPointsPerEdge is the minimum detected points for an edge to be
	// usable.
	MinPointsPerEdge int
}

// DefaultConfig returns the tuned thresholds for scans in the
// 300-2400 DPI range.
func DefaultConfig() DetectionConfig {
	return DetectionConfig{
		EdgeMarginCap:     8,
		EdgeMarginDivisor: 50,
		ROIMargin:         20,
		BlurRadius:        1.4,
		HoughSets: []HoughParams{
			// Very sensitive for small perforations.
			{MinRadius: 2, MaxRadius: 12, EdgeThreshold: 20, MinVotes: 10},
			// Standard perforation size at 800 DPI.
			{MinRadius: 4, MaxRadius: 20, EdgeThreshold: 30, MinVotes: 15},
			// Slightly larger perforations.
			{MinRadius: 6, MaxRadius: 25, EdgeThreshold: 40, MinVotes: 18},
			// Conservative for well-defined holes.
			{MinRadius: 8, MaxRadius: 30, EdgeThreshold: 50, MinVotes: 25},
			// Very aggressive for faint or damaged perforations.
			{MinRadius: 3, MaxRadius: 18, EdgeThreshold: 15, MinVotes: 8},
		},
		VoteFraction:           0.4,
		SearchLineSlack:        25,
		SearchLineRadiusFactor: 3,
		BoundaryProximityH:     35,
		BoundaryProximityV:     50,
		PositionBand:           0.15,
		BlackInteriorCeiling:   60,
		RingContrastMin:        0.1,
		ConfidenceFloor:        0.05,
		RelaxedConfidenceFloor: 0.01,
		TraceDepth:             15,
		TraceStep:              2,
		TraceCornerMargin:      20,
		TraceBandDepth:         50,
		TraceBandDivisor:       10,
		MinTracePoints:         10,
		SmoothWindow:           7,
		DeviationThreshold:     0.5,
		PeakWindow:             2,
		PeakThreshold:          0.2,
		TicDepthScale:          20,
		TicSpacingFloor:        10,
		TicSpacingDPIDivisor:   30,
		MissingHoleLow:         1.7,
		MissingHoleHigh:        2.3,
		IrregularCV:            0.15,
		MinGaugeTypical:        8.5,
		MinGaugeRare:           3,
		MaxGaugeTypical:        16,
		HighGaugeNote:          15,
		QuarterTolerance:       0.1,
		EighthTolerance:        0.02,
		ExcellentConfidence:    0.8,
		GoodConfidence:         0.6,
		FairConfidence:         0.4,
		MinPointsPerEdge:       3,
	}
}
