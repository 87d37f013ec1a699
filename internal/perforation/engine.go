package perforation

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/stat"

	"github.com/philatools/perf-gauge-mcp/internal/imaging"
)

// Method selects the perforation detection strategy.
type Method string

const (
	// MethodHole detects perforations as circular holes.
	MethodHole Method = "hole"

	// MethodLine traces the scalloped inner edge line and detects its
	// indentations. More robust on damaged or irregular perforations.
	MethodLine Method = "line"
)

// Engine measures stamp perforations. Each Measure call is independent
// given the image and configuration; the engine holds no cross-call
// state, so a single Engine value may serve sequential measurements and
// distinct Engine values may run concurrently.
type Engine struct {
	// DPI is the scan resolution of the input images. Required for
	// pixel-to-millimeter conversion.
	DPI int

	// Background is the scanner mat color the stamp was imaged against.
	Background Background

	// Method selects the detection strategy.
	Method Method

	// Config holds the detection thresholds.
	Config DetectionConfig

	// Detector overrides the strategy selected by Method when non-nil.
	Detector EdgeDetector
}

// NewEngine returns an engine with the default configuration and
// hole-based detection.
func NewEngine(dpi int, background Background) *Engine {
	return &Engine{
		DPI:        dpi,
		Background: background,
		Method:     MethodHole,
		Config:     DefaultConfig(),
	}
}

// detector builds the strategy implementation for the configured method.
func (e *Engine) detector() EdgeDetector {
	if e.Detector != nil {
		return e.Detector
	}
	if e.Method == MethodLine {
		return &LineTicDetector{DPI: e.DPI, Background: e.Background, Config: e.Config}
	}
	return &HoleDetector{DPI: e.DPI, Background: e.Background, Config: e.Config}
}

// Measure runs the complete perforation analysis of a stamp image.
//
// It always returns a usable Analysis: an imperforate stamp, an
// unmeasurable scan, and even an internal failure are reported through
// the value's gauge, quality, and warning fields. Callers never see an
// error or a panic from this method.
func (e *Engine) Measure(img image.Image) (analysis Analysis) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("Analysis failed: %v", r)
			analysis = Analysis{
				Edges:               []Edge{},
				OverallGauge:        0,
				CatalogGauge:        "error",
				CompoundDescription: msg,
				Quality:             QualityPoor,
				TechnicalNotes:      []string{fmt.Sprintf("Error during analysis: %v", r)},
				Warnings:            []string{fmt.Sprintf("Analysis error: %v", r)},
			}
		}
	}()

	if e.DPI <= 0 {
		return Analysis{
			Edges:               []Edge{},
			CatalogGauge:        "unknown",
			CompoundDescription: "Invalid scan resolution",
			Quality:             QualityPoor,
			TechnicalNotes:      []string{fmt.Sprintf("DPI setting: %d", e.DPI)},
			Warnings:            []string{fmt.Sprintf("Invalid DPI %d - set the scan resolution before measuring", e.DPI)},
		}
	}

	plane := imaging.GrayPlane(img)
	if len(plane) == 0 || len(plane[0]) == 0 {
		return Analysis{
			Edges:               []Edge{},
			CatalogGauge:        "unknown",
			CompoundDescription: "Could not detect stamp edges",
			Quality:             QualityPoor,
			TechnicalNotes:      []string{"No stamp edges detected"},
			Warnings:            []string{"No stamp edges found - check image"},
		}
	}
	h := len(plane)
	w := len(plane[0])

	detector := e.detector()
	margin := edgeMargin(w, h, e.Config)

	var edges []Edge
	for _, side := range Sides {
		points := detector.Detect(plane, side)
		if len(points) < e.Config.MinPointsPerEdge {
			continue
		}

		gauge, confidence := CalculateGauge(points, e.DPI, e.Config)
		confidence = detector.EdgeConfidence(confidence, points)

		edges = append(edges, Edge{
			Side:         side,
			Holes:        points,
			LengthPixels: lineLength(searchLine(w, h, side, margin)),
			Gauge:        gauge,
			Confidence:   confidence,
		})
	}

	if len(edges) == 0 {
		return Analysis{
			Edges:               []Edge{},
			OverallGauge:        0,
			CatalogGauge:        "unknown",
			CompoundDescription: "No perforations detected",
			Quality:             QualityPoor,
			TechnicalNotes:      []string{"No perforation holes found"},
			Warnings:            []string{"No perforation holes detected - may be imperforate"},
		}
	}

	var validGauges, confidences []float64
	for _, edge := range edges {
		if edge.Gauge > 0 {
			validGauges = append(validGauges, edge.Gauge)
		}
		confidences = append(confidences, edge.Confidence)
	}

	var overallGauge float64
	if len(validGauges) > 0 {
		overallGauge = stat.Mean(validGauges, nil)
	}

	isCompound, compoundDesc := analyzeCompound(edges)
	if isCompound {
		for i := range edges {
			edges[i].IsCompound = true
		}
	}

	warnings := detectAnomalies(overallGauge, edges, e.Config)
	meanConfidence := stat.Mean(confidences, nil)

	return Analysis{
		Edges:               edges,
		OverallGauge:        overallGauge,
		CatalogGauge:        FormatGaugeForCatalog(overallGauge),
		IsCompound:          isCompound,
		CompoundDescription: compoundDesc,
		Quality:             qualityLabel(meanConfidence, e.Config),
		TechnicalNotes:      e.technicalNotes(edges, meanConfidence, detector, overallGauge),
		Warnings:            warnings,
	}
}

// technicalNotes summarizes the run for the report: scope, confidence,
// configuration, and gauge range context.
func (e *Engine) technicalNotes(edges []Edge, meanConfidence float64, detector EdgeDetector, gauge float64) []string {
	totalPoints := 0
	for _, edge := range edges {
		totalPoints += len(edge.Holes)
	}

	notes := []string{
		fmt.Sprintf("Analyzed %d edges with %d perforation holes", len(edges), totalPoints),
		fmt.Sprintf("Average measurement confidence: %.0f%%", meanConfidence*100),
		fmt.Sprintf("DPI setting: %d", e.DPI),
		fmt.Sprintf("Used %s", detector.Name()),
	}

	switch {
	case gauge <= 0:
	case gauge <= 8.5:
		notes = append(notes, "Low gauge perforations - easier to separate but less common")
	case gauge >= 15:
		notes = append(notes, "High gauge perforations - more holes but harder to separate cleanly")
	case gauge >= 11 && gauge <= 14:
		notes = append(notes, "Standard gauge range - good balance of separation ease and strength")
	}

	return notes
}
