// Package perforation measures stamp perforation gauges from scanned
// images.
//
// The gauge is the philatelic standard unit: holes per 20mm along an
// edge. Given a pre-cropped stamp scan and its DPI, the engine detects
// perforation points along each of the four edges, converts their
// spacing to a gauge, and classifies the result (uniform vs compound,
// quality, anomaly warnings).
//
// # Pipeline
//
//  1. Edge search: nominal search lines sit a few pixels inside each
//     image boundary; inputs are assumed cropped to the stamp.
//  2. Point detection: one of two interchangeable strategies locates
//     perforations per edge (see below). Edges with fewer than three
//     points are unmeasurable and skipped.
//  3. Gauge calculation: consecutive point spacings, compensated for
//     single missing detections, convert to holes per 20mm via the DPI.
//  4. Classification: per-edge gauges aggregate into an overall gauge,
//     a catalog-notation string, a compound-perforation flag, a quality
//     label, and advisory anomaly warnings.
//
// # Detection strategies
//
// HoleDetector runs a Hough circle transform at several sensitivity
// levels and validates candidates against the expected background
// color, ring contrast, and edge proximity. It suits clean scans with
// well-formed round holes.
//
// LineTicDetector traces the scalloped inner perforation line and
// detects its indentations (tics) as deviations from a fitted trend
// line. It makes no assumption about hole shape, which suits torn,
// aged, or damaged perforations.
//
// # Failure model
//
// Measure never returns an error and never panics: unmeasurable edges,
// imperforate stamps, and internal failures all surface as fields of
// the returned Analysis (zero gauges, "unknown" or "error" catalog
// strings, warnings). The caller always has something to render.
//
// # Concurrency
//
// The engine is synchronous and holds no cross-call state. Callers may
// run Measure off their UI thread; distinct Engine values are safe to
// use concurrently.
package perforation
