// Package report serializes perforation analyses for the data logger:
// a human-readable text report with a fixed section order, and flat
// per-edge CSV records for batch spreadsheets.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/philatools/perf-gauge-mcp/internal/perforation"
)

// WriteText renders an analysis as the data-logger text report.
//
// Section order is fixed: header, measurement summary, compound flag,
// per-edge detail, warnings, technical notes. Every field of the
// analysis appears; consumers parse sections by their headings.
func WriteText(w io.Writer, a perforation.Analysis, imageName string) error {
	var b strings.Builder

	b.WriteString("=== Perforation Analysis ===\n")
	fmt.Fprintf(&b, "Image: %s\n", imageName)
	fmt.Fprintf(&b, "Analysis Date: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("\n")

	b.WriteString("PERFORATION MEASUREMENT:\n")
	fmt.Fprintf(&b, "Overall Gauge: %s\n", a.CatalogGauge)
	fmt.Fprintf(&b, "Precise Measurement: %.3f\n", a.OverallGauge)
	if a.IsCompound {
		b.WriteString("Compound Perforation: Yes\n")
		fmt.Fprintf(&b, "Description: %s\n", a.CompoundDescription)
	} else {
		b.WriteString("Compound Perforation: No\n")
	}
	fmt.Fprintf(&b, "Measurement Quality: %s\n", a.Quality)
	b.WriteString("\n")

	b.WriteString("EDGE ANALYSIS:\n")
	for _, e := range a.Edges {
		fmt.Fprintf(&b, "  %s Edge:\n", titleCase(string(e.Side)))
		fmt.Fprintf(&b, "    Gauge: %s\n", perforation.FormatGaugeForCatalog(e.Gauge))
		fmt.Fprintf(&b, "    Holes Detected: %d\n", len(e.Holes))
		fmt.Fprintf(&b, "    Confidence: %.1f%%\n", e.Confidence*100)
		fmt.Fprintf(&b, "    Edge Length: %.1f pixels\n", e.LengthPixels)
	}
	b.WriteString("\n")

	if len(a.Warnings) > 0 {
		b.WriteString("WARNINGS & ANOMALIES:\n")
		for _, warning := range a.Warnings {
			fmt.Fprintf(&b, "  ! %s\n", warning)
		}
		b.WriteString("\n")
	}

	b.WriteString("TECHNICAL NOTES:\n")
	for _, note := range a.TechnicalNotes {
		fmt.Fprintf(&b, "  - %s\n", note)
	}
	b.WriteString("\n")

	b.WriteString("--- End of Analysis ---\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTextFile writes the text report next to the analyzed image name,
// as "<base>_perforation_data.txt" under dir, and returns the path.
func WriteTextFile(dir, imagePath string, a perforation.Analysis) (string, error) {
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	path := filepath.Join(dir, base+"_perforation_data.txt")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := WriteText(f, a, imagePath); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// EdgeRecord is one CSV row: a single measured edge of one stamp.
type EdgeRecord struct {
	Image        string  `csv:"image"`
	Side         string  `csv:"side"`
	CatalogGauge string  `csv:"catalog_gauge"`
	PreciseGauge float64 `csv:"precise_gauge"`
	Holes        int     `csv:"holes"`
	Confidence   float64 `csv:"confidence"`
	EdgeLengthPx float64 `csv:"edge_length_px"`
	Compound     bool    `csv:"compound"`
	Quality      string  `csv:"quality"`
}

// EdgeRecords flattens an analysis into per-edge CSV rows.
func EdgeRecords(imageName string, a perforation.Analysis) []EdgeRecord {
	records := make([]EdgeRecord, 0, len(a.Edges))
	for _, e := range a.Edges {
		records = append(records, EdgeRecord{
			Image:        imageName,
			Side:         string(e.Side),
			CatalogGauge: perforation.FormatGaugeForCatalog(e.Gauge),
			PreciseGauge: e.Gauge,
			Holes:        len(e.Holes),
			Confidence:   e.Confidence,
			EdgeLengthPx: e.LengthPixels,
			Compound:     e.IsCompound,
			Quality:      a.Quality,
		})
	}
	return records
}

// WriteCSV writes per-edge records for one or more analyses as CSV with
// a header row.
func WriteCSV(w io.Writer, records []EdgeRecord) error {
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// titleCase capitalizes the first letter of an edge name for display.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
