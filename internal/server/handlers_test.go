package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/philatools/perf-gauge-mcp/internal/perforation"
)

// createTestScanFile writes a solid-color PNG and returns its path
func createTestScanFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

func samplePerfAnalysis() perforation.Analysis {
	return perforation.Analysis{
		Edges:               []perforation.Edge{},
		OverallGauge:        14.0,
		CatalogGauge:        "14",
		CompoundDescription: "Uniform perforation gauge 14",
		Quality:             perforation.QualityGood,
	}
}

// callTool runs one tools/call request through the full dispatch path.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	return s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
}

// resultText extracts the text payload from an MCP content response.
func resultText(t *testing.T, resp *MCPResponse) string {
	t.Helper()

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result type: %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) == 0 {
		t.Fatalf("content missing: %+v", result)
	}
	text, ok := content[0]["text"].(string)
	if !ok {
		t.Fatalf("text missing: %+v", content[0])
	}
	return text
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New()
	path := createTestScanFile(t, 100, 80, color.RGBA{200, 200, 200, 255})
	defer os.Remove(path)

	resp := callTool(t, s, "image_load", map[string]interface{}{"path": path})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	text := resultText(t, resp)
	var info struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := json.Unmarshal([]byte(text), &info); err != nil {
		t.Fatalf("result not JSON: %v\n%s", err, text)
	}
	if info.Width != 100 || info.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", info.Width, info.Height)
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New()
	path := createTestScanFile(t, 200, 150, color.RGBA{30, 30, 30, 255})
	defer os.Remove(path)

	resp := callTool(t, s, "image_dimensions", map[string]interface{}{"path": path})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if !strings.Contains(resultText(t, resp), "200") {
		t.Errorf("width missing from result: %s", resultText(t, resp))
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New()

	resp := callTool(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/scan.png"})

	if resp.Error == nil {
		t.Fatal("expected error for missing file")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := New()

	resp := callTool(t, s, "image_levitate", map[string]interface{}{})

	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_PerforationMeasure(t *testing.T) {
	s := New()
	// A featureless scan measures as unmeasurable, not as an error.
	path := createTestScanFile(t, 150, 150, color.RGBA{180, 180, 180, 255})
	defer os.Remove(path)

	resp := callTool(t, s, "perforation_measure", map[string]interface{}{
		"path": path,
		"dpi":  800,
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	var a perforation.Analysis
	if err := json.Unmarshal([]byte(resultText(t, resp)), &a); err != nil {
		t.Fatalf("result not an analysis: %v", err)
	}
	if a.CatalogGauge != "unknown" {
		t.Errorf("catalog gauge: got %q, want \"unknown\"", a.CatalogGauge)
	}
	if len(a.Warnings) == 0 {
		t.Error("featureless scan should warn")
	}

	// The analysis is remembered for the report tool.
	if _, ok := s.recallAnalysis(path); !ok {
		t.Error("analysis not remembered after measure")
	}
}

func TestHandleToolsCall_PerforationMeasure_BadArguments(t *testing.T) {
	s := New()
	path := createTestScanFile(t, 50, 50, color.RGBA{0, 0, 0, 255})
	defer os.Remove(path)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"unknown background", map[string]interface{}{"path": path, "background": "plaid"}},
		{"unknown method", map[string]interface{}{"path": path, "method": "sonar"}},
		{"negative dpi", map[string]interface{}{"path": path, "dpi": -300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "perforation_measure", tt.args)
			if resp.Error == nil {
				t.Error("expected argument error")
			}
		})
	}
}

func TestHandleToolsCall_PerforationBackground(t *testing.T) {
	s := New()
	path := createTestScanFile(t, 80, 80, color.RGBA{0, 0, 0, 255})
	defer os.Remove(path)

	resp := callTool(t, s, "perforation_background", map[string]interface{}{"path": path})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(resultText(t, resp)), &result); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if result["background"] != "black" {
		t.Errorf("background: got %q, want black", result["background"])
	}
}

func TestHandleToolsCall_PerforationReport(t *testing.T) {
	s := New()
	path := createTestScanFile(t, 120, 120, color.RGBA{190, 190, 190, 255})
	defer os.Remove(path)
	outDir := t.TempDir()

	resp := callTool(t, s, "perforation_report", map[string]interface{}{
		"path":       path,
		"output_dir": outDir,
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	var result struct {
		Report string `json:"report"`
		File   string `json:"file"`
	}
	if err := json.Unmarshal([]byte(resultText(t, resp)), &result); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if !strings.Contains(result.Report, "=== Perforation Analysis ===") {
		t.Errorf("report header missing:\n%s", result.Report)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	wantFile := filepath.Join(outDir, base+"_perforation_data.txt")
	if result.File != wantFile {
		t.Errorf("file: got %q, want %q", result.File, wantFile)
	}
	if _, err := os.Stat(wantFile); err != nil {
		t.Errorf("report file not written: %v", err)
	}
}

func TestHandleToolsCall_PerforationReport_ReusesAnalysis(t *testing.T) {
	s := New()
	path := createTestScanFile(t, 60, 60, color.RGBA{10, 10, 10, 255})
	defer os.Remove(path)

	s.rememberAnalysis(path, samplePerfAnalysis())

	resp := callTool(t, s, "perforation_report", map[string]interface{}{"path": path})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if !strings.Contains(resultText(t, resp), "Overall Gauge: 14") {
		t.Error("report did not use the remembered analysis")
	}
}
