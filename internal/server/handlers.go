package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/philatools/perf-gauge-mcp/internal/imaging"
	"github.com/philatools/perf-gauge-mcp/internal/perforation"
	"github.com/philatools/perf-gauge-mcp/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "perforation_measure").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "perforation_measure":
		return s.handlePerforationMeasure(args)
	case "perforation_background":
		return s.handlePerforationBackground(args)
	case "perforation_report":
		return s.handlePerforationReport(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Perforation Handlers ===

type measureArgs struct {
	Path       string `json:"path"`
	DPI        int    `json:"dpi"`
	Background string `json:"background"`
	Method     string `json:"method"`
}

// engineFor builds an engine from tool arguments, resolving defaults
// and the "auto" background setting.
func (s *Server) engineFor(a measureArgs) (*perforation.Engine, error) {
	if a.DPI == 0 {
		a.DPI = 600
	}
	if a.DPI < 0 {
		return nil, fmt.Errorf("dpi must be positive, got %d", a.DPI)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	background := perforation.Background(a.Background)
	switch a.Background {
	case "", "black":
		background = perforation.BackgroundBlack
	case "auto":
		background = perforation.EstimateBackground(img)
	case "dark_gray", "white", "light_gray":
	default:
		return nil, fmt.Errorf("unknown background %q", a.Background)
	}

	engine := perforation.NewEngine(a.DPI, background)
	switch strings.ToLower(a.Method) {
	case "", "hole":
		engine.Method = perforation.MethodHole
	case "line":
		engine.Method = perforation.MethodLine
	default:
		return nil, fmt.Errorf("unknown method %q", a.Method)
	}
	return engine, nil
}

func (s *Server) handlePerforationMeasure(args json.RawMessage) (interface{}, error) {
	var a measureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	engine, err := s.engineFor(a)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	analysis := engine.Measure(img)
	s.rememberAnalysis(a.Path, analysis)
	return analysis, nil
}

func (s *Server) handlePerforationBackground(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"background": string(perforation.EstimateBackground(img)),
	}, nil
}

type reportArgs struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
}

// reportResult carries the rendered report and, when requested, the
// path it was written to.
type reportResult struct {
	Report string `json:"report"`
	File   string `json:"file,omitempty"`
}

func (s *Server) handlePerforationReport(args json.RawMessage) (interface{}, error) {
	var a reportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	analysis, ok := s.recallAnalysis(a.Path)
	if !ok {
		// Not yet measured in this session: measure with defaults.
		result, err := s.handlePerforationMeasure(mustRawMessage(measureArgs{Path: a.Path}))
		if err != nil {
			return nil, err
		}
		analysis = result.(perforation.Analysis)
	}

	var rendered strings.Builder
	if err := report.WriteText(&rendered, analysis, a.Path); err != nil {
		return nil, err
	}

	res := reportResult{Report: rendered.String()}
	if a.OutputDir != "" {
		path, err := report.WriteTextFile(a.OutputDir, a.Path, analysis)
		if err != nil {
			return nil, err
		}
		res.File = path
	}
	return res, nil
}

func mustRawMessage(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
