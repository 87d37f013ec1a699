package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load a stamp scan and return its dimensions and format. Caches the image for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file (PNG, JPEG, GIF, TIFF, or BMP)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Perforation Analysis
		{
			Name:        "perforation_measure",
			Description: "Measure the perforation gauge of a stamp scan. The image must be pre-cropped to the stamp. Returns per-edge gauges, overall gauge in catalog notation, compound-perforation detection, quality assessment, and anomaly warnings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the stamp scan",
					},
					"dpi": map[string]interface{}{
						"type":        "integer",
						"description": "Scan resolution in dots per inch (typically 300-2400). Default 600",
						"default":     600,
					},
					"background": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"black", "dark_gray", "white", "light_gray", "auto"},
						"description": "Scanner mat color behind the stamp. 'auto' estimates it from the image border. Default black",
						"default":     "black",
					},
					"method": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"hole", "line"},
						"description": "Detection strategy: 'hole' finds circular holes (clean scans), 'line' traces the scalloped edge line (damaged or irregular perforations). Default hole",
						"default":     "hole",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "perforation_background",
			Description: "Estimate the scanner mat color (black, dark_gray, light_gray, or white) from the border of a stamp scan.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the stamp scan",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "perforation_report",
			Description: "Render the data-logger text report for a previously measured scan (or measure it first with defaults). Optionally writes the report to a file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the stamp scan",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional directory to write <image>_perforation_data.txt into",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}
