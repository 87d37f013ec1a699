// Package server implements the MCP (Model Context Protocol) server for
// perforation gauge measurement.
//
// This package provides a JSON-RPC 2.0 server that exposes stamp perforation
// analysis through the MCP protocol. It's designed to work with Claude and
// other MCP-compatible clients, enabling AI systems to measure perforation
// gauges from scanned stamp images.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load a scan and get metadata
//   - image_dimensions: Get width and height
//
// Perforation Analysis:
//   - perforation_measure: Detect perforation holes on all four edges and
//     compute the catalog gauge
//   - perforation_background: Estimate the scan background type
//   - perforation_report: Render (and optionally save) a text report for
//     the most recent measurement of an image
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded scans. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The server also remembers the latest analysis per path so a report can be
// produced without re-running detection.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Note that perforation_measure itself never fails on measurement problems:
// an unmeasurable scan produces an analysis with gauge "unknown" and
// explanatory warnings. Only I/O and argument errors surface as JSON-RPC
// errors.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
