// Package server implements the MCP (Model Context Protocol) server for the
// synthetic text compositor.
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
//   - synth_render: Render text onto a scene and write images plus annotations
//   - synth_word_boxes: Aggregate character boxes into word boxes
//   - synth_transform_points: Apply a homography to a box array
//   - synth_verify: OCR the words of a rendered image
//   - synth_config: Show (and optionally save) the active configuration
//
// # Annotations
//
// synth_render writes one PNG and one JSON file per snapshot, named
// <name>_<k> with k counting snapshots across all instances. The JSON holds
// charBB and wordBB as 2x4xn arrays ([x|y][corner][box], corners clockwise
// from top-left) and txt, the text blocks placed so far in that instance.
//
// # Randomness
//
// The renderer keeps one random stream for the lifetime of the process, so
// repeated calls give different renders. A call with an explicit seed uses a
// fresh stream and is reproducible. Requests are handled sequentially.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
