package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/synthtext-mcp/internal/colorize"
	"github.com/ironsheep/synthtext-mcp/internal/config"
	"github.com/ironsheep/synthtext-mcp/internal/imaging"
	"github.com/ironsheep/synthtext-mcp/internal/ocr"
	"github.com/ironsheep/synthtext-mcp/internal/random"
	"github.com/ironsheep/synthtext-mcp/internal/scene"
	"github.com/ironsheep/synthtext-mcp/internal/synth"
	"github.com/ironsheep/synthtext-mcp/internal/text"
)

// Server handles MCP protocol communication. Requests are handled one at a
// time, so the renderer is never used concurrently.
type Server struct {
	cfg      config.Config
	cache    *imaging.ImageCache
	renderer *synth.Renderer
	readers  map[string]ocr.Recognizer
	logger   *log.Logger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server rendering with cfg. The renderer's random
// source follows cfg.Debug and cfg.Seed and persists across calls.
func New(cfg config.Config) (*Server, error) {
	r, err := newPipeline(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		cache:    imaging.NewImageCache(),
		renderer: r,
		readers:  make(map[string]ocr.Recognizer),
		logger:   log.Default(),
	}, nil
}

// newPipeline wires the default collaborators to one shared random source.
func newPipeline(cfg config.Config) (*synth.Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	src := random.New(cfg.Debug, cfg.Seed)
	glyphs, err := text.New(cfg.Text, src)
	if err != nil {
		return nil, fmt.Errorf("glyph renderer: %w", err)
	}
	return synth.New(cfg, synth.Deps{
		Projector: scene.PinholeProjector{Focal: cfg.Scene.FocalLength},
		Finder:    scene.NewPlaneFinder(cfg.Scene),
		Glyphs:    glyphs,
		Colorizer: colorize.New(cfg.Color, src),
	}, synth.WithSource(src), synth.WithLogger(log.Default()))
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve handles newline-delimited JSON-RPC requests from r until EOF.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "synthtext-mcp",
				"version": "0.1.0",
			},
		},
	}
}
