package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/synthtext-mcp/internal/geometry"
	"github.com/ironsheep/synthtext-mcp/internal/imaging"
	"github.com/ironsheep/synthtext-mcp/internal/ocr"
	"github.com/ironsheep/synthtext-mcp/internal/synth"
)

// Word crops handed to OCR are padded and upscaled; Tesseract reads small
// text poorly.
const (
	verifyPad   = 4
	verifyScale = 2.0
	previewSize = 512
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "synth_render").
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
	case "synth_render":
		return s.handleSynthRender(args)
	case "synth_word_boxes":
		return s.handleSynthWordBoxes(args)
	case "synth_transform_points":
		return s.handleSynthTransformPoints(args)
	case "synth_verify":
		return s.handleSynthVerify(args)
	case "synth_config":
		return s.handleSynthConfig(args)
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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// annotation is the label file written next to every rendered snapshot.
type annotation struct {
	CharBB [][][]float64 `json:"charBB"` // 2x4xn
	WordBB [][][]float64 `json:"wordBB"` // 2x4xm
	Txt    []string      `json:"txt"`
}

func readAnnotation(path string) (*annotation, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations: %w", err)
	}
	var a annotation
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("failed to decode annotations %s: %w", filepath.Base(path), err)
	}
	return &a, nil
}

func writeAnnotation(path string, a *annotation) error {
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// === Rendering ===

type synthRenderArgs struct {
	Image        string  `json:"image"`
	Depth        string  `json:"depth"`
	Segmentation string  `json:"segmentation"`
	OutputDir    string  `json:"output_dir"`
	Name         string  `json:"name"`
	Instances    int     `json:"instances"`
	DepthScale   float64 `json:"depth_scale"`
	Seed         *uint64 `json:"seed"`
	Preview      bool    `json:"preview"`
}

type snapshotInfo struct {
	Instance    int      `json:"instance"`
	Image       string   `json:"image"`
	Annotations string   `json:"annotations"`
	Chars       int      `json:"num_chars"`
	Words       int      `json:"num_words"`
	Text        []string `json:"txt"`
}

type synthRenderResult struct {
	Labels    int                 `json:"labels"` // Non-background segmentation labels
	Snapshots []snapshotInfo      `json:"snapshots"`
	Preview   *imaging.CropResult `json:"preview,omitempty"`
}

func (s *Server) handleSynthRender(args json.RawMessage) (interface{}, error) {
	var a synthRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Image == "" || a.Depth == "" || a.Segmentation == "" || a.OutputDir == "" {
		return nil, errors.New("image, depth, segmentation and output_dir are required")
	}
	if a.Instances == 0 {
		a.Instances = 1
	}
	if a.Instances < 0 {
		return nil, fmt.Errorf("instances must be positive, got %d", a.Instances)
	}
	if a.DepthScale == 0 {
		a.DepthScale = s.cfg.Scene.DepthScale
	}
	if a.Name == "" {
		a.Name = strings.TrimSuffix(filepath.Base(a.Image), filepath.Ext(a.Image))
	}

	renderer := s.renderer
	if a.Seed != nil {
		cfg := s.cfg
		cfg.Seed = *a.Seed
		r, err := newPipeline(cfg)
		if err != nil {
			return nil, err
		}
		renderer = r
	}

	sc, err := imaging.LoadScene(s.cache, a.Image, a.Depth, a.Segmentation, a.DepthScale)
	if err != nil {
		return nil, err
	}
	snaps, err := renderer.Render(sc.RGB, sc.Depth, sc.Seg, sc.Area, sc.Labels, a.Instances)
	if err != nil {
		return nil, err
	}

	res := &synthRenderResult{Labels: len(sc.Labels), Snapshots: make([]snapshotInfo, 0, len(snaps))}
	for k, snap := range snaps {
		info, err := saveSnapshot(a.OutputDir, fmt.Sprintf("%s_%d", a.Name, k), snap)
		if err != nil {
			return nil, err
		}
		res.Snapshots = append(res.Snapshots, *info)
	}
	if a.Preview && len(snaps) > 0 {
		res.Preview, err = imaging.Encode(imaging.Thumbnail(snaps[len(snaps)-1].Image, previewSize))
		if err != nil {
			return nil, err
		}
	}
	s.logger.Printf("rendered %s: %d snapshots", a.Name, len(snaps))
	return res, nil
}

func saveSnapshot(dir, base string, snap synth.Snapshot) (*snapshotInfo, error) {
	imgPath := filepath.Join(dir, base+".png")
	if err := imaging.SavePNG(imgPath, snap.Image); err != nil {
		return nil, err
	}
	annPath := filepath.Join(dir, base+".json")
	err := writeAnnotation(annPath, &annotation{
		CharBB: snap.CharBoxes.Array(),
		WordBB: snap.WordBoxes.Array(),
		Txt:    snap.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write annotations: %w", err)
	}
	return &snapshotInfo{
		Instance:    snap.Instance,
		Image:       imgPath,
		Annotations: annPath,
		Chars:       len(snap.CharBoxes),
		Words:       len(snap.WordBoxes),
		Text:        snap.Text,
	}, nil
}

// === Geometry ===

type synthWordBoxesArgs struct {
	CharBB [][][]float64 `json:"charBB"`
	Txt    []string      `json:"txt"`
}

func (s *Server) handleSynthWordBoxes(args json.RawMessage) (interface{}, error) {
	var a synthWordBoxesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	boxes, err := geometry.BoxesFromArray(a.CharBB)
	if err != nil {
		return nil, err
	}
	text := strings.Join(a.Txt, " ")
	words, err := synth.CharToWordBoxes(boxes, text)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"wordBB": words.Array(),
		"words":  strings.Fields(text),
	}, nil
}

type synthTransformPointsArgs struct {
	Boxes      [][][]float64 `json:"boxes"`
	Homography [3][3]float64 `json:"homography"`
	Offset     *[2]float64   `json:"offset"`
}

func (s *Server) handleSynthTransformPoints(args json.RawMessage) (interface{}, error) {
	var a synthTransformPointsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	boxes, err := geometry.BoxesFromArray(a.Boxes)
	if err != nil {
		return nil, err
	}
	var off *geometry.Point
	if a.Offset != nil {
		off = &geometry.Point{X: a.Offset[0], Y: a.Offset[1]}
	}
	out := geometry.TransformPoints(boxes, geometry.Homography(a.Homography), off)
	return map[string]interface{}{
		"boxes": out.Array(),
	}, nil
}

// === OCR ===

type synthVerifyArgs struct {
	Image       string `json:"image"`
	Annotations string `json:"annotations"`
	Language    string `json:"language"`
	MaxDistance int    `json:"max_distance"`
}

func (s *Server) handleSynthVerify(args json.RawMessage) (interface{}, error) {
	var a synthVerifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = "eng"
	}
	if a.Annotations == "" {
		a.Annotations = strings.TrimSuffix(a.Image, filepath.Ext(a.Image)) + ".json"
	}

	ann, err := readAnnotation(a.Annotations)
	if err != nil {
		return nil, err
	}
	words, err := geometry.BoxesFromArray(ann.WordBB)
	if err != nil {
		return nil, err
	}

	rec, err := s.reader(a.Language)
	if err != nil {
		return nil, err
	}
	// Rendered files are rewritten between calls; never trust a cached copy.
	s.cache.Evict(a.Image)
	img, err := s.cache.Load(a.Image)
	if err != nil {
		return nil, err
	}
	defer s.cache.Evict(a.Image)

	v := ocr.NewVerifier(rec, verifyPad, verifyScale, a.MaxDistance)
	return v.Verify(img, words, strings.Join(ann.Txt, " "))
}

// reader returns the recognizer for language, creating it on first use.
func (s *Server) reader(language string) (ocr.Recognizer, error) {
	if r, ok := s.readers[language]; ok {
		return r, nil
	}
	t, err := ocr.NewTesseract(language)
	if err != nil {
		return nil, err
	}
	s.readers[language] = t
	return t, nil
}

// === Configuration ===

type synthConfigArgs struct {
	Save string `json:"save"`
}

func (s *Server) handleSynthConfig(args json.RawMessage) (interface{}, error) {
	var a synthConfigArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	if a.Save != "" {
		if err := s.cfg.Save(a.Save); err != nil {
			return nil, err
		}
	}
	return map[string]interface{}{
		"config": s.cfg,
		"ocr":    ocr.GetOCRInfo(),
	}, nil
}
