package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// boxArraySchema describes a 2x4xn box array: [x|y][corner][box].
func boxArraySchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"minItems":    2,
		"maxItems":    2,
		"items": map[string]interface{}{
			"type":     "array",
			"minItems": 4,
			"maxItems": 4,
			"items": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "number"},
			},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Rendering
		{
			Name:        "synth_render",
			Description: "Composite perspective-correct text onto planar surfaces of an image. Writes <name>_<k>.png and <name>_<k>.json (charBB, wordBB, txt) per snapshot; snapshots of one instance accumulate text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the color image",
					},
					"depth": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the depth PNG (same size as the image)",
					},
					"segmentation": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the segmentation PNG (same size as the image)",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for rendered images and annotations",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Output file prefix. Default: image file name without extension",
					},
					"instances": map[string]interface{}{
						"type":        "integer",
						"description": "Number of independent renders of the scene. Default 1",
						"default":     1,
					},
					"depth_scale": map[string]interface{}{
						"type":        "number",
						"description": "Multiplier from stored depth values to scene units. Default from config",
					},
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Optional seed for this call; omit to continue the server's random stream",
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Return a base64 PNG thumbnail of the last snapshot",
						"default":     false,
					},
				},
				"required": []string{"image", "depth", "segmentation", "output_dir"},
			},
		},

		// Geometry
		{
			Name:        "synth_word_boxes",
			Description: "Aggregate character boxes into one oriented box per word, with corners matched to the text direction.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"charBB": boxArraySchema("Character boxes, one per non-whitespace character"),
					"txt": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Text blocks; joined with spaces before splitting into words",
					},
				},
				"required": []string{"charBB", "txt"},
			},
		},
		{
			Name:        "synth_transform_points",
			Description: "Apply a 3x3 homography to every corner of a box array.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"boxes": boxArraySchema("Boxes to transform"),
					"homography": map[string]interface{}{
						"type":        "array",
						"description": "Row-major 3x3 matrix",
						"items": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "number"},
						},
					},
					"offset": map[string]interface{}{
						"type":        "array",
						"description": "Optional [x, y] added to each corner before transforming",
						"items":       map[string]interface{}{"type": "number"},
					},
				},
				"required": []string{"boxes", "homography"},
			},
		},

		// OCR
		{
			Name:        "synth_verify",
			Description: "Read back each rendered word with Tesseract OCR and report which words are legible.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a rendered image",
					},
					"annotations": map[string]interface{}{
						"type":        "string",
						"description": "Annotation JSON written by synth_render. Default: image path with .json extension",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Default: eng",
						"default":     "eng",
					},
					"max_distance": map[string]interface{}{
						"type":        "integer",
						"description": "Edit distance at which a word still counts as read. Default 0",
						"default":     0,
					},
				},
				"required": []string{"image"},
			},
		},

		// Configuration
		{
			Name:        "synth_config",
			Description: "Return the active configuration and OCR availability, optionally saving the configuration as JSON.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"save": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write the configuration to",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
