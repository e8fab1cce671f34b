package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

var thresholdProperty = map[string]interface{}{
	"type":        "integer",
	"minimum":     0,
	"maximum":     255,
	"description": "Gray level at or below which a pixel is foreground. Defaults to the server setting (240).",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Annotation
		{
			Name:        "annotate_image",
			Description: "Find the largest dark object on a light background and write a PASCAL VOC annotation for it. Returns the bounding box (inclusive pixel coordinates) and the output path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Object class name written to <name>. Defaults to the server label.",
					},
					"output_path": pathProperty("Where to write the annotation. Defaults to the image path with an .xml extension"),
					"threshold":   thresholdProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "annotate_batch",
			Description: "Annotate every supported image directly inside a directory. Failures are reported per image and do not stop the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": pathProperty("Absolute path to the directory of images"),
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Object class name for every image. Defaults to the server label.",
					},
					"output_dir": pathProperty("Directory for the annotations. Defaults to next to each image"),
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Number of images processed in parallel. Defaults to the server setting.",
					},
					"threshold": thresholdProperty,
				},
				"required": []string{"dir"},
			},
		},
		{
			Name:        "annotation_read",
			Description: "Parse a PASCAL VOC annotation document and return its fields.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the .xml annotation"),
				},
				"required": []string{"path"},
			},
		},

		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, channel depth and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
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
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Inspection
		{
			Name:        "image_segment_preview",
			Description: "Threshold an image and return the foreground mask as base64 PNG (foreground white). Use this to tune the threshold before annotating.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty("Absolute path to the image file"),
					"threshold": thresholdProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_annotation_preview",
			Description: "Run detection without writing anything and return the image with the selected box drawn on it, or the cropped object when crop is true.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty("Absolute path to the image file"),
					"threshold": thresholdProperty,
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Box colour as #RRGGBB or #RRGGBBAA. Default #FF0000",
						"default":     "#FF0000",
					},
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Outline width in pixels. Default 2",
						"default":     2,
					},
					"crop": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the cropped object instead of the outlined image",
						"default":     false,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for the crop. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_background_check",
			Description: "Report the mean colour and lightness of the image border. Annotation assumes a near-white background.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Dataset
		{
			Name:        "dataset_copy",
			Description: "Copy images and their .xml annotations from one directory to another. With test_ratio, files are split deterministically into train/ and test/ subdirectories of the destination.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"src_dir": pathProperty("Directory holding the images and annotations"),
					"dst_dir": pathProperty("Destination directory"),
					"files": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Image file names relative to src_dir",
					},
					"test_ratio": map[string]interface{}{
						"type":             "number",
						"minimum":          0,
						"exclusiveMaximum": 1,
						"description":      "Fraction of files placed in test/. Default 0 copies everything into dst_dir",
					},
				},
				"required": []string{"src_dir", "dst_dir", "files"},
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
