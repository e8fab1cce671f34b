package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/voc-autolabel/internal/dataset"
	"github.com/ironsheep/voc-autolabel/internal/detection"
	"github.com/ironsheep/voc-autolabel/internal/imaging"
	"github.com/ironsheep/voc-autolabel/internal/pipeline"
	"github.com/ironsheep/voc-autolabel/internal/segment"
	"github.com/ironsheep/voc-autolabel/internal/voc"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "annotate_image", "image_load").
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
// Tool execution errors return a JSON-RPC error response with code -32000
// and the pipeline error kind in the message.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed: "+pipeline.Kind(err), err.Error())
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Annotation
	case "annotate_image":
		return s.handleAnnotateImage(args)
	case "annotate_batch":
		return s.handleAnnotateBatch(ctx, args)
	case "annotation_read":
		return s.handleAnnotationRead(args)

	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Inspection
	case "image_segment_preview":
		return s.handleSegmentPreview(args)
	case "image_annotation_preview":
		return s.handleAnnotationPreview(args)
	case "image_background_check":
		return s.handleBackgroundCheck(args)

	// Dataset
	case "dataset_copy":
		return s.handleDatasetCopy(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// annotatorFor returns the server annotator, or a copy using threshold when
// one was given.
func (s *Server) annotatorFor(threshold *int) (*pipeline.Annotator, error) {
	if threshold == nil {
		return s.annotator, nil
	}
	if *threshold < 0 || *threshold > 255 {
		return nil, fmt.Errorf("threshold %d outside 0-255", *threshold)
	}
	return s.annotator.WithThreshold(uint8(*threshold)), nil
}

func requirePath(p string) error {
	if p == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// === Annotation Handlers ===

type annotateImageArgs struct {
	Path       string `json:"path"`
	Label      string `json:"label"`
	OutputPath string `json:"output_path"`
	Threshold  *int   `json:"threshold"`
}

type annotateImageResult struct {
	*pipeline.Outcome
	OutputPath string `json:"output_path"`
	Label      string `json:"label"`
}

func (s *Server) handleAnnotateImage(args json.RawMessage) (interface{}, error) {
	var a annotateImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	ann, err := s.annotatorFor(a.Threshold)
	if err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		a.OutputPath = voc.OutputPath(a.Path, "")
	}

	// Annotations always read the file as it is now; the cache serves
	// inspection only.
	out, err := ann.GenerateAnnotation(a.Path, a.OutputPath, a.Label)
	if err != nil {
		return nil, err
	}

	return &annotateImageResult{
		Outcome:    out,
		OutputPath: a.OutputPath,
		Label:      out.Annotation.Objects[0].Name,
	}, nil
}

type annotateBatchArgs struct {
	Dir       string `json:"dir"`
	Label     string `json:"label"`
	OutputDir string `json:"output_dir"`
	Workers   int    `json:"workers"`
	Threshold *int   `json:"threshold"`
}

type batchItem struct {
	Image  string         `json:"image"`
	Output string         `json:"output"`
	Box    *detection.Box `json:"box,omitempty"`
	Kind   string         `json:"kind,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type annotateBatchResult struct {
	Summary pipeline.Summary `json:"summary"`
	Results []batchItem      `json:"results"`
}

func (s *Server) handleAnnotateBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a annotateBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	ann, err := s.annotatorFor(a.Threshold)
	if err != nil {
		return nil, err
	}
	if a.Workers <= 0 {
		a.Workers = s.workers
	}

	jobs, err := pipeline.JobsFromDir(a.Dir, a.OutputDir, a.Label)
	if err != nil {
		return nil, err
	}
	results := ann.RunBatch(ctx, jobs, a.Workers)

	items := make([]batchItem, len(results))
	for i, r := range results {
		items[i] = batchItem{Image: r.Job.ImagePath, Output: r.Job.OutputPath}
		if r.Err != nil {
			items[i].Kind = pipeline.Kind(r.Err)
			items[i].Error = r.Err.Error()
			continue
		}
		box := r.Box
		items[i].Box = &box
	}

	return &annotateBatchResult{
		Summary: pipeline.Summarize(results),
		Results: items,
	}, nil
}

type annotationReadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleAnnotationRead(args json.RawMessage) (interface{}, error) {
	var a annotationReadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return voc.ReadFile(a.Path)
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
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Inspection Handlers ===

type segmentPreviewArgs struct {
	Path      string `json:"path"`
	Threshold *int   `json:"threshold"`
}

func (s *Server) handleSegmentPreview(args json.RawMessage) (interface{}, error) {
	var a segmentPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	ann, err := s.annotatorFor(a.Threshold)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return segment.MaskPreview(segment.Segment(img.Pixels, ann.Threshold()))
}

type annotationPreviewArgs struct {
	Path      string  `json:"path"`
	Threshold *int    `json:"threshold"`
	Color     string  `json:"color"`
	Thickness int     `json:"thickness"`
	Crop      bool    `json:"crop"`
	Scale     float64 `json:"scale"`
}

type annotationPreviewResult struct {
	Box     detection.Box `json:"box"`
	Regions int           `json:"regions"`
	*imaging.PreviewResult
}

// previewLabel stands in for the class name when only the box is needed.
const previewLabel = "preview"

func (s *Server) handleAnnotationPreview(args json.RawMessage) (interface{}, error) {
	var a annotationPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	ann, err := s.annotatorFor(a.Threshold)
	if err != nil {
		return nil, err
	}
	if a.Thickness == 0 {
		a.Thickness = 2
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := ann.Annotate(img, previewLabel)
	if err != nil {
		return nil, err
	}

	var preview *imaging.PreviewResult
	if a.Crop {
		preview, err = imaging.CropBox(img.Pixels, out.Box, a.Scale)
	} else {
		preview, err = imaging.DrawBox(img.Pixels, out.Box, a.Color, a.Thickness)
	}
	if err != nil {
		return nil, err
	}

	return &annotationPreviewResult{
		Box:           out.Box,
		Regions:       out.Regions,
		PreviewResult: preview,
	}, nil
}

func (s *Server) handleBackgroundCheck(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return segment.BackgroundReport(img.Pixels), nil
}

// === Dataset Handlers ===

type datasetCopyArgs struct {
	SrcDir    string   `json:"src_dir"`
	DstDir    string   `json:"dst_dir"`
	Files     []string `json:"files"`
	TestRatio float64  `json:"test_ratio"`
}

type datasetCopyResult struct {
	Train *dataset.CopyResult `json:"train"`
	Test  *dataset.CopyResult `json:"test,omitempty"`
}

func (s *Server) handleDatasetCopy(args json.RawMessage) (interface{}, error) {
	var a datasetCopyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.SrcDir == "" || a.DstDir == "" {
		return nil, fmt.Errorf("src_dir and dst_dir are required")
	}

	if a.TestRatio == 0 {
		res, err := dataset.CopyPairs(a.Files, a.SrcDir, a.DstDir)
		s.evictCopied(a.DstDir, res)
		if err != nil {
			return nil, err
		}
		return &datasetCopyResult{Train: res}, nil
	}

	train, test, err := dataset.Split(a.Files, a.TestRatio)
	if err != nil {
		return nil, err
	}

	out := &datasetCopyResult{}
	for _, part := range []struct {
		name  string
		files []string
		dst   **dataset.CopyResult
	}{
		{"train", train, &out.Train},
		{"test", test, &out.Test},
	} {
		dir := filepath.Join(a.DstDir, part.name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		res, err := dataset.CopyPairs(part.files, a.SrcDir, dir)
		s.evictCopied(dir, res)
		if err != nil {
			return nil, err
		}
		*part.dst = res
	}
	return out, nil
}

// evictCopied drops cache entries for images that were just overwritten.
func (s *Server) evictCopied(dir string, res *dataset.CopyResult) {
	if res == nil {
		return
	}
	for _, name := range res.Copied {
		s.cache.Evict(filepath.Join(dir, name))
	}
}
