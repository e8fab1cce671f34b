// Package server exposes the annotation pipeline as an MCP (Model Context
// Protocol) tool server.
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
// Annotation:
//   - annotate_image: Detect the object and write a VOC document
//   - annotate_batch: Annotate every image in a directory
//   - annotation_read: Parse a VOC document
//
// Basic Image Information:
//   - image_load: Dimensions, depth and format
//   - image_dimensions: Width and height
//
// Inspection:
//   - image_segment_preview: Foreground mask for a threshold
//   - image_annotation_preview: Selected box drawn on the image, or cropped
//   - image_background_check: Border colour and lightness
//
// Dataset:
//   - dataset_copy: Copy image/annotation pairs, optionally split train/test
//
// # Image Caching
//
// Inspection calls load images through an in-memory cache keyed by path.
// Entries for images overwritten by dataset_copy are evicted. annotate_image
// and annotate_batch always read from disk.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed: <kind>", kind being one of
//     image_decode, no_foreground, write, invalid, canceled or internal
//   - data: the Go error string
//
// # Usage
//
//	srv := server.New(server.Options{Annotator: annotator})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
