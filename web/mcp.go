package web

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/visionparse/visionparse/config"
	"github.com/visionparse/visionparse/convert"
	"github.com/visionparse/visionparse/export"
	"github.com/visionparse/visionparse/kit"
)

// RegisterMCP registers the conversion tools on an MCP server.
func (s *Server) RegisterMCP(srv *mcp.Server) {
	s.registerConvertTool(srv)
	s.registerDetectTool(srv)
	s.registerFormatsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	sc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sc["required"] = required
	}
	return sc
}

// --- convert ---

type mcpConvertReq struct {
	Name         string  `json:"name"`
	Data         string  `json:"data"` // base64-encoded file content
	DocType      string  `json:"doc_type,omitempty"`
	OutputFormat string  `json:"output_format,omitempty"`
	OCR          bool    `json:"ocr,omitempty"`
	ImageScale   float64 `json:"image_scale,omitempty"`
}

func (s *Server) registerConvertTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "visionparse_convert",
		Description: "Convert a document (pdf, docx, xlsx, pptx, html, image, markdown, asciidoc, csv) to markdown, JSON or YAML.",
		InputSchema: inputSchema(map[string]any{
			"name":          map[string]any{"type": "string", "description": "Filename including extension"},
			"data":          map[string]any{"type": "string", "description": "Base64-encoded file content"},
			"doc_type":      map[string]any{"type": "string", "description": "Document type; detected from the extension when omitted"},
			"output_format": map[string]any{"type": "string", "description": "markdown, json or yaml (default markdown)"},
			"ocr":           map[string]any{"type": "boolean", "description": "Run OCR on images and image-heavy PDFs"},
			"image_scale":   map[string]any{"type": "number", "description": "Resolution multiplier for OCR rasterization"},
		}, []string{"name", "data"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*mcpConvertReq)

		data, err := base64.StdEncoding.DecodeString(r.Data)
		if err != nil {
			return nil, err
		}
		up := convert.Upload{Name: r.Name, Size: int64(len(data)), Data: data}

		st := convert.Settings{
			DocType:      config.DocumentType(r.DocType),
			OutputFormat: r.OutputFormat,
			OCR:          r.OCR,
			ImageScale:   r.ImageScale,
		}
		if st.DocType == "" {
			st.DocType, err = convert.DetectType(s.cfg, r.Name)
			if err != nil {
				return nil, err
			}
		}
		if st.OutputFormat == "" {
			st.OutputFormat = config.FormatMarkdown
		}
		if st.ImageScale <= 0 {
			st.ImageScale = s.cfg.DefaultImageScale
		}

		doc, err := convert.ProcessDocument(ctx, up, st, s.cfg)
		if err != nil {
			return nil, err
		}
		res, err := export.ByFormat(doc, st.OutputFormat)
		if err != nil {
			return nil, err
		}
		return convertResponse{
			Filename:    res.Filename,
			ContentType: res.ContentType,
			Content:     string(res.Content),
			Title:       doc.Title,
			DocType:     doc.DocType,
			Pages:       doc.Pages,
			Sections:    len(doc.Sections),
			OCRApplied:  doc.OCRApplied,
			Quality:     doc.Quality,
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r mcpConvertReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				return kit.WithTransport(ctx, "mcp_stdio")
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- detect ---

type mcpDetectReq struct {
	Name string `json:"name"`
}

func (s *Server) registerDetectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "visionparse_detect",
		Description: "Detect the document type of a filename from its extension.",
		InputSchema: inputSchema(map[string]any{
			"name": map[string]any{"type": "string", "description": "Filename to detect"},
		}, []string{"name"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*mcpDetectReq)
		t, err := convert.DetectType(s.cfg, r.Name)
		if err != nil {
			return nil, err
		}
		return map[string]any{"doc_type": string(t)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r mcpDetectReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- formats ---

func (s *Server) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "visionparse_formats",
		Description: "List the supported document types and output formats.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		types := map[string][]string{}
		for _, t := range s.cfg.Types() {
			types[string(t)] = s.cfg.SupportedTypes[t]
		}
		return map[string]any{
			"types":          types,
			"output_formats": s.cfg.OutputFormats,
		}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
