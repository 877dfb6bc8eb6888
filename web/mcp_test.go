package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/visionparse/visionparse/config"
)

var testMCPImpl = &mcp.Implementation{Name: "visionparse-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	server := NewServer(config.Default(), nil)
	srv := mcp.NewServer(testMCPImpl, nil)
	server.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

func TestMCP_Formats(t *testing.T) {
	session := mcpSession(t)

	text := mcpCallTool(t, session, "visionparse_formats", map[string]any{})

	var resp struct {
		Types         map[string][]string `json:"types"`
		OutputFormats []string            `json:"output_formats"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Types) != 9 {
		t.Errorf("expected 9 types, got %d: %v", len(resp.Types), resp.Types)
	}
	if len(resp.OutputFormats) != 3 {
		t.Errorf("expected 3 output formats, got %v", resp.OutputFormats)
	}
}

func TestMCP_Detect(t *testing.T) {
	session := mcpSession(t)

	tests := []struct {
		name    string
		docType string
	}{
		{"report.docx", "docx"},
		{"readme.md", "markdown"},
		{"page.html", "html"},
		{"manual.pdf", "pdf"},
		{"scan.png", "image"},
	}
	for _, tt := range tests {
		text := mcpCallTool(t, session, "visionparse_detect", map[string]any{"name": tt.name})
		var resp struct {
			DocType string `json:"doc_type"`
		}
		json.Unmarshal([]byte(text), &resp)
		if resp.DocType != tt.docType {
			t.Errorf("detect(%q) = %q, want %q", tt.name, resp.DocType, tt.docType)
		}
	}
}

func TestMCP_Convert_Markdown(t *testing.T) {
	session := mcpSession(t)

	src := "# Title\n\nParagraph text here.\n"
	text := mcpCallTool(t, session, "visionparse_convert", map[string]any{
		"name": "readme.md",
		"data": base64.StdEncoding.EncodeToString([]byte(src)),
	})

	var resp convertResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Title != "Title" {
		t.Errorf("title: got %q", resp.Title)
	}
	if resp.Filename != "readme.md" {
		t.Errorf("filename: got %q", resp.Filename)
	}
	if resp.Content == "" {
		t.Error("expected non-empty content")
	}
}
