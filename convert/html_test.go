package convert

import (
	"context"
	"strings"
	"testing"

	"github.com/visionparse/visionparse/config"
)

func TestConvertHTML(t *testing.T) {
	src := `<!DOCTYPE html>
<html><head><title>Service Handbook</title><script>alert(1)</script></head>
<body>
<h1>Welcome</h1>
<p>This is the intro.</p>
<h2>Details</h2>
<ul><li>first</li><li>second</li></ul>
</body></html>`

	up := Upload{Name: "page.html", Size: int64(len(src)), Data: []byte(src)}
	st := Settings{DocType: config.TypeHTML, OutputFormat: config.FormatMarkdown}

	doc, err := ProcessDocument(context.Background(), up, st, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Service Handbook" {
		t.Fatalf("title: got %q", doc.Title)
	}
	if doc.Markdown == "" {
		t.Fatal("expected a markdown rendering for html input")
	}
	if strings.Contains(doc.Markdown, "alert(1)") {
		t.Fatal("script content leaked into markdown")
	}

	var joined strings.Builder
	for _, sec := range doc.Sections {
		joined.WriteString(sec.Type + ":" + sec.Text + "\n")
	}
	out := joined.String()
	if !strings.Contains(out, "heading:Welcome") {
		t.Fatalf("missing h1 section:\n%s", out)
	}
	if !strings.Contains(out, "paragraph:This is the intro.") {
		t.Fatalf("missing paragraph section:\n%s", out)
	}
	if !strings.Contains(out, "list:first second") {
		t.Fatalf("missing list section:\n%s", out)
	}
	if strings.Contains(out, "alert(1)") {
		t.Fatalf("script leaked into sections:\n%s", out)
	}
}

func TestConvertHTML_TitleFallsBackToHeading(t *testing.T) {
	src := `<html><body><h1>Only Heading</h1><p>text</p></body></html>`
	up := Upload{Name: "page.html", Size: int64(len(src)), Data: []byte(src)}
	st := Settings{DocType: config.TypeHTML, OutputFormat: config.FormatMarkdown}

	doc, err := ProcessDocument(context.Background(), up, st, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Only Heading" {
		t.Fatalf("title: got %q", doc.Title)
	}
}

func TestConvertHTML_Empty(t *testing.T) {
	src := `<html><head><script>x()</script></head><body></body></html>`
	up := Upload{Name: "empty.html", Size: int64(len(src)), Data: []byte(src)}
	st := Settings{DocType: config.TypeHTML, OutputFormat: config.FormatMarkdown}

	if _, err := ProcessDocument(context.Background(), up, st, config.Default()); err == nil {
		t.Fatal("expected error for html with no text content")
	}
}
