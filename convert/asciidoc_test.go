package convert

import (
	"context"
	"strings"
	"testing"

	"github.com/visionparse/visionparse/config"
)

func TestConvertAsciiDoc(t *testing.T) {
	src := `= Operations Guide
:toc:
:author: ops team

// internal draft

Intro paragraph spanning
two source lines.

== Deployment

Run the installer.

----
install --all
----
`
	up := Upload{Name: "guide.adoc", Size: int64(len(src)), Data: []byte(src)}
	st := Settings{DocType: config.TypeAsciiDoc, OutputFormat: config.FormatMarkdown}

	doc, err := ProcessDocument(context.Background(), up, st, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Operations Guide" {
		t.Fatalf("title: got %q", doc.Title)
	}

	var joined strings.Builder
	for _, sec := range doc.Sections {
		joined.WriteString(sec.Type + ":" + sec.Text + "\n")
	}
	out := joined.String()

	if !strings.Contains(out, "Intro paragraph spanning two source lines.") {
		t.Fatalf("paragraph lines not joined:\n%s", out)
	}
	if strings.Contains(out, "internal draft") || strings.Contains(out, ":toc:") {
		t.Fatalf("comments/attributes leaked into sections:\n%s", out)
	}
	if !strings.Contains(out, "code:install --all") {
		t.Fatalf("listing block not captured as code:\n%s", out)
	}

	// Second heading keeps its level.
	found := false
	for _, sec := range doc.Sections {
		if sec.Type == "heading" && sec.Title == "Deployment" {
			found = true
			if sec.Level != 2 {
				t.Fatalf("Deployment level: got %d", sec.Level)
			}
		}
	}
	if !found {
		t.Fatal("missing Deployment heading section")
	}
}

func TestAsciiDocHeading(t *testing.T) {
	cases := []struct {
		line  string
		level int
		text  string
	}{
		{"= Title", 1, "Title"},
		{"=== Deep", 3, "Deep"},
		{"=no space", 0, ""},
		{"==", 0, ""},
		{"plain text", 0, ""},
	}
	for _, tc := range cases {
		level, text := asciiDocHeading(tc.line)
		if level != tc.level || text != tc.text {
			t.Fatalf("asciiDocHeading(%q): got (%d, %q), want (%d, %q)",
				tc.line, level, text, tc.level, tc.text)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("  title line\nsecond"); got != "title line" {
		t.Fatalf("firstLine: got %q", got)
	}
	long := strings.Repeat("x", 300)
	if got := firstLine(long); len(got) != 200 {
		t.Fatalf("firstLine truncation: got %d chars", len(got))
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	if got := normalizeWhitespace("  a\t\tb \n c  "); got != "a b c" {
		t.Fatalf("normalizeWhitespace: got %q", got)
	}
}
