package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/visionparse/visionparse/config"
)

func buildXLSX(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(body))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const xlsxNS = `xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"`

func TestConvertXLSX(t *testing.T) {
	data := buildXLSX(t, map[string]string{
		"xl/workbook.xml": `<?xml version="1.0"?>
<workbook ` + xlsxNS + `><sheets>
<sheet name="Budget" sheetId="1"/>
</sheets></workbook>`,
		"xl/sharedStrings.xml": `<?xml version="1.0"?>
<sst ` + xlsxNS + `>
<si><t>item</t></si>
<si><t>cost</t></si>
<si><t>printer</t></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet ` + xlsxNS + `><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>350</v></c></row>
</sheetData></worksheet>`,
	})
	up := Upload{Name: "budget.xlsx", Size: int64(len(data)), Data: data}

	st := Settings{DocType: config.TypeXLSX, OutputFormat: config.FormatMarkdown}
	doc, err := ProcessDocument(context.Background(), up, st, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Budget" {
		t.Fatalf("title: got %q, want Budget", doc.Title)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("sections: got %d, want 1", len(doc.Sections))
	}

	sec := doc.Sections[0]
	if sec.Type != "table" {
		t.Fatalf("type: got %q, want table", sec.Type)
	}
	if sec.Metadata["sheet"] != "Budget" {
		t.Fatalf("sheet metadata: got %q", sec.Metadata["sheet"])
	}
	lines := strings.Split(sec.Text, "\n")
	if lines[0] != "| item | cost |" {
		t.Fatalf("header: got %q", lines[0])
	}
	if lines[1] != "| --- | --- |" {
		t.Fatalf("separator: got %q", lines[1])
	}
	if lines[2] != "| printer | 350 |" {
		t.Fatalf("data row: got %q", lines[2])
	}
}

func TestConvertXLSX_MultipleSheets(t *testing.T) {
	data := buildXLSX(t, map[string]string{
		"xl/workbook.xml": `<?xml version="1.0"?>
<workbook ` + xlsxNS + `><sheets>
<sheet name="Q1" sheetId="1"/>
<sheet name="Q2" sheetId="2"/>
</sheets></workbook>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet ` + xlsxNS + `><sheetData>
<row r="1"><c r="A1"><v>10</v></c></row>
</sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<?xml version="1.0"?>
<worksheet ` + xlsxNS + `><sheetData>
<row r="1"><c r="A1"><v>20</v></c></row>
</sheetData></worksheet>`,
	})

	doc, err := convertXLSX(Upload{Name: "year.xlsx", Size: int64(len(data)), Data: data})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("sections: got %d, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Title != "Q1" || doc.Sections[1].Title != "Q2" {
		t.Fatalf("sheet titles: got %q, %q", doc.Sections[0].Title, doc.Sections[1].Title)
	}
}

func TestConvertXLSX_CellGaps(t *testing.T) {
	// WHAT: a row whose cells skip columns keeps the gaps as empty cells so
	// the table stays aligned with the header.
	data := buildXLSX(t, map[string]string{
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet ` + xlsxNS + `><sheetData>
<row r="1"><c r="A1"><v>a</v></c><c r="B1"><v>b</v></c><c r="C1"><v>c</v></c></row>
<row r="2"><c r="A2"><v>1</v></c><c r="C2"><v>3</v></c></row>
</sheetData></worksheet>`,
	})

	doc, err := convertXLSX(Upload{Name: "gaps.xlsx", Size: int64(len(data)), Data: data})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(doc.Sections[0].Text, "\n")
	if lines[2] != "| 1 |  | 3 |" {
		t.Fatalf("gap row: got %q", lines[2])
	}
}

func TestConvertXLSX_InlineStrings(t *testing.T) {
	data := buildXLSX(t, map[string]string{
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet ` + xlsxNS + `><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>note</t></is></c></row>
</sheetData></worksheet>`,
	})

	doc, err := convertXLSX(Upload{Name: "inline.xlsx", Size: int64(len(data)), Data: data})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.Sections[0].Text, "note") {
		t.Fatalf("inline string missing: %q", doc.Sections[0].Text)
	}
	// No workbook.xml: the sheet gets a positional name.
	if doc.Sections[0].Title != "Sheet 1" {
		t.Fatalf("fallback name: got %q", doc.Sections[0].Title)
	}
}

func TestConvertXLSX_Empty(t *testing.T) {
	data := buildXLSX(t, map[string]string{
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet ` + xlsxNS + `><sheetData></sheetData></worksheet>`,
	})
	if _, err := convertXLSX(Upload{Name: "empty.xlsx", Data: data}); err == nil {
		t.Fatal("expected error for workbook without cells")
	}
}

func TestConvertXLSX_NotAZip(t *testing.T) {
	if _, err := convertXLSX(Upload{Name: "bad.xlsx", Data: []byte("not a zip")}); err == nil {
		t.Fatal("expected error for invalid archive")
	}
}

func TestColumnIndex(t *testing.T) {
	cases := []struct {
		ref  string
		want int
	}{
		{"A1", 0},
		{"B3", 1},
		{"Z10", 25},
		{"AA1", 26},
		{"", -1},
		{"42", -1},
	}
	for _, c := range cases {
		if got := columnIndex(c.ref); got != c.want {
			t.Errorf("columnIndex(%q): got %d, want %d", c.ref, got, c.want)
		}
	}
}
