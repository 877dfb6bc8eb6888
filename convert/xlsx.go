package convert

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var sheetPathRe = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)

// xlsxWorkbook carries the sheet names in workbook order.
type xlsxWorkbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
	} `xml:"sheets>sheet"`
}

// xlsxSharedStrings is xl/sharedStrings.xml. String cells reference entries
// here by index; rich-text entries split the value across runs.
type xlsxSharedStrings struct {
	Items []struct {
		Text string `xml:"t"`
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

type xlsxWorksheet struct {
	Rows []struct {
		Cells []struct {
			Ref    string `xml:"r,attr"`
			Type   string `xml:"t,attr"`
			Value  string `xml:"v"`
			Inline struct {
				Text string `xml:"t"`
			} `xml:"is"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

// convertXLSX parses a .xlsx upload by reading xl/worksheets/sheetN.xml from
// the ZIP archive. Each sheet becomes one table section rendered as a
// markdown pipe table, with the first row as the header.
func convertXLSX(up Upload) (*Document, error) {
	r, err := zip.NewReader(bytes.NewReader(up.Data), int64(len(up.Data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	shared := readSharedStrings(r)
	names := readSheetNames(r)

	type sheetFile struct {
		nr   int
		file *zip.File
	}
	var sheets []sheetFile
	for _, f := range r.File {
		m := sheetPathRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		nr, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		sheets = append(sheets, sheetFile{nr: nr, file: f})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheets found in archive")
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].nr < sheets[j].nr })

	var sections []Section
	for i, s := range sheets {
		records, err := extractSheetRows(s.file, shared)
		if err != nil {
			return nil, fmt.Errorf("sheet %d: %w", s.nr, err)
		}
		if len(records) == 0 {
			continue
		}

		name := fmt.Sprintf("Sheet %d", s.nr)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		width := tableWidth(records)
		sections = append(sections, Section{
			Title: name,
			Text:  markdownTable(records, width),
			Type:  "table",
			Metadata: map[string]string{
				"sheet":   name,
				"rows":    strconv.Itoa(len(records)),
				"columns": strconv.Itoa(width),
			},
		})
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no cell content found in workbook")
	}

	return &Document{
		Title:    sections[0].Title,
		Sections: sections,
	}, nil
}

// readSharedStrings loads the shared string table. A workbook without string
// cells has no sharedStrings.xml; that is not an error.
func readSharedStrings(r *zip.Reader) []string {
	f, err := r.Open("xl/sharedStrings.xml")
	if err != nil {
		return nil
	}
	defer f.Close()

	var sst xlsxSharedStrings
	if err := xml.NewDecoder(f).Decode(&sst); err != nil {
		return nil
	}

	out := make([]string, len(sst.Items))
	for i, item := range sst.Items {
		if item.Text != "" {
			out[i] = item.Text
			continue
		}
		var sb strings.Builder
		for _, run := range item.Runs {
			sb.WriteString(run.Text)
		}
		out[i] = sb.String()
	}
	return out
}

// readSheetNames returns the sheet names in workbook order.
func readSheetNames(r *zip.Reader) []string {
	f, err := r.Open("xl/workbook.xml")
	if err != nil {
		return nil
	}
	defer f.Close()

	var wb xlsxWorkbook
	if err := xml.NewDecoder(f).Decode(&wb); err != nil {
		return nil
	}
	names := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		names[i] = s.Name
	}
	return names
}

// extractSheetRows reads one worksheet into string records. Cells are placed
// by their column reference so gaps stay empty; cells without a reference
// fill left to right.
func extractSheetRows(f *zip.File, shared []string) ([][]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var ws xlsxWorksheet
	if err := xml.NewDecoder(rc).Decode(&ws); err != nil {
		return nil, fmt.Errorf("parse worksheet: %w", err)
	}

	var records [][]string
	for _, row := range ws.Rows {
		var rec []string
		for _, cell := range row.Cells {
			col := len(rec)
			if idx := columnIndex(cell.Ref); idx >= 0 {
				col = idx
			}
			for len(rec) <= col {
				rec = append(rec, "")
			}
			rec[col] = cellValue(cell.Type, cell.Value, cell.Inline.Text, shared)
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records, nil
}

// cellValue resolves a cell to its display string. Type "s" is an index into
// the shared string table, "inlineStr" carries its text inline, everything
// else keeps the raw value.
func cellValue(cellType, value, inline string, shared []string) string {
	switch cellType {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return inline
	default:
		return value
	}
}

// columnIndex converts the letter part of a cell reference (B3 -> 1) to a
// zero-based column index, or -1 when the reference is missing or malformed.
func columnIndex(ref string) int {
	if ref == "" {
		return -1
	}
	col := 0
	seen := false
	for _, c := range ref {
		if c >= 'A' && c <= 'Z' {
			col = col*26 + int(c-'A') + 1
			seen = true
			continue
		}
		break
	}
	if !seen {
		return -1
	}
	return col - 1
}
