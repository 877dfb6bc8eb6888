package convert

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// convertCSV reads a CSV upload and renders it as a single markdown pipe
// table section. The first record is treated as the header row.
func convertCSV(up Upload) (*Document, error) {
	r := csv.NewReader(bytes.NewReader(up.Data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no content found in csv")
	}

	width := tableWidth(records)
	title := firstLine(strings.Join(records[0], " "))

	return &Document{
		Title: title,
		Sections: []Section{{
			Text: markdownTable(records, width),
			Type: "table",
			Metadata: map[string]string{
				"rows":    strconv.Itoa(len(records)),
				"columns": strconv.Itoa(width),
			},
		}},
	}, nil
}

// tableWidth is the widest record length, so ragged rows pad out evenly.
func tableWidth(records [][]string) int {
	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	return width
}

// markdownTable renders records as a pipe table. The first record is the
// header row; short rows are padded to width with empty cells.
func markdownTable(records [][]string, width int) string {
	var sb strings.Builder
	writeRow := func(rec []string) {
		sb.WriteByte('|')
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(rec) {
				cell = normalizeWhitespace(rec[i])
			}
			sb.WriteByte(' ')
			sb.WriteString(strings.ReplaceAll(cell, "|", "\\|"))
			sb.WriteString(" |")
		}
		sb.WriteByte('\n')
	}

	writeRow(records[0])
	sb.WriteByte('|')
	for i := 0; i < width; i++ {
		sb.WriteString(" --- |")
	}
	sb.WriteByte('\n')
	for _, rec := range records[1:] {
		writeRow(rec)
	}

	return strings.TrimRight(sb.String(), "\n")
}
