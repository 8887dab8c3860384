package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TabularParser turns an uploaded spreadsheet into rows of cells. The
// first row is the header.
type TabularParser interface {
	Parse(data []byte) ([][]string, error)
}

type ExcelParser struct{}

func NewExcelParser() *ExcelParser { return &ExcelParser{} }

// Parse reads the first sheet. Rows are normalized to the header
// width so short trailing rows index safely.
func (p *ExcelParser) Parse(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	width := len(rows[0])
	for i, row := range rows {
		for j, cell := range row {
			row[j] = strings.TrimSpace(cell)
		}
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}
	return rows, nil
}

// ValidateHeader checks the header row against the expected list:
// same length and same set, order-insensitive.
func ValidateHeader(header, expected []string) error {
	if len(header) != len(expected) {
		return fmt.Errorf("header has %d columns, expected %d", len(header), len(expected))
	}
	want := make(map[string]struct{}, len(expected))
	for _, h := range expected {
		want[h] = struct{}{}
	}
	for _, h := range header {
		if _, ok := want[h]; !ok {
			return fmt.Errorf("unexpected header column %q", h)
		}
	}
	return nil
}

// HeaderIndex maps column names to their position in the header row.
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}
