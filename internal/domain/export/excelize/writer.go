package excelize

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// numFmtMoney is the builtin "#,##0.00" format; separators follow the
// reader's locale.
const numFmtMoney = 4

type Writer struct{}

func New() *Writer { return &Writer{} }

func (w *Writer) Write(sheet string, headers []string, rows [][]any, moneyCols []int) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return nil, fmt.Errorf("xlsx: money style: %w", err)
	}

	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return nil, fmt.Errorf("xlsx: header row: %w", err)
	}
	if len(headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("xlsx: header style: %w", err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(headers))
		if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
			return nil, fmt.Errorf("xlsx: column width: %w", err)
		}
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
	}

	if len(rows) > 0 {
		for _, col := range moneyCols {
			top, _ := excelize.CoordinatesToCellName(col+1, 2)
			bottom, _ := excelize.CoordinatesToCellName(col+1, len(rows)+1)
			if err := f.SetCellStyle(sheet, top, bottom, moneyStyle); err != nil {
				return nil, fmt.Errorf("xlsx: money style: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}
