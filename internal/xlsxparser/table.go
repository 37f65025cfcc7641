package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/transform"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

// =============================================================================
// TABLE WORKBOOKS
// =============================================================================

// TableSheet is the sheet a decoded table is written to.
const TableSheet = "Sheet1"

// decimalPlaces matches the "0.00" number format applied on write.
const decimalPlaces = 2

// ReadTable reads the first sheet of a workbook as a table. The first row
// holds the column names.
func ReadTable(filePath string, cat *catalog.Catalog) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return readTable(f, cat)
}

// ReadTableFrom is ReadTable over a stream.
func ReadTableFrom(r io.Reader, cat *catalog.Catalog) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return readTable(f, cat)
}

// readTable converts sheet rows into a table.
//
// Cells are read raw, so a date cell arrives as its serial day count and is
// converted later when the document is generated. Decimal columns holding
// numbers are formatted with two decimals. Empty cells are absent values.
func readTable(f *excelize.File, cat *catalog.Catalog) (*types.Table, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheetName)
	}

	columns := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		columns[i] = name
	}

	decimals := make([]bool, len(columns))
	for i, col := range columns {
		decimals[i] = cat.TypeOf(col) == catalog.TypeDecimal
	}

	table := &types.Table{Columns: columns}
	for _, record := range rows[1:] {
		if isRowEmpty(record) {
			continue
		}
		row := types.NewRow()
		for i, col := range columns {
			if i >= len(record) || record[i] == "" {
				continue
			}
			value := record[i]
			if decimals[i] {
				value, _ = transform.FormatDecimal(value, decimalPlaces)
			}
			row.Set(col, value)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// WriteTable writes a table to a new workbook.
//
// Decimal catalog columns holding numbers are written as numeric cells with
// the "0.00" format. Every other value is written as text, so identifiers
// keep their exact digits.
func WriteTable(filePath string, table *types.Table, cat *catalog.Catalog) error {
	f, err := buildWorkbook(table, cat)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteTableTo is WriteTable over a stream.
func WriteTableTo(w io.Writer, table *types.Table, cat *catalog.Catalog) error {
	f, err := buildWorkbook(table, cat)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(table *types.Table, cat *catalog.Catalog) (*excelize.File, error) {
	f := excelize.NewFile()

	sw, err := f.NewStreamWriter(TableSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	decimalStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create decimal style: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	decimals := make([]bool, len(table.Columns))
	for i, col := range table.Columns {
		decimals[i] = cat.TypeOf(col) == catalog.TypeDecimal
	}

	for r, row := range table.Rows {
		values := make([]interface{}, len(table.Columns))
		for i, col := range table.Columns {
			value, ok := row.Get(col)
			if !ok {
				continue
			}
			if decimals[i] {
				if num, isNum := transform.ParseDecimal(value); isNum {
					values[i] = excelize.Cell{StyleID: decimalStyle, Value: num}
					continue
				}
			}
			values[i] = value
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := sw.SetRow(cell, values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f, nil
}
