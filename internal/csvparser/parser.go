// =============================================================================
// XTE Converter - CSV Table Module
// =============================================================================
//
// This module reads and writes the flat guide table as CSV.
//
// FEATURES:
//   - Configurable delimiter (semicolon by default, as spreadsheet tools in
//     pt-BR locales expect)
//   - UTF-8, ISO-8859-1 and Windows-1252 files
//   - UTF-8 byte order mark stripped on read
//   - Empty cells read as absent values
//   - Decimal columns written with a fixed number of decimal places
//
// The CSV round trip preserves every value as text. Column order on write is
// the table's column order.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/config"
	conv "github.com/ginjaninja78/XTE-Excel-conversion/internal/transform"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// READING
// =============================================================================

// ReadFile reads a CSV table from disk.
func ReadFile(filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := Read(file, settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return table, nil
}

// Read parses a CSV table.
//
// PARAMETERS:
//   - r: The CSV stream.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - The table; the first record is the header.
//   - An error if the stream is not valid CSV, has no header or repeats a
//     column name.
//
// PARSING PROCESS:
//  1. Decode the configured encoding to UTF-8
//  2. Strip a leading byte order mark
//  3. Read the header and clean column names
//  4. Read data rows, skipping blank lines; empty cells stay absent
func Read(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	enc, err := encodingFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	reader := bufio.NewReader(r)
	if enc != nil {
		reader = bufio.NewReader(transform.NewReader(reader, enc.NewDecoder()))
	}
	if head, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = reader.Discard(len(utf8BOM))
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := cleanHeaders(header)
	if dup := firstDuplicate(columns); dup != "" {
		return nil, fmt.Errorf("duplicate column %q", dup)
	}

	table := &types.Table{Columns: columns}
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if isRowEmpty(record) {
			continue
		}

		row := types.NewRow()
		for i, col := range columns {
			if i < len(record) && record[i] != "" {
				row.Set(col, record[i])
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = delimiterRune(settings.Delimiter)

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Hand-edited exports often carry stray quotes.
	reader.LazyQuotes = true
}

func delimiterRune(delimiter string) rune {
	switch delimiter {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ",", "comma":
		return ','
	case ";", "semicolon", "":
		return ';'
	default:
		return []rune(delimiter)[0]
	}
}

// cleanHeaders trims column names and names blank ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

func firstDuplicate(columns []string) string {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return c
		}
		seen[c] = true
	}
	return ""
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// WRITING
// =============================================================================

// WriteFile writes a table to disk as CSV.
func WriteFile(filePath string, table *types.Table, cat *catalog.Catalog, settings config.CSVSettings) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, table, cat, settings); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", filePath, err)
	}
	return file.Close()
}

// Write serializes a table as CSV.
//
// Decimal catalog columns are written with settings.Places() decimals;
// values that are not numbers are written as they are. Absent values are
// empty cells.
func Write(w io.Writer, table *types.Table, cat *catalog.Catalog, settings config.CSVSettings) error {
	enc, err := encodingFor(settings.Encoding)
	if err != nil {
		return err
	}

	out := w
	var encoder *transform.Writer
	if enc != nil {
		encoder = transform.NewWriter(w, enc.NewEncoder())
		out = encoder
	}

	csvWriter := csv.NewWriter(out)
	csvWriter.Comma = delimiterRune(settings.Delimiter)

	if err := csvWriter.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	decimals := make([]bool, len(table.Columns))
	for i, col := range table.Columns {
		decimals[i] = cat.TypeOf(col) == catalog.TypeDecimal
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			value := row.Value(col)
			if decimals[i] {
				value, _ = conv.FormatDecimal(value, settings.Places())
			}
			record[i] = value
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	if encoder != nil {
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to encode CSV: %w", err)
		}
	}
	return nil
}

// =============================================================================
// ENCODINGS
// =============================================================================

// encodingFor maps a configured encoding name to a codec. UTF-8 needs no
// transformation and returns nil.
func encodingFor(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8":
		return nil, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}
