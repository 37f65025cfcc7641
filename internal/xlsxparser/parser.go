// =============================================================================
// XTE Converter - XLSX Catalog Template Parser
// =============================================================================
//
// This module reads a field catalog from an XLSX template, replacing the
// built-in list. Row order in the template is the column order of decoded
// tables.
//
// TEMPLATE STRUCTURE (Expected Columns):
//
//   | Column A         | Column B  | Column C     | Column D   |
//   |------------------|-----------|--------------|------------|
//   | Field Name       | Data Type | Merge Policy | Max Occurs |
//   | CNES             | string    |              |            |
//   | dataRealizacao   | date      |              |            |
//   | valorInformado   | decimal   |              |            |
//   | diagnosticoCID   | string    | indexed      | 4          |
//
// The first row is a header and is skipped.
//
// CUSTOMIZATION:
//   - Column positions are configurable via the TemplateColumns struct
//   - Data type and merge policy spellings are normalized, see
//     normalizeDataType and normalizeMergePolicy
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
)

// =============================================================================
// TEMPLATE COLUMN CONFIGURATION
// =============================================================================

// TemplateColumns defines which columns in the XLSX template contain which data.
// Column indices are 0-based (A=0, B=1, C=2, etc.)
type TemplateColumns struct {
	// NameColumn is the column containing the field (and XML tag) name.
	// Default: 0 (Column A)
	NameColumn int

	// DataTypeColumn is the column containing the data type.
	// Default: 1 (Column B)
	DataTypeColumn int

	// MergeColumn is the column containing the repeated-tag policy.
	// Default: 2 (Column C)
	MergeColumn int

	// MaxOccursColumn bounds the indexed columns of a repeated field.
	// Default: 3 (Column D)
	MaxOccursColumn int

	// DataStartRow is the row number where data begins (0-based).
	// Default: 1 (Row 2)
	DataStartRow int
}

// DefaultTemplateColumns returns the default column configuration.
func DefaultTemplateColumns() TemplateColumns {
	return TemplateColumns{
		NameColumn:      0, // Column A
		DataTypeColumn:  1, // Column B
		MergeColumn:     2, // Column C
		MaxOccursColumn: 3, // Column D
		DataStartRow:    1, // Row 2
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseCatalogTemplate reads a catalog template using the default layout.
//
// PARAMETERS:
//   - templatePath: The path to the XLSX template file.
//   - originColumn, ageColumn: Names of the origin and age columns.
//
// RETURNS:
//   - The catalog. The origin column is put first when the template does
//     not list it.
//   - An error if the file cannot be read or a row is malformed.
func ParseCatalogTemplate(templatePath, originColumn, ageColumn string) (*catalog.Catalog, error) {
	return ParseCatalogTemplateWithConfig(templatePath, originColumn, ageColumn, DefaultTemplateColumns())
}

// ParseCatalogTemplateWithConfig reads a catalog template with a custom
// column configuration.
func ParseCatalogTemplateWithConfig(templatePath, originColumn, ageColumn string, columns TemplateColumns) (*catalog.Catalog, error) {
	// Open the XLSX file.
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("template file has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if originColumn == "" {
		originColumn = catalog.DefaultOriginColumn
	}

	var fields []catalog.Field
	hasOrigin := false
	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]

		// Skip empty rows.
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		field, err := parseRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: %w", i+1, err)
		}
		if field.Name == "" {
			continue
		}
		if field.Name == originColumn {
			hasOrigin = true
		}
		fields = append(fields, field)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("template %s defines no fields", templatePath)
	}
	if !hasOrigin {
		fields = append([]catalog.Field{{Name: originColumn, Type: catalog.TypeString}}, fields...)
	}

	return catalog.New(originColumn, ageColumn, fields), nil
}

// parseRow extracts a catalog field from a single row.
func parseRow(row []string, columns TemplateColumns) (catalog.Field, error) {
	// Helper function to safely get a cell value.
	getCell := func(index int) string {
		if index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	field := catalog.Field{
		Name:  getCell(columns.NameColumn),
		Type:  normalizeDataType(getCell(columns.DataTypeColumn)),
		Merge: normalizeMergePolicy(getCell(columns.MergeColumn)),
	}

	if raw := getCell(columns.MaxOccursColumn); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return field, fmt.Errorf("max occurs %q is not a non-negative integer", raw)
		}
		field.MaxOccurs = limit
	}

	return field, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeDataType normalizes the data type to a catalog type.
func normalizeDataType(value string) catalog.FieldType {
	value = strings.ToLower(strings.TrimSpace(value))

	switch value {
	case "date", "data", "datetime":
		return catalog.TypeDate
	case "integer", "int", "numeric", "num", "inteiro":
		return catalog.TypeInteger
	case "decimal", "dec", "float", "money", "currency", "valor":
		return catalog.TypeDecimal
	default:
		// Default to string if not recognized.
		return catalog.TypeString
	}
}

// normalizeMergePolicy normalizes the repeated-tag policy.
func normalizeMergePolicy(value string) catalog.MergePolicy {
	value = strings.ToLower(strings.TrimSpace(value))

	switch value {
	case "first", "primeiro":
		return catalog.MergeFirst
	case "indexed", "index", "all", "multi", "todos":
		return catalog.MergeIndexed
	default:
		return catalog.MergeLast
	}
}

// =============================================================================
// TEMPLATE EXPORT
// =============================================================================

// WriteCatalogTemplate writes a catalog in the template layout, so the
// built-in list can be exported, edited and loaded back.
func WriteCatalogTemplate(templatePath string, cat *catalog.Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"Field Name", "Data Type", "Merge Policy", "Max Occurs"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, field := range cat.Fields() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{field.Name, string(field.Type), string(field.Merge), ""}
		if field.MaxOccurs > 0 {
			values[3] = field.MaxOccurs
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write field %s: %w", field.Name, err)
		}
	}

	if err := f.SaveAs(templatePath); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}
