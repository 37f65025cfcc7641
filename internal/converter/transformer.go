// =============================================================================
// XTE Converter - Derived Fields
// =============================================================================
//
// Post-processing over a decoded table.
//
// TRANSFORMATIONS:
//   - Date columns are renormalized to DD/MM/YYYY (day-first inference);
//     values that do not parse stay as they are
//   - The age column is computed from dataNascimento and dataRealizacao
//   - Integer identifier columns holding only digits lose their leading
//     zeros
//
// Which column gets which treatment comes from the catalog type tags.
// Unknown columns are dates when their name contains "data".
//
// =============================================================================

package converter

import (
	"strconv"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/transform"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

// Columns the age is derived from.
const (
	ColumnBirthDate       = "dataNascimento"
	ColumnRealizationDate = "dataRealizacao"
)

// Derive applies the derived-field rules to table in place.
func Derive(table *types.Table, cat *catalog.Catalog) {
	normalizeDates(table, cat)
	deriveAge(table, cat)
	repairLeadingZeros(table, cat)
}

func normalizeDates(table *types.Table, cat *catalog.Catalog) {
	for _, col := range table.Columns {
		if col == cat.AgeColumn || cat.TypeOf(col) != catalog.TypeDate {
			continue
		}
		for _, row := range table.Rows {
			value, ok := row.Get(col)
			if !ok || value == "" {
				continue
			}
			if br, parsed := transform.ToBR(value); parsed {
				row.Set(col, br)
			}
		}
	}
}

// deriveAge computes floor(days / 365) between birth and realization. The
// column is only produced when both source columns exist; rows where either
// date is missing or unparsable get no age value.
func deriveAge(table *types.Table, cat *catalog.Catalog) {
	if !table.HasColumn(ColumnBirthDate) || !table.HasColumn(ColumnRealizationDate) {
		return
	}

	for _, row := range table.Rows {
		birth, okBirth := transform.ParseDayFirst(row.Value(ColumnBirthDate))
		event, okEvent := transform.ParseDayFirst(row.Value(ColumnRealizationDate))
		if !okBirth || !okEvent {
			row.Delete(cat.AgeColumn)
			continue
		}
		row.Set(cat.AgeColumn, strconv.Itoa(transform.AgeInYears(birth, event)))
	}

	if !table.HasColumn(cat.AgeColumn) {
		table.Columns = cat.OrderColumns(append(table.Columns, cat.AgeColumn))
	}
}

func repairLeadingZeros(table *types.Table, cat *catalog.Catalog) {
	for _, f := range cat.Fields() {
		if f.Type != catalog.TypeInteger || f.Name == cat.AgeColumn || !table.HasColumn(f.Name) {
			continue
		}
		for _, row := range table.Rows {
			if value, ok := row.Get(f.Name); ok {
				repaired, _ := transform.StripLeadingZeros(value)
				row.Set(f.Name, repaired)
			}
		}
	}
}
