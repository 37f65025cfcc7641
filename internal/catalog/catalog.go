// =============================================================================
// XTE Converter - Field Catalog
// =============================================================================
//
// The field catalog is the canonical, ordered list of known monitoring-guide
// fields. It drives:
//   - Column order of decoded tables (catalog fields first, in order)
//   - Per-field type tags used by date renormalization, leading-zero repair
//     and decimal formatting on export
//   - The merge policy applied when a tag occurs more than once in a guide
//
// Fields that are not in the catalog fall back to a name heuristic: a name
// containing "data" (any case) is a date, everything else is a string.
//
// A catalog is a plain value. Both pipelines receive it explicitly; there is
// no package-level mutable state.
//
// CUSTOMIZATION:
//   - Replace the default list by loading an XLSX catalog template
//     (see xlsxparser.ParseCatalogTemplate)
//   - Rename the origin or age columns through the configuration file
//
// =============================================================================

package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// FIELD DEFINITIONS
// =============================================================================

// FieldType is the value type of a catalog field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeDate    FieldType = "date"
	TypeInteger FieldType = "integer"
	TypeDecimal FieldType = "decimal"
)

// MergePolicy decides what happens when the same tag appears more than once
// inside one guide or procedure.
type MergePolicy string

const (
	// MergeLast keeps the last value seen in document order.
	MergeLast MergePolicy = "last"

	// MergeFirst keeps the first value seen.
	MergeFirst MergePolicy = "first"

	// MergeIndexed keeps every value as name, name_2, name_3, ...
	MergeIndexed MergePolicy = "indexed"
)

// Field describes one known column.
type Field struct {
	// Name is the column name, equal to the XML tag name for guide fields.
	Name string

	// Type is the value type used by derivation and export formatting.
	Type FieldType

	// Merge is the duplicate-tag policy. Empty means MergeLast.
	Merge MergePolicy

	// MaxOccurs bounds the number of indexed columns for MergeIndexed
	// fields. Zero means unbounded.
	MaxOccurs int
}

// Default column names.
const (
	DefaultOriginColumn = "Nome da Origem"
	DefaultAgeColumn    = "Idade_na_Realização"
)

// Catalog is an ordered set of known fields.
type Catalog struct {
	// OriginColumn names the mandatory column that identifies the source
	// document of each row.
	OriginColumn string

	// AgeColumn names the derived age-at-realization column.
	AgeColumn string

	fields []Field
	index  map[string]int
}

// New builds a catalog. Duplicate field names keep their first position.
// Empty column names fall back to the defaults.
func New(originColumn, ageColumn string, fields []Field) *Catalog {
	if originColumn == "" {
		originColumn = DefaultOriginColumn
	}
	if ageColumn == "" {
		ageColumn = DefaultAgeColumn
	}

	c := &Catalog{
		OriginColumn: originColumn,
		AgeColumn:    ageColumn,
		index:        make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		if _, dup := c.index[f.Name]; dup {
			continue
		}
		if f.Type == "" {
			f.Type = TypeString
		}
		if f.Merge == "" {
			f.Merge = MergeLast
		}
		c.index[f.Name] = len(c.fields)
		c.fields = append(c.fields, f)
	}
	return c
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Fields returns a copy of the catalog fields in canonical order.
func (c *Catalog) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Lookup returns the catalog entry for name. Indexed variants such as
// "diagnosticoCID_2" resolve to their base field.
func (c *Catalog) Lookup(name string) (Field, bool) {
	if i, ok := c.index[name]; ok {
		return c.fields[i], true
	}
	if base, _, ok := c.splitIndexed(name); ok {
		return c.fields[c.index[base]], true
	}
	return Field{}, false
}

// TypeOf returns the value type of a column. Unknown columns use the name
// heuristic. The origin and age columns are never dates.
func (c *Catalog) TypeOf(name string) FieldType {
	if f, ok := c.Lookup(name); ok {
		return f.Type
	}
	if name == c.OriginColumn || name == c.AgeColumn {
		return TypeString
	}
	if strings.Contains(strings.ToLower(name), "data") {
		return TypeDate
	}
	return TypeString
}

// MergePolicyOf returns the duplicate-tag policy for a tag.
func (c *Catalog) MergePolicyOf(name string) MergePolicy {
	if i, ok := c.index[name]; ok {
		return c.fields[i].Merge
	}
	return MergeLast
}

// MaxOccursOf returns the indexed-column bound of a field, zero if unbounded.
func (c *Catalog) MaxOccursOf(name string) int {
	if i, ok := c.index[name]; ok {
		return c.fields[i].MaxOccurs
	}
	return 0
}

// IndexedName returns the column name of the n-th occurrence (1-based) of
// an indexed field.
func IndexedName(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "_" + strconv.Itoa(n)
}

// splitIndexed recognizes "base_n" for an indexed catalog field with n >= 2.
func (c *Catalog) splitIndexed(name string) (string, int, bool) {
	cut := strings.LastIndexByte(name, '_')
	if cut <= 0 || cut == len(name)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(name[cut+1:])
	if err != nil || n < 2 {
		return "", 0, false
	}
	base := name[:cut]
	i, ok := c.index[base]
	if !ok || c.fields[i].Merge != MergeIndexed {
		return "", 0, false
	}
	return base, n, true
}

// =============================================================================
// COLUMN ORDERING
// =============================================================================

// OrderColumns returns the canonical order of a set of columns: catalog
// fields present in seen, in catalog order, with indexed variants right
// after their base field; then every other column in first-seen order.
// Duplicates in seen are ignored.
func (c *Catalog) OrderColumns(seen []string) []string {
	present := make(map[string]bool, len(seen))
	variants := make(map[string][]int)
	var unknown []string

	for _, name := range seen {
		if present[name] {
			continue
		}
		present[name] = true

		if _, ok := c.index[name]; ok {
			continue
		}
		if base, n, ok := c.splitIndexed(name); ok {
			variants[base] = append(variants[base], n)
			continue
		}
		unknown = append(unknown, name)
	}

	ordered := make([]string, 0, len(present))
	for _, f := range c.fields {
		if present[f.Name] {
			ordered = append(ordered, f.Name)
		}
		if ns := variants[f.Name]; len(ns) > 0 {
			sort.Ints(ns)
			for _, n := range ns {
				ordered = append(ordered, IndexedName(f.Name, n))
			}
		}
	}
	return append(ordered, unknown...)
}
