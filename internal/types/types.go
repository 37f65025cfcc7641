// =============================================================================
// XTE Converter - Shared Types
// =============================================================================
//
// This package contains the tabular intermediate representation shared by
// the decode and encode pipelines. Types defined here are used by:
//   - xteparser  (builds rows from XML guides)
//   - converter  (reconciles, derives and groups rows)
//   - xmlwriter  (reads rows back into guide elements)
//   - csvparser / xlsxparser (table interchange)
//   - validation
//
// A Row keeps its keys in insertion order. A column missing from a row is
// "absent", which is not the same as a column present with an empty value.
//
// =============================================================================

package types

import "strings"

// =============================================================================
// ROW
// =============================================================================

// Row is an insertion-ordered mapping from column name to text value.
// The zero value is not usable; create rows with NewRow.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]string)}
}

// Set stores a value. A new key is appended to the key order; an existing
// key keeps its position.
func (r *Row) Set(key, value string) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// SetIfAbsent stores a value only when the key is not present yet.
// Returns true when the value was stored.
func (r *Row) SetIfAbsent(key, value string) bool {
	if _, exists := r.values[key]; exists {
		return false
	}
	r.Set(key, value)
	return true
}

// Get returns the value for key and whether the key is present.
func (r *Row) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key, or "" when absent.
func (r *Row) Value(key string) string {
	return r.values[key]
}

// Has reports whether key is present (possibly with an empty value).
func (r *Row) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Delete removes key from the row. Deleting an absent key is a no-op.
func (r *Row) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (r *Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys present.
func (r *Row) Len() int {
	return len(r.keys)
}

// Clone returns an independent copy of the row.
func (r *Row) Clone() *Row {
	c := &Row{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]string, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Merge overlays other onto r. Values from other win; keys new to r are
// appended in other's order.
func (r *Row) Merge(other *Row) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		r.Set(k, other.values[k])
	}
}

// =============================================================================
// TABLE
// =============================================================================

// Table is the tabular intermediate representation: ordered columns and
// ordered rows. Rows may lack some columns.
type Table struct {
	// Columns is the canonical column order used on export.
	Columns []string

	// Rows holds one entry per procedure (or per guide without procedures).
	Rows []*Row
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the values of one column, "" where a row lacks it.
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Value(name)
	}
	return out
}

// =============================================================================
// GUIDE GROUPING
// =============================================================================

// Guide key columns. Together they identify one guide inside an origin.
const (
	ColumnProviderGuide = "numeroGuia_prestador"
	ColumnOperatorGuide = "numeroGuia_operadora"
	ColumnReimbursement = "identificacaoReembolso"
)

// GuideKey identifies a guide when regrouping rows. Blank parts are a valid
// key value, so two rows with all parts blank belong to the same guide.
type GuideKey struct {
	ProviderGuide string
	OperatorGuide string
	Reimbursement string
}

// KeyOf builds the guide key of a row. Absent and blank values are equal.
func KeyOf(row *Row) GuideKey {
	return GuideKey{
		ProviderGuide: strings.TrimSpace(row.Value(ColumnProviderGuide)),
		OperatorGuide: strings.TrimSpace(row.Value(ColumnOperatorGuide)),
		Reimbursement: strings.TrimSpace(row.Value(ColumnReimbursement)),
	}
}

// GuideGroup is one guide to be emitted: the first row supplies guide level
// fields and every row becomes a procedure, in order.
type GuideGroup struct {
	Key  GuideKey
	Rows []*Row
}

// OriginGroup holds every guide that came from one source document.
type OriginGroup struct {
	// Origin is the source document name stored in the origin column.
	Origin string

	// Rows are the origin's rows in table order.
	Rows []*Row
}
