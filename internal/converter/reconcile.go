package converter

import (
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

// Reconcile assembles flattened rows into a table. The origin column is set
// on every row, replacing any same-named value captured from the document,
// and the columns follow the catalog order.
func Reconcile(rows []*types.Row, origin string, cat *catalog.Catalog) *types.Table {
	var seen []string
	known := make(map[string]bool)

	for _, row := range rows {
		row.Set(cat.OriginColumn, origin)
		for _, k := range row.Keys() {
			if !known[k] {
				known[k] = true
				seen = append(seen, k)
			}
		}
	}

	return &types.Table{
		Columns: cat.OrderColumns(seen),
		Rows:    rows,
	}
}

// Concat joins tables in order. Unknown columns keep the position of their
// first appearance across the inputs, so a later table never moves a column
// that an earlier table introduced.
func Concat(cat *catalog.Catalog, tables ...*types.Table) *types.Table {
	var seen []string
	var rows []*types.Row

	for _, t := range tables {
		if t == nil {
			continue
		}
		seen = append(seen, t.Columns...)
		rows = append(rows, t.Rows...)
	}

	return &types.Table{
		Columns: cat.OrderColumns(seen),
		Rows:    rows,
	}
}
