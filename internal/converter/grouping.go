package converter

import (
	"strings"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

// =============================================================================
// GROUPING
// =============================================================================

// GroupOrigins splits a table into one group per origin value, in order of
// first appearance. Rows with a blank origin are skipped and counted.
//
// RETURNS:
//   - The origin groups.
//   - The number of skipped rows.
//   - A *types.SchemaError if the table has no origin column.
func GroupOrigins(table *types.Table, cat *catalog.Catalog) ([]types.OriginGroup, int, error) {
	if !table.HasColumn(cat.OriginColumn) {
		return nil, 0, &types.SchemaError{
			Column:  cat.OriginColumn,
			Message: "needed to regroup rows into documents",
		}
	}

	groups := make(map[string]int)
	var ordered []types.OriginGroup
	skipped := 0

	for _, row := range table.Rows {
		origin := strings.TrimSpace(row.Value(cat.OriginColumn))
		if origin == "" {
			skipped++
			continue
		}
		idx, exists := groups[origin]
		if !exists {
			idx = len(ordered)
			groups[origin] = idx
			ordered = append(ordered, types.OriginGroup{Origin: origin})
		}
		ordered[idx].Rows = append(ordered[idx].Rows, row)
	}

	return ordered, skipped, nil
}

// GroupGuides groups one origin's rows by guide key, in order of first
// appearance, keeping row order inside each guide. Blank key parts are a
// key like any other.
func GroupGuides(rows []*types.Row) []types.GuideGroup {
	groups := make(map[types.GuideKey]int)
	var ordered []types.GuideGroup

	for _, row := range rows {
		key := types.KeyOf(row)
		idx, exists := groups[key]
		if !exists {
			idx = len(ordered)
			groups[key] = idx
			ordered = append(ordered, types.GuideGroup{Key: key})
		}
		ordered[idx].Rows = append(ordered[idx].Rows, row)
	}

	return ordered
}
