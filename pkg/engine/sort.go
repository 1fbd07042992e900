package engine

import (
	"sort"

	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/model"
)

// ApplySorts orders rows by the sort keys in list order. The sort is
// stable: rows tying on every key keep their relative input order,
// which the end-to-end ordering guarantees depend on. Null values sort
// before any non-null value for every type. The input slice is not
// modified.
func ApplySorts(rows []model.Row, columns []model.Column, sorts []model.Sort) []model.Row {
	out := make([]model.Row, len(rows))
	copy(out, rows)
	if len(sorts) == 0 {
		return out
	}

	columnsByID := make(map[string]model.Column, len(columns))
	for _, col := range columns {
		columnsByID[col.ID] = col
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, s := range sorts {
			col, ok := columnsByID[s.Column]
			if !ok {
				// Stale sort key after a column deletion: skip it.
				continue
			}
			c := compareCells(col, out[i].Data[s.Column], out[j].Data[s.Column])
			if c == 0 {
				continue
			}
			if s.Direction == model.SortDesc {
				c = -c
			}
			return c < 0
		}
		return false
	})
	return out
}

// compareCells orders two cell values of one column, with nulls first.
func compareCells(col model.Column, a, b interface{}) int {
	aNull := a == nil
	bNull := b == nil
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return -1
	case bNull:
		return 1
	}
	return coltype.Compare(col.Type, a, b)
}
