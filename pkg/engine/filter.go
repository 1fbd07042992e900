// Package engine implements the tabular database engine: filtering,
// sorting and grouping of rows, the view pipeline that combines them
// into a ViewData snapshot, and the mutation API that keeps a database's
// schema invariants intact. Everything here is synchronous and free of
// I/O; the host serializes mutation calls per database and owns
// persistence.
package engine

import (
	"time"

	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/model"
)

// EvaluateFilter applies one filter to one cell value. Emptiness
// operators resolve first regardless of column type; any other operator
// on an empty value is false; everything else dispatches to the type's
// predicate table. now anchors relative date operators.
func EvaluateFilter(value interface{}, filter model.Filter, column model.Column, now time.Time) bool {
	switch filter.Operator {
	case coltype.OpIsEmpty:
		return coltype.IsEmpty(value)
	case coltype.OpIsNotEmpty:
		return !coltype.IsEmpty(value)
	}

	if coltype.IsEmpty(value) {
		return false
	}

	return coltype.Evaluate(column.Type, value, filter.Operator, filter.Condition, now)
}

// ApplyFilters keeps the rows matching the filter list under the given
// combinator. An empty filter list is the identity. A filter whose
// column no longer exists evaluates false: stale view configs after a
// column deletion degrade instead of erroring.
func ApplyFilters(rows []model.Row, columns []model.Column, filters []model.Filter, combinator model.Combinator, now time.Time) []model.Row {
	if len(filters) == 0 {
		return rows
	}

	columnsByID := make(map[string]model.Column, len(columns))
	for _, col := range columns {
		columnsByID[col.ID] = col
	}

	out := make([]model.Row, 0, len(rows))
	for _, row := range rows {
		if rowMatches(row, columnsByID, filters, combinator, now) {
			out = append(out, row)
		}
	}
	return out
}

func rowMatches(row model.Row, columns map[string]model.Column, filters []model.Filter, combinator model.Combinator, now time.Time) bool {
	for _, f := range filters {
		col, ok := columns[f.Column]
		matched := ok && EvaluateFilter(row.Data[f.Column], f, col, now)

		if combinator == model.CombinatorOr {
			if matched {
				return true
			}
		} else if !matched {
			// AND is the default combinator.
			return false
		}
	}
	return combinator != model.CombinatorOr
}
