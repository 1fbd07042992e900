package engine

import (
	"strings"
	"time"

	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/model"
)

// ProcessView computes the ViewData snapshot for one view:
// search -> filter -> sort -> group, in that order. Every call builds a
// fresh snapshot; previously handed-out snapshots are never touched, so
// a reader holding one never observes a half-updated projection.
// TotalCount reflects the pre-filter row count. now anchors the
// relative date filter operators.
func ProcessView(db *model.Database, view *model.View, searchQuery string, now time.Time) *model.ViewData {
	rows := make([]model.Row, len(db.Rows))
	copy(rows, db.Rows)

	searched := rows
	if strings.TrimSpace(searchQuery) != "" {
		searched = searchRows(rows, db.Columns, searchQuery)
	}

	filtered := ApplyFilters(searched, db.Columns, view.Config.Filters, view.Config.FilterOperator, now)
	sorted := ApplySorts(filtered, db.Columns, view.Config.Sorts)

	var grouped *model.RowGroups
	if view.Config.GroupBy != "" {
		grouped = GroupRows(sorted, db.Columns, view.Config.GroupBy)
	}

	return &model.ViewData{
		Rows:         rows,
		FilteredRows: filtered,
		SortedRows:   sorted,
		GroupedRows:  grouped,
		TotalCount:   len(db.Rows),
	}
}

// searchRows keeps the rows where any column's display value contains
// the query, case-insensitively.
func searchRows(rows []model.Row, columns []model.Column, query string) []model.Row {
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]model.Row, 0, len(rows))
	for _, row := range rows {
		for _, col := range columns {
			rendered := coltype.DisplayValue(col.Type, row.Data[col.ID], col.Config)
			if strings.Contains(strings.ToLower(rendered), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
