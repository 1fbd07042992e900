package model

import (
	"fmt"

	"github.com/gridbase/gridbase/pkg/coltype"
)

// ValidationResult batches every structural violation found in a
// database so the caller can report them all at once instead of
// stopping at the first.
type ValidationResult struct {
	Valid  bool     `json:"is_valid"`
	Errors []string `json:"errors"`
}

func (r *ValidationResult) addf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Validate checks the structural invariants of a database: exactly one
// primary column, exactly one default view, unique column and view IDs,
// known column and view types, well-formed filters and sorts, and one
// data key per column on every row.
func Validate(d *Database) ValidationResult {
	result := ValidationResult{}

	if d.ID == "" {
		result.addf("database has no id")
	}
	if d.Title == "" {
		result.addf("database %q has no title", d.ID)
	}

	columnIDs := make(map[string]bool, len(d.Columns))
	primaries := 0
	for _, col := range d.Columns {
		if col.ID == "" {
			result.addf("column %q has no id", col.Name)
			continue
		}
		if columnIDs[col.ID] {
			result.addf("duplicate column id %q", col.ID)
		}
		columnIDs[col.ID] = true
		if col.Primary {
			primaries++
		}
		if !coltype.Known(col.Type) {
			result.addf("column %q has unknown type %q", col.ID, col.Type)
		}
	}
	if primaries != 1 {
		result.addf("database must have exactly one primary column, found %d", primaries)
	}

	viewIDs := make(map[string]bool, len(d.Views))
	defaults := 0
	for _, view := range d.Views {
		if view.ID == "" {
			result.addf("view %q has no id", view.Name)
			continue
		}
		if viewIDs[view.ID] {
			result.addf("duplicate view id %q", view.ID)
		}
		viewIDs[view.ID] = true
		if view.IsDefault {
			defaults++
		}
		if !KnownViewType(view.Type) {
			result.addf("view %q has unknown type %q", view.ID, view.Type)
		}
		validateViewConfig(&result, d, &view)
	}
	if defaults != 1 {
		result.addf("database must have exactly one default view, found %d", defaults)
	}

	rowIDs := make(map[string]bool, len(d.Rows))
	for _, row := range d.Rows {
		if row.ID == "" {
			result.addf("row has no id")
			continue
		}
		if rowIDs[row.ID] {
			result.addf("duplicate row id %q", row.ID)
		}
		rowIDs[row.ID] = true
		for _, col := range d.Columns {
			if _, ok := row.Data[col.ID]; !ok {
				result.addf("row %q is missing data for column %q", row.ID, col.ID)
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func validateViewConfig(result *ValidationResult, d *Database, view *View) {
	cfg := &view.Config

	if cfg.FilterOperator != "" && cfg.FilterOperator != CombinatorAnd && cfg.FilterOperator != CombinatorOr {
		result.addf("view %q has unknown filter operator %q", view.ID, cfg.FilterOperator)
	}

	for i, f := range cfg.Filters {
		// A filter pointing at a removed column is schema drift, not a
		// structural violation; only check operator validity here.
		col := d.ColumnByID(f.Column)
		if col != nil && coltype.Known(col.Type) && !coltype.AllowsOperator(col.Type, f.Operator) {
			result.addf("view %q filter %d: operator %q not allowed for %s column %q",
				view.ID, i, f.Operator, col.Type, f.Column)
		}
	}

	sorted := make(map[string]bool, len(cfg.Sorts))
	for i, s := range cfg.Sorts {
		if s.Direction != SortAsc && s.Direction != SortDesc {
			result.addf("view %q sort %d: unknown direction %q", view.ID, i, s.Direction)
		}
		if sorted[s.Column] {
			result.addf("view %q has more than one sort for column %q", view.ID, s.Column)
		}
		sorted[s.Column] = true
	}
}
