package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/formula"
	"github.com/gridbase/gridbase/pkg/model"
)

// The mutation API is a set of plain functions over an explicit
// *model.Database; there is no hidden store and no locking here. The
// host serializes calls per database and recomputes ViewData exactly
// once after each successful mutation.
//
// Invariant violations (deleting the primary column, deleting the
// default view, duplicate IDs) fail the call with a structured error;
// value-level problems (unparseable coercions, formula failures) fall
// back to defaults or error values and never fail the mutation.

func newID() string {
	return uuid.NewString()
}

// ColumnUpdate carries the fields of a column to change. Nil fields are
// left untouched.
type ColumnUpdate struct {
	Name     *string
	Type     *coltype.Type
	Primary  *bool
	Required *bool
	Width    *int
	Visible  *bool
	Config   *coltype.Config
}

// ViewUpdate carries the fields of a view to change. Nil fields are
// left untouched.
type ViewUpdate struct {
	Name      *string
	Type      *model.ViewType
	IsDefault *bool
	Config    *model.ViewConfig
}

// AddColumn appends a column to the schema and backfills every existing
// row with the type's default value for the new column ID. The ID is
// generated when empty.
func AddColumn(db *model.Database, col model.Column) (model.Column, error) {
	if !coltype.Known(col.Type) {
		return model.Column{}, errors.Newf(errors.ErrorTypeValidation, "unknown column type %q", col.Type)
	}
	if col.ID == "" {
		col.ID = newID()
	}
	if db.ColumnByID(col.ID) != nil {
		return model.Column{}, errors.Newf(errors.ErrorTypeConflict, "column id %q already exists", col.ID)
	}
	if col.Primary && db.PrimaryColumn() != nil {
		return model.Column{}, errors.New(errors.ErrorTypeConflict, "database already has a primary column")
	}

	db.Columns = append(db.Columns, col)

	if col.Type == coltype.TypeRelation {
		db.Relations = append(db.Relations, model.Relation{
			ID:         newID(),
			ColumnID:   col.ID,
			DatabaseID: col.Config.DatabaseID,
			Multiple:   col.Config.Multiple,
		})
	}

	for i := range db.Rows {
		data := db.Rows[i].CloneData()
		data[col.ID] = initialCellValue(col, &db.Rows[i], "")
		db.Rows[i].Data = data
	}
	if col.Type == coltype.TypeFormula {
		recomputeFormulaColumns(db)
	}

	touch(db)
	return col, nil
}

// UpdateColumn changes a column in place. A type change coerces every
// row's stored value to the new type, falling back to the new type's
// default when a value cannot be represented. The primary flag can only
// move by designating a replacement: setting Primary on another column
// transfers it, while clearing it on the sole primary column is
// rejected.
func UpdateColumn(db *model.Database, id string, updates ColumnUpdate) error {
	col := db.ColumnByID(id)
	if col == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "column %q not found", id)
	}

	// Reject before touching any field so a failed update leaves the
	// column exactly as it was.
	if updates.Type != nil && !coltype.Known(*updates.Type) {
		return errors.Newf(errors.ErrorTypeValidation, "unknown column type %q", *updates.Type)
	}

	if updates.Primary != nil {
		switch {
		case !*updates.Primary && col.Primary:
			return errors.New(errors.ErrorTypeConflict,
				"cannot unset the primary column; set primary on a replacement column instead")
		case *updates.Primary && !col.Primary:
			if current := db.PrimaryColumn(); current != nil {
				current.Primary = false
			}
			col.Primary = true
		}
	}

	if updates.Name != nil {
		col.Name = *updates.Name
	}
	if updates.Required != nil {
		col.Required = *updates.Required
	}
	if updates.Width != nil {
		col.Width = *updates.Width
	}
	if updates.Visible != nil {
		col.Visible = *updates.Visible
	}
	if updates.Config != nil {
		col.Config = *updates.Config
	}

	if updates.Type != nil && *updates.Type != col.Type {
		from := col.Type
		col.Type = *updates.Type
		for i := range db.Rows {
			data := db.Rows[i].CloneData()
			data[col.ID] = coltype.Coerce(data[col.ID], from, col.Type)
			db.Rows[i].Data = data
		}
	}

	// A changed formula expression (or a conversion to Formula) must
	// flow into every row's computed cell.
	if col.Type == coltype.TypeFormula && (updates.Config != nil || updates.Type != nil) {
		recomputeFormulaColumns(db)
	}

	touch(db)
	return nil
}

// DeleteColumn removes a column and the corresponding key from every
// row. The primary column cannot be deleted.
func DeleteColumn(db *model.Database, id string) error {
	col := db.ColumnByID(id)
	if col == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "column %q not found", id)
	}
	if col.Primary {
		return errors.New(errors.ErrorTypeConflict, "cannot delete the primary column")
	}

	for i := range db.Columns {
		if db.Columns[i].ID == id {
			db.Columns = append(db.Columns[:i], db.Columns[i+1:]...)
			break
		}
	}

	kept := db.Relations[:0]
	for _, rel := range db.Relations {
		if rel.ColumnID != id {
			kept = append(kept, rel)
		}
	}
	db.Relations = kept

	for i := range db.Rows {
		data := db.Rows[i].CloneData()
		delete(data, id)
		db.Rows[i].Data = data
	}

	touch(db)
	return nil
}

// AddRow appends a row built from initialData where provided and
// per-column defaults everywhere else, then computes its formula
// columns. identity fills CreatedBy/LastEditedBy columns and may be
// empty.
func AddRow(db *model.Database, initialData map[string]interface{}, identity string) (model.Row, error) {
	now := time.Now()
	row := model.Row{
		ID:       newID(),
		Created:  now,
		Modified: now,
		Data:     make(map[string]interface{}, len(db.Columns)),
	}

	for _, col := range db.Columns {
		if v, ok := initialData[col.ID]; ok {
			row.Data[col.ID] = v
			continue
		}
		row.Data[col.ID] = initialCellValue(col, &row, identity)
	}
	recomputeRowFormulas(db, &row)

	db.Rows = append(db.Rows, row)
	touch(db)
	return row, nil
}

// UpdateRow merges updates into the row's data, refreshes its modified
// timestamp and recomputes every formula column for that row. Keys not
// matching a column are dropped so the one-key-per-column invariant
// holds.
func UpdateRow(db *model.Database, id string, updates map[string]interface{}, identity string) error {
	row := db.RowByID(id)
	if row == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "row %q not found", id)
	}

	now := time.Now()
	data := row.CloneData()
	for key, value := range updates {
		if db.ColumnByID(key) != nil {
			data[key] = value
		}
	}
	row.Data = data
	row.Modified = now

	for _, col := range db.Columns {
		switch col.Type {
		case coltype.TypeLastEditedTime:
			row.Data[col.ID] = now.Format(time.RFC3339)
		case coltype.TypeLastEditedBy:
			if identity != "" {
				row.Data[col.ID] = identity
			}
		}
	}
	recomputeRowFormulas(db, row)

	touch(db)
	return nil
}

// DeleteRow removes a row.
func DeleteRow(db *model.Database, id string) error {
	for i := range db.Rows {
		if db.Rows[i].ID == id {
			db.Rows = append(db.Rows[:i], db.Rows[i+1:]...)
			touch(db)
			return nil
		}
	}
	return errors.Newf(errors.ErrorTypeNotFound, "row %q not found", id)
}

// DuplicateRow appends a copy of the row under a new ID with fresh
// timestamps. Only the row's own cell values are copied; rows in other
// databases referencing the original keep pointing at the original.
func DuplicateRow(db *model.Database, id string) (model.Row, error) {
	source := db.RowByID(id)
	if source == nil {
		return model.Row{}, errors.Newf(errors.ErrorTypeNotFound, "row %q not found", id)
	}

	now := time.Now()
	copyRow := model.Row{
		ID:       newID(),
		Created:  now,
		Modified: now,
		Data:     source.CloneData(),
	}

	for _, col := range db.Columns {
		switch col.Type {
		case coltype.TypeCreatedTime, coltype.TypeLastEditedTime:
			copyRow.Data[col.ID] = now.Format(time.RFC3339)
		}
	}

	db.Rows = append(db.Rows, copyRow)
	touch(db)
	return copyRow, nil
}

// CreateView appends a view. The ID is generated when empty; the first
// view of a database becomes the default, and a view created with
// IsDefault set takes the flag over from the current default.
func CreateView(db *model.Database, view model.View) (model.View, error) {
	if !model.KnownViewType(view.Type) {
		return model.View{}, errors.Newf(errors.ErrorTypeValidation, "unknown view type %q", view.Type)
	}
	if view.ID == "" {
		view.ID = newID()
	}
	if db.ViewByID(view.ID) != nil {
		return model.View{}, errors.Newf(errors.ErrorTypeConflict, "view id %q already exists", view.ID)
	}

	if db.DefaultView() == nil {
		view.IsDefault = true
	} else if view.IsDefault {
		db.DefaultView().IsDefault = false
	}

	db.Views = append(db.Views, view)
	touch(db)
	return view, nil
}

// UpdateView changes a view's name, type, default flag or whole config.
// The default flag can only move to another view, never be cleared.
func UpdateView(db *model.Database, id string, updates ViewUpdate) error {
	view := db.ViewByID(id)
	if view == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q not found", id)
	}

	if updates.Type != nil && !model.KnownViewType(*updates.Type) {
		return errors.Newf(errors.ErrorTypeValidation, "unknown view type %q", *updates.Type)
	}

	if updates.IsDefault != nil {
		switch {
		case !*updates.IsDefault && view.IsDefault:
			return errors.New(errors.ErrorTypeConflict,
				"cannot unset the default view; set another view as default instead")
		case *updates.IsDefault && !view.IsDefault:
			if current := db.DefaultView(); current != nil {
				current.IsDefault = false
			}
			view.IsDefault = true
		}
	}

	if updates.Name != nil {
		view.Name = *updates.Name
	}
	if updates.Type != nil {
		view.Type = *updates.Type
	}
	if updates.Config != nil {
		view.Config = *updates.Config
	}

	touch(db)
	return nil
}

// DeleteView removes a view. The default view cannot be deleted.
func DeleteView(db *model.Database, id string) error {
	view := db.ViewByID(id)
	if view == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q not found", id)
	}
	if view.IsDefault {
		return errors.New(errors.ErrorTypeConflict, "cannot delete the default view")
	}

	for i := range db.Views {
		if db.Views[i].ID == id {
			db.Views = append(db.Views[:i], db.Views[i+1:]...)
			break
		}
	}
	touch(db)
	return nil
}

// AddFilter appends a filter to a view's config. The column must exist
// and the operator must be in the column type's allowed set.
func AddFilter(db *model.Database, viewID string, f model.Filter) error {
	view := db.ViewByID(viewID)
	if view == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q not found", viewID)
	}
	if err := checkFilter(db, f); err != nil {
		return err
	}

	view.Config.Filters = append(view.Config.Filters, f)
	touch(db)
	return nil
}

// UpdateFilter replaces the filter at the given index.
func UpdateFilter(db *model.Database, viewID string, index int, f model.Filter) error {
	view := db.ViewByID(viewID)
	if view == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q not found", viewID)
	}
	if index < 0 || index >= len(view.Config.Filters) {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q has no filter at index %d", viewID, index)
	}
	if err := checkFilter(db, f); err != nil {
		return err
	}

	view.Config.Filters[index] = f
	touch(db)
	return nil
}

// RemoveFilter deletes the filter at the given index.
func RemoveFilter(db *model.Database, viewID string, index int) error {
	view := db.ViewByID(viewID)
	if view == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q not found", viewID)
	}
	if index < 0 || index >= len(view.Config.Filters) {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q has no filter at index %d", viewID, index)
	}

	view.Config.Filters = append(view.Config.Filters[:index], view.Config.Filters[index+1:]...)
	touch(db)
	return nil
}

func checkFilter(db *model.Database, f model.Filter) error {
	col := db.ColumnByID(f.Column)
	if col == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "column %q not found", f.Column)
	}
	if !coltype.AllowsOperator(col.Type, f.Operator) {
		return errors.Newf(errors.ErrorTypeValidation,
			"operator %q is not allowed for %s columns", f.Operator, col.Type)
	}
	return nil
}

// AddSort appends a sort key to a view's config, or replaces the
// existing key in place when the column is already sorted, keeping at
// most one Sort per column.
func AddSort(db *model.Database, viewID string, s model.Sort) error {
	view := db.ViewByID(viewID)
	if view == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q not found", viewID)
	}
	if db.ColumnByID(s.Column) == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "column %q not found", s.Column)
	}
	if s.Direction == "" {
		s.Direction = model.SortAsc
	}
	if s.Direction != model.SortAsc && s.Direction != model.SortDesc {
		return errors.Newf(errors.ErrorTypeValidation, "unknown sort direction %q", s.Direction)
	}

	for i := range view.Config.Sorts {
		if view.Config.Sorts[i].Column == s.Column {
			view.Config.Sorts[i] = s
			touch(db)
			return nil
		}
	}
	view.Config.Sorts = append(view.Config.Sorts, s)
	touch(db)
	return nil
}

// RemoveSort deletes the sort key for the given column.
func RemoveSort(db *model.Database, viewID string, columnID string) error {
	view := db.ViewByID(viewID)
	if view == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q not found", viewID)
	}

	for i := range view.Config.Sorts {
		if view.Config.Sorts[i].Column == columnID {
			view.Config.Sorts = append(view.Config.Sorts[:i], view.Config.Sorts[i+1:]...)
			touch(db)
			return nil
		}
	}
	return errors.Newf(errors.ErrorTypeNotFound, "view %q has no sort for column %q", viewID, columnID)
}

// SetGroupBy sets or clears (empty ID) the view's group column.
func SetGroupBy(db *model.Database, viewID string, columnID string) error {
	view := db.ViewByID(viewID)
	if view == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "view %q not found", viewID)
	}
	if columnID != "" && db.ColumnByID(columnID) == nil {
		return errors.Newf(errors.ErrorTypeNotFound, "column %q not found", columnID)
	}

	view.Config.GroupBy = columnID
	touch(db)
	return nil
}

// initialCellValue is the backfill value for a column on a given row:
// the type default, except for the timestamp and identity column types,
// which mirror row metadata.
func initialCellValue(col model.Column, row *model.Row, identity string) interface{} {
	switch col.Type {
	case coltype.TypeCreatedTime:
		return row.Created.Format(time.RFC3339)
	case coltype.TypeLastEditedTime:
		return row.Modified.Format(time.RFC3339)
	case coltype.TypeCreatedBy, coltype.TypeLastEditedBy:
		return identity
	default:
		return coltype.DefaultValue(col.Type)
	}
}

// recomputeRowFormulas refreshes every formula cell of one row.
// Formula failures land in the cell as error values; they never fail
// the mutation.
func recomputeRowFormulas(db *model.Database, row *model.Row) {
	for _, col := range db.Columns {
		if col.Type == coltype.TypeFormula {
			row.Data[col.ID] = formula.Calculate(col.Config.Formula, row.Data, db.Columns)
		}
	}
}

// recomputeFormulaColumns refreshes formula cells on every row,
// copy-on-write per row.
func recomputeFormulaColumns(db *model.Database) {
	for i := range db.Rows {
		data := db.Rows[i].CloneData()
		db.Rows[i].Data = data
		recomputeRowFormulas(db, &db.Rows[i])
	}
}

func touch(db *model.Database) {
	db.Modified = time.Now()
}
