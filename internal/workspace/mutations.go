package workspace

import (
	"github.com/gridbase/gridbase/pkg/engine"
	"github.com/gridbase/gridbase/pkg/model"
)

// Each method below applies one engine mutation under the workspace
// mutex and finishes with exactly one snapshot recomputation and save.

// AddColumn appends a column and backfills every row with its default.
func (w *Workspace) AddColumn(col model.Column) (model.Column, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	added, err := engine.AddColumn(w.db, col)
	if finishErr := w.finishLocked("add_column", err); finishErr != nil {
		return model.Column{}, finishErr
	}
	return added, nil
}

// UpdateColumn changes a column; a type change coerces stored values.
func (w *Workspace) UpdateColumn(id string, updates engine.ColumnUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("update_column", engine.UpdateColumn(w.db, id, updates))
}

// DeleteColumn removes a non-primary column and its values.
func (w *Workspace) DeleteColumn(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("delete_column", engine.DeleteColumn(w.db, id))
}

// AddRow appends a row built from initialData plus per-column defaults.
func (w *Workspace) AddRow(initialData map[string]interface{}) (model.Row, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	row, err := engine.AddRow(w.db, initialData, w.identity)
	if finishErr := w.finishLocked("add_row", err); finishErr != nil {
		return model.Row{}, finishErr
	}
	return row, nil
}

// UpdateRow merges updates into a row and recomputes its formulas.
func (w *Workspace) UpdateRow(id string, updates map[string]interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("update_row", engine.UpdateRow(w.db, id, updates, w.identity))
}

// DeleteRow removes a row.
func (w *Workspace) DeleteRow(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("delete_row", engine.DeleteRow(w.db, id))
}

// DuplicateRow copies a row under a new ID.
func (w *Workspace) DuplicateRow(id string) (model.Row, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	row, err := engine.DuplicateRow(w.db, id)
	if finishErr := w.finishLocked("duplicate_row", err); finishErr != nil {
		return model.Row{}, finishErr
	}
	return row, nil
}

// CreateView appends a view.
func (w *Workspace) CreateView(view model.View) (model.View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	created, err := engine.CreateView(w.db, view)
	if finishErr := w.finishLocked("create_view", err); finishErr != nil {
		return model.View{}, finishErr
	}
	return created, nil
}

// UpdateView changes a view's name, type, default flag or config.
func (w *Workspace) UpdateView(id string, updates engine.ViewUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("update_view", engine.UpdateView(w.db, id, updates))
}

// DeleteView removes a non-default view. If it was the active view the
// workspace switches to the default view before recomputing.
func (w *Workspace) DeleteView(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	// refreshLocked falls back to the default view when the active
	// view no longer exists.
	return w.finishLocked("delete_view", engine.DeleteView(w.db, id))
}

// AddFilter appends a filter to a view.
func (w *Workspace) AddFilter(viewID string, f model.Filter) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("add_filter", engine.AddFilter(w.db, viewID, f))
}

// UpdateFilter replaces a view's filter at the given index.
func (w *Workspace) UpdateFilter(viewID string, index int, f model.Filter) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("update_filter", engine.UpdateFilter(w.db, viewID, index, f))
}

// RemoveFilter deletes a view's filter at the given index.
func (w *Workspace) RemoveFilter(viewID string, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("remove_filter", engine.RemoveFilter(w.db, viewID, index))
}

// AddSort appends or replaces the sort key for a column.
func (w *Workspace) AddSort(viewID string, s model.Sort) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("add_sort", engine.AddSort(w.db, viewID, s))
}

// RemoveSort deletes the sort key for a column.
func (w *Workspace) RemoveSort(viewID string, columnID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("remove_sort", engine.RemoveSort(w.db, viewID, columnID))
}

// SetGroupBy sets or clears the group column of a view.
func (w *Workspace) SetGroupBy(viewID string, columnID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked("set_group_by", engine.SetGroupBy(w.db, viewID, columnID))
}

// SetTitle renames the database.
func (w *Workspace) SetTitle(title string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.db.Title = title
	return w.finishLocked("set_title", nil)
}

// Columns returns a copy of the column schema.
func (w *Workspace) Columns() []model.Column {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]model.Column, len(w.db.Columns))
	copy(out, w.db.Columns)
	return out
}

// Views returns a copy of the saved views.
func (w *Workspace) Views() []model.View {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]model.View, len(w.db.Views))
	copy(out, w.db.Views)
	return out
}

// ColumnByName resolves a column by its display name.
func (w *Workspace) ColumnByName(name string) (model.Column, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if col := w.db.ColumnByName(name); col != nil {
		return *col, true
	}
	return model.Column{}, false
}
