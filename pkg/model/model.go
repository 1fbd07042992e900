// Package model defines the persisted entities of a gridbase database:
// the database itself, its columns, rows and views, and the derived
// ViewData snapshot the view pipeline produces. The JSON field names
// match the on-disk record shape so the store can marshal these types
// unchanged.
package model

import (
	"time"

	"github.com/gridbase/gridbase/pkg/coltype"
)

// Database is a complete tabular collection: an ordered column schema,
// the rows holding one value per column, and the saved views over them.
// Row order is insertion order and is not authoritative for display.
type Database struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	Icon         string                 `json:"icon,omitempty"`
	Created      time.Time              `json:"created"`
	Modified     time.Time              `json:"modified"`
	CreatedBy    string                 `json:"created_by,omitempty"`
	LastEditedBy string                 `json:"last_edited_by,omitempty"`
	Parent       string                 `json:"parent,omitempty"`
	Deleted      bool                   `json:"deleted"`
	Columns      []Column               `json:"columns"`
	Rows         []Row                  `json:"rows"`
	Views        []View                 `json:"views"`
	Relations    []Relation             `json:"relations"`
	Settings     map[string]interface{} `json:"settings"`
}

// Column is a typed field definition shared by every row.
type Column struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     coltype.Type   `json:"type"`
	Primary  bool           `json:"primary"`
	Required bool           `json:"required,omitempty"`
	Width    int            `json:"width,omitempty"`
	Visible  bool           `json:"visible"`
	Config   coltype.Config `json:"config"`
}

// Row is one record. Data holds one value per column, keyed by column ID.
// Modified refreshes on every data change and is never set by callers.
type Row struct {
	ID       string                 `json:"id"`
	Created  time.Time              `json:"created"`
	Modified time.Time              `json:"modified"`
	Data     map[string]interface{} `json:"data"`
}

// Relation records a link established by a Relation column to another
// database, so the workspace can resolve references across files.
type Relation struct {
	ID         string `json:"id"`
	ColumnID   string `json:"column_id"`
	DatabaseID string `json:"database_id"`
	Multiple   bool   `json:"multiple,omitempty"`
}

// ViewType selects a view's presentation.
type ViewType string

const (
	ViewTable    ViewType = "TABLE"
	ViewBoard    ViewType = "BOARD"
	ViewCalendar ViewType = "CALENDAR"
	ViewList     ViewType = "LIST"
	ViewGallery  ViewType = "GALLERY"
	ViewTimeline ViewType = "TIMELINE"
)

// KnownViewType reports whether t is one of the defined view types.
func KnownViewType(t ViewType) bool {
	switch t {
	case ViewTable, ViewBoard, ViewCalendar, ViewList, ViewGallery, ViewTimeline:
		return true
	}
	return false
}

// Combinator joins multiple filters.
type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

// SortDirection orders a sort key.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Filter is one predicate over one column.
type Filter struct {
	Column    string           `json:"column"`
	Operator  coltype.Operator `json:"operator"`
	Condition interface{}      `json:"condition,omitempty"`
}

// Sort is one ordering key. A view config holds at most one Sort per
// column; adding a sort for an already-sorted column replaces it.
type Sort struct {
	Column    string        `json:"column"`
	Direction SortDirection `json:"direction"`
}

// ViewConfig is the saved filter/sort/group/visible-columns
// configuration of a view. Extra carries view-type-specific keys
// (board card size, calendar date column, ...) opaquely.
type ViewConfig struct {
	VisibleColumns []string               `json:"visible_columns,omitempty"`
	ColumnOrder    []string               `json:"column_order,omitempty"`
	Filters        []Filter               `json:"filters,omitempty"`
	FilterOperator Combinator             `json:"filter_operator,omitempty"`
	Sorts          []Sort                 `json:"sorts,omitempty"`
	GroupBy        string                 `json:"group_by,omitempty"`
	Extra          map[string]interface{} `json:"extra,omitempty"`
}

// View is a saved projection configuration over a database's rows.
type View struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      ViewType   `json:"type"`
	IsDefault bool       `json:"is_default"`
	Config    ViewConfig `json:"config"`
}

// ViewData is the derived projection a view renders. It is recomputed
// wholesale on every relevant change and never patched in place; a
// handed-out snapshot stays valid forever. TotalCount reflects the
// pre-filter row count.
type ViewData struct {
	Rows         []Row      `json:"rows"`
	FilteredRows []Row      `json:"filtered_rows"`
	SortedRows   []Row      `json:"sorted_rows"`
	GroupedRows  *RowGroups `json:"grouped_rows,omitempty"`
	TotalCount   int        `json:"total_count"`
}

// ColumnByID returns the column with the given ID, or nil.
func (d *Database) ColumnByID(id string) *Column {
	for i := range d.Columns {
		if d.Columns[i].ID == id {
			return &d.Columns[i]
		}
	}
	return nil
}

// ColumnByName returns the first column with the given name, or nil.
func (d *Database) ColumnByName(name string) *Column {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i]
		}
	}
	return nil
}

// PrimaryColumn returns the primary column, or nil if the database is
// malformed.
func (d *Database) PrimaryColumn() *Column {
	for i := range d.Columns {
		if d.Columns[i].Primary {
			return &d.Columns[i]
		}
	}
	return nil
}

// RowByID returns the row with the given ID, or nil.
func (d *Database) RowByID(id string) *Row {
	for i := range d.Rows {
		if d.Rows[i].ID == id {
			return &d.Rows[i]
		}
	}
	return nil
}

// ViewByID returns the view with the given ID, or nil.
func (d *Database) ViewByID(id string) *View {
	for i := range d.Views {
		if d.Views[i].ID == id {
			return &d.Views[i]
		}
	}
	return nil
}

// DefaultView returns the view flagged is_default, or nil if the
// database is malformed.
func (d *Database) DefaultView() *View {
	for i := range d.Views {
		if d.Views[i].IsDefault {
			return &d.Views[i]
		}
	}
	return nil
}

// CloneData returns a copy of a row's data map. Mutations operate
// copy-on-write so ViewData snapshots sharing the old map stay stable.
func (r *Row) CloneData() map[string]interface{} {
	out := make(map[string]interface{}, len(r.Data))
	for k, v := range r.Data {
		out[k] = v
	}
	return out
}
