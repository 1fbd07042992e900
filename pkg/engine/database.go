package engine

import (
	"time"

	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/model"
)

// NewDatabase builds a minimal valid database: a primary text column
// named "Name" and a default table view. The caller persists it.
func NewDatabase(title, createdBy string) *model.Database {
	now := time.Now()
	nameCol := model.Column{
		ID:      newID(),
		Name:    "Name",
		Type:    coltype.TypeText,
		Primary: true,
		Visible: true,
	}
	defaultView := model.View{
		ID:        newID(),
		Name:      "Table",
		Type:      model.ViewTable,
		IsDefault: true,
		Config: model.ViewConfig{
			VisibleColumns: []string{nameCol.ID},
			ColumnOrder:    []string{nameCol.ID},
			FilterOperator: model.CombinatorAnd,
		},
	}

	return &model.Database{
		ID:           newID(),
		Title:        title,
		Created:      now,
		Modified:     now,
		CreatedBy:    createdBy,
		LastEditedBy: createdBy,
		Columns:      []model.Column{nameCol},
		Rows:         []model.Row{},
		Views:        []model.View{defaultView},
		Relations:    []model.Relation{},
		Settings:     map[string]interface{}{},
	}
}
