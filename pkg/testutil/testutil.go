// Package testutil provides testing utilities for gridbase
package testutil

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/model"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// FixedTime is the reference time fixture tests anchor relative date
// filters on.
var FixedTime = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

// ScoreDatabase builds the canonical test database: a primary Name text
// column, a numeric Score column, a MultiSelect Tags column and a
// default table view, with rows A(3, [x y]), B(9, []), C(3, [x]).
func ScoreDatabase() *model.Database {
	now := FixedTime
	columns := []model.Column{
		{ID: "col-name", Name: "Name", Type: coltype.TypeText, Primary: true, Visible: true},
		{ID: "col-score", Name: "Score", Type: coltype.TypeNumber, Visible: true},
		{ID: "col-tags", Name: "Tags", Type: coltype.TypeMultiSelect, Visible: true,
			Config: coltype.Config{Options: []string{"x", "y"}}},
	}
	rows := []model.Row{
		{ID: "row-a", Created: now, Modified: now, Data: map[string]interface{}{
			"col-name": "A", "col-score": float64(3), "col-tags": []string{"x", "y"},
		}},
		{ID: "row-b", Created: now, Modified: now, Data: map[string]interface{}{
			"col-name": "B", "col-score": float64(9), "col-tags": []string{},
		}},
		{ID: "row-c", Created: now, Modified: now, Data: map[string]interface{}{
			"col-name": "C", "col-score": float64(3), "col-tags": []string{"x"},
		}},
	}
	views := []model.View{
		{ID: "view-default", Name: "Table", Type: model.ViewTable, IsDefault: true,
			Config: model.ViewConfig{FilterOperator: model.CombinatorAnd}},
	}

	return &model.Database{
		ID:        "db-scores",
		Title:     "Scores",
		Created:   now,
		Modified:  now,
		Columns:   columns,
		Rows:      rows,
		Views:     views,
		Relations: []model.Relation{},
		Settings:  map[string]interface{}{},
	}
}

// RowNames maps rows to their primary Name values, preserving order.
// Handy for asserting row ordering.
func RowNames(rows []model.Row) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i], _ = row.Data["col-name"].(string)
	}
	return out
}
