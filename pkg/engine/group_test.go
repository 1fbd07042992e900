package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/model"
	"github.com/gridbase/gridbase/pkg/testutil"
)

func TestGroupRowsNoGroupColumn(t *testing.T) {
	db := testutil.ScoreDatabase()

	t.Run("empty column id yields one all group", func(t *testing.T) {
		groups := GroupRows(db.Rows, db.Columns, "")
		assert.Equal(t, []string{GroupAll}, groups.Keys())
		assert.Len(t, groups.Rows(GroupAll), 3)
	})

	t.Run("stale column id yields one all group", func(t *testing.T) {
		groups := GroupRows(db.Rows, db.Columns, "col-deleted")
		assert.Equal(t, []string{GroupAll}, groups.Keys())
		assert.Len(t, groups.Rows(GroupAll), 3)
	})
}

func TestGroupRowsMultiSelectFanOut(t *testing.T) {
	db := testutil.ScoreDatabase()
	groups := GroupRows(db.Rows, db.Columns, "col-tags")

	// First-seen order: A contributes x then y, B has no tags, C has x.
	assert.Equal(t, []string{"x", "y", GroupNoSelection}, groups.Keys())
	assert.Equal(t, []string{"A", "C"}, testutil.RowNames(groups.Rows("x")))
	assert.Equal(t, []string{"A"}, testutil.RowNames(groups.Rows("y")))
	assert.Equal(t, []string{"B"}, testutil.RowNames(groups.Rows(GroupNoSelection)))

	// Fan-out: sum of group sizes is sum over rows of max(1, tag count).
	assert.Equal(t, 4, groups.TotalRows())
}

func TestGroupRowsSelect(t *testing.T) {
	columns := []model.Column{
		{ID: "col-status", Name: "Status", Type: coltype.TypeSelect},
	}
	rows := []model.Row{
		{ID: "r1", Data: map[string]interface{}{"col-status": "Doing"}},
		{ID: "r2", Data: map[string]interface{}{"col-status": ""}},
		{ID: "r3", Data: map[string]interface{}{"col-status": "Done"}},
		{ID: "r4", Data: map[string]interface{}{"col-status": "Doing"}},
	}

	groups := GroupRows(rows, columns, "col-status")
	assert.Equal(t, []string{"Doing", GroupNoSelection, "Done"}, groups.Keys())
	assert.Len(t, groups.Rows("Doing"), 2)
	assert.Len(t, groups.Rows(GroupNoSelection), 1)
}

func TestGroupRowsCheckbox(t *testing.T) {
	columns := []model.Column{
		{ID: "col-done", Name: "Done", Type: coltype.TypeCheckbox},
	}
	rows := []model.Row{
		{ID: "r1", Data: map[string]interface{}{"col-done": false}},
		{ID: "r2", Data: map[string]interface{}{"col-done": true}},
		{ID: "r3", Data: map[string]interface{}{"col-done": false}},
	}

	groups := GroupRows(rows, columns, "col-done")
	assert.Equal(t, []string{GroupUnchecked, GroupChecked}, groups.Keys())
	assert.Len(t, groups.Rows(GroupUnchecked), 2)
	assert.Len(t, groups.Rows(GroupChecked), 1)
}

func TestGroupRowsDate(t *testing.T) {
	columns := []model.Column{
		{ID: "col-due", Name: "Due", Type: coltype.TypeDate},
	}
	rows := []model.Row{
		{ID: "r1", Data: map[string]interface{}{"col-due": "2024-03-15"}},
		{ID: "r2", Data: map[string]interface{}{"col-due": ""}},
		{ID: "r3", Data: map[string]interface{}{"col-due": "2024-03-15T18:30:00Z"}},
		{ID: "r4", Data: map[string]interface{}{"col-due": "2024-04-01"}},
	}

	groups := GroupRows(rows, columns, "col-due")
	// Same calendar day collapses to one key regardless of time of day.
	assert.Equal(t, []string{"Mar 15, 2024", GroupNoDate, "Apr 1, 2024"}, groups.Keys())
	assert.Len(t, groups.Rows("Mar 15, 2024"), 2)
}

func TestGroupRowsDefaultTypeUsesDisplayValue(t *testing.T) {
	columns := []model.Column{
		{ID: "col-n", Name: "N", Type: coltype.TypeNumber},
	}
	rows := []model.Row{
		{ID: "r1", Data: map[string]interface{}{"col-n": float64(3)}},
		{ID: "r2", Data: map[string]interface{}{"col-n": nil}},
		{ID: "r3", Data: map[string]interface{}{"col-n": float64(3)}},
	}

	groups := GroupRows(rows, columns, "col-n")
	require.Equal(t, []string{"3", GroupEmpty}, groups.Keys())
	assert.Len(t, groups.Rows("3"), 2)
	assert.Len(t, groups.Rows(GroupEmpty), 1)
}
