package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/model"
	"github.com/gridbase/gridbase/pkg/testutil"
)

func TestApplySortsNoKeysKeepsOrder(t *testing.T) {
	db := testutil.ScoreDatabase()
	out := ApplySorts(db.Rows, db.Columns, nil)
	assert.Equal(t, []string{"A", "B", "C"}, testutil.RowNames(out))
}

func TestApplySortsDoesNotModifyInput(t *testing.T) {
	db := testutil.ScoreDatabase()
	sorts := []model.Sort{{Column: "col-score", Direction: model.SortDesc}}

	_ = ApplySorts(db.Rows, db.Columns, sorts)
	assert.Equal(t, []string{"A", "B", "C"}, testutil.RowNames(db.Rows))
}

func TestApplySortsDescending(t *testing.T) {
	db := testutil.ScoreDatabase()
	sorts := []model.Sort{{Column: "col-score", Direction: model.SortDesc}}

	out := ApplySorts(db.Rows, db.Columns, sorts)
	// A and C tie on 3; stability keeps A before C.
	assert.Equal(t, []string{"B", "A", "C"}, testutil.RowNames(out))
}

func TestApplySortsStability(t *testing.T) {
	columns := []model.Column{
		{ID: "col-name", Name: "Name", Type: coltype.TypeText},
		{ID: "col-rank", Name: "Rank", Type: coltype.TypeNumber},
	}
	rows := []model.Row{
		{ID: "r1", Data: map[string]interface{}{"col-name": "first", "col-rank": float64(1)}},
		{ID: "r2", Data: map[string]interface{}{"col-name": "second", "col-rank": float64(1)}},
		{ID: "r3", Data: map[string]interface{}{"col-name": "third", "col-rank": float64(1)}},
	}
	sorts := []model.Sort{{Column: "col-rank", Direction: model.SortAsc}}

	out := ApplySorts(rows, columns, sorts)
	assert.Equal(t, "r1", out[0].ID)
	assert.Equal(t, "r2", out[1].ID)
	assert.Equal(t, "r3", out[2].ID)
}

func TestApplySortsMultiKey(t *testing.T) {
	columns := []model.Column{
		{ID: "col-group", Name: "Group", Type: coltype.TypeText},
		{ID: "col-n", Name: "N", Type: coltype.TypeNumber},
	}
	rows := []model.Row{
		{ID: "r1", Data: map[string]interface{}{"col-group": "b", "col-n": float64(1)}},
		{ID: "r2", Data: map[string]interface{}{"col-group": "a", "col-n": float64(2)}},
		{ID: "r3", Data: map[string]interface{}{"col-group": "a", "col-n": float64(1)}},
		{ID: "r4", Data: map[string]interface{}{"col-group": "b", "col-n": float64(2)}},
	}
	sorts := []model.Sort{
		{Column: "col-group", Direction: model.SortAsc},
		{Column: "col-n", Direction: model.SortDesc},
	}

	out := ApplySorts(rows, columns, sorts)
	ids := []string{out[0].ID, out[1].ID, out[2].ID, out[3].ID}
	assert.Equal(t, []string{"r2", "r3", "r4", "r1"}, ids)
}

func TestApplySortsNullsFirst(t *testing.T) {
	columns := []model.Column{
		{ID: "col-n", Name: "N", Type: coltype.TypeNumber},
	}
	rows := []model.Row{
		{ID: "r1", Data: map[string]interface{}{"col-n": float64(5)}},
		{ID: "r2", Data: map[string]interface{}{}},
		{ID: "r3", Data: map[string]interface{}{"col-n": float64(1)}},
	}

	t.Run("ascending", func(t *testing.T) {
		out := ApplySorts(rows, columns, []model.Sort{{Column: "col-n", Direction: model.SortAsc}})
		assert.Equal(t, "r2", out[0].ID)
		assert.Equal(t, "r3", out[1].ID)
		assert.Equal(t, "r1", out[2].ID)
	})

	t.Run("descending puts nulls last by negation", func(t *testing.T) {
		out := ApplySorts(rows, columns, []model.Sort{{Column: "col-n", Direction: model.SortDesc}})
		assert.Equal(t, "r1", out[0].ID)
		assert.Equal(t, "r3", out[1].ID)
		assert.Equal(t, "r2", out[2].ID)
	})
}

func TestApplySortsSkipsStaleColumn(t *testing.T) {
	db := testutil.ScoreDatabase()
	sorts := []model.Sort{
		{Column: "col-deleted", Direction: model.SortAsc},
		{Column: "col-score", Direction: model.SortDesc},
	}

	out := ApplySorts(db.Rows, db.Columns, sorts)
	assert.Equal(t, []string{"B", "A", "C"}, testutil.RowNames(out))
}
