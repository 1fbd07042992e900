package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridbase/gridbase/internal/store"
	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/engine"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/model"
	"github.com/gridbase/gridbase/pkg/testutil"
)

func newTestWorkspace(t *testing.T, opts ...Option) *Workspace {
	t.Helper()
	st, err := store.New(t.TempDir(), store.WithLogger(testutil.TestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, st.Save(testutil.ScoreDatabase()))

	opts = append(opts,
		WithLogger(testutil.TestLogger(t)),
		WithClock(func() time.Time { return testutil.FixedTime }),
	)
	w, err := Open(st, "db-scores", opts...)
	require.NoError(t, err)
	return w
}

func TestOpenComputesInitialSnapshot(t *testing.T) {
	w := newTestWorkspace(t)

	data := w.ViewData()
	require.NotNil(t, data)
	assert.Equal(t, 3, data.TotalCount)
	assert.Equal(t, []string{"A", "B", "C"}, testutil.RowNames(data.SortedRows))
	assert.Equal(t, "view-default", w.ActiveView().ID)
}

func TestOpenRejectsInvalidDatabase(t *testing.T) {
	st, err := store.New(t.TempDir(), store.WithLogger(testutil.TestLogger(t)))
	require.NoError(t, err)

	db := testutil.ScoreDatabase()
	db.Columns[0].Primary = false
	require.NoError(t, st.Save(db))

	_, err = Open(st, db.ID, WithLogger(testutil.TestLogger(t)))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestCreatePersistsAndOpens(t *testing.T) {
	st, err := store.New(t.TempDir(), store.WithLogger(testutil.TestLogger(t)))
	require.NoError(t, err)

	w, err := Create(st, "Fresh", WithLogger(testutil.TestLogger(t)), WithIdentity("alice"))
	require.NoError(t, err)

	assert.True(t, w.Validate().Valid)
	assert.Equal(t, "Fresh", w.Database().Title)
	assert.Equal(t, "alice", w.Database().CreatedBy)

	// The new database reached disk before the workspace opened.
	loaded, err := st.Load(w.DatabaseID())
	require.NoError(t, err)
	assert.Equal(t, "Fresh", loaded.Title)
}

func TestMutationsRefreshSnapshotAndPersist(t *testing.T) {
	w := newTestWorkspace(t)
	before := w.ViewData()

	row, err := w.AddRow(map[string]interface{}{"col-name": "D"})
	require.NoError(t, err)
	require.NotEmpty(t, row.ID)

	after := w.ViewData()
	assert.NotSame(t, before, after)
	assert.Equal(t, 3, before.TotalCount)
	assert.Equal(t, 4, after.TotalCount)

	// The mutation was persisted.
	loaded, err := w.store.Load(w.DatabaseID())
	require.NoError(t, err)
	assert.Len(t, loaded.Rows, 4)
}

func TestRejectedMutationLeavesSnapshotUntouched(t *testing.T) {
	w := newTestWorkspace(t)
	before := w.ViewData()

	err := w.DeleteColumn("col-name")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
	assert.Same(t, before, w.ViewData())
}

func TestSetActiveView(t *testing.T) {
	w := newTestWorkspace(t)

	board, err := w.CreateView(model.View{
		Name: "High scores", Type: model.ViewBoard,
		Config: model.ViewConfig{
			Filters: []model.Filter{
				{Column: "col-score", Operator: coltype.OpGreaterThan, Condition: float64(5)},
			},
		},
	})
	require.NoError(t, err)

	require.NoError(t, w.SetActiveView(board.ID))
	assert.Equal(t, board.ID, w.ActiveView().ID)
	assert.Equal(t, []string{"B"}, testutil.RowNames(w.ViewData().SortedRows))

	err = w.SetActiveView("view-gone")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestDeleteActiveViewFallsBackToDefault(t *testing.T) {
	w := newTestWorkspace(t)

	board, err := w.CreateView(model.View{Name: "Board", Type: model.ViewBoard})
	require.NoError(t, err)
	require.NoError(t, w.SetActiveView(board.ID))

	require.NoError(t, w.DeleteView(board.ID))
	assert.Equal(t, "view-default", w.ActiveView().ID)
	assert.Equal(t, 3, w.ViewData().TotalCount)
}

func TestSetSearchQuery(t *testing.T) {
	w := newTestWorkspace(t)

	w.SetSearchQuery("b")
	assert.Equal(t, []string{"B"}, testutil.RowNames(w.ViewData().SortedRows))
	// totalCount stays pre-search.
	assert.Equal(t, 3, w.ViewData().TotalCount)

	w.SetSearchQuery("")
	assert.Len(t, w.ViewData().SortedRows, 3)
}

func TestViewConfigMutations(t *testing.T) {
	w := newTestWorkspace(t)

	require.NoError(t, w.AddSort("view-default", model.Sort{
		Column: "col-score", Direction: model.SortDesc,
	}))
	assert.Equal(t, []string{"B", "A", "C"}, testutil.RowNames(w.ViewData().SortedRows))

	require.NoError(t, w.AddFilter("view-default", model.Filter{
		Column: "col-tags", Operator: coltype.OpContains, Condition: "x",
	}))
	assert.Equal(t, []string{"A", "C"}, testutil.RowNames(w.ViewData().SortedRows))

	require.NoError(t, w.SetGroupBy("view-default", "col-tags"))
	grouped := w.ViewData().GroupedRows
	require.NotNil(t, grouped)
	assert.Equal(t, []string{"x", "y"}, grouped.Keys())

	require.NoError(t, w.RemoveFilter("view-default", 0))
	require.NoError(t, w.RemoveSort("view-default", "col-score"))
	require.NoError(t, w.SetGroupBy("view-default", ""))
	assert.Nil(t, w.ViewData().GroupedRows)
}

func TestIdentityFlowsIntoRows(t *testing.T) {
	w := newTestWorkspace(t, WithIdentity("carol"))

	author, err := w.AddColumn(model.Column{Name: "Author", Type: coltype.TypeCreatedBy})
	require.NoError(t, err)

	row, err := w.AddRow(nil)
	require.NoError(t, err)
	assert.Equal(t, "carol", row.Data[author.ID])
}

func TestDatabaseReturnsDetachedCopy(t *testing.T) {
	w := newTestWorkspace(t)

	clone := w.Database()
	clone.Title = "tampered"
	clone.Rows[0].Data["col-name"] = "tampered"

	assert.Equal(t, "Scores", w.Database().Title)
	assert.Equal(t, "A", w.Database().Rows[0].Data["col-name"])
}

func TestColumnUpdateThroughWorkspace(t *testing.T) {
	w := newTestWorkspace(t)

	textType := coltype.TypeText
	require.NoError(t, w.UpdateColumn("col-score", engine.ColumnUpdate{Type: &textType}))

	db := w.Database()
	assert.Equal(t, coltype.TypeText, db.ColumnByID("col-score").Type)
	assert.Equal(t, "3", db.RowByID("row-a").Data["col-score"])
}
