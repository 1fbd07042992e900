package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/testutil"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append(opts, WithLogger(testutil.TestLogger(t)))
	s, err := New(t.TempDir(), opts...)
	require.NoError(t, err)
	return s
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	s := newTestStore(t)
	db := testutil.ScoreDatabase()

	require.NoError(t, s.Save(db))

	loaded, err := s.Load(db.ID)
	require.NoError(t, err)
	assert.Equal(t, db.ID, loaded.ID)
	assert.Equal(t, db.Title, loaded.Title)
	require.Len(t, loaded.Rows, 3)
	assert.Equal(t, "A", loaded.Rows[0].Data["col-name"])
	// Numbers come back as float64 through JSON.
	assert.Equal(t, float64(3), loaded.Rows[0].Data["col-score"])
	require.Len(t, loaded.Views, 1)
	assert.True(t, loaded.Views[0].IsDefault)
}

func TestSaveRejectsMissingID(t *testing.T) {
	s := newTestStore(t)
	db := testutil.ScoreDatabase()
	db.ID = ""

	err := s.Save(db)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestLoadMissingDatabase(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("nope")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestLoadCorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "bad.json"), []byte("{nope"), 0o644))

	_, err := s.Load("bad")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(testutil.ScoreDatabase()))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp.")
	}
}

func TestDeleteIsSoft(t *testing.T) {
	s := newTestStore(t)
	db := testutil.ScoreDatabase()
	require.NoError(t, s.Save(db))

	require.NoError(t, s.Delete(db.ID))

	// The file survives with the deleted flag set.
	loaded, err := s.Load(db.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Deleted)

	summaries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestList(t *testing.T) {
	s := newTestStore(t)

	first := testutil.ScoreDatabase()
	require.NoError(t, s.Save(first))

	second := testutil.ScoreDatabase()
	second.ID = "db-other"
	second.Title = "Other"
	require.NoError(t, s.Save(second))

	summaries, err := s.List()
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := map[string]Summary{}
	for _, summary := range summaries {
		byID[summary.ID] = summary
	}
	assert.Equal(t, "Scores", byID["db-scores"].Title)
	assert.Equal(t, 3, byID["db-scores"].Rows)
	assert.Equal(t, 3, byID["db-scores"].Columns)
	assert.Equal(t, 1, byID["db-scores"].Views)
	assert.Equal(t, "Other", byID["db-other"].Title)
}

func TestListSkipsUnreadableFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(testutil.ScoreDatabase()))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "junk.json"), []byte("{"), 0o644))

	summaries, err := s.List()
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestBackupAndRestore(t *testing.T) {
	s := newTestStore(t, WithBackups())
	db := testutil.ScoreDatabase()

	// First save has nothing to back up.
	require.NoError(t, s.Save(db))
	_, err := os.Stat(filepath.Join(s.Dir(), "backups", db.ID+".json.gz"))
	assert.True(t, os.IsNotExist(err))

	// Second save preserves the first contents.
	db.Title = "Renamed"
	require.NoError(t, s.Save(db))
	_, err = os.Stat(filepath.Join(s.Dir(), "backups", db.ID+".json.gz"))
	require.NoError(t, err)

	require.NoError(t, s.RestoreBackup(db.ID))
	restored, err := s.Load(db.ID)
	require.NoError(t, err)
	assert.Equal(t, "Scores", restored.Title)
}

func TestRestoreBackupMissing(t *testing.T) {
	s := newTestStore(t, WithBackups())
	err := s.RestoreBackup("nope")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}
