// Package store is the persistence collaborator for gridbase databases:
// one JSON file per database under a data directory. The engine never
// touches disk itself; it consumes and produces whole database values
// and the store marshals them unchanged.
package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gridbase/gridbase/pkg/errors"
	gridjson "github.com/gridbase/gridbase/pkg/json"
	"github.com/gridbase/gridbase/pkg/logger"
	"github.com/gridbase/gridbase/pkg/model"
)

const fileExt = ".json"

// Store reads and writes database files under a single directory.
type Store struct {
	dir     string
	backups bool
	log     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBackups keeps a gzip copy of the previous file contents on every
// save, under <dir>/backups.
func WithBackups() Option {
	return func(s *Store) { s.backups = true }
}

// WithLogger overrides the store's logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New opens a store rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Store, error) {
	s := &Store{dir: dir, log: logger.Get()}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create data directory")
	}
	if s.backups {
		if err := os.MkdirAll(s.backupDir(), 0o755); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create backup directory")
		}
	}
	return s, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

func (s *Store) backupDir() string {
	return filepath.Join(s.dir, "backups")
}

// Load reads one database by ID.
func (s *Store) Load(id string) (*model.Database, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrorTypeNotFound, "database %q not found", id)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read database file")
	}

	var db model.Database
	if err := gridjson.Unmarshal(data, &db); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode database file")
	}
	return &db, nil
}

// Save writes one database atomically: the record is marshaled to a
// temp file in the same directory and renamed over the previous one, so
// a crash mid-write never leaves a torn file. With backups enabled the
// previous contents are kept gzip-compressed first.
func (s *Store) Save(db *model.Database) error {
	if db.ID == "" {
		return errors.New(errors.ErrorTypeValidation, "cannot save a database without an id")
	}

	if s.backups {
		if err := s.backup(db.ID); err != nil {
			return err
		}
	}

	data, err := gridjson.MarshalIndent(db, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to encode database")
	}

	if err := writeFileAtomic(s.path(db.ID), data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write database file")
	}

	s.log.Debug("database saved",
		zap.String("database_id", db.ID),
		zap.Int("rows", len(db.Rows)),
		zap.Int("columns", len(db.Columns)))
	return nil
}

// Delete soft-deletes a database: the record stays on disk with its
// deleted flag set, so List skips it but the file can still be
// recovered.
func (s *Store) Delete(id string) error {
	db, err := s.Load(id)
	if err != nil {
		return err
	}
	db.Deleted = true
	return s.Save(db)
}

// Summary describes one stored database without its rows.
type Summary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
	Views   int    `json:"views"`
}

// List returns a summary of every non-deleted database in the store.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read data directory")
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), fileExt)
		db, err := s.Load(id)
		if err != nil {
			s.log.Warn("skipping unreadable database file",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		if db.Deleted {
			continue
		}
		out = append(out, Summary{
			ID:      db.ID,
			Title:   db.Title,
			Columns: len(db.Columns),
			Rows:    len(db.Rows),
			Views:   len(db.Views),
		})
	}
	return out, nil
}

// writeFileAtomic writes data to a temp file in the target directory,
// fsyncs it and renames it over path.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp.%s.%d", base, os.Getpid()))

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	if dirf, err := os.Open(dir); err == nil {
		_ = dirf.Sync()
		_ = dirf.Close()
	}
	return nil
}
