package store

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/gridbase/gridbase/pkg/errors"
)

// backup gzip-compresses the current on-disk contents of a database
// file into the backup directory before it is overwritten. A missing
// file (first save) is not an error.
func (s *Store) backup(id string) error {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read database file for backup")
	}

	target := filepath.Join(s.backupDir(), id+fileExt+".gz")
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create backup file")
	}

	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		f.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write backup")
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to finish backup")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close backup file")
	}

	s.log.Debug("database backup written", zap.String("database_id", id), zap.String("file", target))
	return nil
}

// RestoreBackup decompresses the backup copy of a database file over
// the live file.
func (s *Store) RestoreBackup(id string) error {
	source := filepath.Join(s.backupDir(), id+fileExt+".gz")
	f, err := os.Open(source)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrorTypeNotFound, "no backup for database %q", id)
		}
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to open backup file")
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read backup file")
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to decompress backup")
	}

	if err := writeFileAtomic(s.path(id), data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to restore database file")
	}
	s.log.Info("database restored from backup", zap.String("database_id", id))
	return nil
}
