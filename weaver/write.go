package weaver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// tempFile is the part of *os.File the writer needs.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// Filesystem hooks, replaced in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	statFile       = os.Stat
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic replaces path through a temporary file in the same
// directory. An existing file keeps its permissions.
func writeFileAtomic(path string, data []byte) (err error) {
	perm := fs.FileMode(0o644)
	if info, serr := statFile(path); serr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := createTempFile(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return ErrWrite.Wrap(err).WithData("file", path)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ErrWrite.Wrap(err).WithData("file", path)
	}
	if err = tmp.Close(); err != nil {
		return ErrWrite.Wrap(err).WithData("file", path)
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return ErrWrite.Wrap(err).WithData("file", path)
	}
	if err = renameFile(tmpPath, path); err != nil {
		return ErrWrite.Wrap(err).WithData("file", path)
	}
	return nil
}

// removeIfExists deletes a stale generated file.
func removeIfExists(path string) (bool, error) {
	err := removeFile(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, ErrWrite.Wrap(err).WithData("file", path)
}
