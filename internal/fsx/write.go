// Package fsx writes template files in place: under an exclusive advisory
// lock, through a temp file and an atomic rename.
package fsx

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Op names the step of a write that failed.
type Op string

const (
	OpMkdir Op = "mkdir"
	OpLock  Op = "lock"
	OpRead  Op = "read"
	OpWrite Op = "write"
)

// Error wraps a failed step of WriteFileLocked.
type Error struct {
	Op   Op
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// WriteFileLocked replaces path with data. Missing parent directories are
// created, the existing file mode is kept (mode is used for new files) and
// nothing is written when the content is already data.
func WriteFileLocked(path string, data []byte, mode fs.FileMode) (changed bool, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, &Error{Op: OpMkdir, Path: dir, Err: err}
	}

	// #nosec G304 -- path is provided by the caller
	lockFile, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, mode)
	if err != nil {
		return false, &Error{Op: OpLock, Path: path, Err: err}
	}
	defer lockFile.Close()
	if err := lock(lockFile); err != nil {
		return false, &Error{Op: OpLock, Path: path, Err: err}
	}
	defer func() {
		if uerr := unlock(lockFile); uerr != nil && err == nil {
			err = &Error{Op: OpLock, Path: path, Err: uerr}
		}
	}()

	info, err := lockFile.Stat()
	if err != nil {
		return false, &Error{Op: OpRead, Path: path, Err: err}
	}
	current, err := os.ReadFile(path)
	if err != nil {
		return false, &Error{Op: OpRead, Path: path, Err: err}
	}
	if bytes.Equal(current, data) {
		return false, nil
	}

	if err := replace(path, data, info.Mode().Perm()); err != nil {
		return false, &Error{Op: OpWrite, Path: path, Err: err}
	}
	return true, nil
}

func replace(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	committed = true
	return nil
}
