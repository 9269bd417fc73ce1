// Package tmpfile tracks files downloaded into a per-invocation temporary
// directory.
package tmpfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dir is a temporary directory that holds the downloads of one run.
type Dir struct {
	path string
}

// NewDir creates a fresh temporary directory under parent. An empty parent
// uses the system temp directory.
func NewDir(parent string) (*Dir, error) {
	path, err := os.MkdirTemp(parent, "hcdl-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	return &Dir{path: path}, nil
}

// Path returns the directory path
func (d *Dir) Path() string {
	return d.path
}

// File returns a handle for filename inside the directory. The file itself
// is created by whoever writes to Path().
func (d *Dir) File(filename string) (*TmpFile, error) {
	switch filename {
	case "", ".", "..", "/":
		return nil, fmt.Errorf("invalid temp filename %q", filename)
	}
	if filename != filepath.Base(filename) {
		return nil, fmt.Errorf("invalid temp filename %q", filename)
	}

	return &TmpFile{
		filename: filename,
		path:     filepath.Join(d.path, filename),
	}, nil
}

// Remove deletes the directory and everything in it.
func (d *Dir) Remove() error {
	return os.RemoveAll(d.path)
}

// TmpFile is a downloaded file. Its filename doubles as the key into the
// checksum manifest, so it must match the published release filename.
type TmpFile struct {
	filename string
	path     string
}

// Name returns the release filename
func (f *TmpFile) Name() string {
	return f.filename
}

// Path returns the on-disk location
func (f *TmpFile) Path() string {
	return f.path
}

// Open opens the file for reading.
func (f *TmpFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// ReadAll returns the whole file. Meant for small files such as manifests
// and signatures.
func (f *TmpFile) ReadAll() ([]byte, error) {
	return os.ReadFile(f.path)
}

// Persist moves the file into dir, keeping its filename, and returns the new
// path. Falls back to copying when a rename is not possible (e.g. across
// filesystems).
func (f *TmpFile) Persist(dir string) (string, error) {
	dest := filepath.Join(dir, f.filename)

	if err := os.Rename(f.path, dest); err == nil {
		f.path = dest
		return dest, nil
	}

	if err := copyFile(f.path, dest); err != nil {
		return "", fmt.Errorf("persist %s: %w", f.filename, err)
	}

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("remove %s: %w", f.path, err)
	}

	f.path = dest
	return dest, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
