package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir stores files in a directory on disk.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at root, which must exist.
func NewDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: root, Err: errors.New("not a directory")}
	}
	return &Dir{root: filepath.Clean(root)}, nil
}

func (d *Dir) Root() string { return d.root }

func (d *Dir) Read(name string) ([]byte, error) {
	path, err := d.fullPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Write replaces name atomically: the data goes to a temporary file in the
// same directory which is then renamed over the target.
func (d *Dir) Write(name string, data []byte) error {
	path, err := d.fullPath(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(d.root, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op once renamed
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (d *Dir) Delete(name string) error {
	path, err := d.fullPath(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (d *Dir) fullPath(name string) (string, error) {
	if !ValidName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(d.root, name), nil
}
