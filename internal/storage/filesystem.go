package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSystem reads and writes exported collages in a single output
// directory: {baseDir}/{filename}.
type FileSystem struct {
	baseDir string
}

// NewFileSystem creates a new FileSystem storage, ensuring the base directory exists.
func NewFileSystem(baseDir string) (*FileSystem, error) {
	// MkdirAll creates the directory and all parents (like mkdir -p).
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &FileSystem{baseDir: baseDir}, nil
}

// BaseDir returns the output directory.
func (fs *FileSystem) BaseDir() string {
	return fs.baseDir
}

// Path returns the filesystem path for a file name.
func (fs *FileSystem) Path(name string) string {
	return filepath.Join(fs.baseDir, name)
}

// Read reads a file from the output directory.
func (fs *FileSystem) Read(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fs.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", name)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Write saves data under name, replacing any existing file. The data is
// written to a temporary file first and renamed into place, so readers
// never see a partial image.
func (fs *FileSystem) Write(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fs.baseDir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	// 0644: owner rw, group r, others r.
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), fs.Path(name)); err != nil {
		return fmt.Errorf("moving %s into place: %w", name, err)
	}
	return nil
}

// Exists checks if a file exists in the output directory.
func (fs *FileSystem) Exists(name string) bool {
	_, err := os.Stat(fs.Path(name))
	return err == nil
}

// Delete removes a file; a missing file is not an error.
func (fs *FileSystem) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Remove(fs.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	return nil
}

// checkName rejects anything that would escape the output directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("invalid file name: %q", name)
	}
	return nil
}
