package repository

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"manjaword/pkg/logger"
)

// FileRepository reads and writes whole files. Writes overwrite in place;
// a crash mid-write can leave a truncated file.
type FileRepository struct{}

func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

func (r *FileRepository) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Sugar.Errorf("Failed to read %s: %v", path, err)
	}
	return data, err
}

func (r *FileRepository) Write(path string, data []byte) error {
	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		logger.Sugar.Errorf("Failed to write %s: %v", path, err)
	}
	return err
}

// Exists reports whether path names an existing file. Errors other than
// "not found" are returned so callers do not mistake them for absence.
func (r *FileRepository) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (r *FileRepository) EnsureDir(dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		logger.Sugar.Errorf("Failed to create directory %s: %v", dir, err)
	}
	return err
}

// Create opens path for a streamed export write, truncating any existing file.
func (r *FileRepository) Create(path string) (*os.File, error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		logger.Sugar.Errorf("Failed to create %s: %v", path, err)
	}
	return f, err
}
