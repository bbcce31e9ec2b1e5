package service

import (
	"fmt"
	"path/filepath"
	"time"

	"manjaword/internal/document/model"
	"manjaword/internal/document/repository"
	"manjaword/pkg/apperr"
	"manjaword/pkg/logger"
)

// AutosaveService keeps a single snapshot of the open document in the
// application data directory. Every call replaces the previous snapshot.
type AutosaveService struct {
	Files   *repository.FileRepository
	dataDir func() (string, error)
	now     func() time.Time
}

// NewAutosaveService takes the resolver of the application data directory;
// it is called on every operation so a directory removed while running is
// recreated.
func NewAutosaveService(files *repository.FileRepository, dataDir func() (string, error)) *AutosaveService {
	return &AutosaveService{Files: files, dataDir: dataDir, now: time.Now}
}

func (s *AutosaveService) path() (string, error) {
	dir, err := s.dataDir()
	if err != nil || dir == "" {
		logger.Sugar.Errorf("Cannot resolve application data directory: %v", err)
		return "", apperr.ErrPathUnavailable
	}
	if err := s.Files.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("io error: %w", err)
	}
	return filepath.Join(dir, model.AutosaveName), nil
}

// Path returns the snapshot location, creating its directory.
func (s *AutosaveService) Path() (string, error) {
	return s.path()
}

func (s *AutosaveService) Autosave(content any) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	data, err := model.Encode(model.Wrap(content, s.now()))
	if err != nil {
		return err
	}
	if err := s.Files.Write(path, data); err != nil {
		return fmt.Errorf("io error: %w", err)
	}
	logger.Sugar.Debugf("Autosaved document to %s", path)
	return nil
}

// Recover returns the last snapshot, or nil when none was ever written.
// A corrupt snapshot is reported, not discarded.
func (s *AutosaveService) Recover() (*model.Envelope, error) {
	path, err := s.path()
	if err != nil {
		return nil, err
	}
	exists, err := s.Files.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("io error: %w", err)
	}
	if !exists {
		return nil, nil
	}

	raw, err := s.Files.Read(path)
	if err != nil {
		return nil, fmt.Errorf("io error: %w", err)
	}
	return model.Decode(raw)
}
