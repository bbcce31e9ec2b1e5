package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"manjaword/internal/document/model"
	"manjaword/internal/document/repository"
	"manjaword/pkg/apperr"
	"manjaword/pkg/dialog"
	"manjaword/pkg/logger"
	"manjaword/store"
)

// RecentRecorder remembers paths the user worked with.
type RecentRecorder interface {
	Touch(path, kind string) error
	Remove(path string) error
}

var documentFilter = dialog.Options{
	FilterName: "ManjaWord",
	Extensions: []string{"manjaword.json"},
}

type DocumentService struct {
	Files  *repository.FileRepository
	Picker dialog.Picker
	Recent RecentRecorder
	now    func() time.Time
}

func NewDocumentService(files *repository.FileRepository, picker dialog.Picker, recent RecentRecorder) *DocumentService {
	return &DocumentService{Files: files, Picker: picker, Recent: recent, now: time.Now}
}

// Open asks the default picker for a document and loads it.
func (s *DocumentService) Open(ctx context.Context) (*model.OpenedDocument, error) {
	return s.OpenWith(ctx, s.Picker)
}

func (s *DocumentService) OpenWith(ctx context.Context, picker dialog.Picker) (*model.OpenedDocument, error) {
	opts := documentFilter
	opts.Title = "Open document"
	path, ok, err := picker.PickOpen(ctx, opts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNoFile
	}
	return s.OpenPath(path)
}

// OpenPath validates path, reads the whole file and unwraps the envelope.
// Nothing is returned unless the whole document loaded.
func (s *DocumentService) OpenPath(path string) (*model.OpenedDocument, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	raw, err := s.Files.Read(path)
	if err != nil {
		// A document deleted behind our back should not linger in the recents list.
		if errors.Is(err, fs.ErrNotExist) {
			s.forget(path)
		}
		return nil, fmt.Errorf("io error: %w", err)
	}
	env, err := model.Decode(raw)
	if err != nil {
		logger.Sugar.Warnf("Document %s is not a valid envelope: %v", path, err)
		return nil, err
	}

	s.touch(path, store.KindOpen)
	return &model.OpenedDocument{Path: path, Content: env.Unwrap()}, nil
}

// Save asks the default picker for a destination and writes content there.
func (s *DocumentService) Save(ctx context.Context, content any) (string, error) {
	return s.SaveWith(ctx, s.Picker, content)
}

func (s *DocumentService) SaveWith(ctx context.Context, picker dialog.Picker, content any) (string, error) {
	opts := documentFilter
	opts.Title = "Save document"
	opts.DefaultName = model.DefaultName
	path, ok, err := picker.PickSave(ctx, opts)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.ErrNoFile
	}
	return s.SavePath(path, content)
}

// SavePath appends the compound extension when missing, validates the
// result and overwrites the file with a freshly stamped envelope.
func (s *DocumentService) SavePath(path string, content any) (string, error) {
	path = EnsureExtension(path, model.Extension)
	if err := ValidatePath(path); err != nil {
		return "", err
	}

	data, err := model.Encode(model.Wrap(content, s.now()))
	if err != nil {
		return "", err
	}
	if err := s.Files.Write(path, data); err != nil {
		return "", fmt.Errorf("io error: %w", err)
	}

	logger.Sugar.Infof("Saved document: %s", path)
	s.touch(path, store.KindSave)
	return path, nil
}

func (s *DocumentService) touch(path, kind string) {
	if s.Recent == nil {
		return
	}
	if err := s.Recent.Touch(path, kind); err != nil {
		logger.Sugar.Warnf("Could not record %s in recent documents: %v", path, err)
	}
}

func (s *DocumentService) forget(path string) {
	if s.Recent == nil {
		return
	}
	if err := s.Recent.Remove(path); err != nil {
		logger.Sugar.Warnf("Could not drop %s from recent documents: %v", path, err)
	}
}
