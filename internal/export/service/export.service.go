package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"manjaword/internal/document/repository"
	"manjaword/internal/export/delta"
	"manjaword/internal/export/render"
	"manjaword/pkg/apperr"
	"manjaword/pkg/dialog"
	"manjaword/pkg/logger"
	"manjaword/store"
)

const exportTitle = "ManjaWord Export"

// Format is an export target.
type Format struct {
	Name        string
	Extension   string
	DefaultName string
	Kind        string
}

var (
	Docx = Format{Name: "docx", Extension: ".docx", DefaultName: "document.docx", Kind: store.KindExportDocx}
	PDF  = Format{Name: "pdf", Extension: ".pdf", DefaultName: "document.pdf", Kind: store.KindExportPDF}
)

// FormatByName resolves "docx" or "pdf".
func FormatByName(name string) (Format, bool) {
	switch strings.ToLower(name) {
	case Docx.Name:
		return Docx, true
	case PDF.Name:
		return PDF, true
	}
	return Format{}, false
}

// RecentRecorder remembers exported paths.
type RecentRecorder interface {
	Touch(path, kind string) error
}

type lineWriter interface {
	Write(w io.Writer, lines []string) (int, error)
}

type ExportService struct {
	Files       *repository.FileRepository
	Picker      dialog.Picker
	Recent      RecentRecorder
	PaginatePDF bool
}

func NewExportService(files *repository.FileRepository, picker dialog.Picker, recent RecentRecorder, paginatePDF bool) *ExportService {
	return &ExportService{Files: files, Picker: picker, Recent: recent, PaginatePDF: paginatePDF}
}

func (s *ExportService) ExportDocx(ctx context.Context, content any) (string, error) {
	return s.Export(ctx, s.Picker, Docx, content)
}

func (s *ExportService) ExportPDF(ctx context.Context, content any) (string, error) {
	return s.Export(ctx, s.Picker, PDF, content)
}

// Export asks picker for a destination and renders content in format.
func (s *ExportService) Export(ctx context.Context, picker dialog.Picker, format Format, content any) (string, error) {
	path, ok, err := picker.PickSave(ctx, dialog.Options{
		Title:       "Export as " + strings.ToUpper(format.Name),
		FilterName:  strings.ToUpper(format.Name),
		Extensions:  []string{format.Name},
		DefaultName: format.DefaultName,
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.ErrNoFile
	}
	return s.ExportTo(path, format, content)
}

// ExportTo renders content to path, appending the format extension when
// the name lacks it.
func (s *ExportService) ExportTo(path string, format Format, content any) (string, error) {
	if !strings.EqualFold(extOf(path), format.Extension) {
		path += format.Extension
	}

	lines := delta.Flatten(content)
	f, err := s.Files.Create(path)
	if err != nil {
		return "", fmt.Errorf("io error: %w", err)
	}
	n, err := s.writer(format).Write(f, lines)
	if cerr := f.Close(); err == nil && cerr != nil {
		return "", fmt.Errorf("io error: %w", cerr)
	}
	if err != nil {
		return "", err
	}

	logger.Sugar.Infof("Exported %s with %d of %d lines: %s", format.Name, n, len(lines), path)
	if s.Recent != nil {
		if err := s.Recent.Touch(path, format.Kind); err != nil {
			logger.Sugar.Warnf("Could not record export %s: %v", path, err)
		}
	}
	return path, nil
}

func (s *ExportService) writer(format Format) lineWriter {
	if format.Name == PDF.Name {
		return render.NewPDF(exportTitle, s.PaginatePDF)
	}
	return render.NewDocx(exportTitle)
}

func extOf(path string) string {
	slash := strings.LastIndexAny(path, `/\`)
	dot := strings.LastIndex(path, ".")
	if dot <= slash+1 {
		return ""
	}
	return path[dot:]
}
