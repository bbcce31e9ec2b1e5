// Package dialog describes the file-selection collaborator used by the
// document and export services.
package dialog

import "context"

// Options are the hints shown by a file dialog.
type Options struct {
	Title       string   `json:"title,omitempty"`
	FilterName  string   `json:"filter_name"`
	Extensions  []string `json:"extensions"`
	DefaultName string   `json:"default_name,omitempty"`
}

// Picker asks the user for a file. ok is false when no file was chosen,
// which is not an error.
type Picker interface {
	PickOpen(ctx context.Context, opts Options) (path string, ok bool, err error)
	PickSave(ctx context.Context, opts Options) (path string, ok bool, err error)
}

// Static always resolves to Path. An empty Path behaves like a dismissed dialog.
type Static struct {
	Path string
}

func (s Static) PickOpen(_ context.Context, _ Options) (string, bool, error) {
	return s.Path, s.Path != "", nil
}

func (s Static) PickSave(_ context.Context, _ Options) (string, bool, error) {
	return s.Path, s.Path != "", nil
}

// Or returns a Static picker for path when it is set, otherwise fallback.
func Or(path string, fallback Picker) Picker {
	if path != "" || fallback == nil {
		return Static{Path: path}
	}
	return fallback
}
