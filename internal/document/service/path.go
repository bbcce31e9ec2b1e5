package service

import (
	"strings"

	"manjaword/internal/document/model"
	"manjaword/pkg/apperr"
)

// ValidatePath rejects control characters anywhere in the path and any
// name that does not end in the compound document extension. It performs
// no I/O.
func ValidatePath(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] < 0x20 {
			return apperr.ErrInvalidPath
		}
	}
	if !strings.HasSuffix(path, model.Extension) {
		return apperr.ErrInvalidExtension
	}
	return nil
}

// EnsureExtension appends ext unless path already ends with it.
func EnsureExtension(path, ext string) string {
	if strings.HasSuffix(path, ext) {
		return path
	}
	return path + ext
}
