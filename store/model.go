package store

import "time"

// Kinds of use recorded for a recent document.
const (
	KindOpen       = "open"
	KindSave       = "save"
	KindExportDocx = "export_docx"
	KindExportPDF  = "export_pdf"
)

type RecentDocument struct {
	Path   string    `json:"path"`
	Kind   string    `json:"kind"`
	UsedAt time.Time `json:"used_at"`
}
