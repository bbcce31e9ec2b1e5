package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"manjaword/internal/document/model"
	"manjaword/internal/export/service"
	"manjaword/pkg/dialog"
	"manjaword/pkg/response"
)

type ExportRequest struct {
	Path    string          `json:"path"`
	Content json.RawMessage `json:"content" validate:"required"`
}

type ExportResponse struct {
	Path string `json:"path"`
}

type ExportHandler struct {
	Service  *service.ExportService
	validate *validator.Validate
}

func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{Service: svc, validate: validator.New()}
}

// Export serves /api/export/{format}.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := service.FormatByName(mux.Vars(r)["format"])
	if !ok {
		response.BadRequest(w, "Unsupported export format")
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, "Content is required")
		return
	}

	content, err := model.DecodeContent(req.Content)
	if err != nil {
		response.BadRequest(w, "Invalid content")
		return
	}

	path, err := h.Service.Export(r.Context(), dialog.Or(req.Path, h.Service.Picker), format, content)
	if err != nil {
		response.Fail(w, "export "+format.Name, err)
		return
	}
	response.Success(w, ExportResponse{Path: path})
}
