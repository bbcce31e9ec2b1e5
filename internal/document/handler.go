package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"manjaword/internal/document/model"
	"manjaword/internal/document/repository"
	"manjaword/internal/document/service"
	"manjaword/pkg/dialog"
	"manjaword/pkg/response"
)

type DocumentHandler struct {
	Service  *service.DocumentService
	Autosave *service.AutosaveService
	Recent   *repository.RecentRepository
	validate *validator.Validate
}

func NewDocumentHandler(svc *service.DocumentService, autosave *service.AutosaveService, recent *repository.RecentRepository) *DocumentHandler {
	return &DocumentHandler{Service: svc, Autosave: autosave, Recent: recent, validate: validator.New()}
}

// OpenDocument loads a document. Without a path in the body the editor is
// asked to show its open dialog.
func (h *DocumentHandler) OpenDocument(w http.ResponseWriter, r *http.Request) {
	var req model.OpenDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}

	doc, err := h.Service.OpenWith(r.Context(), dialog.Or(req.Path, h.Service.Picker))
	if err != nil {
		response.Fail(w, "open document", err)
		return
	}
	response.Success(w, doc)
}

func (h *DocumentHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	var req model.SaveDocRequest
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

	path, err := h.Service.SaveWith(r.Context(), dialog.Or(req.Path, h.Service.Picker), content)
	if err != nil {
		response.Fail(w, "save document", err)
		return
	}
	response.Success(w, model.SaveDocResponse{Path: path})
}

func (h *DocumentHandler) AutosaveDocument(w http.ResponseWriter, r *http.Request) {
	var req model.AutosaveRequest
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

	if err := h.Autosave.Autosave(content); err != nil {
		response.Fail(w, "autosave", err)
		return
	}
	response.Success(w, struct{}{})
}

func (h *DocumentHandler) RecoverDocument(w http.ResponseWriter, r *http.Request) {
	env, err := h.Autosave.Recover()
	if err != nil {
		response.Fail(w, "recover", err)
		return
	}
	response.Success(w, model.RecoverResponse{Document: env})
}

func (h *DocumentHandler) RecentDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(w, "Invalid limit parameter")
			return
		}
		limit = n
	}

	docs, err := h.Recent.List(limit)
	if err != nil {
		response.Fail(w, "list recent documents", err)
		return
	}
	response.Success(w, docs)
}

// ForgetRecentDocument drops ?path= from the recents list. The file itself
// is left alone.
func (h *DocumentHandler) ForgetRecentDocument(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		response.BadRequest(w, "Missing path parameter")
		return
	}
	if err := h.Recent.Remove(path); err != nil {
		response.Fail(w, "forget recent document", err)
		return
	}
	response.Success(w, struct{}{})
}
