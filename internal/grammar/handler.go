package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"manjaword/internal/grammar/model"
	"manjaword/internal/grammar/service"
	"manjaword/pkg/response"
)

type GrammarHandler struct {
	Service  *service.GrammarService
	validate *validator.Validate
}

func NewGrammarHandler(svc *service.GrammarService) *GrammarHandler {
	return &GrammarHandler{Service: svc, validate: validator.New()}
}

func (h *GrammarHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req model.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, "Text is too long")
		return
	}

	resp, err := h.Service.Check(r.Context(), req.Text)
	if err != nil {
		response.Fail(w, "grammar check", err)
		return
	}
	response.Success(w, resp)
}
