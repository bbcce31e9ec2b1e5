package response

import (
	"encoding/json"
	"net/http"

	"manjaword/pkg/apperr"
	"manjaword/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{
		Success: statusCode < 400,
		Data:    data,
	})
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

func Error(w http.ResponseWriter, statusCode int, err string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   err,
	})
}

func BadRequest(w http.ResponseWriter, err string) {
	Error(w, http.StatusBadRequest, err)
}

func Unauthorized(w http.ResponseWriter, err string) {
	Error(w, http.StatusUnauthorized, err)
}

// Fail turns a service error into its message and status. A dismissed file
// dialog is an ordinary outcome and is not logged.
func Fail(w http.ResponseWriter, op string, err error) {
	if !apperr.IsNoFile(err) {
		logger.Sugar.Errorf("Handler: %s failed: %v", op, err)
	}
	Error(w, apperr.StatusCode(err), err.Error())
}
