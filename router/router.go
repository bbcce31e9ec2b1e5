package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"manjaword/config"
	docHandler "manjaword/internal/document"
	exportHandler "manjaword/internal/export"
	grammarHandler "manjaword/internal/grammar"
	"manjaword/middleware"
	"manjaword/pkg/response"
	"manjaword/socket"
)

type Handlers struct {
	Documents *docHandler.DocumentHandler
	Export    *exportHandler.ExportHandler
	Grammar   *grammarHandler.GrammarHandler
	Hub       *socket.Hub
	Upgrader  *websocket.Upgrader
}

func Setup(cfg *config.Config, h Handlers) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LoggerMiddleware)
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	auth := middleware.AuthMiddleware(cfg.Auth.SessionSecret)

	// WebSocket used to drive the editor's file dialogs.
	r.Handle("/ws", auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(h.Hub, h.Upgrader, w, r)
	}))).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth)

	api.HandleFunc("/documents/open", h.Documents.OpenDocument).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/documents/save", h.Documents.SaveDocument).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/documents/autosave", h.Documents.AutosaveDocument).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/documents/recover", h.Documents.RecoverDocument).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/documents/recent", h.Documents.RecentDocuments).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/documents/recent", h.Documents.ForgetRecentDocument).Methods(http.MethodDelete)
	api.HandleFunc("/export/{format}", h.Export.Export).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/grammar/check", h.Grammar.Check).Methods(http.MethodPost, http.MethodOptions)

	return r
}
