package cli

import (
	"database/sql"
	"net/http"

	"manjaword/config"
	"manjaword/config/database"
	docHandler "manjaword/internal/document"
	"manjaword/internal/document/repository"
	docService "manjaword/internal/document/service"
	exportHandler "manjaword/internal/export"
	exportService "manjaword/internal/export/service"
	grammarHandler "manjaword/internal/grammar"
	grammarService "manjaword/internal/grammar/service"
	"manjaword/pkg/dialog"
	"manjaword/router"
	"manjaword/socket"
)

// App holds the wired services shared by the server and the CLI commands.
type App struct {
	Config    *config.Config
	DB        *sql.DB
	Recent    *repository.RecentRepository
	Documents *docService.DocumentService
	Autosave  *docService.AutosaveService
	Export    *exportService.ExportService
	Grammar   *grammarService.GrammarService
}

// NewApp wires every service. picker answers file dialogs; the CLI passes
// a static picker, the server passes the WebSocket hub.
func NewApp(cfg *config.Config, picker dialog.Picker) (*App, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	files := repository.NewFileRepository()
	recent := repository.NewRecentRepository(db)

	return &App{
		Config:    cfg,
		DB:        db,
		Recent:    recent,
		Documents: docService.NewDocumentService(files, picker, recent),
		Autosave:  docService.NewAutosaveService(files, cfg.DataDir),
		Export:    exportService.NewExportService(files, picker, recent, cfg.Export.PaginatePDF),
		Grammar: grammarService.NewGrammarService(
			cfg.Grammar.URL,
			cfg.Grammar.Language,
			cfg.Grammar.RequestsPerSecond,
			cfg.Grammar.Burst,
			nil,
		),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// Handler builds the HTTP surface around hub.
func (a *App) Handler(hub *socket.Hub) http.Handler {
	return router.Setup(a.Config, router.Handlers{
		Documents: docHandler.NewDocumentHandler(a.Documents, a.Autosave, a.Recent),
		Export:    exportHandler.NewExportHandler(a.Export),
		Grammar:   grammarHandler.NewGrammarHandler(a.Grammar),
		Hub:       hub,
		Upgrader:  socket.NewUpgrader(a.Config.WebSocket.ReadBufferSize, a.Config.WebSocket.WriteBufferSize),
	})
}
