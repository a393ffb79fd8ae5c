// Package handler exposes the writing app over HTTP. Every route resolves
// the request identity to its workspace and delegates to the app layer.
package handler

import (
	"log/slog"
	"net/http"

	"inkflow/internal/app"
	"inkflow/internal/auth"
	"inkflow/internal/convert"
	"inkflow/internal/httputil"
	"inkflow/internal/suggest"
)

// Handler carries the shared dependencies for all routes.
type Handler struct {
	controller *app.Controller
	suggest    *suggest.Service
	importer   *convert.ExternalImporter
	logger     *slog.Logger
}

// NewHandler creates the route handler set.
func NewHandler(controller *app.Controller, suggestSvc *suggest.Service, importer *convert.ExternalImporter, logger *slog.Logger) *Handler {
	return &Handler{
		controller: controller,
		suggest:    suggestSvc,
		importer:   importer,
		logger:     logger,
	}
}

// Routes registers every endpoint on the mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("GET /api/documents", h.ListDocuments)
	mux.HandleFunc("POST /api/documents", h.CreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", h.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", h.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", h.DeleteDocument)
	mux.HandleFunc("POST /api/documents/{id}/select", h.SelectDocument)
	mux.HandleFunc("GET /api/documents/{id}/export", h.ExportDocument)

	mux.HandleFunc("POST /api/documents/{id}/versions", h.SaveVersion)
	mux.HandleFunc("GET /api/documents/{id}/versions", h.ListVersions)
	mux.HandleFunc("POST /api/documents/{id}/versions/{versionId}/restore", h.RestoreVersion)

	mux.HandleFunc("GET /api/folders", h.ListFolders)
	mux.HandleFunc("POST /api/folders", h.CreateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.DeleteFolder)

	mux.HandleFunc("GET /api/settings", h.GetSettings)
	mux.HandleFunc("PATCH /api/settings", h.UpdateSettings)

	mux.HandleFunc("GET /api/session", h.GetSession)
	mux.HandleFunc("PUT /api/session/content", h.PutContent)
	mux.HandleFunc("PUT /api/session/selection", h.PutSelection)
	mux.HandleFunc("POST /api/session/ghost/trigger", h.TriggerGhost)
	mux.HandleFunc("POST /api/session/ghost/accept", h.AcceptGhost)
	mux.HandleFunc("POST /api/session/ghost/dismiss", h.DismissGhost)
	mux.HandleFunc("POST /api/session/refine", h.RefineSelection)

	mux.HandleFunc("GET /api/assist/chat", h.GetChat)
	mux.HandleFunc("POST /api/assist/chat", h.SendChat)
	mux.HandleFunc("POST /api/assist/chat/clear", h.ClearChat)
	mux.HandleFunc("POST /api/assist/tone", h.AnalyzeTone)

	mux.HandleFunc("POST /api/import", h.ImportFile)
	mux.HandleFunc("POST /api/import/external", h.ImportExternal)
}

// HealthCheck reports liveness and the active suggestion provider.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": h.suggest.ProviderName(),
	})
}

// workspace resolves the request identity's workspace, writing the error
// response itself on failure.
func (h *Handler) workspace(w http.ResponseWriter, r *http.Request) (*app.Workspace, bool) {
	identity := auth.IdentityFromContext(r.Context())
	ws, err := h.controller.Workspace(r.Context(), identity)
	if err != nil {
		h.logger.Error("workspace resolution failed", "user_id", identity.UserID, "error", err)
		httputil.RespondDomainError(w, err)
		return nil, false
	}
	return ws, true
}
