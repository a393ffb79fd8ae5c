package handler

import (
	"net/http"
	"strings"

	"inkflow/internal/httputil"
)

// ListFolders returns the identity's folders (always empty for guests).
// GET /api/folders
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"folders": ws.Store.Folders(r.Context()),
	})
}

type createFolderRequest struct {
	Name string `json:"name"`
}

// CreateFolder creates a folder (authenticated mode only).
// POST /api/folders
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req createFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder name is required")
		return
	}

	folder, err := ws.Store.CreateFolder(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// DeleteFolder removes a folder; member documents move to root atomically.
// DELETE /api/folders/{id}
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	if err := ws.Store.DeleteFolder(r.Context(), r.PathValue("id")); err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
