package handler

import (
	"net/http"

	"inkflow/internal/httputil"
)

// SaveVersion snapshots the document's current content into its history.
// POST /api/documents/{id}/versions
func (h *Handler) SaveVersion(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	doc, err := ws.Store.Get(r.Context(), id)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}

	if err := ws.Store.SaveVersion(r.Context(), id, doc.Content, doc.Title); err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ListVersions returns the document's snapshots, newest first.
// GET /api/documents/{id}/versions
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	versions, err := ws.Store.ListVersions(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"versions": versions,
	})
}

// RestoreVersion rewrites the document from a snapshot via a plain update;
// no new history entry is created.
// POST /api/documents/{id}/versions/{versionId}/restore
func (h *Handler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	doc, err := ws.RestoreVersion(r.Context(), r.PathValue("id"), r.PathValue("versionId"))
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}
