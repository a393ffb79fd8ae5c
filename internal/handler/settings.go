package handler

import (
	"net/http"

	"inkflow/internal/domain/models"
	"inkflow/internal/httputil"
)

// GetSettings returns the identity's editor settings merged onto defaults.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, ws.Settings(r.Context()))
}

// UpdateSettings overlays a partial settings patch and persists the result.
// PATCH /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var patch models.SettingsPatch
	if err := httputil.ParseJSON(w, r, &patch); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := ws.UpdateSettings(r.Context(), &patch)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, settings)
}
