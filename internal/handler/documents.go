package handler

import (
	"net/http"

	"inkflow/internal/domain/models"
	"inkflow/internal/httputil"
	"inkflow/internal/store"
)

type documentListResponse struct {
	Documents []models.Document `json:"documents"`
	ActiveID  string            `json:"activeId"`
	Mode      string            `json:"mode"`
}

func modeName(m store.Mode) string {
	if m == store.ModeRemote {
		return "remote"
	}
	return "guest"
}

// ListDocuments returns the ordered document list for the identity.
// GET /api/documents
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	httputil.RespondJSON(w, http.StatusOK, documentListResponse{
		Documents: ws.Store.List(r.Context()),
		ActiveID:  ws.ActiveID(),
		Mode:      modeName(ws.Store.Mode()),
	})
}

type createDocumentRequest struct {
	FolderID *string `json:"folderId,omitempty"`
}

// CreateDocument creates an empty draft and makes it active.
// POST /api/documents
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req createDocumentRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	doc, err := ws.CreateDocument(r.Context(), req.FolderID)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument returns one document.
// GET /api/documents/{id}
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	doc, err := ws.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Title      *string `json:"title,omitempty"`
	FolderID   *string `json:"folderId,omitempty"`
	MoveToRoot bool    `json:"moveToRoot,omitempty"`
}

// UpdateDocument patches document metadata (title, folder membership).
// Content edits go through the session instead, so derived fields stay
// consistent.
// PATCH /api/documents/{id}
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req updateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	ws.Store.Update(r.Context(), id, models.DocumentPatch{
		Title:      req.Title,
		FolderID:   req.FolderID,
		MoveToRoot: req.MoveToRoot,
	})

	doc, err := ws.Store.Get(r.Context(), id)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument removes a document and returns the new active document.
// Confirmation happens client-side; the delete here is unconditional.
// DELETE /api/documents/{id}
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	active, err := ws.DeleteDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"active": active,
	})
}

// SelectDocument opens a document in the editor session.
// POST /api/documents/{id}/select
func (h *Handler) SelectDocument(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	doc, err := ws.SelectDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}
