package handler

import (
	"fmt"
	"net/http"

	"inkflow/internal/convert"
	"inkflow/internal/httputil"
)

type importFileRequest struct {
	Filename string `json:"filename"`
	Data     string `json:"data"`
}

// ImportFile creates a document from an uploaded text/markdown/HTML file.
// POST /api/import
func (h *Handler) ImportFile(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req importFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Filename == "" {
		httputil.RespondError(w, http.StatusBadRequest, "filename is required")
		return
	}

	imported := convert.FromUpload(req.Filename, []byte(req.Data))
	doc, err := ws.ImportDocument(r.Context(), imported.Title, imported.Content)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, doc)
}

type importExternalRequest struct {
	AccessToken string `json:"accessToken"`
	FileID      string `json:"fileId"`
}

// ImportExternal pulls a remote drive document in as a new document.
// POST /api/import/external
func (h *Handler) ImportExternal(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req importExternalRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	imported, err := h.importer.Import(r.Context(), req.AccessToken, req.FileID)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}

	doc, err := ws.ImportDocument(r.Context(), imported.Title, imported.Content)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// ExportDocument downloads a document as txt, md, or a Word-compatible
// styled HTML file.
// GET /api/documents/{id}/export?format=txt|md|html
func (h *Handler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	doc, err := ws.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}

	format := convert.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = convert.FormatText
	}

	file, err := convert.Export(*doc, format)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}
