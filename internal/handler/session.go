package handler

import (
	"net/http"

	"inkflow/internal/httputil"
)

type sessionResponse struct {
	DocumentID  string           `json:"documentId"`
	Content     string           `json:"content"`
	WordCount   int              `json:"wordCount"`
	ReadingTime int              `json:"readingTime"`
	Ghost       ghostStateReport `json:"ghost"`
}

type ghostStateReport struct {
	State      string `json:"state"`
	Suggestion string `json:"suggestion,omitempty"`
	Anchor     *int   `json:"anchor,omitempty"`
}

// GetSession reports the live buffer state and any displayed ghost text.
// GET /api/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	report := ghostStateReport{State: ws.Ghost.State().String()}
	if text, anchor, ok := ws.Ghost.Suggestion(); ok {
		report.Suggestion = text
		report.Anchor = &anchor
	}

	httputil.RespondJSON(w, http.StatusOK, sessionResponse{
		DocumentID:  ws.Session.DocumentID(),
		Content:     ws.Session.Content(),
		WordCount:   ws.Session.WordCount(),
		ReadingTime: ws.Session.ReadingTime(),
		Ghost:       report,
	})
}

type putContentRequest struct {
	Content string `json:"content"`
}

// PutContent commits an edited buffer. This is the editing surface's write
// path; title and preview are re-derived on every commit.
// PUT /api/session/content
func (h *Handler) PutContent(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req putContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws.Session.ApplyEdit(r.Context(), req.Content)
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"wordCount":   ws.Session.WordCount(),
		"readingTime": ws.Session.ReadingTime(),
	})
}

type putSelectionRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// PutSelection records the cursor/selection as plain-text offsets.
// PUT /api/session/selection
func (h *Handler) PutSelection(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req putSelectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws.Session.SetSelection(req.From, req.To)
	w.WriteHeader(http.StatusNoContent)
}

type triggerGhostRequest struct {
	FromCursor bool `json:"fromCursor"`
}

// TriggerGhost explicitly requests a continuation, from the document end or
// from the cursor position.
// POST /api/session/ghost/trigger
func (h *Handler) TriggerGhost(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req triggerGhostRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if req.FromCursor {
		ws.Ghost.TriggerFromCursor()
	} else {
		ws.Ghost.TriggerFromEnd()
	}
	w.WriteHeader(http.StatusAccepted)
}

// AcceptGhost merges the displayed suggestion into the buffer.
// POST /api/session/ghost/accept
func (h *Handler) AcceptGhost(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	ws.Ghost.Accept(r.Context())
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"content": ws.Session.Content(),
	})
}

// DismissGhost discards the displayed suggestion.
// POST /api/session/ghost/dismiss
func (h *Handler) DismissGhost(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	ws.Ghost.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}

type refineRequest struct {
	Instruction string `json:"instruction"`
}

type refineResponse struct {
	Replaced bool   `json:"replaced"`
	Content  string `json:"content"`
}

// RefineSelection rewrites the selected text per the instruction. An empty
// rewrite leaves the selection unmodified; the response says which happened.
// POST /api/session/refine
func (h *Handler) RefineSelection(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req refineRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	selection := ws.Session.SelectedText()
	if selection == "" {
		httputil.RespondError(w, http.StatusBadRequest, "nothing selected")
		return
	}

	rewritten, err := h.suggest.RewriteSelection(r.Context(), selection, req.Instruction, ws.Session.PlainText())
	if err != nil || rewritten == "" {
		if err != nil {
			h.logger.Warn("refine request failed", "error", err)
		}
		httputil.RespondJSON(w, http.StatusOK, refineResponse{
			Replaced: false,
			Content:  ws.Session.Content(),
		})
		return
	}

	ws.Session.ReplaceSelection(r.Context(), rewritten)
	httputil.RespondJSON(w, http.StatusOK, refineResponse{
		Replaced: true,
		Content:  ws.Session.Content(),
	})
}
