package handler

import (
	"errors"
	"net/http"

	"inkflow/internal/domain"
	"inkflow/internal/httputil"
)

// GetChat returns the conversation history.
// GET /api/assist/chat
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"turns": ws.Assistant.History(),
	})
}

type sendChatRequest struct {
	Message string `json:"message"`
}

// SendChat appends a user turn and the assistant's reply (or the fallback
// turn on backend failure) and returns the updated conversation.
// POST /api/assist/chat
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req sendChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Message == "" {
		httputil.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	doc, err := ws.ActiveDocument(r.Context())
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}

	turns := ws.Assistant.Send(r.Context(), req.Message, *doc)
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"turns": turns,
	})
}

// ClearChat resets the conversation.
// POST /api/assist/chat/clear
func (h *Handler) ClearChat(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.Assistant.Clear()
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"turns": ws.Assistant.History(),
	})
}

// AnalyzeTone runs a one-shot tone analysis of the active document. A
// malformed backend response yields a null analysis, not an error.
// POST /api/assist/tone
func (h *Handler) AnalyzeTone(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	doc, err := ws.ActiveDocument(r.Context())
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}

	analysis, err := h.suggest.AnalyzeTone(r.Context(), doc.Title, ws.Session.PlainText())
	if err != nil {
		var parseErr *domain.ParseError
		if !errors.As(err, &parseErr) {
			h.logger.Warn("tone analysis failed", "document_id", doc.ID, "error", err)
		}
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"analysis": nil,
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"analysis": analysis,
	})
}
